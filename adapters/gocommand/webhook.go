package gocommand

import (
	"context"
	"fmt"
	"strings"

	gocmd "github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-shipment-webhook/command"
	"github.com/goliatone/go-shipment-webhook/core"
	"github.com/goliatone/go-shipment-webhook/query"
)

type WebhookService interface {
	command.DispatchService
	query.PayloadPreviewer
}

// WebhookSubscriptions holds the dispatcher subscriptions created by
// RegisterShipmentWebhook.
type WebhookSubscriptions struct {
	StatusChanged commanddispatcher.Subscription
	Dispatch      commanddispatcher.Subscription
	Preview       commanddispatcher.Subscription
}

func (s WebhookSubscriptions) Unsubscribe() {
	for _, sub := range []commanddispatcher.Subscription{s.StatusChanged, s.Dispatch, s.Preview} {
		if sub != nil {
			sub.Unsubscribe()
		}
	}
}

// RegisterShipmentWebhook registers the shipment webhook handlers in the
// registry and subscribes them on the global dispatcher, so the host can
// publish status changes with PublishShipmentStatusChanged.
func RegisterShipmentWebhook(
	adapter *RegistryAdapter,
	service WebhookService,
	logger glog.Logger,
	runnerOpts ...runner.Option,
) (WebhookSubscriptions, error) {
	if service == nil {
		return WebhookSubscriptions{}, fmt.Errorf("gocommand: webhook service is required")
	}
	subs := WebhookSubscriptions{}

	statusChanged, err := subscribeCommand[command.ShipmentStatusChangedMessage](adapter, command.NewShipmentStatusChangedCommand(service, logger), runnerOpts...)
	if err != nil {
		return WebhookSubscriptions{}, err
	}
	subs.StatusChanged = statusChanged

	dispatch, err := subscribeCommand[command.DispatchShipmentWebhookMessage](adapter, command.NewDispatchShipmentWebhookCommand(service), runnerOpts...)
	if err != nil {
		subs.Unsubscribe()
		return WebhookSubscriptions{}, err
	}
	subs.Dispatch = dispatch

	preview, err := subscribeQuery[query.PreviewPayloadMessage, core.Preview](adapter, query.NewPreviewPayloadQuery(service), runnerOpts...)
	if err != nil {
		subs.Unsubscribe()
		return WebhookSubscriptions{}, err
	}
	subs.Preview = preview
	return subs, nil
}

// PublishShipmentStatusChanged raises the status change event on the global
// dispatcher. The subscribed handler swallows delivery failures.
func PublishShipmentStatusChanged(ctx context.Context, msg command.ShipmentStatusChangedMessage) error {
	return commanddispatcher.Dispatch(ctx, msg)
}

// ResendShipmentWebhook dispatches the strict command for shipmentID and
// returns the delivery outcome.
func ResendShipmentWebhook(ctx context.Context, shipmentID string) (core.DispatchResult, error) {
	shipmentID = strings.TrimSpace(shipmentID)
	if shipmentID == "" {
		return core.DispatchResult{}, fmt.Errorf("gocommand: shipment id is required")
	}
	collector := gocmd.NewResult[core.DispatchResult]()
	ctx = gocmd.ContextWithResult(ctx, collector)
	if err := commanddispatcher.Dispatch(ctx, command.DispatchShipmentWebhookMessage{ShipmentID: shipmentID}); err != nil {
		return core.DispatchResult{}, err
	}
	result, _ := collector.Load()
	return result, nil
}

// PreviewShipmentPayload queries the signed payload for shipmentID without
// sending it.
func PreviewShipmentPayload(ctx context.Context, shipmentID string) (core.Preview, error) {
	return commanddispatcher.Query[query.PreviewPayloadMessage, core.Preview](ctx, query.PreviewPayloadMessage{ShipmentID: shipmentID})
}
