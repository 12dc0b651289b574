package command

import (
	"context"
	"fmt"

	gocmd "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-shipment-webhook/core"
)

type DispatchService interface {
	DispatchShipment(ctx context.Context, shipment *core.Shipment) (core.DispatchResult, error)
	DispatchShipmentByID(ctx context.Context, shipmentID string) (core.DispatchResult, error)
}

// ShipmentStatusChangedCommand is the event boundary: every failure, a missing
// service included, is logged and swallowed so the shipment transaction that
// raised the event is never affected.
type ShipmentStatusChangedCommand struct {
	service DispatchService
	logger  core.Logger
}

func NewShipmentStatusChangedCommand(service DispatchService, logger core.Logger) *ShipmentStatusChangedCommand {
	return &ShipmentStatusChangedCommand{service: service, logger: glog.Ensure(logger)}
}

func (c *ShipmentStatusChangedCommand) Execute(ctx context.Context, msg ShipmentStatusChangedMessage) error {
	if c == nil || c.service == nil {
		var logger core.Logger
		if c != nil {
			logger = c.logger
		}
		err := commandDependencyError("command: shipment webhook service is required")
		glog.Ensure(logger).WithContext(ctx).Error("shipment webhook event dropped", eventLogArgs(msg, err)...)
		return nil
	}
	logger := glog.Ensure(c.logger).WithContext(ctx)

	if err := msg.Validate(); err != nil {
		logger.Error("shipment webhook event rejected", eventLogArgs(msg, err)...)
		return nil
	}

	out, err := dispatch(ctx, c.service, msg.Shipment, msg.ShipmentID)
	if err != nil {
		logger.Error("shipment webhook dispatch failed", eventLogArgs(msg, err)...)
		return nil
	}
	storeResult(ctx, out)
	return nil
}

// DispatchShipmentWebhookCommand sends the webhook and returns every failure
// to the caller.
type DispatchShipmentWebhookCommand struct {
	service DispatchService
}

func NewDispatchShipmentWebhookCommand(service DispatchService) *DispatchShipmentWebhookCommand {
	return &DispatchShipmentWebhookCommand{service: service}
}

func (c *DispatchShipmentWebhookCommand) Execute(ctx context.Context, msg DispatchShipmentWebhookMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: shipment webhook service is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	out, err := dispatch(ctx, c.service, msg.Shipment, msg.ShipmentID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func dispatch(ctx context.Context, service DispatchService, shipment *core.Shipment, shipmentID string) (core.DispatchResult, error) {
	if shipment != nil {
		return service.DispatchShipment(ctx, shipment)
	}
	return service.DispatchShipmentByID(ctx, shipmentID)
}

func eventLogArgs(msg ShipmentStatusChangedMessage, err error) []any {
	args := []any{
		"shipment_id", msg.shipmentID(),
		"order_id", msg.Shipment.OrderID(),
		"previous_status", msg.PreviousStatus,
		"error", err.Error(),
	}
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		args = append(args,
			"error_category", fmt.Sprint(rich.Category),
			"error_text_code", rich.TextCode,
			"error_code", rich.Code,
		)
	}
	return args
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
