package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-shipment-webhook/core"
)

var (
	_ gocmd.Commander[ShipmentStatusChangedMessage]   = (*ShipmentStatusChangedCommand)(nil)
	_ gocmd.Commander[DispatchShipmentWebhookMessage] = (*DispatchShipmentWebhookCommand)(nil)

	_ DispatchService = (*core.Service)(nil)
)
