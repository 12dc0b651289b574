package command

import (
	"strings"

	"github.com/goliatone/go-shipment-webhook/core"
)

const (
	TypeShipmentStatusChanged   = "shipment_webhook.command.shipment.status_changed"
	TypeDispatchShipmentWebhook = "shipment_webhook.command.webhook.dispatch"
)

// ShipmentStatusChangedMessage is published by the host platform after a
// shipment status transition is committed. Either a loaded Shipment or a
// ShipmentID to load must be set.
type ShipmentStatusChangedMessage struct {
	Shipment       *core.Shipment
	ShipmentID     string
	PreviousStatus string
}

func (ShipmentStatusChangedMessage) Type() string { return TypeShipmentStatusChanged }

func (m ShipmentStatusChangedMessage) Validate() error {
	return validateShipmentTarget(m.Shipment, m.ShipmentID)
}

func (m ShipmentStatusChangedMessage) shipmentID() string {
	if m.Shipment != nil {
		return m.Shipment.ID
	}
	return strings.TrimSpace(m.ShipmentID)
}

// DispatchShipmentWebhookMessage requests an explicit resend of the webhook.
type DispatchShipmentWebhookMessage struct {
	Shipment   *core.Shipment
	ShipmentID string
}

func (DispatchShipmentWebhookMessage) Type() string { return TypeDispatchShipmentWebhook }

func (m DispatchShipmentWebhookMessage) Validate() error {
	return validateShipmentTarget(m.Shipment, m.ShipmentID)
}

func validateShipmentTarget(shipment *core.Shipment, shipmentID string) error {
	if shipment == nil && strings.TrimSpace(shipmentID) == "" {
		return commandValidationError("shipment_id", "shipment or shipment id is required")
	}
	return nil
}
