package query

import (
	"strings"

	"github.com/goliatone/go-shipment-webhook/core"
)

const (
	TypePreviewPayload = "shipment_webhook.query.payload.preview"
)

// PreviewPayloadMessage selects the shipment whose webhook payload should be
// rendered. A loaded Shipment takes precedence over ShipmentID.
type PreviewPayloadMessage struct {
	Shipment   *core.Shipment
	ShipmentID string
}

func (PreviewPayloadMessage) Type() string { return TypePreviewPayload }

func (m PreviewPayloadMessage) Validate() error {
	if m.Shipment == nil && strings.TrimSpace(m.ShipmentID) == "" {
		return queryValidationError("shipment_id", "shipment or shipment id is required")
	}
	return nil
}
