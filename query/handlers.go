package query

import (
	"context"

	"github.com/goliatone/go-shipment-webhook/core"
)

type PayloadPreviewer interface {
	PreviewShipment(ctx context.Context, shipment *core.Shipment) (core.Preview, error)
	LoadShipment(ctx context.Context, shipmentID string) (*core.Shipment, error)
}

type PreviewPayloadQuery struct {
	service PayloadPreviewer
}

func NewPreviewPayloadQuery(service PayloadPreviewer) *PreviewPayloadQuery {
	return &PreviewPayloadQuery{service: service}
}

func (q *PreviewPayloadQuery) Query(ctx context.Context, msg PreviewPayloadMessage) (core.Preview, error) {
	if q == nil || q.service == nil {
		return core.Preview{}, queryDependencyError("query: payload previewer is required")
	}
	if err := msg.Validate(); err != nil {
		return core.Preview{}, err
	}
	shipment := msg.Shipment
	if shipment == nil {
		loaded, err := q.service.LoadShipment(ctx, msg.ShipmentID)
		if err != nil {
			return core.Preview{}, err
		}
		shipment = loaded
	}
	return q.service.PreviewShipment(ctx, shipment)
}
