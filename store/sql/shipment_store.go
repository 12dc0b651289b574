package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-shipment-webhook/core"
	"github.com/uptrace/bun"
)

// ShipmentStore materializes the shipment aggregate from the sales tables.
// It never writes.
type ShipmentStore struct {
	db *bun.DB
}

func NewShipmentStore(db *bun.DB) (*ShipmentStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	return &ShipmentStore{db: db}, nil
}

func (s *ShipmentStore) LoadShipment(ctx context.Context, shipmentID string) (*core.Shipment, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: shipment store is not configured")
	}
	shipmentID = strings.TrimSpace(shipmentID)
	if shipmentID == "" {
		return nil, fmt.Errorf("sqlstore: shipment id is required")
	}

	record := &shipmentRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.entity_id = ?", shipmentID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%w: %s", core.ErrShipmentNotFound, shipmentID)
		}
		return nil, err
	}
	shipment := record.toDomain()

	tracks, err := s.loadTracks(ctx, shipmentID)
	if err != nil {
		return nil, err
	}
	shipment.Tracks = tracks

	order, orderItems, err := s.loadOrder(ctx, record.OrderID)
	if err != nil {
		return nil, err
	}
	shipment.Order = order

	items, err := s.loadItems(ctx, shipmentID, orderItems)
	if err != nil {
		return nil, err
	}
	shipment.Items = items
	return shipment, nil
}

func (s *ShipmentStore) loadTracks(ctx context.Context, shipmentID string) ([]core.Track, error) {
	var records []shipmentTrackRecord
	err := s.db.NewSelect().
		Model(&records).
		Where("?TableAlias.parent_id = ?", shipmentID).
		OrderExpr("?TableAlias.created_at ASC").
		OrderExpr("?TableAlias.entity_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	out := make([]core.Track, 0, len(records))
	for i := range records {
		out = append(out, records[i].toDomain())
	}
	return out, nil
}

func (s *ShipmentStore) loadItems(ctx context.Context, shipmentID string, orderItems map[string]*core.OrderItem) ([]core.Item, error) {
	var records []shipmentItemRecord
	err := s.db.NewSelect().
		Model(&records).
		Where("?TableAlias.parent_id = ?", shipmentID).
		OrderExpr("?TableAlias.entity_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	out := make([]core.Item, 0, len(records))
	for i := range records {
		out = append(out, records[i].toDomain(orderItems))
	}
	return out, nil
}

// loadOrder returns a nil order when the shipment references a missing row.
func (s *ShipmentStore) loadOrder(ctx context.Context, orderID string) (*core.Order, map[string]*core.OrderItem, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, nil, nil
	}
	record := &orderRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.entity_id = ?", orderID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, nil, nil
		}
		return nil, nil, err
	}
	order := record.toDomain()

	var itemRecords []orderItemRecord
	if err := s.db.NewSelect().
		Model(&itemRecords).
		Where("?TableAlias.order_id = ?", orderID).
		OrderExpr("?TableAlias.item_id ASC").
		Scan(ctx); err != nil {
		return nil, nil, err
	}
	byID := make(map[string]*core.OrderItem, len(itemRecords))
	if len(itemRecords) > 0 {
		order.Items = make([]core.OrderItem, 0, len(itemRecords))
		for i := range itemRecords {
			order.Items = append(order.Items, itemRecords[i].toDomain())
		}
		for i := range itemRecords {
			byID[itemRecords[i].ItemID] = &order.Items[i]
		}
	}

	var addresses []orderAddressRecord
	if err := s.db.NewSelect().
		Model(&addresses).
		Where("?TableAlias.parent_id = ?", orderID).
		OrderExpr("?TableAlias.entity_id ASC").
		Scan(ctx); err != nil {
		return nil, nil, err
	}
	for i := range addresses {
		switch strings.ToLower(strings.TrimSpace(addresses[i].AddressType)) {
		case addressTypeShipping:
			if order.ShippingAddress == nil {
				order.ShippingAddress = addresses[i].toDomain()
			}
		case addressTypeBilling:
			if order.BillingAddress == nil {
				order.BillingAddress = addresses[i].toDomain()
			}
		}
	}

	payment := &orderPaymentRecord{}
	err = s.db.NewSelect().
		Model(payment).
		Where("?TableAlias.parent_id = ?", orderID).
		OrderExpr("?TableAlias.entity_id ASC").
		Limit(1).
		Scan(ctx)
	switch {
	case err == nil:
		order.Payment = &core.Payment{Method: payment.Method}
	case isNoRows(err):
	default:
		return nil, nil, err
	}
	return order, byID, nil
}
