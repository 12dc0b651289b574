package sqlstore

import (
	"strings"
	"time"

	"github.com/goliatone/go-shipment-webhook/core"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

const (
	addressTypeShipping = "shipping"
	addressTypeBilling  = "billing"
)

type shipmentRecord struct {
	bun.BaseModel `bun:"table:sales_shipment,alias:ss"`

	EntityID    string    `bun:"entity_id,pk"`
	IncrementID string    `bun:"increment_id,notnull"`
	OrderID     string    `bun:"order_id,notnull"`
	Status      string    `bun:"status,notnull"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type shipmentTrackRecord struct {
	bun.BaseModel `bun:"table:sales_shipment_track,alias:sst"`

	EntityID          string     `bun:"entity_id,pk"`
	ParentID          string     `bun:"parent_id,notnull"`
	TrackNumber       string     `bun:"track_number,notnull"`
	Title             string     `bun:"title"`
	CarrierCode       string     `bun:"carrier_code"`
	EstimatedDelivery *time.Time `bun:"estimated_delivery,nullzero"`
	CreatedAt         time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type shipmentItemRecord struct {
	bun.BaseModel `bun:"table:sales_shipment_item,alias:ssi"`

	EntityID    string              `bun:"entity_id,pk"`
	ParentID    string              `bun:"parent_id,notnull"`
	OrderItemID *string             `bun:"order_item_id"`
	Name        string              `bun:"name"`
	Qty         decimal.Decimal     `bun:"qty,notnull"`
	Price       decimal.Decimal     `bun:"price,notnull"`
	Weight      decimal.NullDecimal `bun:"weight"`
}

type orderRecord struct {
	bun.BaseModel `bun:"table:sales_order,alias:so"`

	EntityID       string          `bun:"entity_id,pk"`
	IncrementID    string          `bun:"increment_id,notnull"`
	StoreID        string          `bun:"store_id,notnull"`
	CustomerID     string          `bun:"customer_id"`
	CustomerEmail  string          `bun:"customer_email"`
	CurrencyCode   string          `bun:"order_currency_code"`
	Subtotal       decimal.Decimal `bun:"subtotal,notnull"`
	ShippingAmount decimal.Decimal `bun:"shipping_amount,notnull"`
	TaxAmount      decimal.Decimal `bun:"tax_amount,notnull"`
	GrandTotal     decimal.Decimal `bun:"grand_total,notnull"`
}

type orderItemRecord struct {
	bun.BaseModel `bun:"table:sales_order_item,alias:soi"`

	ItemID     string          `bun:"item_id,pk"`
	OrderID    string          `bun:"order_id,notnull"`
	SKU        string          `bun:"sku"`
	Name       string          `bun:"name"`
	QtyOrdered decimal.Decimal `bun:"qty_ordered,notnull"`
	Price      decimal.Decimal `bun:"price,notnull"`
	RowTotal   decimal.Decimal `bun:"row_total,notnull"`
}

type orderAddressRecord struct {
	bun.BaseModel `bun:"table:sales_order_address,alias:soa"`

	EntityID    string `bun:"entity_id,pk"`
	ParentID    string `bun:"parent_id,notnull"`
	AddressType string `bun:"address_type,notnull"`
	Company     string `bun:"company"`
	FirstName   string `bun:"firstname"`
	LastName    string `bun:"lastname"`
	Street      string `bun:"street"`
	Postcode    string `bun:"postcode"`
	City        string `bun:"city"`
	CountryID   string `bun:"country_id"`
	Email       string `bun:"email"`
}

type orderPaymentRecord struct {
	bun.BaseModel `bun:"table:sales_order_payment,alias:sop"`

	EntityID string `bun:"entity_id,pk"`
	ParentID string `bun:"parent_id,notnull"`
	Method   string `bun:"method,notnull"`
}

type storeRecord struct {
	bun.BaseModel `bun:"table:store,alias:st"`

	StoreID   string `bun:"store_id,pk"`
	WebsiteID string `bun:"website_id,notnull"`
	Code      string `bun:"code,notnull"`
}

type configDataRecord struct {
	bun.BaseModel `bun:"table:core_config_data,alias:ccd"`

	ID        string    `bun:"id,pk"`
	Scope     string    `bun:"scope,notnull"`
	ScopeID   string    `bun:"scope_id,notnull"`
	Path      string    `bun:"path,notnull"`
	Value     *string   `bun:"value"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

func (r *shipmentRecord) toDomain() *core.Shipment {
	if r == nil {
		return nil
	}
	return &core.Shipment{
		ID:          r.EntityID,
		IncrementID: r.IncrementID,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

func (r *shipmentTrackRecord) toDomain() core.Track {
	track := core.Track{
		Number:      r.TrackNumber,
		Title:       r.Title,
		CarrierCode: r.CarrierCode,
	}
	if r.EstimatedDelivery != nil {
		value := r.EstimatedDelivery.UTC()
		track.EstimatedDelivery = &value
	}
	return track
}

func (r *shipmentItemRecord) toDomain(orderItems map[string]*core.OrderItem) core.Item {
	item := core.Item{
		Name:  r.Name,
		Qty:   r.Qty.InexactFloat64(),
		Price: r.Price.InexactFloat64(),
	}
	if r.Weight.Valid {
		weight := r.Weight.Decimal.InexactFloat64()
		item.Weight = &weight
	}
	if r.OrderItemID != nil {
		item.OrderItem = orderItems[strings.TrimSpace(*r.OrderItemID)]
	}
	return item
}

func (r *orderRecord) toDomain() *core.Order {
	if r == nil {
		return nil
	}
	return &core.Order{
		ID:             r.EntityID,
		IncrementID:    r.IncrementID,
		StoreID:        r.StoreID,
		CustomerID:     r.CustomerID,
		CustomerEmail:  r.CustomerEmail,
		CurrencyCode:   r.CurrencyCode,
		Subtotal:       r.Subtotal.InexactFloat64(),
		ShippingAmount: r.ShippingAmount.InexactFloat64(),
		TaxAmount:      r.TaxAmount.InexactFloat64(),
		GrandTotal:     r.GrandTotal.InexactFloat64(),
	}
}

func (r *orderItemRecord) toDomain() core.OrderItem {
	return core.OrderItem{
		SKU:      r.SKU,
		Name:     r.Name,
		Qty:      r.QtyOrdered.InexactFloat64(),
		Price:    r.Price.InexactFloat64(),
		RowTotal: r.RowTotal.InexactFloat64(),
	}
}

// Street lines are stored newline separated.
func (r *orderAddressRecord) toDomain() *core.Address {
	if r == nil {
		return nil
	}
	var street []string
	for _, line := range strings.Split(r.Street, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			street = append(street, trimmed)
		}
	}
	return &core.Address{
		Company:   r.Company,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Street:    street,
		Postcode:  r.Postcode,
		City:      r.City,
		CountryID: r.CountryID,
		Email:     r.Email,
	}
}

func newConfigDataRecord(scope core.ScopeRef, path string, value *string, now time.Time) *configDataRecord {
	return &configDataRecord{
		Scope:     normalizeScopeType(scope.Type),
		ScopeID:   strings.TrimSpace(scope.ID),
		Path:      strings.TrimSpace(path),
		Value:     value,
		UpdatedAt: now,
	}
}

func normalizeScopeType(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}
