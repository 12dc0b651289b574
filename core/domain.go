package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidScopeType  = errors.New("core: invalid scope type")
	ErrShipmentNotFound  = errors.New("core: shipment not found")
	ErrShipmentRequired  = errors.New("core: shipment is required")
	ErrSettingsNotLoaded = errors.New("core: settings reader is not configured")
)

type ScopeType string

const (
	ScopeTypeDefault  ScopeType = "default"
	ScopeTypeWebsites ScopeType = "websites"
	ScopeTypeStores   ScopeType = "stores"
)

// ScopeRef addresses one configuration scope. The default scope uses ID "0".
type ScopeRef struct {
	Type string
	ID   string
}

func DefaultScope() ScopeRef {
	return ScopeRef{Type: string(ScopeTypeDefault), ID: "0"}
}

func StoreScope(storeID string) ScopeRef {
	storeID = strings.TrimSpace(storeID)
	if storeID == "" {
		return DefaultScope()
	}
	return ScopeRef{Type: string(ScopeTypeStores), ID: storeID}
}

func (s ScopeRef) Validate() error {
	t := strings.TrimSpace(strings.ToLower(s.Type))
	switch ScopeType(t) {
	case ScopeTypeDefault, ScopeTypeWebsites, ScopeTypeStores:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidScopeType, s.Type)
	}
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidScopeType)
	}
	return nil
}

func (s ScopeRef) String() string {
	return strings.TrimSpace(strings.ToLower(s.Type)) + ":" + strings.TrimSpace(s.ID)
}

// Shipment is the read-only aggregate handed over by the host platform.
// Order, Tracks and Items are expected to be materialized already.
type Shipment struct {
	ID          string
	IncrementID string
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Tracks      []Track
	Items       []Item
	Order       *Order
}

type Track struct {
	Number            string
	Title             string
	CarrierCode       string
	EstimatedDelivery *time.Time
}

type Item struct {
	Name      string
	Qty       float64
	Price     float64
	Weight    *float64
	OrderItem *OrderItem
}

type OrderItem struct {
	SKU      string
	Name     string
	Qty      float64
	Price    float64
	RowTotal float64
}

type Order struct {
	ID              string
	IncrementID     string
	StoreID         string
	CustomerID      string
	CustomerEmail   string
	CurrencyCode    string
	ShippingAddress *Address
	BillingAddress  *Address
	Payment         *Payment
	Items           []OrderItem
	Subtotal        float64
	ShippingAmount  float64
	TaxAmount       float64
	GrandTotal      float64
}

type Address struct {
	Company   string
	FirstName string
	LastName  string
	Street    []string
	Postcode  string
	City      string
	CountryID string
	Email     string
}

type Payment struct {
	Method string
}

func (s *Shipment) OrderID() string {
	if s == nil || s.Order == nil {
		return ""
	}
	return s.Order.ID
}

func (s *Shipment) Scope() ScopeRef {
	if s == nil || s.Order == nil {
		return DefaultScope()
	}
	return StoreScope(s.Order.StoreID)
}

// FirstTrack returns the earliest attached track, if any.
func (s *Shipment) FirstTrack() (Track, bool) {
	if s == nil || len(s.Tracks) == 0 {
		return Track{}, false
	}
	return s.Tracks[0], true
}

// Settings are the scope-resolved values read on every dispatch.
type Settings struct {
	Enabled       bool
	WebhookURL    string
	SecretKey     string
	RequireFields bool
	Locale        string
}
