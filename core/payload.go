package core

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Payload is the flat document posted to the webhook endpoint. It is built
// fresh for every dispatch and never stored.
type Payload map[string]any

const (
	FieldReference              = "reference"
	FieldShipmentID             = "shipment_id"
	FieldOrderID                = "order_id"
	FieldOrderIncrementID       = "order_increment_id"
	FieldStatus                 = "status"
	FieldCreatedAt              = "created_at"
	FieldUpdatedAt              = "updated_at"
	FieldTrackingNumber         = "tracking_number"
	FieldCarrier                = "carrier"
	FieldEstimatedDelivery      = "estimated_delivery"
	FieldTrackingLink           = "tracking_link"
	FieldParcelValue            = "parcel_value"
	FieldParcelWeight           = "parcel_weight"
	FieldCurrency               = "currency"
	FieldCategory               = "category"
	FieldCoveredValue           = "covered_value"
	FieldSenderCompany          = "sender_company"
	FieldSenderName             = "sender_name"
	FieldSenderAddress          = "sender_address"
	FieldSenderZipcode          = "sender_zipcode"
	FieldSenderCity             = "sender_city"
	FieldSenderCountry          = "sender_country"
	FieldRecipientCompany       = "recipient_company"
	FieldRecipientName          = "recipient_name"
	FieldRecipientAddress       = "recipient_address"
	FieldRecipientZipcode       = "recipient_zipcode"
	FieldRecipientCity          = "recipient_city"
	FieldRecipientCountry       = "recipient_country"
	FieldRecipientEmail         = "recipient_email"
	FieldRecipientLanguage      = "recipient_language"
	FieldContentDescription     = "content_description"
	FieldCustomerID             = "customer_id"
	FieldCustomerEmail          = "customer_email"
	FieldClaimNotificationEmail = "claim_notification_email"
	FieldPaymentMethod          = "payment_method"
	FieldCart                   = "cart"
)

const (
	DefaultCategory = "standard"
	DefaultLanguage = "fr"

	timestampLayout = "2006-01-02 15:04:05"
	dateLayout      = "2006-01-02"
)

// RequiredFields are the payload keys that must be non-empty when required
// field validation is enabled, in reporting order.
var RequiredFields = []string{
	FieldReference,
	FieldCreatedAt,
	FieldCustomerID,
	FieldRecipientAddress,
	FieldRecipientZipcode,
	FieldRecipientCity,
	FieldRecipientCountry,
}

type PayloadBuilder struct {
	Category        string
	DefaultLanguage string
}

func NewPayloadBuilder() *PayloadBuilder {
	return &PayloadBuilder{
		Category:        DefaultCategory,
		DefaultLanguage: DefaultLanguage,
	}
}

// Build maps a loaded shipment aggregate to a payload. Absent addresses,
// tracks, payment or order produce null or empty values instead of errors.
func (b *PayloadBuilder) Build(shipment *Shipment, locale string) (Payload, error) {
	if shipment == nil {
		return nil, ErrShipmentRequired
	}
	if b == nil {
		b = NewPayloadBuilder()
	}

	order := shipment.Order
	if order == nil {
		order = &Order{}
	}

	parcelValue := shipmentParcelValue(shipment.Items)
	payload := Payload{
		FieldReference:          shipment.IncrementID,
		FieldShipmentID:         shipment.ID,
		FieldOrderID:            order.ID,
		FieldOrderIncrementID:   order.IncrementID,
		FieldStatus:             shipment.Status,
		FieldCreatedAt:          formatTimestamp(shipment.CreatedAt),
		FieldUpdatedAt:          formatTimestamp(shipment.UpdatedAt),
		FieldParcelValue:        decimalToFloat(parcelValue.Round(2)),
		FieldParcelWeight:       decimalToFloat(shipmentParcelWeight(shipment.Items).Round(4)),
		FieldCurrency:           order.CurrencyCode,
		FieldCategory:           b.category(),
		FieldCoveredValue:       decimalToFloat(parcelValue.Round(2)),
		FieldContentDescription: contentDescription(shipment.Items),
		FieldCustomerID:         order.CustomerID,
		FieldCustomerEmail:      order.CustomerEmail,
		FieldRecipientLanguage:  b.language(locale),
	}
	payload[FieldClaimNotificationEmail] = order.CustomerEmail

	b.applyTracking(payload, shipment)
	applyParty(payload, "sender", order.BillingAddress)
	applyParty(payload, "recipient", order.ShippingAddress)
	payload[FieldRecipientEmail] = recipientEmail(order)

	if order.Payment != nil && strings.TrimSpace(order.Payment.Method) != "" {
		payload[FieldPaymentMethod] = order.Payment.Method
	} else {
		payload[FieldPaymentMethod] = nil
	}

	cart, err := cartSnapshot(order, shipment.Items)
	if err != nil {
		return nil, fmt.Errorf("core: encode cart snapshot: %w", err)
	}
	payload[FieldCart] = cart

	return payload, nil
}

// ValidateRequiredFields reports every required key that is nil or blank.
func ValidateRequiredFields(payload Payload) error {
	missing := make([]string, 0, len(RequiredFields))
	for _, field := range RequiredFields {
		if isEmptyValue(payload[field]) {
			missing = append(missing, field)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return ValidationFailureError(missing)
}

// RecipientLanguage derives the 2-letter language code from a store locale.
func RecipientLanguage(locale string, fallback string) string {
	locale = strings.TrimSpace(locale)
	if len(locale) < 2 {
		if strings.TrimSpace(fallback) == "" {
			return DefaultLanguage
		}
		return fallback
	}
	return strings.ToLower(locale[:2])
}

func (b *PayloadBuilder) category() string {
	if strings.TrimSpace(b.Category) == "" {
		return DefaultCategory
	}
	return b.Category
}

func (b *PayloadBuilder) language(locale string) string {
	return RecipientLanguage(locale, b.DefaultLanguage)
}

func (b *PayloadBuilder) applyTracking(payload Payload, shipment *Shipment) {
	track, ok := shipment.FirstTrack()
	if !ok {
		payload[FieldTrackingNumber] = nil
		payload[FieldCarrier] = nil
		payload[FieldEstimatedDelivery] = nil
		payload[FieldTrackingLink] = nil
		return
	}
	payload[FieldTrackingNumber] = track.Number
	payload[FieldCarrier] = track.CarrierCode
	if track.EstimatedDelivery != nil && !track.EstimatedDelivery.IsZero() {
		payload[FieldEstimatedDelivery] = track.EstimatedDelivery.UTC().Format(dateLayout)
	} else {
		payload[FieldEstimatedDelivery] = nil
	}
	if link := TrackingLink(track.CarrierCode, track.Number); link != nil {
		payload[FieldTrackingLink] = *link
	} else {
		payload[FieldTrackingLink] = nil
	}
}

func applyParty(payload Payload, prefix string, address *Address) {
	keys := []string{"company", "name", "address", "zipcode", "city", "country"}
	if address == nil {
		for _, key := range keys {
			payload[prefix+"_"+key] = nil
		}
		return
	}
	payload[prefix+"_company"] = address.Company
	payload[prefix+"_name"] = strings.TrimSpace(address.FirstName + " " + address.LastName)
	payload[prefix+"_address"] = joinStreet(address.Street)
	payload[prefix+"_zipcode"] = address.Postcode
	payload[prefix+"_city"] = address.City
	payload[prefix+"_country"] = address.CountryID
}

func recipientEmail(order *Order) any {
	if order.ShippingAddress != nil && strings.TrimSpace(order.ShippingAddress.Email) != "" {
		return order.ShippingAddress.Email
	}
	if strings.TrimSpace(order.CustomerEmail) != "" {
		return order.CustomerEmail
	}
	return nil
}

func joinStreet(lines []string) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, ", ")
}

func shipmentParcelValue(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(decimal.NewFromFloat(item.Price).Mul(decimal.NewFromFloat(item.Qty)))
	}
	return total
}

func shipmentParcelWeight(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.Weight == nil {
			continue
		}
		total = total.Add(decimal.NewFromFloat(*item.Weight).Mul(decimal.NewFromFloat(item.Qty)))
	}
	return total
}

func contentDescription(items []Item) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, item.Name+" x"+formatQty(item.Qty))
	}
	return strings.Join(parts, ", ")
}

type cartLine struct {
	SKU      string  `json:"sku"`
	Name     string  `json:"name"`
	Qty      float64 `json:"qty"`
	Price    float64 `json:"price"`
	RowTotal float64 `json:"row_total"`
}

type cartTotals struct {
	Subtotal   float64 `json:"subtotal"`
	Shipping   float64 `json:"shipping"`
	Tax        float64 `json:"tax"`
	GrandTotal float64 `json:"grand_total"`
}

type cartDocument struct {
	Items  []cartLine `json:"items"`
	Totals cartTotals `json:"totals"`
}

// cartSnapshot encodes the order lines and totals as an embedded JSON string.
// Order lines win; shipment lines are used when the order carries none.
func cartSnapshot(order *Order, items []Item) (string, error) {
	doc := cartDocument{
		Items: []cartLine{},
		Totals: cartTotals{
			Subtotal:   order.Subtotal,
			Shipping:   order.ShippingAmount,
			Tax:        order.TaxAmount,
			GrandTotal: order.GrandTotal,
		},
	}
	if len(order.Items) > 0 {
		for _, line := range order.Items {
			doc.Items = append(doc.Items, cartLine{
				SKU:      line.SKU,
				Name:     line.Name,
				Qty:      line.Qty,
				Price:    line.Price,
				RowTotal: line.RowTotal,
			})
		}
	} else {
		for _, item := range items {
			line := cartLine{Name: item.Name, Qty: item.Qty, Price: item.Price}
			if item.OrderItem != nil {
				line.SKU = item.OrderItem.SKU
				line.RowTotal = item.OrderItem.RowTotal
			}
			doc.Items = append(doc.Items, line)
		}
	}
	encoded, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

func formatTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(timestampLayout)
}

func formatQty(qty float64) string {
	return strconv.FormatFloat(qty, 'f', -1, 64)
}

func decimalToFloat(value decimal.Decimal) float64 {
	out, _ := value.Float64()
	return out
}

func isEmptyValue(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case *string:
		return typed == nil || strings.TrimSpace(*typed) == ""
	default:
		return false
	}
}
