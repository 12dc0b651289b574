package core

import (
	"net/url"
	"strings"
)

var trackingLinkTemplates = map[string]string{
	"ups":   "https://www.ups.com/track?tracknum=",
	"fedex": "https://www.fedex.com/fedextrack/?trknbr=",
	"usps":  "https://tools.usps.com/go/TrackConfirmAction?tLabels=",
	"dhl":   "https://www.dhl.com/en/express/tracking.html?AWB=",
}

// TrackingLink returns the public tracking page for a carrier code and
// tracking number. Unknown carriers and empty numbers yield nil.
func TrackingLink(carrierCode string, number string) *string {
	prefix, ok := trackingLinkTemplates[strings.ToLower(strings.TrimSpace(carrierCode))]
	if !ok {
		return nil
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return nil
	}
	link := prefix + url.QueryEscape(number)
	return &link
}

// SupportedCarriers lists the carrier codes with a known tracking page.
func SupportedCarriers() []string {
	return []string{"dhl", "fedex", "ups", "usps"}
}
