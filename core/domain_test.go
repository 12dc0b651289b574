package core

import (
	"errors"
	"testing"
)

func TestScopeRefValidate(t *testing.T) {
	valid := []ScopeRef{DefaultScope(), StoreScope("3"), {Type: "websites", ID: "1"}, {Type: "STORES", ID: "2"}}
	for _, scope := range valid {
		if err := scope.Validate(); err != nil {
			t.Fatalf("expected %s to be valid, got %v", scope.String(), err)
		}
	}
	invalid := []ScopeRef{{Type: "user", ID: "1"}, {Type: "stores", ID: " "}, {}}
	for _, scope := range invalid {
		if err := scope.Validate(); !errors.Is(err, ErrInvalidScopeType) {
			t.Fatalf("expected invalid scope error for %#v, got %v", scope, err)
		}
	}
}

func TestStoreScopeFallsBackToDefault(t *testing.T) {
	if got := StoreScope(""); got != DefaultScope() {
		t.Fatalf("expected default scope, got %#v", got)
	}
	if got := StoreScope("2").String(); got != "stores:2" {
		t.Fatalf("expected stores:2, got %q", got)
	}
}

func TestShipmentHelpers(t *testing.T) {
	var missing *Shipment
	if missing.OrderID() != "" || missing.Scope() != DefaultScope() {
		t.Fatalf("expected zero helpers on nil shipment")
	}
	if _, ok := missing.FirstTrack(); ok {
		t.Fatalf("expected no track on nil shipment")
	}

	shipment := fixtureShipment()
	if shipment.OrderID() != "17" {
		t.Fatalf("expected order id 17, got %q", shipment.OrderID())
	}
	if shipment.Scope() != StoreScope("1") {
		t.Fatalf("expected store scope, got %#v", shipment.Scope())
	}
	track, ok := shipment.FirstTrack()
	if !ok || track.Number != "1Z999" {
		t.Fatalf("expected first track 1Z999, got %#v", track)
	}
}
