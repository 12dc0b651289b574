package core

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func newObservedService(t *testing.T, settings Settings, transport *recordingTransport) (*Service, *captureMetricsRecorder, *captureLogger) {
	t.Helper()
	metrics := &captureMetricsRecorder{}
	logger := newCaptureLogger()
	svc, err := NewService(DefaultConfig(),
		WithSettingsReader(staticSettings(settings)),
		WithTransport(transport),
		WithMetricsRecorder(metrics),
		WithLoggerProvider(stubLoggerProvider{logger: logger}),
		WithLogger(logger),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, metrics, logger
}

func TestServiceObservability_DispatchSuccess(t *testing.T) {
	transport := &recordingTransport{response: TransportResponse{StatusCode: http.StatusOK, Body: []byte("accepted")}}
	svc, metrics, logger := newObservedService(t, enabledSettings(), transport)

	if _, err := svc.DispatchShipment(context.Background(), fixtureShipment()); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if !hasCounter(metrics.counters, "shipment_webhook.dispatch.total", "success") {
		t.Fatalf("expected dispatch success counter")
	}
	if len(metrics.histograms) == 0 || metrics.histograms[0].name != "shipment_webhook.dispatch.duration_ms" {
		t.Fatalf("expected dispatch duration histogram")
	}
	if metrics.counters[0].tags["scope"] != "stores:1" {
		t.Fatalf("expected scope tag, got %#v", metrics.counters[0].tags)
	}

	records := logger.snapshot()
	success, ok := findLog(records, "info", "dispatch succeeded")
	if !ok {
		t.Fatalf("expected dispatch succeeded log")
	}
	if success.fields["shipment_id"] != "41" || success.fields["status_code"] != http.StatusOK {
		t.Fatalf("unexpected success fields %#v", success.fields)
	}
	if _, leaked := success.fields["response_body"]; leaked {
		t.Fatalf("expected response body only at debug level")
	}
	response, ok := findLog(records, "debug", "dispatch response")
	if !ok || response.fields["response_body"] != "accepted" {
		t.Fatalf("expected debug response log with body, got %#v", response.fields)
	}
}

func TestServiceObservability_DispatchDeliveryFailure(t *testing.T) {
	transport := &recordingTransport{response: TransportResponse{StatusCode: http.StatusInternalServerError, Body: []byte("boom")}}
	svc, metrics, logger := newObservedService(t, enabledSettings(), transport)

	if _, err := svc.DispatchShipment(context.Background(), fixtureShipment()); err == nil {
		t.Fatalf("expected delivery failure")
	}
	if !hasCounter(metrics.counters, "shipment_webhook.dispatch.total", "failure") {
		t.Fatalf("expected dispatch failure counter")
	}
	if metrics.counters[0].tags["error_text_code"] != WebhookErrorDeliveryFailed {
		t.Fatalf("expected error text code tag, got %#v", metrics.counters[0].tags)
	}
	record, ok := findLog(logger.snapshot(), "error", "dispatch failed")
	if !ok {
		t.Fatalf("expected dispatch failed log")
	}
	if record.fields["error_code"] != http.StatusInternalServerError || record.fields["response_body"] != "boom" {
		t.Fatalf("unexpected failure fields %#v", record.fields)
	}
}

func TestServiceObservability_DispatchSkipped(t *testing.T) {
	settings := enabledSettings()
	settings.Enabled = false
	svc, metrics, logger := newObservedService(t, settings, &recordingTransport{})

	if _, err := svc.DispatchShipment(context.Background(), fixtureShipment()); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !hasCounter(metrics.counters, "shipment_webhook.dispatch.total", "skipped") {
		t.Fatalf("expected dispatch skipped counter")
	}
	if _, ok := findLog(logger.snapshot(), "debug", "dispatch skipped"); !ok {
		t.Fatalf("expected dispatch skipped debug log")
	}
}

func TestServiceObservability_ValidationFailureLogsMissingFields(t *testing.T) {
	settings := enabledSettings()
	settings.RequireFields = true
	svc, _, logger := newObservedService(t, settings, &recordingTransport{})

	shipment := fixtureShipment()
	shipment.Order.ShippingAddress = nil
	if _, err := svc.DispatchShipment(context.Background(), shipment); err == nil {
		t.Fatalf("expected validation failure")
	}
	record, ok := findLog(logger.snapshot(), "error", "dispatch failed")
	if !ok {
		t.Fatalf("expected dispatch failed log")
	}
	missing, ok := record.fields["missing_fields"].([]string)
	if !ok || len(missing) != 4 {
		t.Fatalf("expected missing_fields in log, got %#v", record.fields["missing_fields"])
	}
}

func TestServiceObservability_PreviewSuccess(t *testing.T) {
	svc, metrics, logger := newObservedService(t, enabledSettings(), &recordingTransport{})

	if _, err := svc.PreviewShipment(context.Background(), fixtureShipment()); err != nil {
		t.Fatalf("preview: %v", err)
	}
	if !hasCounter(metrics.counters, "shipment_webhook.preview.total", "success") {
		t.Fatalf("expected preview success counter")
	}
	if _, ok := findLog(logger.snapshot(), "info", "preview succeeded"); !ok {
		t.Fatalf("expected preview succeeded log")
	}
}

func TestEnrichErrorFields_IgnoresPlainErrors(t *testing.T) {
	fields := map[string]any{}
	enrichErrorFields(fields, errors.New("plain"))
	if len(fields) != 0 {
		t.Fatalf("expected no enrichment for plain error, got %#v", fields)
	}
}

func TestFlattenFieldsSortsKeys(t *testing.T) {
	args := flattenFields(map[string]any{"b": 2, "a": 1})
	if len(args) != 4 || args[0] != "a" || args[2] != "b" {
		t.Fatalf("expected sorted key/value pairs, got %#v", args)
	}
}

func TestServiceObservability_DispatchLogsRedactWebhookURL(t *testing.T) {
	transport := &recordingTransport{response: TransportResponse{StatusCode: http.StatusOK}}
	settings := enabledSettings()
	settings.WebhookURL = "https://hooks.example.com/t/abc123/shipments?token=secret-token"
	svc, _, logger := newObservedService(t, settings, transport)

	if _, err := svc.DispatchShipment(context.Background(), fixtureShipment()); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if calls := transport.calls(); len(calls) != 1 || calls[0].URL != settings.WebhookURL {
		t.Fatalf("expected full URL on the request, got %#v", calls)
	}

	record, ok := findLog(logger.snapshot(), "info", "dispatch succeeded")
	if !ok {
		t.Fatalf("expected dispatch succeeded log")
	}
	if record.fields["webhook_host"] != "https://hooks.example.com" {
		t.Fatalf("expected scheme and host only, got %#v", record.fields["webhook_host"])
	}
	for key, value := range record.fields {
		if text, isString := value.(string); isString && (strings.Contains(text, "secret-token") || strings.Contains(text, "abc123")) {
			t.Fatalf("expected URL path and query out of logs, found in %q=%q", key, text)
		}
	}
}
