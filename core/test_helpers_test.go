package core

import (
	"context"
	"sync"
	"time"
)

type capturedCounter struct {
	name  string
	value int64
	tags  map[string]string
}

type capturedHistogram struct {
	name  string
	value float64
	tags  map[string]string
}

type captureMetricsRecorder struct {
	mu         sync.Mutex
	counters   []capturedCounter
	histograms []capturedHistogram
}

func (m *captureMetricsRecorder) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = append(m.counters, capturedCounter{name: name, value: value, tags: cloneTags(tags)})
}

func (m *captureMetricsRecorder) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms = append(m.histograms, capturedHistogram{name: name, value: value, tags: cloneTags(tags)})
}

type capturedLog struct {
	level  string
	msg    string
	fields map[string]any
}

type captureLogger struct {
	mu       *sync.Mutex
	records  *[]capturedLog
	defaults map[string]any
}

func newCaptureLogger() *captureLogger {
	records := []capturedLog{}
	return &captureLogger{mu: &sync.Mutex{}, records: &records, defaults: map[string]any{}}
}

func (l *captureLogger) WithFields(fields map[string]any) Logger {
	merged := cloneFields(l.defaults)
	for key, value := range fields {
		merged[key] = value
	}
	return &captureLogger{mu: l.mu, records: l.records, defaults: merged}
}

func (l *captureLogger) Trace(msg string, args ...any) { l.record("trace", msg, args...) }
func (l *captureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args...) }
func (l *captureLogger) Info(msg string, args ...any)  { l.record("info", msg, args...) }
func (l *captureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args...) }
func (l *captureLogger) Error(msg string, args ...any) { l.record("error", msg, args...) }
func (l *captureLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args...) }

func (l *captureLogger) WithContext(context.Context) Logger {
	return &captureLogger{mu: l.mu, records: l.records, defaults: cloneFields(l.defaults)}
}

func (l *captureLogger) record(level string, msg string, args ...any) {
	fields := cloneFields(l.defaults)
	for index := 0; index+1 < len(args); index += 2 {
		key, ok := args[index].(string)
		if !ok {
			continue
		}
		fields[key] = args[index+1]
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.records = append(*l.records, capturedLog{level: level, msg: msg, fields: fields})
}

func (l *captureLogger) snapshot() []capturedLog {
	l.mu.Lock()
	defer l.mu.Unlock()
	items := *l.records
	out := make([]capturedLog, len(items))
	copy(out, items)
	return out
}

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}

type recordingTransport struct {
	mu       sync.Mutex
	requests []TransportRequest
	response TransportResponse
	err      error
}

func (*recordingTransport) Kind() string { return "recording" }

func (t *recordingTransport) Do(_ context.Context, req TransportRequest) (TransportResponse, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests = append(t.requests, req)
	if t.err != nil {
		return TransportResponse{}, t.err
	}
	return t.response, nil
}

func (t *recordingTransport) calls() []TransportRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TransportRequest, len(t.requests))
	copy(out, t.requests)
	return out
}

type stubShipmentLoader struct {
	shipments map[string]*Shipment
	err       error
}

func (l stubShipmentLoader) LoadShipment(_ context.Context, id string) (*Shipment, error) {
	if l.err != nil {
		return nil, l.err
	}
	shipment, ok := l.shipments[id]
	if !ok {
		return nil, ErrShipmentNotFound
	}
	return shipment, nil
}

type stubSecretResolver struct {
	secrets map[string]string
	err     error
}

func (r stubSecretResolver) ResolveSecret(_ context.Context, stored string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if resolved, ok := r.secrets[stored]; ok {
		return resolved, nil
	}
	return stored, nil
}

func staticSettings(settings Settings) SettingsReader {
	return SettingsReaderFunc(func(context.Context, ScopeRef) (Settings, error) {
		return settings, nil
	})
}

func floatPtr(value float64) *float64 {
	return &value
}

func fixtureShipment() *Shipment {
	created := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	eta := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	return &Shipment{
		ID:          "41",
		IncrementID: "000000041",
		Status:      "shipped",
		CreatedAt:   created,
		UpdatedAt:   created.Add(2 * time.Hour),
		Tracks: []Track{
			{Number: "1Z999", Title: "United Parcel Service", CarrierCode: "UPS", EstimatedDelivery: &eta},
			{Number: "LATER", Title: "DHL", CarrierCode: "dhl"},
		},
		Items: []Item{
			{Name: "Mug", Qty: 2, Price: 10, Weight: floatPtr(2.0), OrderItem: &OrderItem{SKU: "MUG-1", RowTotal: 20}},
			{Name: "Poster", Qty: 1, Price: 5, OrderItem: &OrderItem{SKU: "POS-1", RowTotal: 5}},
		},
		Order: &Order{
			ID:            "17",
			IncrementID:   "100000017",
			StoreID:       "1",
			CustomerID:    "8",
			CustomerEmail: "jo@example.com",
			CurrencyCode:  "EUR",
			ShippingAddress: &Address{
				FirstName: "Jo",
				LastName:  "Martin",
				Street:    []string{"12 rue des Lilas", "Bat B"},
				Postcode:  "75011",
				City:      "Paris",
				CountryID: "FR",
				Email:     "jo.ship@example.com",
			},
			BillingAddress: &Address{
				Company:   "Atelier SA",
				FirstName: "Ana",
				LastName:  "Roux",
				Street:    []string{"1 quai Nord"},
				Postcode:  "69001",
				City:      "Lyon",
				CountryID: "FR",
			},
			Payment: &Payment{Method: "checkmo"},
			Items: []OrderItem{
				{SKU: "MUG-1", Name: "Mug", Qty: 2, Price: 10, RowTotal: 20},
				{SKU: "POS-1", Name: "Poster", Qty: 1, Price: 5, RowTotal: 5},
			},
			Subtotal:       25,
			ShippingAmount: 4.9,
			TaxAmount:      5,
			GrandTotal:     34.9,
		},
	}
}

func hasCounter(counters []capturedCounter, name string, status string) bool {
	for _, counter := range counters {
		if counter.name == name && counter.tags["status"] == status {
			return true
		}
	}
	return false
}

func findLog(records []capturedLog, level string, msg string) (capturedLog, bool) {
	for _, record := range records {
		if record.level == level && record.msg == msg {
			return record, true
		}
	}
	return capturedLog{}, false
}
