package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// SettingsReader resolves the webhook settings for a scope. Implementations
// are expected to read fresh values (or a request-scoped cache) on each call.
type SettingsReader interface {
	Settings(ctx context.Context, scope ScopeRef) (Settings, error)
}

type SettingsReaderFunc func(ctx context.Context, scope ScopeRef) (Settings, error)

func (f SettingsReaderFunc) Settings(ctx context.Context, scope ScopeRef) (Settings, error) {
	return f(ctx, scope)
}

// ShipmentLoader materializes a shipment aggregate with its order, addresses,
// payment, tracks and items.
type ShipmentLoader interface {
	LoadShipment(ctx context.Context, shipmentID string) (*Shipment, error)
}

// SecretResolver turns a stored secret_key value into the HMAC key. Stored
// values that are not encrypted are returned unchanged.
type SecretResolver interface {
	ResolveSecret(ctx context.Context, stored string) (string, error)
}

type SecretProvider interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
}

type TransportRequest struct {
	Method   string
	URL      string
	Headers  map[string]string
	Body     []byte
	Metadata map[string]any
	Timeout  time.Duration
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Metadata   map[string]any
}

type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

type StoreProvider interface {
	SettingsReader() SettingsReader
	ShipmentLoader() ShipmentLoader
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (StoreProvider, error)
}

type WebhookService interface {
	DispatchShipment(ctx context.Context, shipment *Shipment) (DispatchResult, error)
	DispatchShipmentByID(ctx context.Context, shipmentID string) (DispatchResult, error)
	PreviewShipment(ctx context.Context, shipment *Shipment) (Preview, error)
}
