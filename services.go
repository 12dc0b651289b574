package shipwebhook

import (
	"github.com/goliatone/go-shipment-webhook/core"
	"github.com/goliatone/go-shipment-webhook/security"
	"github.com/goliatone/go-shipment-webhook/transport"
)

type Config = core.Config

type WebhookConfig = core.WebhookConfig

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies
type Settings = core.Settings
type SettingsReader = core.SettingsReader
type ShipmentLoader = core.ShipmentLoader
type SecretResolver = core.SecretResolver
type TransportAdapter = core.TransportAdapter
type Signer = core.Signer

type Shipment = core.Shipment
type Order = core.Order
type Track = core.Track
type Item = core.Item
type Payload = core.Payload

type DispatchResult = core.DispatchResult
type Preview = core.Preview

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithMetricsRecorder   = core.WithMetricsRecorder
	WithErrorFactory      = core.WithErrorFactory
	WithErrorMapper       = core.WithErrorMapper
	WithPersistenceClient = core.WithPersistenceClient
	WithRepositoryFactory = core.WithRepositoryFactory
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithSettingsReader    = core.WithSettingsReader
	WithShipmentLoader    = core.WithShipmentLoader
	WithSecretResolver    = core.WithSecretResolver
	WithTransport         = core.WithTransport
	WithSigner            = core.WithSigner
	WithPayloadBuilder    = core.WithPayloadBuilder
	WithClock             = core.WithClock
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

// NewService builds the webhook service with the HTTP transport preinstalled.
// A WithTransport option replaces it.
func NewService(cfg Config, opts ...Option) (*Service, error) {
	withDefaults := make([]Option, 0, len(opts)+1)
	withDefaults = append(withDefaults, core.WithTransport(transport.NewRESTAdapter(nil)))
	withDefaults = append(withDefaults, opts...)
	return core.NewService(cfg, withDefaults...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return NewService(cfg, opts...)
}

// WithAppKeySecrets decrypts enveloped secret_key values with an app key.
// Plain stored secrets keep working.
func WithAppKeySecrets(appKey string, opts ...security.Option) (Option, error) {
	provider, err := security.NewAppKeySecretProviderFromString(appKey, opts...)
	if err != nil {
		return nil, err
	}
	return core.WithSecretResolver(provider), nil
}
