package core

import (
	"context"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

type fixedConfigProvider struct {
	cfg Config
}

func (p *fixedConfigProvider) Load(context.Context, Config) (Config, error) {
	return p.cfg, nil
}

type fixedOptionsResolver struct {
	cfg Config
}

func (r *fixedOptionsResolver) Resolve(Config, Config, Config) (Config, error) {
	return r.cfg, nil
}

type stubStoreProvider struct {
	settings SettingsReader
	loader   ShipmentLoader
}

func (s stubStoreProvider) SettingsReader() SettingsReader { return s.settings }
func (s stubStoreProvider) ShipmentLoader() ShipmentLoader { return s.loader }

type stubStoreFactory struct {
	stores StoreProvider
	seen   any
}

func (f *stubStoreFactory) BuildStores(client any) (StoreProvider, error) {
	f.seen = client
	return f.stores, nil
}

func TestNewService_DefaultDependencies(t *testing.T) {
	svc, err := NewService(Config{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	deps := svc.Dependencies()
	if deps.Logger == nil {
		t.Fatalf("expected default logger")
	}
	if deps.LoggerProvider == nil {
		t.Fatalf("expected default logger provider")
	}
	if deps.ErrorFactory == nil || deps.ErrorMapper == nil {
		t.Fatalf("expected default error factory and mapper")
	}
	if deps.ConfigProvider == nil || deps.OptionsResolver == nil {
		t.Fatalf("expected default config provider and options resolver")
	}
	if deps.Signer == nil || deps.PayloadBuilder == nil {
		t.Fatalf("expected default signer and payload builder")
	}
	if _, ok := deps.SettingsReader.(StaticSettingsReader); !ok {
		t.Fatalf("expected static settings reader fallback, got %T", deps.SettingsReader)
	}
	if got := svc.Config().ServiceName; got != "shipment_webhook" {
		t.Fatalf("expected default service_name=shipment_webhook, got %q", got)
	}
}

func TestNewService_WithXOverrides(t *testing.T) {
	customLogger := stubLogger{}
	customProvider := stubLoggerProvider{logger: customLogger}
	customFactory := func(message string, category ...goerrors.Category) *goerrors.Error {
		return goerrors.New("custom:"+message, category...)
	}
	customMapper := func(err error) *goerrors.Error {
		return goerrors.New("mapped", goerrors.CategoryInternal)
	}
	customConfig := &fixedConfigProvider{cfg: Config{ServiceName: "loaded"}}
	customResolver := &fixedOptionsResolver{cfg: Config{ServiceName: "resolved"}}

	svc, err := NewService(Config{},
		WithLogger(customLogger),
		WithLoggerProvider(customProvider),
		WithErrorFactory(customFactory),
		WithErrorMapper(customMapper),
		WithConfigProvider(customConfig),
		WithOptionsResolver(customResolver),
		WithPersistenceClient("db"),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	deps := svc.Dependencies()
	if deps.PersistenceClient != "db" {
		t.Fatalf("expected persistence client override")
	}
	if deps.ConfigProvider != customConfig || deps.OptionsResolver != customResolver {
		t.Fatalf("expected config provider and resolver overrides")
	}
	if got := svc.Config().ServiceName; got != "resolved" {
		t.Fatalf("expected resolver output, got %q", got)
	}
	if got := deps.ErrorFactory("x").Message; got != "custom:x" {
		t.Fatalf("expected custom error factory, got %q", got)
	}
}

func TestNewService_RepositoryFactoryProvidesStores(t *testing.T) {
	settings := staticSettings(Settings{Enabled: true})
	loader := stubShipmentLoader{}
	factory := &stubStoreFactory{stores: stubStoreProvider{settings: settings, loader: loader}}

	svc, err := NewService(DefaultConfig(),
		WithPersistenceClient("client"),
		WithRepositoryFactory(factory),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if factory.seen != "client" {
		t.Fatalf("expected factory to receive persistence client, got %v", factory.seen)
	}
	deps := svc.Dependencies()
	if deps.ShipmentLoader == nil {
		t.Fatalf("expected shipment loader from factory")
	}
	if _, ok := deps.SettingsReader.(StaticSettingsReader); ok {
		t.Fatalf("expected factory settings reader, got static fallback")
	}
}

func TestNewService_ExplicitReaderWinsOverFactory(t *testing.T) {
	explicit := StaticSettingsReader{Config: WebhookConfig{Enabled: true}}
	factory := &stubStoreFactory{stores: stubStoreProvider{
		settings: staticSettings(Settings{}),
		loader:   stubShipmentLoader{},
	}}
	svc, err := NewService(DefaultConfig(),
		WithSettingsReader(explicit),
		WithRepositoryFactory(factory),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if got, ok := svc.Dependencies().SettingsReader.(StaticSettingsReader); !ok || !got.Config.Enabled {
		t.Fatalf("expected explicit settings reader to be kept")
	}
	if svc.Dependencies().ShipmentLoader == nil {
		t.Fatalf("expected shipment loader from factory")
	}
}

func TestCfgxConfigProvider_LoadsRawValues(t *testing.T) {
	provider := NewCfgxConfigProvider(mapRawLoader{values: map[string]any{
		"service_name": "hooks",
		"webhook": map[string]any{
			"enabled":        true,
			"webhook_url":    "https://hooks.example.com/in",
			"secret_key":     "k",
			"require_fields": true,
			"locale":         "de_DE",
		},
	}})

	cfg, err := provider.Load(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServiceName != "hooks" {
		t.Fatalf("expected service name from raw config, got %q", cfg.ServiceName)
	}
	settings := cfg.Webhook.Settings()
	if !settings.Enabled || settings.WebhookURL != "https://hooks.example.com/in" || settings.SecretKey != "k" ||
		!settings.RequireFields || settings.Locale != "de_DE" {
		t.Fatalf("unexpected settings %#v", settings)
	}
}

func TestCfgxConfigProvider_RejectsInvalidURL(t *testing.T) {
	provider := NewCfgxConfigProvider(mapRawLoader{values: map[string]any{
		"webhook": map[string]any{"webhook_url": "ftp://hooks.example.com"},
	}})
	if _, err := provider.Load(context.Background(), DefaultConfig()); err == nil {
		t.Fatalf("expected invalid scheme error")
	}
}

func TestGoOptionsResolver_RuntimeOverridesLoaded(t *testing.T) {
	defaults := DefaultConfig()
	loaded := DefaultConfig()
	loaded.Webhook.URL = "https://loaded.example.com"
	loaded.Webhook.Locale = "fr_FR"
	runtime := Config{Webhook: WebhookConfig{Enabled: true, URL: "https://runtime.example.com"}}

	resolved, err := GoOptionsResolver{}.Resolve(defaults, loaded, runtime)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Webhook.URL != "https://runtime.example.com" {
		t.Fatalf("expected runtime url, got %q", resolved.Webhook.URL)
	}
	if !resolved.Webhook.Enabled {
		t.Fatalf("expected runtime enabled flag")
	}
	if resolved.Webhook.Locale != "fr_FR" {
		t.Fatalf("expected loaded locale to survive, got %q", resolved.Webhook.Locale)
	}
	if resolved.ServiceName != "shipment_webhook" {
		t.Fatalf("expected default service name, got %q", resolved.ServiceName)
	}
}

func TestNewService_RuntimeConfigFeedsStaticReader(t *testing.T) {
	transport := &recordingTransport{response: TransportResponse{StatusCode: 204}}
	cfg := DefaultConfig()
	cfg.Webhook = WebhookConfig{Enabled: true, URL: "https://runtime.example.com/hook", SecretKey: "k"}

	svc, err := NewService(cfg, WithTransport(transport))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := svc.DispatchShipment(context.Background(), fixtureShipment()); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if calls := transport.calls(); len(calls) != 1 || calls[0].URL != "https://runtime.example.com/hook" {
		t.Fatalf("expected dispatch to runtime url, got %#v", calls)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := (Config{}).Validate(); err == nil {
		t.Fatalf("expected error for empty service name")
	}
	cfg := DefaultConfig()
	cfg.Webhook.URL = "https://"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for missing host")
	}
	cfg.Webhook.URL = "http://localhost:8080/hook"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}
