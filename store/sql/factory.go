package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-shipment-webhook/core"
	shipmigrations "github.com/goliatone/go-shipment-webhook/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type RepositoryFactory struct {
	db       *bun.DB
	defaults core.WebhookConfig
	cache    repositorycache.CacheService

	shipmentStore *ShipmentStore
	settingsStore SettingsStore
}

type FactoryOption func(*RepositoryFactory)

// WithSettingsDefaults sets the lowest settings layer, below the default scope.
func WithSettingsDefaults(defaults core.WebhookConfig) FactoryOption {
	return func(f *RepositoryFactory) {
		f.defaults = defaults
	}
}

// WithSettingsCache wraps the settings store in a CachedSettingsStore.
func WithSettingsCache(cacheService repositorycache.CacheService) FactoryOption {
	return func(f *RepositoryFactory) {
		f.cache = cacheService
	}
}

func NewRepositoryFactory(opts ...FactoryOption) *RepositoryFactory {
	factory := &RepositoryFactory{}
	for _, opt := range opts {
		if opt != nil {
			opt(factory)
		}
	}
	return factory
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client, opts ...FactoryOption) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(opts...)
	if _, err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB, opts ...FactoryOption) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(opts...)
	if _, err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) (core.StoreProvider, error) {
	if f == nil {
		return nil, fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return nil, err
		}
		f.db = db
	}
	if f.shipmentStore != nil && f.settingsStore != nil {
		return f, nil
	}
	if err := f.initStores(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *RepositoryFactory) SettingsReader() core.SettingsReader {
	if f == nil || f.settingsStore == nil {
		return nil
	}
	return f.settingsStore
}

func (f *RepositoryFactory) ShipmentLoader() core.ShipmentLoader {
	if f == nil || f.shipmentStore == nil {
		return nil
	}
	return f.shipmentStore
}

func (f *RepositoryFactory) SettingsStore() SettingsStore {
	if f == nil {
		return nil
	}
	return f.settingsStore
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) initStores() error {
	shipmentStore, err := NewShipmentStore(f.db)
	if err != nil {
		return err
	}
	scoped, err := NewScopedSettingsStore(f.db, f.defaults)
	if err != nil {
		return err
	}
	var settings SettingsStore = scoped
	if f.cache != nil {
		cached, err := NewCachedSettingsStore(scoped, f.cache)
		if err != nil {
			return err
		}
		settings = cached
	}
	f.shipmentStore = shipmentStore
	f.settingsStore = settings
	return nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}

// PersistenceConfig satisfies the go-persistence-bun client config contract.
type PersistenceConfig struct {
	Driver string
	DSN    string
	Debug  bool
}

func (c PersistenceConfig) GetDebug() bool {
	return c.Debug
}

func (c PersistenceConfig) GetDriver() string {
	return c.Driver
}

func (c PersistenceConfig) GetServer() string {
	return c.DSN
}

func (c PersistenceConfig) GetPingTimeout() time.Duration {
	return 5 * time.Second
}

func (c PersistenceConfig) GetOtelIdentifier() string {
	return ""
}

// Open connects to the host database with the dialect matching driver.
func Open(cfg PersistenceConfig) (*persistence.Client, error) {
	driver := strings.TrimSpace(strings.ToLower(cfg.Driver))
	var dialect schema.Dialect
	switch driver {
	case DriverPostgres, "pg", "postgresql":
		driver = DriverPostgres
		dialect = pgdialect.New()
	case DriverSQLite, "sqlite":
		driver = DriverSQLite
		dialect = sqlitedialect.New()
	default:
		return nil, fmt.Errorf("sqlstore: unsupported driver %q", cfg.Driver)
	}
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlstore: dsn is required")
	}
	cfg.Driver = driver

	sqlDB, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}
	client, err := persistence.New(cfg, sqlDB, dialect)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return client, nil
}

// Migrate registers the embedded schema for driver's dialect and applies it.
func Migrate(ctx context.Context, client *persistence.Client, driver string) error {
	if client == nil {
		return fmt.Errorf("sqlstore: persistence client is required")
	}
	dialect, err := shipmigrations.DialectForDriver(driver)
	if err != nil {
		return err
	}
	_, err = shipmigrations.Register(ctx, func(_ context.Context, source shipmigrations.Source) error {
		client.RegisterSQLMigrations(source.FS)
		return nil
	}, dialect)
	if err != nil {
		return err
	}
	return client.Migrate(ctx)
}
