package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
	opts "github.com/goliatone/go-options"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-shipment-webhook/core"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	PathEnabled       = "shipment_webhook/general/enabled"
	PathWebhookURL    = "shipment_webhook/general/webhook_url"
	PathSecretKey     = "shipment_webhook/general/secret_key"
	PathRequireFields = "shipment_webhook/general/require_fields"
	PathLocale        = "general/locale/code"
)

// settingsPaths maps stored config paths to WebhookConfig keys.
var settingsPaths = map[string]string{
	PathEnabled:       "enabled",
	PathWebhookURL:    "webhook_url",
	PathSecretKey:     "secret_key",
	PathRequireFields: "require_fields",
	PathLocale:        "locale",
}

var scopePriority = map[string]int{
	string(core.ScopeTypeDefault):  10,
	string(core.ScopeTypeWebsites): 20,
	string(core.ScopeTypeStores):   30,
}

// SettingsStore is the read/write contract shared by the SQL store and its
// cached decorator.
type SettingsStore interface {
	core.SettingsReader
	SaveSetting(ctx context.Context, scope core.ScopeRef, path string, value string) error
}

// ScopedSettingsStore reads webhook settings from core_config_data, layering
// default < websites < stores on top of the service config.
type ScopedSettingsStore struct {
	db       *bun.DB
	repo     repository.Repository[*configDataRecord]
	defaults core.WebhookConfig
}

func NewScopedSettingsStore(db *bun.DB, defaults core.WebhookConfig) (*ScopedSettingsStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*configDataRecord](db, configDataHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid config data repository wiring: %w", err)
		}
	}
	return &ScopedSettingsStore{db: db, repo: repo, defaults: defaults}, nil
}

func (s *ScopedSettingsStore) Settings(ctx context.Context, scope core.ScopeRef) (core.Settings, error) {
	if s == nil || s.db == nil {
		return core.Settings{}, fmt.Errorf("sqlstore: settings store is not configured")
	}
	if err := scope.Validate(); err != nil {
		return core.Settings{}, err
	}

	chain, err := s.scopeChain(ctx, scope)
	if err != nil {
		return core.Settings{}, err
	}

	scopeTypes := make([]string, 0, len(chain))
	for _, ref := range chain {
		scopeTypes = append(scopeTypes, ref.Type)
	}
	var records []configDataRecord
	err = s.db.NewSelect().
		Model(&records).
		Where("?TableAlias.path IN (?)", bun.In(settingsPathList())).
		Where("?TableAlias.scope IN (?)", bun.In(scopeTypes)).
		Scan(ctx)
	if err != nil {
		return core.Settings{}, err
	}

	cfg, err := s.resolve(records, chain)
	if err != nil {
		return core.Settings{}, err
	}
	return cfg.Settings(), nil
}

func (s *ScopedSettingsStore) SaveSetting(ctx context.Context, scope core.ScopeRef, path string, value string) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: settings store is not configured")
	}
	if err := scope.Validate(); err != nil {
		return err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("sqlstore: config path is required")
	}
	ref := normalizeScope(scope)
	now := time.Now().UTC()

	existing, _, err := s.repo.List(ctx,
		repository.SelectBy("scope", "=", ref.Type),
		repository.SelectBy("scope_id", "=", ref.ID),
		repository.SelectBy("path", "=", path),
		repository.OrderBy("updated_at DESC"),
	)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		current := existing[0]
		current.Value = &value
		current.UpdatedAt = now
		_, err = s.repo.Update(ctx, current, repository.UpdateByID(current.ID))
		return err
	}

	record := newConfigDataRecord(ref, path, &value, now)
	record.ID = uuid.NewString()
	_, err = s.repo.Create(ctx, record)
	return err
}

// scopeChain lists the scopes consulted for ref, lowest priority first.
func (s *ScopedSettingsStore) scopeChain(ctx context.Context, ref core.ScopeRef) ([]core.ScopeRef, error) {
	ref = normalizeScope(ref)
	chain := []core.ScopeRef{core.DefaultScope()}
	switch core.ScopeType(ref.Type) {
	case core.ScopeTypeWebsites:
		chain = append(chain, ref)
	case core.ScopeTypeStores:
		store := &storeRecord{}
		err := s.db.NewSelect().
			Model(store).
			Where("?TableAlias.store_id = ?", ref.ID).
			Limit(1).
			Scan(ctx)
		switch {
		case err == nil:
			if websiteID := strings.TrimSpace(store.WebsiteID); websiteID != "" {
				chain = append(chain, core.ScopeRef{Type: string(core.ScopeTypeWebsites), ID: websiteID})
			}
		case isNoRows(err):
		default:
			return nil, err
		}
		chain = append(chain, ref)
	}
	return chain, nil
}

func (s *ScopedSettingsStore) resolve(records []configDataRecord, chain []core.ScopeRef) (core.WebhookConfig, error) {
	layers := map[string]map[string]any{
		string(core.ScopeTypeDefault):  {},
		string(core.ScopeTypeWebsites): {},
		string(core.ScopeTypeStores):   {},
	}
	wanted := make(map[string]string, len(chain))
	for _, ref := range chain {
		wanted[ref.Type] = ref.ID
	}
	for _, record := range records {
		if record.Value == nil {
			continue
		}
		key, ok := settingsPaths[record.Path]
		if !ok {
			continue
		}
		scopeType := normalizeScopeType(record.Scope)
		if id, ok := wanted[scopeType]; !ok || id != strings.TrimSpace(record.ScopeID) {
			continue
		}
		layers[scopeType][key] = settingValue(key, *record.Value)
	}

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("config", 0),
			webhookConfigLayer(s.defaults),
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope(string(core.ScopeTypeDefault), scopePriority[string(core.ScopeTypeDefault)]),
			layers[string(core.ScopeTypeDefault)],
			opts.WithSnapshotID[map[string]any](string(core.ScopeTypeDefault)),
		),
		opts.NewLayer(
			opts.NewScope(string(core.ScopeTypeWebsites), scopePriority[string(core.ScopeTypeWebsites)]),
			layers[string(core.ScopeTypeWebsites)],
			opts.WithSnapshotID[map[string]any](string(core.ScopeTypeWebsites)),
		),
		opts.NewLayer(
			opts.NewScope(string(core.ScopeTypeStores), scopePriority[string(core.ScopeTypeStores)]),
			layers[string(core.ScopeTypeStores)],
			opts.WithSnapshotID[map[string]any](string(core.ScopeTypeStores)),
		),
	)
	if err != nil {
		return core.WebhookConfig{}, fmt.Errorf("sqlstore: settings stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return core.WebhookConfig{}, fmt.Errorf("sqlstore: settings merge failed: %w", err)
	}
	return cfgx.Build[core.WebhookConfig](merged.Value, cfgx.WithDefaults(s.defaults))
}

func webhookConfigLayer(cfg core.WebhookConfig) map[string]any {
	return map[string]any{
		"enabled":        cfg.Enabled,
		"webhook_url":    cfg.URL,
		"secret_key":     cfg.SecretKey,
		"require_fields": cfg.RequireFields,
		"locale":         cfg.Locale,
	}
}

func settingValue(key string, raw string) any {
	switch key {
	case "enabled", "require_fields":
		return parseFlag(raw)
	case "secret_key":
		return raw
	default:
		return strings.TrimSpace(raw)
	}
}

func parseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func settingsPathList() []string {
	return []string{PathEnabled, PathWebhookURL, PathSecretKey, PathRequireFields, PathLocale}
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func normalizeScope(ref core.ScopeRef) core.ScopeRef {
	return core.ScopeRef{Type: normalizeScopeType(ref.Type), ID: strings.TrimSpace(ref.ID)}
}
