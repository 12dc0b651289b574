package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-shipment-webhook/core"
)

const settingsCacheKeyPrefix = "go-shipment-webhook::settings::v1"

// CachedSettingsStore memoizes resolved settings per scope. Writes evict every
// key served so far, since a default or website change reaches all stores.
type CachedSettingsStore struct {
	base  SettingsStore
	cache repositorycache.CacheService

	mu   sync.Mutex
	keys map[string]struct{}
}

func NewCachedSettingsStore(base SettingsStore, cacheService repositorycache.CacheService) (*CachedSettingsStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base settings store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: settings cache service is required")
	}
	return &CachedSettingsStore{base: base, cache: cacheService, keys: map[string]struct{}{}}, nil
}

// SettingsCacheKey returns go-shipment-webhook::settings::v1::<scope_type>::<scope_id>
// with each segment URL-path escaped.
func SettingsCacheKey(scope core.ScopeRef) (string, error) {
	if err := scope.Validate(); err != nil {
		return "", err
	}
	ref := normalizeScope(scope)
	return strings.Join([]string{
		settingsCacheKeyPrefix,
		url.PathEscape(ref.Type),
		url.PathEscape(ref.ID),
	}, "::"), nil
}

func (s *CachedSettingsStore) Settings(ctx context.Context, scope core.ScopeRef) (core.Settings, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.Settings{}, fmt.Errorf("sqlstore: cached settings store is not configured")
	}
	cacheKey, err := SettingsCacheKey(scope)
	if err != nil {
		return core.Settings{}, err
	}
	s.track(cacheKey)

	return repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.Settings, error) {
		return s.base.Settings(ctx, normalizeScope(scope))
	})
}

func (s *CachedSettingsStore) SaveSetting(ctx context.Context, scope core.ScopeRef, path string, value string) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached settings store is not configured")
	}
	if err := s.base.SaveSetting(ctx, scope, path, value); err != nil {
		return err
	}
	return s.Invalidate(ctx)
}

// Invalidate drops every cached scope.
func (s *CachedSettingsStore) Invalidate(ctx context.Context) error {
	if s == nil || s.cache == nil {
		return nil
	}
	s.mu.Lock()
	keys := make([]string, 0, len(s.keys))
	for key := range s.keys {
		keys = append(keys, key)
	}
	s.keys = map[string]struct{}{}
	s.mu.Unlock()

	for _, key := range keys {
		if err := s.cache.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (s *CachedSettingsStore) track(key string) {
	s.mu.Lock()
	s.keys[key] = struct{}{}
	s.mu.Unlock()
}
