package sqlstore

import "github.com/goliatone/go-shipment-webhook/core"

var (
	_ core.ShipmentLoader         = (*ShipmentStore)(nil)
	_ SettingsStore               = (*ScopedSettingsStore)(nil)
	_ SettingsStore               = (*CachedSettingsStore)(nil)
	_ core.StoreProvider          = (*RepositoryFactory)(nil)
	_ core.RepositoryStoreFactory = (*RepositoryFactory)(nil)
)
