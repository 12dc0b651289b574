package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"slices"
	"strings"

	shipwebhook "github.com/goliatone/go-shipment-webhook"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"

	SourceLabel = "go-shipment-webhook"

	rootPath = "data/sql/migrations"
)

// DialectForDriver maps a database/sql driver name to its migration dialect.
func DialectForDriver(driver string) (string, error) {
	switch strings.TrimSpace(strings.ToLower(driver)) {
	case "postgres", "postgresql", "pg", "pgx":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("migrations: unsupported driver %q", driver)
	}
}

// Source is the schema for one dialect: the host sales tables plus
// core_config_data.
type Source struct {
	Dialect string
	Path    string
	FS      fs.FS
}

type RegisterFunc func(ctx context.Context, source Source) error

// Sources resolves the postgres and sqlite schemas under data/sql/migrations
// of root, or of the embedded filesystem when root is nil. Every up file
// must have a matching down file.
func Sources(root fs.FS) ([]Source, error) {
	if root == nil {
		root = shipwebhook.GetMigrationsFS()
	}
	base, err := fs.Sub(root, rootPath)
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve %s: %w", rootPath, err)
	}
	sqliteFS, err := fs.Sub(base, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("migrations: resolve sqlite filesystem: %w", err)
	}

	sources := []Source{
		{Dialect: DialectPostgres, Path: rootPath, FS: base},
		{Dialect: DialectSQLite, Path: rootPath + "/sqlite", FS: sqliteFS},
	}
	for _, source := range sources {
		if err := checkPairs(source); err != nil {
			return nil, err
		}
	}
	return sources, nil
}

// Register hands the schema of each requested dialect to registerFn, in
// postgres, sqlite order. No dialects means all of them.
func Register(ctx context.Context, registerFn RegisterFunc, dialects ...string) ([]Source, error) {
	if registerFn == nil {
		return nil, fmt.Errorf("migrations: register function is required")
	}
	targets := make([]string, 0, len(dialects))
	for _, dialect := range dialects {
		if trimmed := strings.TrimSpace(strings.ToLower(dialect)); trimmed != "" {
			targets = append(targets, trimmed)
		}
	}

	sources, err := Sources(nil)
	if err != nil {
		return nil, err
	}
	registered := make([]Source, 0, len(sources))
	for _, source := range sources {
		if len(targets) > 0 && !slices.Contains(targets, source.Dialect) {
			continue
		}
		if err := registerFn(ctx, source); err != nil {
			return registered, fmt.Errorf("migrations: register %s (%s): %w", source.Dialect, source.Path, err)
		}
		registered = append(registered, source)
	}
	if len(registered) == 0 {
		return nil, fmt.Errorf("migrations: no schema for dialects %v", targets)
	}
	return registered, nil
}

func checkPairs(source Source) error {
	ups, err := fs.Glob(source.FS, "*.up.sql")
	if err != nil {
		return fmt.Errorf("migrations: glob %s: %w", source.Path, err)
	}
	if len(ups) == 0 {
		return fmt.Errorf("migrations: %s has no *.up.sql files", source.Path)
	}
	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		if _, err := fs.Stat(source.FS, down); err != nil {
			return fmt.Errorf("migrations: %s/%s has no down migration", source.Path, up)
		}
	}
	return nil
}
