package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// ErrMigrationFailed wraps every failure to apply a schema version.
var ErrMigrationFailed = errors.New("database: migration failed")

const migrationTable = "schema_migrations"

// Migration is one versioned schema change.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// Migrations returns the embedded schema changes ordered by version.
func Migrations() ([]Migration, error) {
	return loadMigrations(migrationFiles, "migrations")
}

func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	byVersion := map[int]*Migration{}
	for _, entry := range entries {
		name := entry.Name()
		var direction string
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			direction = "up"
		case strings.HasSuffix(name, ".down.sql"):
			direction = "down"
		default:
			continue
		}
		stem := strings.TrimSuffix(name, "."+direction+".sql")
		rawVersion, label, ok := strings.Cut(stem, "_")
		if !ok {
			return nil, fmt.Errorf("migration %q: expected <version>_<name>", name)
		}
		version, err := strconv.Atoi(rawVersion)
		if err != nil {
			return nil, fmt.Errorf("migration %q: %w", name, err)
		}
		body, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, err
		}
		m, exists := byVersion[version]
		if !exists {
			m = &Migration{Version: version, Name: label}
			byVersion[version] = m
		}
		if direction == "up" {
			m.UpSQL = string(body)
		} else {
			m.DownSQL = string(body)
		}
	}

	out := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Migrator applies schema versions that are not yet recorded in schema_migrations.
type Migrator struct {
	db         sqlx.ExtContext
	tx         *Transactor
	migrations []Migration
	logger     *zap.Logger
}

// NewMigrator builds a migrator over db for the given versions.
func NewMigrator(db *sqlx.DB, migrations []Migration, logger *zap.Logger) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{db: db, tx: NewTransactor(db, 0), migrations: migrations, logger: logger}
}

// Migrate applies every pending version in order, each in its own transaction.
func (m *Migrator) Migrate(ctx context.Context) (int, error) {
	if _, err := m.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+migrationTable+` (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
)`); err != nil {
		return 0, fmt.Errorf("%w: create %s: %v", ErrMigrationFailed, migrationTable, err)
	}

	var versions []int
	if err := sqlx.SelectContext(ctx, m.db, &versions, `SELECT version FROM `+migrationTable+` ORDER BY version`); err != nil {
		return 0, fmt.Errorf("%w: list applied versions: %v", ErrMigrationFailed, err)
	}
	applied := make(map[int]struct{}, len(versions))
	for _, v := range versions {
		applied[v] = struct{}{}
	}

	count := 0
	for _, mig := range m.migrations {
		if _, done := applied[mig.Version]; done {
			continue
		}
		if strings.TrimSpace(mig.UpSQL) == "" {
			return count, fmt.Errorf("%w: version %d has no up script", ErrMigrationFailed, mig.Version)
		}
		err := m.tx.WithinTx(ctx, func(ctx context.Context, exec sqlx.ExtContext) error {
			if _, err := exec.ExecContext(ctx, mig.UpSQL); err != nil {
				return err
			}
			_, err := exec.ExecContext(ctx, `INSERT INTO `+migrationTable+` (version, name) VALUES ($1, $2)`, mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return count, fmt.Errorf("%w: version %d: %v", ErrMigrationFailed, mig.Version, err)
		}
		m.logger.Info("schema migration applied", zap.Int("version", mig.Version), zap.String("name", mig.Name))
		count++
	}
	return count, nil
}
