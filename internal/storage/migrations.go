package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

// DefaultCategories are seeded into a new database so the CLI is usable
// before the user adds their own.
var DefaultCategories = []struct {
	Name  string
	Type  string
	Icon  string
	Color string
}{
	{"Ăn uống", "expense", "🍜", "#F97316"},
	{"Di chuyển", "expense", "🛵", "#0EA5E9"},
	{"Mua sắm", "expense", "🛍", "#EC4899"},
	{"Hóa đơn", "expense", "🧾", "#EAB308"},
	{"Nhà ở", "expense", "🏠", "#8B5CF6"},
	{"Sức khỏe", "expense", "💊", "#10B981"},
	{"Giáo dục", "expense", "📚", "#6366F1"},
	{"Giải trí", "expense", "🎬", "#F43F5E"},
	{"Lương", "income", "💰", "#22C55E"},
	{"Thưởng", "income", "🎁", "#84CC16"},
	{"Thu nhập khác", "income", "💵", "#14B8A6"},
}

func execAll(tx *sql.Tx, queries []string) error {
	for _, query := range queries {
		if _, err := tx.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query '%s': %w", query, err)
		}
	}
	return nil
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					name TEXT UNIQUE NOT NULL,
					type TEXT NOT NULL DEFAULT 'expense' CHECK (type IN ('income', 'expense')),
					icon TEXT NOT NULL DEFAULT '',
					color TEXT NOT NULL DEFAULT '',
					is_active BOOLEAN DEFAULT 1,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_categories_active ON categories(is_active)`,

				`CREATE TABLE IF NOT EXISTS transactions (
					id TEXT PRIMARY KEY,
					hash TEXT UNIQUE NOT NULL,
					date DATETIME NOT NULL,
					note TEXT NOT NULL DEFAULT '',
					amount INTEGER NOT NULL,
					direction TEXT NOT NULL CHECK (direction IN ('IN', 'OUT')),
					category_id INTEGER NOT NULL,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					FOREIGN KEY (category_id) REFERENCES categories(id)
				)`,
				`CREATE INDEX idx_transactions_date ON transactions(date)`,
				`CREATE INDEX idx_transactions_category ON transactions(category_id)`,
			})
		},
	},
	{
		Version:     2,
		Description: "Add training sample log for online learning",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS training_samples (
					id TEXT PRIMARY KEY,
					text TEXT NOT NULL,
					amount INTEGER,
					io TEXT NOT NULL CHECK (io IN ('IN', 'OUT')),
					predicted_category_id INTEGER NOT NULL,
					confidence REAL NOT NULL DEFAULT 0,
					chosen_category_id INTEGER,
					created_at DATETIME NOT NULL,
					corrected_at DATETIME
				)`,
				`CREATE INDEX idx_training_samples_created ON training_samples(created_at)`,
			})
		},
	},
	{
		Version:     3,
		Description: "Add model state store",
		Up: func(tx *sql.Tx) error {
			return execAll(tx, []string{
				`CREATE TABLE IF NOT EXISTS model_states (
					key TEXT PRIMARY KEY,
					value BLOB NOT NULL,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
			})
		},
	},
	{
		Version:     4,
		Description: "Seed default categories",
		Up: func(tx *sql.Tx) error {
			stmt, err := tx.Prepare(`INSERT OR IGNORE INTO categories (name, type, icon, color) VALUES (?, ?, ?, ?)`)
			if err != nil {
				return fmt.Errorf("failed to prepare seed statement: %w", err)
			}
			defer func() { _ = stmt.Close() }()

			for _, c := range DefaultCategories {
				if _, err := stmt.Exec(c.Name, c.Type, c.Icon, c.Color); err != nil {
					return fmt.Errorf("failed to seed category %q: %w", c.Name, err)
				}
			}
			return nil
		},
	},
}

// SchemaVersion reports the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	currentVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if currentVersion > ExpectedSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than this binary supports (%d)", currentVersion, ExpectedSchemaVersion)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	finalVersion, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
