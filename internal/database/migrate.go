package database

import (
	"context"
	"embed"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations применяет встроенные миграции по возрастанию версии.
// Каждая миграция выполняется в своей транзакции и регистрируется в
// таблице migrations; повторный запуск безопасен.
func RunMigrations(ctx context.Context, db *pgxpool.Pool) error {
	log.Printf("[DB] Запуск миграций")

	if err := createMigrationsTable(ctx, db); err != nil {
		return fmt.Errorf("не удалось создать таблицу миграций: %w", err)
	}

	applied, err := getAppliedMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("не удалось получить примененные миграции: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("не удалось прочитать встроенные миграции: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		version := migrationVersion(entry.Name())
		if version == 0 {
			log.Printf("[DB] Пропуск файла с невалидным именем: %s", entry.Name())
			continue
		}
		if applied[version] {
			continue
		}
		if err := applyMigration(ctx, db, entry.Name(), version); err != nil {
			return fmt.Errorf("не удалось применить миграцию %d: %w", version, err)
		}
		log.Printf("[DB] Миграция %d применена", version)
	}

	return nil
}

func createMigrationsTable(ctx context.Context, db *pgxpool.Pool) error {
	sql := `
        CREATE TABLE IF NOT EXISTS migrations (
            version INTEGER PRIMARY KEY,
            applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )
    `
	_, err := db.Exec(ctx, sql)
	return err
}

func getAppliedMigrations(ctx context.Context, db *pgxpool.Pool) (map[int]bool, error) {
	rows, err := db.Query(ctx, `SELECT version FROM migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

func applyMigration(ctx context.Context, db *pgxpool.Pool, name string, version int) error {
	content, err := migrationsFS.ReadFile("migrations/" + name)
	if err != nil {
		return fmt.Errorf("чтение файла миграции: %w", err)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("открытие транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return fmt.Errorf("выполнение SQL: %w", err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO migrations (version) VALUES ($1)`, version); err != nil {
		return fmt.Errorf("регистрация миграции: %w", err)
	}
	return tx.Commit(ctx)
}

// migrationVersion извлекает версию из имени файла вида 001_actors.sql.
func migrationVersion(name string) int {
	idx := strings.Index(name, "_")
	if idx <= 0 {
		return 0
	}
	version, err := strconv.Atoi(name[:idx])
	if err != nil {
		return 0
	}
	return version
}
