package db

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Open создаёт подключение к базе выбранного драйвера.
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	conn, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db: не удалось подключиться к %s: %w", driver, err)
	}

	switch driver {
	case DriverSQLite:
		// SQLite допускает одного писателя; одно соединение заодно сохраняет
		// in-memory базу между запросами.
		conn.SetMaxOpenConns(1)
	default:
		conn.SetMaxOpenConns(100)
		conn.SetMaxIdleConns(25)
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	return conn, nil
}

// RunMigrations применяет *.sql из migrations в лексикографическом порядке.
// Уже применённые файлы пропускаются по таблице schema_migrations.
func RunMigrations(ctx context.Context, conn *sqlx.DB, migrations fs.FS) error {
	if err := initMigrationsTable(ctx, conn); err != nil {
		return fmt.Errorf("db: не удалось инициализировать таблицу миграций: %w", err)
	}

	entries, err := fs.ReadDir(migrations, ".")
	if err != nil {
		return fmt.Errorf("db: не удалось прочитать каталог миграций: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		name := entry.Name()
		applied, err := isMigrationApplied(ctx, conn, name)
		if err != nil {
			return fmt.Errorf("db: не удалось проверить статус миграции %s: %w", name, err)
		}
		if applied {
			continue
		}

		if err := applyMigration(ctx, conn, migrations, name); err != nil {
			return err
		}
	}

	return nil
}

func initMigrationsTable(ctx context.Context, conn *sqlx.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := conn.ExecContext(ctx, query)
	return err
}

func isMigrationApplied(ctx context.Context, conn *sqlx.DB, name string) (bool, error) {
	var count int
	query := conn.Rebind(`SELECT COUNT(*) FROM schema_migrations WHERE name = ?`)
	if err := conn.GetContext(ctx, &count, query, name); err != nil {
		return false, err
	}
	return count > 0, nil
}

func applyMigration(ctx context.Context, conn *sqlx.DB, migrations fs.FS, name string) error {
	sqlBytes, err := fs.ReadFile(migrations, name)
	if err != nil {
		return fmt.Errorf("db: не удалось прочитать миграцию %s: %w", name, err)
	}

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db: не удалось начать транзакцию для миграции %s: %w", name, err)
	}
	defer tx.Rollback()

	// lib/pq и go-sqlite3 выполняют несколько выражений за один Exec,
	// но делим по ';' явно, чтобы ошибка указывала на конкретное выражение.
	for _, stmt := range splitStatements(string(sqlBytes)) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("db: не удалось выполнить миграцию %s: %w", name, err)
		}
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO schema_migrations (name) VALUES (?)`), name); err != nil {
		return fmt.Errorf("db: не удалось отметить миграцию %s как выполненную: %w", name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("db: не удалось зафиксировать миграцию %s: %w", name, err)
	}

	return nil
}

// splitStatements делит файл миграции на выражения. Строки-комментарии
// отбрасываются; ';' внутри строковых литералов в миграциях не используется.
func splitStatements(script string) []string {
	var b strings.Builder
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	var stmts []string
	for _, part := range strings.Split(b.String(), ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
