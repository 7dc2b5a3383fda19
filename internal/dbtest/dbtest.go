// Package dbtest connects repository tests to a scratch PostgreSQL database
// named by DATABASE_TEST_URL. Tests skip when it is unset.
package dbtest

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const migrateLockID = 7261450

var (
	migrateOnce sync.Once
	migrateErr  error
)

// URL returns DATABASE_TEST_URL after applying the schema once per test
// binary.
func URL(t testing.TB) string {
	t.Helper()
	url := os.Getenv("DATABASE_TEST_URL")
	if url == "" {
		t.Skip("DATABASE_TEST_URL not set")
	}
	migrateOnce.Do(func() { migrateErr = migrate(url) })
	if migrateErr != nil {
		t.Fatalf("apply migrations: %v", migrateErr)
	}
	return url
}

func Pool(t testing.TB) *pgxpool.Pool {
	t.Helper()
	pool, err := pgxpool.New(context.Background(), URL(t))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func DB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sql.Open("pgx", URL(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Context(t testing.TB) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// migrate applies migrations/migrations.sql under an advisory lock, since
// several package test binaries may start at once.
func migrate(url string) error {
	_, file, _, _ := runtime.Caller(0)
	schema, err := os.ReadFile(filepath.Join(filepath.Dir(file), "..", "..", "migrations", "migrations.sql"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock($1)`, migrateLockID); err != nil {
		return err
	}
	defer conn.Exec(ctx, `SELECT pg_advisory_unlock($1)`, migrateLockID) //nolint:errcheck

	_, err = conn.Exec(ctx, string(schema))
	return err
}
