// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/pagescribe/pagescribe/internal/model"
	"github.com/pagescribe/pagescribe/migrations"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 520520

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema reverts every embedded migration and applies them again.
// A dirty version left by an aborted run is forced clean first.
func ResetSchema(ctx context.Context, databaseURL string) error {
	connector, err := pq.NewConnector(databaseURL)
	if err != nil {
		return fmt.Errorf("parse database URL: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("connect database: %w", err)
	}

	m, err := migrations.New(db)
	if err != nil {
		db.Close()
		return err
	}
	defer func() { _, _ = m.Close() }()

	version, dirty, err := migrations.Version(m)
	if err != nil {
		return err
	}
	if dirty {
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("force version %d: %w", version, err)
		}
	}

	if _, err := migrations.Down(m, 0); err != nil {
		return fmt.Errorf("revert migrations: %w", err)
	}
	if _, err := migrations.Up(m); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a test user with a unique email.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	id := ulid.Make().String()
	return &model.User{
		ID:        id,
		Name:      "Test User",
		Email:     fmt.Sprintf("user-%s@example.com", id),
		Provider:  model.ProviderGoogle,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

// NewTestScrapedRecord creates a scraped record owned by userID.
func NewTestScrapedRecord(t testing.TB, userID string) *model.ScrapedRecord {
	t.Helper()
	return &model.ScrapedRecord{
		ID:      ulid.Make().String(),
		URL:     "https://example.com",
		Content: "Example Domain This domain is for use in illustrative examples.",
		Metadata: model.Metadata{
			model.MetaTitle:       "Example Domain",
			model.MetaDescription: model.NoDescription,
			model.MetaURL:         "https://example.com",
		},
		UserID:    userID,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

// NewTestPromptLog creates a prompt log owned by userID.
func NewTestPromptLog(t testing.TB, userID string) *model.PromptLog {
	t.Helper()
	return &model.PromptLog{
		ID:              ulid.Make().String(),
		PromptText:      "Summarize: Example Domain",
		GeneratedOutput: "A placeholder page for examples.",
		UserID:          userID,
		CreatedAt:       time.Now().UTC().Truncate(time.Microsecond),
	}
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
