package sqlite

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mudit06mah/guardian/internal/domain/model"
)

var testKey = bytes.Repeat([]byte{0x42}, 32)

// setupTestDB opens a named shared in-memory database with the schema applied.
// The name comes from t.Name() so parallel tests never share state.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// WAL does not apply to in-memory databases.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&%s", url.PathEscape(t.Name()), commonPragmas)

	db, err := open(dsn, ":memory:")
	require.NoError(t, err, "open test db")

	if err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}

// seedRepository tracks fullName for account and returns the new row id.
func seedRepository(t *testing.T, db *DB, account, fullName string) string {
	t.Helper()

	id := fmt.Sprintf("repo-%s-%s", account, fullName)
	err := NewRepoRepo(db).Add(context.Background(), model.Repository{
		ID:           id,
		AccountLogin: account,
		FullName:     fullName,
		IsActive:     true,
		AddedAt:      time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	return id
}
