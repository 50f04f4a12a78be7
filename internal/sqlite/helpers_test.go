package sqlite

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/silk/pkg/types"
)

// stepClock returns a clock that starts at base and advances one second per
// call, so consecutive writes get distinct timestamps.
func stepClock(base time.Time) func() time.Time {
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

var testEpoch = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

// newTestBackend returns a backend attached to a fresh data directory.
func newTestBackend(t *testing.T) (*Backend, string) {
	t.Helper()
	dataDir := t.TempDir()
	b := NewBackend(WithClock(stepClock(testEpoch)))
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dataDir}))
	t.Cleanup(func() { b.Detach() })
	return b, dataDir
}

// setupTestDB returns a database with the schema and empty JSONL files.
func setupTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	dataDir := t.TempDir()
	require.NoError(t, initJSONLFiles(dataDir))

	db, err := sql.Open("sqlite", filepath.Join(dataDir, dbFile))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, createSchema(db))
	return db, dataDir
}
