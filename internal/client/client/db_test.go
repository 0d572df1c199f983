package client

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func columns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query(`SELECT name FROM pragma_table_info(?) ORDER BY cid`, table)
	require.NoError(t, err)
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		out = append(out, name)
	}
	require.NoError(t, rows.Err())
	return out
}

func TestInitDatabase_Schema(t *testing.T) {
	db, err := InitDatabase(context.Background(), filepath.Join(t.TempDir(), "gophcourse.db"))
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, []string{"key", "value", "updated_at"}, columns(t, db, "metadata"))
	assert.NotEmpty(t, columns(t, db, "goose_db_version"))

	var timeout int
	require.NoError(t, db.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout))
	assert.Equal(t, 5000, timeout)
}

func TestInitDatabase_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "gophcourse.db")

	db, err := InitDatabase(ctx, path)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO metadata (key, value, updated_at) VALUES ('email', 'a@x.com', 1)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = InitDatabase(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	var email string
	require.NoError(t, db.QueryRow(`SELECT value FROM metadata WHERE key = 'email'`).Scan(&email))
	assert.Equal(t, "a@x.com", email)
}

func TestInitDatabase_MissingDir(t *testing.T) {
	_, err := InitDatabase(context.Background(), filepath.Join(t.TempDir(), "missing", "gophcourse.db"))
	require.Error(t, err)
}
