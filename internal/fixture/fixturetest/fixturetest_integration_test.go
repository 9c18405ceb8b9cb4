//go:build integration
// +build integration

package fixturetest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanmoran/dockerdb/internal"
	"github.com/ryanmoran/dockerdb/internal/fixture/fixturetest"
)

func TestFixture(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.sql"), []byte(`
CREATE TABLE items (
	id serial PRIMARY KEY,
	name text NOT NULL
);
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seed.sql"), []byte("INSERT INTO items (name) VALUES ('widget');\n"), 0644))

	cfg := internal.DefaultConfig()
	cfg.ImageName = "dockerdb/integration:latest"
	cfg.DataDir = dir
	cfg.DataFiles = []string{"schema.sql", "seed.sql"}
	cfg.SQL = internal.Statements{"INSERT INTO items (name) VALUES ('gadget')"}
	cfg.Timeout = 2 * time.Minute

	f := fixturetest.New(t, cfg)
	db := f.DB()

	t.Run("loads data files and statements", func(t *testing.T) {
		var names []string
		rows, err := db.QueryContext(context.Background(), "SELECT name FROM items ORDER BY id")
		require.NoError(t, err)
		defer rows.Close()

		for rows.Next() {
			var name string
			require.NoError(t, rows.Scan(&name))
			names = append(names, name)
		}
		require.NoError(t, rows.Err())
		assert.Equal(t, []string{"widget", "gadget"}, names)
	})

	t.Run("writes inside a transaction", func(t *testing.T) {
		tx := fixturetest.Tx(t, db)

		_, err := tx.ExecContext(context.Background(), "INSERT INTO items (name) VALUES ('gizmo')")
		require.NoError(t, err)

		var count int
		require.NoError(t, tx.QueryRowContext(context.Background(), "SELECT count(*) FROM items").Scan(&count))
		assert.Equal(t, 3, count)
	})

	t.Run("sees the database as built", func(t *testing.T) {
		tx := fixturetest.Tx(t, db)

		var count int
		require.NoError(t, tx.QueryRowContext(context.Background(), "SELECT count(*) FROM items").Scan(&count))
		assert.Equal(t, 2, count)
	})

	t.Run("publishes the port", func(t *testing.T) {
		assert.Greater(t, f.Port(), 0)
		assert.Contains(t, f.Env(), "PGDATABASE=testdb")
	})
}
