//go:build integration
// +build integration

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ryanmoran/dockerdb/internal/docker"
)

// TestFullWorkflow brings a fixture up through the CLI, runs a command
// against it and tears it down.
func TestFullWorkflow(t *testing.T) {
	if os.Getenv("SKIP_INTEGRATION") == "true" {
		t.Skip("Integration tests skipped")
	}

	client, err := docker.NewDefaultClient()
	if err != nil {
		t.Skip("Docker not available:", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx); err != nil {
		t.Skip("Docker not available:", err)
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "schema.sql"), []byte("CREATE TABLE items (name text);\n"), 0644))

	args := []string{
		"dockerdb",
		"--db", "workflow",
		"--data-dir", dir,
		"--data", "schema.sql",
		"--sql", "INSERT INTO items VALUES ('widget')",
		"--timeout", "2m",
	}

	t.Run("exports the connection to the command", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		err := run(append(args, "sh", "-c", `test -n "$DATABASE_URL" && echo "$PGDATABASE"`), os.Environ(), &stdout, &stderr)
		require.NoError(t, err, stderr.String())
		require.Equal(t, "workflow\n", stdout.String())
	})

	t.Run("propagates command failure", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		err := run(append(args, "sh", "-c", "exit 4"), os.Environ(), &stdout, &stderr)
		require.Error(t, err)
		require.Contains(t, err.Error(), "exit status 4")
	})

	t.Run("leaves no containers behind", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		require.NoError(t, run([]string{"dockerdb", "--prune"}, os.Environ(), &stdout, &stderr))

		containers, err := client.ListContainers(context.Background(), "dockerdb")
		require.NoError(t, err)
		require.Empty(t, containers)
	})
}
