package fixturetest

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ryanmoran/dockerdb/internal"
	"github.com/ryanmoran/dockerdb/internal/docker"
	"github.com/ryanmoran/dockerdb/internal/fixture"
)

// PingTimeout bounds the Docker availability check made by New.
const PingTimeout = 5 * time.Second

// New starts a fixture for t and closes it when t finishes. The test is
// skipped when no Docker daemon is reachable and fails when the fixture
// cannot be started.
func New(t testing.TB, cfg internal.Config) *fixture.Fixture {
	t.Helper()

	client, err := docker.NewDefaultClient()
	if err != nil {
		t.Skipf("docker not available: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), PingTimeout)
	_, err = client.Ping(ctx)
	cancel()
	if err != nil {
		client.Close()
		t.Skipf("docker not available: %v", err)
	}

	out := testWriter{t: t}
	w := internal.NewStandardWriter(out, internal.NewLogger(out, cfg.LogLevel, false))

	f, err := fixture.Start(context.Background(), client, cfg, w)
	if err != nil {
		client.Close()
		t.Fatalf("failed to start database fixture: %v", err)
	}

	t.Cleanup(func() {
		if err := f.Close(context.Background()); err != nil {
			t.Errorf("failed to tear down database fixture: %v", err)
		}
		client.Close()
	})

	return f
}

// Tx begins a transaction that is rolled back when t finishes, so every test
// sees the database as it was built.
func Tx(t testing.TB, db *sql.DB) *sql.Tx {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}

	t.Cleanup(func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Errorf("failed to roll back transaction: %v", err)
		}
	})

	return tx
}

// testWriter sends output to the test log.
type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
