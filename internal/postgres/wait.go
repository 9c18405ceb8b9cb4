package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sethvargo/go-retry"

	"github.com/ryanmoran/dockerdb/internal"
)

// ErrNotReady is returned by Wait when the database did not accept a
// connection before the timeout elapsed.
var ErrNotReady = errors.New("database not ready")

const (
	DefaultTimeout        = 60 * time.Second
	DefaultInterval       = 2 * time.Second
	DefaultAttemptTimeout = 5 * time.Second
)

// cannot_connect_now: the server is starting up or shutting down.
const codeCannotConnectNow = "57P03"

type WaitOptions struct {
	// Timeout bounds the whole wait.
	Timeout time.Duration

	// Interval is the pause between attempts.
	Interval time.Duration

	// AttemptTimeout bounds a single connection attempt.
	AttemptTimeout time.Duration
}

func (o WaitOptions) withDefaults() WaitOptions {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.AttemptTimeout <= 0 {
		o.AttemptTimeout = DefaultAttemptTimeout
	}
	return o
}

// Wait pings the database at dsn until it answers, the timeout elapses, or a
// non-connection error occurs. Connection failures are retried at a fixed
// interval. On timeout it returns a nil handle and an error wrapping
// ErrNotReady. Any other failure is returned immediately.
func Wait(ctx context.Context, dsn string, options WaitOptions, w internal.Writer) (*sql.DB, error) {
	options = options.withDefaults()

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w\nCheck the connection settings", err)
	}

	var (
		attempts  int
		transient bool
		started   = time.Now()
		deadline  = started.Add(options.Timeout)
	)
	backoff := retry.WithMaxDuration(options.Timeout, retry.NewConstant(options.Interval))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++

		err := ping(ctx, db, min(options.AttemptTimeout, time.Until(deadline)))
		if err == nil {
			return nil
		}

		transient = ctx.Err() == nil && IsTransient(err)
		if !transient {
			return err
		}

		w.Info("waiting for database startup", "attempt", attempts, "error", err)
		return retry.RetryableError(err)
	})
	if err != nil {
		db.Close()

		if ctx.Err() != nil {
			return nil, fmt.Errorf("stopped waiting for database: %w", ctx.Err())
		}
		if transient {
			return nil, fmt.Errorf("%w after %s (%d attempts): %v\nIncrease the timeout or check the container logs", ErrNotReady, time.Since(started).Round(time.Millisecond), attempts, err)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	w.Info("database ready", "attempts", attempts, "elapsed", time.Since(started).Round(time.Millisecond))
	return db, nil
}

// ping bounds a single attempt by timeout. A non-positive timeout fails the
// attempt with context.DeadlineExceeded.
func ping(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return db.PingContext(ctx)
}

// IsTransient reports whether err means the server cannot be reached yet, as
// opposed to a failure that retrying will not fix.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == codeCannotConnectNow
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET)
}
