package fixture

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/multierr"

	"github.com/ryanmoran/dockerdb/internal"
	"github.com/ryanmoran/dockerdb/internal/archive"
	"github.com/ryanmoran/dockerdb/internal/docker"
	"github.com/ryanmoran/dockerdb/internal/dockerfile"
	"github.com/ryanmoran/dockerdb/internal/postgres"
)

// Fixture is a running database container and an open handle to it.
type Fixture struct {
	db        *sql.DB
	container docker.Container
	w         internal.Writer

	host     string
	port     int
	user     string
	database string
	keep     bool
	closed   bool
}

// Dockerfile renders the Dockerfile for cfg and loads the data files it
// copies into the image.
func Dockerfile(cfg internal.Config) ([]byte, []dockerfile.File, error) {
	files, err := archive.LoadFiles(cfg.DataDir, cfg.DataFiles)
	if err != nil {
		return nil, nil, err
	}

	params := dockerfile.Params{
		BaseImage:       cfg.BaseImage,
		PostgresVersion: cfg.PostgresVersion,
		DatabaseName:    string(cfg.DatabaseName),
		Files:           dockerfile.Names(files),
		SQL:             cfg.SQL,
		Signature:       dockerfile.Signature(files, cfg.SQL),
		Port:            cfg.Port,
	}

	if cfg.TemplatePath == "" {
		content, err := dockerfile.Render(params)
		if err != nil {
			return nil, nil, err
		}
		return content, files, nil
	}

	text, err := os.ReadFile(cfg.TemplatePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read Dockerfile template %q: %w", cfg.TemplatePath, err)
	}

	content, err := dockerfile.RenderTemplate(string(text), params)
	if err != nil {
		return nil, nil, err
	}
	return content, files, nil
}

// Start builds the database image, runs it and waits until the database
// accepts connections. When the database does not come up within
// cfg.Timeout the error wraps postgres.ErrNotReady. On any failure the
// container is removed before Start returns, unless cfg.KeepContainer is set.
func Start(ctx context.Context, client docker.Client, cfg internal.Config, w internal.Writer) (*Fixture, error) {
	content, files, err := Dockerfile(cfg)
	if err != nil {
		return nil, err
	}

	cleanup := internal.NewCleanupManager(w)
	started := false
	defer func() {
		if !started {
			cleanup.Execute()
		}
	}()

	w.Info("building image", "image", cfg.ImageName, "files", len(files), "statements", len(cfg.SQL))
	image, err := client.BuildImage(ctx, archive.New(content, files...), cfg.ImageName, cfg.NoCache, w)
	if err != nil {
		return nil, err
	}

	session := internal.GenerateSession()
	container, err := client.CreateContainer(ctx, session.Name(), image, session.Labels(), cfg.StopTimeout)
	if err != nil {
		return nil, err
	}
	if cfg.KeepContainer {
		cleanup.Add("container", func() error {
			w.Warn("keeping container after failed startup", "name", container.Name)
			return nil
		})
	} else {
		cleanup.Add("container", func() error {
			return container.ForceRemove(context.WithoutCancel(ctx))
		})
	}

	err = container.Start(ctx)
	if err != nil {
		return nil, err
	}

	port, err := container.HostPort(ctx, cfg.Port)
	if err != nil {
		return nil, err
	}
	w.Info("container started", "name", container.Name, "port", port)

	dsn := postgres.DSN(cfg.Host, port, cfg.User, string(cfg.DatabaseName))
	db, err := postgres.Wait(ctx, dsn, postgres.WaitOptions{
		Timeout:  cfg.Timeout,
		Interval: cfg.PollInterval,
	}, w)
	if err != nil {
		return nil, fmt.Errorf("database in container %q: %w", container.Name, err)
	}

	started = true
	cleanup.Release()

	return &Fixture{
		db:        db,
		container: container,
		w:         w,
		host:      cfg.Host,
		port:      port,
		user:      cfg.User,
		database:  string(cfg.DatabaseName),
		keep:      cfg.KeepContainer,
	}, nil
}

// DB returns the open database handle.
func (f *Fixture) DB() *sql.DB {
	return f.db
}

// DSN returns the keyword/value connection string for the database.
func (f *Fixture) DSN() string {
	return postgres.DSN(f.host, f.port, f.user, f.database)
}

// URL returns the connection string in URL form.
func (f *Fixture) URL() string {
	return postgres.URL(f.host, f.port, f.user, f.database)
}

// Port returns the host port the database is published on.
func (f *Fixture) Port() int {
	return f.port
}

// ContainerName returns the name of the database container.
func (f *Fixture) ContainerName() string {
	return f.container.Name
}

// Env returns the libpq environment variables and DATABASE_URL pointing at
// the database.
func (f *Fixture) Env() []string {
	return []string{
		"DATABASE_URL=" + f.URL(),
		"PGHOST=" + f.host,
		"PGPORT=" + strconv.Itoa(f.port),
		"PGUSER=" + f.user,
		"PGDATABASE=" + f.database,
		"PGSSLMODE=disable",
	}
}

// Close closes the database handle, then stops and removes the container.
// A container that fails to stop is force-removed. With KeepContainer set
// the container is left running. Close is safe to call more than once.
func (f *Fixture) Close(ctx context.Context) error {
	if f.closed {
		return nil
	}
	f.closed = true

	var errs error
	if f.db != nil {
		if err := f.db.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to close database handle: %w", err))
		}
	}

	if f.keep {
		f.w.Info("keeping container", "name", f.container.Name, "dsn", f.DSN())
		return errs
	}

	remove := f.container.Remove
	if err := f.container.Stop(ctx); err != nil {
		errs = multierr.Append(errs, err)
		remove = f.container.ForceRemove
	}
	if err := remove(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}
	if errs == nil {
		f.w.Info("container removed", "name", f.container.Name)
	}

	return errs
}

// Prune force-removes every container carrying the dockerdb label and
// returns how many were removed.
func Prune(ctx context.Context, client docker.Client, w internal.Writer) (int, error) {
	containers, err := client.ListContainers(ctx, internal.Label)
	if err != nil {
		return 0, err
	}

	var (
		removed int
		errs    error
	)
	for _, container := range containers {
		if err := container.ForceRemove(ctx); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		removed++
		w.Info("container removed", "name", container.Name)
	}

	return removed, errs
}
