package fixture

import (
	"database/sql"

	"github.com/ryanmoran/dockerdb/internal"
	"github.com/ryanmoran/dockerdb/internal/docker"
)

func NewFixture(db *sql.DB, container docker.Container, cfg internal.Config, port int, w internal.Writer) *Fixture {
	return &Fixture{
		db:        db,
		container: container,
		w:         w,
		host:      cfg.Host,
		port:      port,
		user:      cfg.User,
		database:  string(cfg.DatabaseName),
		keep:      cfg.KeepContainer,
	}
}
