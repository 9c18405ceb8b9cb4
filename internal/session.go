package internal

import (
	"fmt"
	"math/rand/v2"
)

// Label marks every container created by dockerdb so leftovers can be pruned.
const Label = "dockerdb"

type Session struct {
	id int64
}

// GenerateSession creates a new session with a random numeric identifier.
// The session is used to generate unique container names.
func GenerateSession() Session {
	return Session{id: rand.Int64N(100000)}
}

// String returns the string representation of the session, equivalent to calling Name().
func (s Session) String() string {
	return string(s.Name())
}

// Name returns the container name in the format "dockerdb-<number>".
func (s Session) Name() ContainerName {
	return ContainerName(fmt.Sprintf("dockerdb-%d", s.id))
}

// Labels returns the labels attached to the session's container.
func (s Session) Labels() map[string]string {
	return map[string]string{
		Label:              "1",
		Label + ".session": fmt.Sprintf("%d", s.id),
	}
}
