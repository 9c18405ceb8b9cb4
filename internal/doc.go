// Package internal contains shared types and utilities for dockerdb.
//
// It provides configuration parsing, fixture definition files, session naming,
// cleanup orchestration, logging and I/O abstractions used across the docker,
// postgres and fixture packages.
package internal
