// Package postgres waits for a freshly started PostgreSQL server to accept
// connections and hands back a database/sql handle backed by the pgx driver.
package postgres
