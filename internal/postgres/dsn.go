package postgres

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// DSN returns a keyword/value connection string for a server reached at
// host:port. TLS is disabled because the server only ever runs locally in a
// throwaway container.
func DSN(host string, port int, user, dbname string) string {
	return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable",
		quoteValue(host), port, quoteValue(user), quoteValue(dbname))
}

// URL returns the same connection as DSN in URL form.
func URL(host string, port int, user, dbname string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.User(user),
		Host:     net.JoinHostPort(host, strconv.Itoa(port)),
		Path:     "/" + dbname,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func quoteValue(value string) string {
	if value != "" && !strings.ContainsAny(value, ` '\`) {
		return value
	}
	replacer := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + replacer.Replace(value) + "'"
}
