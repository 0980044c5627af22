package postgres

import (
	"fmt"
	"strings"

	options "github.com/forge-io/agentforge/pkg/options/postgres"
)

// BuildDSN creates a PostgreSQL DSN from the provided options.
//
// The password is escaped so values containing spaces or quotes cannot break
// the space-separated key=value DSN format.
func BuildDSN(opts *options.Options) string {
	if opts == nil {
		return ""
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		opts.Host,
		opts.Port,
		opts.Username,
		escapeValue(opts.Password),
		opts.Database,
		opts.SSLMode,
	)
}

// escapeValue escapes a value for the libpq key=value DSN format.
// Values containing spaces, quotes, or backslashes are wrapped in single
// quotes with internal quotes and backslashes backslash-escaped.
func escapeValue(v string) string {
	if v == "" {
		return "''"
	}
	if !strings.ContainsAny(v, " '\\") {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
