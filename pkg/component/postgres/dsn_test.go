package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	options "github.com/forge-io/agentforge/pkg/options/postgres"
)

func TestBuildDSN(t *testing.T) {
	tests := []struct {
		name     string
		opts     *options.Options
		expected string
	}{
		{
			name:     "nil options",
			opts:     nil,
			expected: "",
		},
		{
			name: "basic options",
			opts: &options.Options{
				Host:     "localhost",
				Port:     5432,
				Username: "forge",
				Password: "secret",
				Database: "forge_events",
				SSLMode:  "disable",
			},
			expected: "host=localhost port=5432 user=forge password=secret dbname=forge_events sslmode=disable",
		},
		{
			name: "empty password",
			opts: &options.Options{
				Host:     "db.internal",
				Port:     5433,
				Username: "forge",
				Password: "",
				Database: "forge_events",
				SSLMode:  "require",
			},
			expected: "host=db.internal port=5433 user=forge password='' dbname=forge_events sslmode=require",
		},
		{
			name: "password with space",
			opts: &options.Options{
				Host:     "localhost",
				Port:     5432,
				Username: "forge",
				Password: "p ss word",
				Database: "forge_events",
				SSLMode:  "disable",
			},
			expected: "host=localhost port=5432 user=forge password='p ss word' dbname=forge_events sslmode=disable",
		},
		{
			name: "password with quote",
			opts: &options.Options{
				Host:     "localhost",
				Port:     5432,
				Username: "forge",
				Password: "it's",
				Database: "forge_events",
				SSLMode:  "disable",
			},
			expected: `host=localhost port=5432 user=forge password='it\'s' dbname=forge_events sslmode=disable`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BuildDSN(tt.opts))
		})
	}
}
