package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{"empty backend", Config{DataDir: "/tmp/silk"}, ErrBackendEmpty},
		{"unknown backend", Config{Backend: "mysql", DataDir: "/tmp/silk"}, ErrBackendUnknown},
		{"postgres without dsn", Config{Backend: BackendPostgres}, ErrDSNEmpty},
		{"postgres ignores data dir", Config{Backend: BackendPostgres, DSN: "postgres://localhost/silk"}, nil},
		{"sqlite", Config{Backend: BackendSQLite, DataDir: "/tmp/silk"}, nil},
		// Attach falls back to the working directory.
		{"sqlite without data dir", Config{Backend: BackendSQLite}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
