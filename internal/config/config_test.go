package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, defaultDSN, cfg.DatabaseDSN)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 48*time.Hour, cfg.OrderDueWithin)
	assert.Equal(t, 30, cfg.ReportDefaultDays)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("ORDER_DUE_WITHIN", "72h")
	t.Setenv("REPORT_DEFAULT_DAYS", "7")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 72*time.Hour, cfg.OrderDueWithin)
	assert.Equal(t, 7, cfg.ReportDefaultDays)
}

func TestFromEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing secret", map[string]string{"JWT_SECRET": ""}},
		{"short secret", map[string]string{"JWT_SECRET": "short"}},
		{"bad ttl", map[string]string{"JWT_SECRET": testSecret, "TOKEN_TTL": "soon"}},
		{"bad days", map[string]string{"JWT_SECRET": testSecret, "REPORT_DEFAULT_DAYS": "abc"}},
		{"zero days", map[string]string{"JWT_SECRET": testSecret, "REPORT_DEFAULT_DAYS": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
