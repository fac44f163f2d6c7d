package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tristanfischer-ux/centauros-payment/internal/config"
)

func TestDatabaseConfig_UnmarshalYAML(t *testing.T) {
	raw := `
host: localhost
port: 5432
name: payments
user: app
password: secret
max_open_conns: 25
max_idle_conns: 5
conn_max_lifetime: 30m
conn_max_idle_time: 5m
`
	var cfg config.DatabaseConfig
	require.NoError(t, yaml.Unmarshal([]byte(raw), &cfg))

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 30*time.Minute, time.Duration(cfg.ConnMaxLifetime))
	assert.Equal(t, 5*time.Minute, time.Duration(cfg.ConnMaxIdleTime))
}

func TestDatabaseConfig_UnmarshalYAML_InvalidDuration(t *testing.T) {
	var cfg config.DatabaseConfig
	err := yaml.Unmarshal([]byte("conn_max_lifetime: soon"), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		Name:     "payments",
		User:     "app",
		Password: "secret",
	}
	assert.Equal(t,
		"host=db.internal port=5432 user=app password=secret dbname=payments",
		cfg.DSN())
}
