package db

import (
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifesync/pkg/config"
)

func TestDSN_EscapesCredentials(t *testing.T) {
	dsn := DSN(config.DBConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "life sync",
		Password: "p@ss:w/rd",
		Name:     "lifesync",
	})

	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.ConnConfig.Host)
	assert.Equal(t, uint16(5433), cfg.ConnConfig.Port)
	assert.Equal(t, "life sync", cfg.ConnConfig.User)
	assert.Equal(t, "p@ss:w/rd", cfg.ConnConfig.Password)
	assert.Equal(t, "lifesync", cfg.ConnConfig.Database)
	assert.Equal(t, applicationName, cfg.ConnConfig.RuntimeParams["application_name"])
}

func TestDSN_SSLModeDefault(t *testing.T) {
	assert.Contains(t, DSN(config.DBConfig{Host: "h", Port: 1, Name: "n"}), "sslmode=disable")
	assert.Contains(t, DSN(config.DBConfig{Host: "h", Port: 1, Name: "n", SSLMode: "require"}), "sslmode=require")
}
