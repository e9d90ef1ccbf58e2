package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	DB struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
	} `yaml:"db"`
	JWT struct {
		Secret string `yaml:"secret"`
	} `yaml:"jwt"`
	Analytics struct {
		Timezone string `yaml:"timezone"`
	} `yaml:"analytics"`
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestLoadLayered_OverlayAndDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "db:\n  host: localhost\n  port: 5432\n")
	writeFile(t, dir, "production.yaml", "db:\n  host: db.internal\n")

	var cfg sample
	cfg.Analytics.Timezone = "UTC"
	require.NoError(t, LoadLayered(dir, "production", &cfg))

	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, 5432, cfg.DB.Port, "base values survive a partial overlay")
	assert.Equal(t, "UTC", cfg.Analytics.Timezone, "absent keys keep the preset value")
}

func TestLoadLayered_MissingOverlayIsFine(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "db:\n  host: localhost\n")

	var cfg sample
	require.NoError(t, LoadLayered(dir, "staging", &cfg))
	assert.Equal(t, "localhost", cfg.DB.Host)
}

func TestLoadLayered_MissingBase(t *testing.T) {
	var cfg sample
	assert.Error(t, LoadLayered(t.TempDir(), "local", &cfg))
}

func TestLoadLayered_Placeholders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "db:\n  password: ${DB_PASS}\njwt:\n  secret: ${JWT_SECRET}\nanalytics:\n  timezone: ${UNSET_TZ}\n")
	writeFile(t, dir, "secrets.env", "# local secrets\nDB_PASS=\"from-file\"\nJWT_SECRET='file-secret'\n")
	t.Setenv("JWT_SECRET", "env-secret")

	var cfg sample
	require.NoError(t, LoadLayered(dir, "local", &cfg))

	assert.Equal(t, "from-file", cfg.DB.Password)
	assert.Equal(t, "env-secret", cfg.JWT.Secret, "process env wins over secrets.env")
	assert.Equal(t, "${UNSET_TZ}", cfg.Analytics.Timezone)
}

func TestMergeMaps_DoesNotMutateBase(t *testing.T) {
	base := map[string]any{"db": map[string]any{"host": "a", "port": 1}}
	out := mergeMaps(base, map[string]any{"db": map[string]any{"host": "b"}})

	assert.Equal(t, "a", base["db"].(map[string]any)["host"])
	assert.Equal(t, map[string]any{"host": "b", "port": 1}, out["db"])
}
