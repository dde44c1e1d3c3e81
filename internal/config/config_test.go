package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
server:
  port: 9090
database:
  host: db.internal
  name: hms
  password: from-file
auth:
  jwt_secret: file-secret-0123456789
storage:
  documents:
    "1": documents/admission_form.pdf
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))
	return dir
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := writeConfig(t, testYAML)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "from-file", cfg.Database.Password)
	assert.Equal(t, 10*time.Minute, cfg.Catalog.CacheTTL)
	assert.Equal(t, "documents/admission_form.pdf", cfg.Storage.Documents["1"])
	assert.Equal(t, "reports/exams_list.pdf", cfg.Storage.Reports["exams-list"])
}

func TestSecretsOverrideFile(t *testing.T) {
	dir := writeConfig(t, testYAML)
	t.Setenv("HMS_DATABASE_PASSWORD", "from-env")
	t.Setenv("HMS_JWT_SECRET", "env-secret-0123456789")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Database.Password)
	assert.Equal(t, "env-secret-0123456789", cfg.Auth.JWTSecret)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	dir := writeConfig(t, `
auth:
  jwt_secret: short
`)

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{Host: "h", Port: 5432, User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=n sslmode=disable", db.DSN())
}
