// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points the dotenv lookup at an empty directory and clears the
// variables ParseFlags reads.
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range []string{"PORT", "DATA_FILE", "STORE_TYPE", "DATABASE_URL", "STATIC_DIR", "ADMIN_KEY", "CONFIG_FILE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return t.TempDir()
}

func TestParseFlags_Defaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := ParseFlags([]string{"-env-file", filepath.Join(dir, ".env")})
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultDataFile, cfg.DataFile)
	assert.Equal(t, StoreJSON, cfg.StoreType)
	assert.Empty(t, cfg.AdminKey)
	assert.Empty(t, cfg.StaticDir)
}

func TestParseFlags_EnvVars(t *testing.T) {
	dir := isolate(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATA_FILE", "/var/lib/acadamist/data.json")
	t.Setenv("ADMIN_KEY", "s3cret")

	cfg, err := ParseFlags([]string{"-env-file", filepath.Join(dir, ".env")})
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "/var/lib/acadamist/data.json", cfg.DataFile)
	assert.Equal(t, "s3cret", cfg.AdminKey)
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	dir := isolate(t)
	t.Setenv("PORT", "9000")

	cfg, err := ParseFlags([]string{"-p", "8080", "-f", "other.json", "-env-file", filepath.Join(dir, ".env")})
	require.NoError(t, err)

	// CLI should override env
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "other.json", cfg.DataFile)
}

func TestParseFlags_InvalidPort(t *testing.T) {
	dir := isolate(t)
	t.Setenv("PORT", "not-a-port")

	_, err := ParseFlags([]string{"-env-file", filepath.Join(dir, ".env")})
	assert.Error(t, err)

	_, err = ParseFlags([]string{"-p", "70000", "-env-file", filepath.Join(dir, ".env")})
	assert.Error(t, err)
}

func TestParseFlags_StoreTypes(t *testing.T) {
	dir := isolate(t)
	envFile := filepath.Join(dir, ".env")

	cfg, err := ParseFlags([]string{"-t", "sqlite", "-env-file", envFile})
	require.NoError(t, err)
	assert.Equal(t, DefaultSQLiteURL, cfg.DatabaseURL)

	_, err = ParseFlags([]string{"-t", "postgres", "-env-file", envFile})
	assert.Error(t, err, "postgres needs a database URL")

	cfg, err = ParseFlags([]string{"-t", "postgres", "-d", "postgres://localhost/acadamist", "-env-file", envFile})
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/acadamist", cfg.DatabaseURL)

	_, err = ParseFlags([]string{"-t", "redis", "-env-file", envFile})
	assert.Error(t, err)
}

func TestParseFlags_DotEnv(t *testing.T) {
	dir := isolate(t)
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("PORT=4100\nADMIN_KEY=from-dotenv\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("PORT")
		os.Unsetenv("ADMIN_KEY")
	})

	cfg, err := ParseFlags([]string{"-env-file", envFile})
	require.NoError(t, err)

	assert.Equal(t, 4100, cfg.Port)
	assert.Equal(t, "from-dotenv", cfg.AdminKey)
}

func TestParseFlags_ConfigFile(t *testing.T) {
	dir := isolate(t)
	configFile := filepath.Join(dir, "acadamist.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(`
port: 5000
data_file: /srv/data.json
static_dir: ./site
admin_key: from-yaml
`), 0o600))
	t.Setenv("ADMIN_KEY", "from-env")

	cfg, err := ParseFlags([]string{"-config", configFile, "-env-file", filepath.Join(dir, ".env")})
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "/srv/data.json", cfg.DataFile)
	assert.Equal(t, "./site", cfg.StaticDir)
	// env beats the config file
	assert.Equal(t, "from-env", cfg.AdminKey)
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("port: [unterminated"), 0o600))
	_, err = LoadFile(bad)
	assert.Error(t, err)
}
