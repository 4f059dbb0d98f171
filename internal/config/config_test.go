package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, public, private string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "public.yaml"), []byte(public), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "private.yaml"), []byte(private), 0o600))
	return dir
}

func TestMustLoad(t *testing.T) {
	t.Setenv("PORT", "")
	dir := writeConfig(t,
		"port: \"9000\"\napi_base_url: http://api:5000\nsignup_timeout: 3s\nsecure_cookies: true\nallowed_origins: [\"http://localhost:3000\"]\nsession:\n  driver: postgres\n",
		"pg:\n  host: localhost\n  port: 5432\n  user: portal\n  password: pass\n  dbname: portal\n",
	)

	cfg := MustLoad(dir)

	assert.Equal(t, "9000", cfg.Public.Port)
	assert.Equal(t, "http://api:5000", cfg.Public.APIBaseURL)
	assert.Equal(t, 3*time.Second, cfg.Public.SignupTimeout)
	assert.True(t, cfg.Public.SecureCookies)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Public.AllowedOrigins)
	assert.Equal(t, SessionDriverPostgres, cfg.SessionDriver())
	assert.Equal(t, "localhost", cfg.Private.Pg.Host)
	assert.Equal(t, 5432, cfg.Private.Pg.Port)
}

func TestMustLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	dir := writeConfig(t, "log_level: debug\n", "")

	cfg := MustLoad(dir)

	assert.Equal(t, DefaultPort, cfg.Public.Port)
	assert.Equal(t, DefaultAPIBaseURL, cfg.Public.APIBaseURL)
	assert.Equal(t, DefaultSignupTimeout, cfg.Public.SignupTimeout)
	assert.Equal(t, SessionDriverMemory, cfg.SessionDriver())
	assert.Equal(t, "debug", cfg.Public.LogLevel)
	assert.Equal(t, "templates", cfg.Public.TemplatesPath)
}

func TestMustLoad_PortFromEnv(t *testing.T) {
	t.Setenv("PORT", "7777")
	dir := writeConfig(t, "port: \"9000\"\n", "")

	cfg := MustLoad(dir)

	assert.Equal(t, "7777", cfg.Public.Port)
}

func TestMustLoad_SessionKey(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("SESSION_KEY", "")
	dir := writeConfig(t, "", "session_key: from-file\n")
	assert.Equal(t, "from-file", MustLoad(dir).Private.SessionKey)

	t.Setenv("SESSION_KEY", "from-env")
	assert.Equal(t, "from-env", MustLoad(dir).Private.SessionKey)
}

func TestMustLoad_Panics(t *testing.T) {
	tests := []struct {
		name    string
		public  string
		private string
	}{
		{name: "postgres without credentials", public: "session:\n  driver: postgres\n", private: ""},
		{name: "unknown session driver", public: "session:\n  driver: redis\n", private: ""},
		{name: "negative timeout", public: "signup_timeout: -1s\n", private: ""},
		{name: "broken yaml", public: "port: [\n", private: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeConfig(t, tt.public, tt.private)
			assert.Panics(t, func() { MustLoad(dir) })
		})
	}
}

func TestMustLoad_MissingFile(t *testing.T) {
	assert.Panics(t, func() { MustLoad(t.TempDir()) })
}
