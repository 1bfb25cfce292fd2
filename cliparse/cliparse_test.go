// cliparse/cliparse_test.go
package cliparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, name := range []string{
		"PORT", "DATA_PATH", "DATABASE_URL", "DATABASE_TYPE", "REVEAL_DELAY",
		"SESSION_TTL", "STATIC_DIR", "COOKIE_SECURE", "CORS_ORIGINS",
	} {
		t.Setenv(name, "")
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := ParseFlags([]string{})
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultDataPath, cfg.DataPath)
	assert.False(t, cfg.UseDatabase(), "JSON file storage without a database URL")
	assert.Equal(t, 10*time.Minute, cfg.RevealDelay)
	assert.Equal(t, DefaultSessionTTL, cfg.SessionTTL)
	assert.Empty(t, cfg.CORSOrigins, "same-origin only by default")
}

func TestParseFlags_EnvVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("DATABASE_URL", "postgres://test")
	t.Setenv("DATABASE_TYPE", "postgres")
	t.Setenv("REVEAL_DELAY", "90s")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://vote.example.com,")

	cfg, err := ParseFlags([]string{})
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.UseDatabase())
	assert.Equal(t, "postgres", cfg.DatabaseType)
	assert.Equal(t, 90*time.Second, cfg.RevealDelay)
	assert.True(t, cfg.SecureCookie)
	assert.Equal(t, []string{"http://localhost:5173", "https://vote.example.com"}, cfg.CORSOrigins)
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("REVEAL_DELAY", "1h")
	t.Setenv("CORS_ORIGINS", "https://env.example.com")

	cfg, err := ParseFlags([]string{
		"-p", "8080", "-d", "file:test.db", "-reveal-delay", "0s",
		"-cors-origins", "https://cli.example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port, "CLI should override env")
	assert.Zero(t, cfg.RevealDelay, "explicit zero reveal delay should be kept")
	assert.Equal(t, "sqlite", cfg.DatabaseType)
	assert.Equal(t, []string{"https://cli.example.com"}, cfg.CORSOrigins)
}

func TestParseFlags_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"bad port env", nil, map[string]string{"PORT": "abc"}},
		{"port out of range", []string{"-p", "70000"}, nil},
		{"bad database type", []string{"-t", "mysql"}, nil},
		{"negative reveal delay", []string{"-reveal-delay", "-1m"}, nil},
		{"bad reveal delay env", nil, map[string]string{"REVEAL_DELAY": "soon"}},
		{"zero session ttl", []string{"-session-ttl", "0s"}, nil},
		{"wildcard cors origin", []string{"-cors-origins", "*"}, nil},
		{"wildcard cors origin env", nil, map[string]string{"CORS_ORIGINS": "https://a.example.com,https://*.example.com"}},
		{"unknown flag", []string{"-x"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := ParseFlags(tt.args)
			assert.Error(t, err)
		})
	}
}
