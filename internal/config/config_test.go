package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "farmdesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: http://file:3000
  timeout: 3s
server:
  addr: ":9000"
log:
  level: debug
`)
	t.Setenv("FARMDESK_SERVER_ADDR", ":9100")
	t.Setenv("FARMDESK_SERVER_SESSION_SECRET", "s3cret")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("api.base-url", DefaultBaseURL, "")
	flags.String("log.level", DefaultLogLevel, "")
	require.NoError(t, flags.Parse([]string{"--api.base-url=http://flag:3000"}))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "http://flag:3000", cfg.API.BaseURL, "changed flag wins")
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, ":9100", cfg.Server.Addr, "env beats file")
	assert.Equal(t, "s3cret", cfg.Server.SessionSecret)
	assert.Equal(t, "debug", cfg.Log.Level, "unchanged flag keeps the file value")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "format", body: "log:\n  format: xml\n"},
		{name: "watch without dir", body: "pages:\n  watch: true\n"},
		{name: "empty addr", body: "server:\n  addr: \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body), nil)
			require.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "api.base_url", envKey("FARMDESK_API_BASE_URL"))
	assert.Equal(t, "pages.watch", envKey("FARMDESK_PAGES_WATCH"))
	assert.Equal(t, "debug", envKey("FARMDESK_DEBUG"))
}
