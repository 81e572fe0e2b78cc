package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_AppliesDefaults(t *testing.T) {
	cfg := &StructuredConfig{}
	require.NoError(t, cfg.validate())

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultRequestTimeout, cfg.Server.RequestTimeout)
	assert.Equal(t, int64(DefaultMaxBodyBytes), cfg.Server.MaxBodyBytes)
	assert.Equal(t, DefaultTokenDuration, cfg.App.TokenDuration)
	assert.Equal(t, DefaultTokenIssuer, cfg.App.TokenIssuer)
	assert.Equal(t, DefaultAPIURL, cfg.Adapter.APIURL)
	assert.Equal(t, DefaultAdapterTimeout, cfg.Adapter.RequestTimeout)
	assert.Equal(t, DefaultSyncInterval, cfg.Workers.SyncInterval)
	assert.Equal(t, DefaultDebounceDelay, cfg.Workers.DebounceDelay)
}

func TestValidate_KeepsExplicitValues(t *testing.T) {
	cfg := &StructuredConfig{
		Server: Server{Port: 8080, RequestTimeout: 5 * time.Second},
		App:    App{TokenIssuer: "my-issuer"},
	}
	require.NoError(t, cfg.validate())

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "my-issuer", cfg.App.TokenIssuer)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		cfg  StructuredConfig
	}{
		{"port out of range", StructuredConfig{Server: Server{Port: 70000}}},
		{"negative port", StructuredConfig{Server: Server{Port: -1}}},
		{"negative request timeout", StructuredConfig{Server: Server{RequestTimeout: -time.Second}}},
		{"negative token duration", StructuredConfig{App: App{TokenDuration: -time.Hour}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.validate()
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestValidateServer(t *testing.T) {
	cfg := &StructuredConfig{}
	err := cfg.ValidateServer()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "database DSN")
	assert.Contains(t, err.Error(), "token sign key")

	cfg.Storage.DB.DSN = "postgres://localhost:5432/notes"
	cfg.App.TokenSignKey = "secret"
	assert.NoError(t, cfg.ValidateServer())
}

func TestClientConfig_Validate(t *testing.T) {
	cfg := &ClientConfig{}
	assert.ErrorIs(t, cfg.validate(), ErrInvalidConfig)

	cfg.Adapter.APIURL = "http://localhost:3001"
	assert.NoError(t, cfg.validate())
}

func TestParseJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"app": {"token_sign_key": "secret", "token_duration": "12h"},
		"storage": {"db": {"dsn": "postgres://localhost/notes"}},
		"server": {"port": 4000, "request_timeout": "45s"},
		"workers": {"sync_interval": "1m", "debounce_delay": 2000000000}
	}`), 0o600))

	cfg, err := parseJSON(path)
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.App.TokenSignKey)
	assert.Equal(t, 12*time.Hour, cfg.App.TokenDuration)
	assert.Equal(t, "postgres://localhost/notes", cfg.Storage.DB.DSN)
	assert.Equal(t, 4000, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, time.Minute, cfg.Workers.SyncInterval)
	assert.Equal(t, 2*time.Second, cfg.Workers.DebounceDelay)
}

func TestParseJSON_MissingFile(t *testing.T) {
	_, err := parseJSON(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	var d Duration

	require.NoError(t, json.Unmarshal([]byte(`"90s"`), &d))
	assert.Equal(t, 90*time.Second, time.Duration(d))

	require.NoError(t, json.Unmarshal([]byte(`1000000000`), &d))
	assert.Equal(t, time.Second, time.Duration(d))

	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
}
