package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("STORAGE", StorageMemory)

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 2*time.Second, cfg.SyncDebounce)
	assert.Equal(t, CurrencySourceCollectAPI, cfg.QuoteCurrencySource)
	assert.False(t, cfg.SyncEnabled())
	assert.False(t, cfg.EmailEnabled())
}

func TestNewConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORAGE", StorageMemory)
	t.Setenv("SYNC_DEBOUNCE", "500ms")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_KEY", "anon")
	t.Setenv("QUOTE_CURRENCY_SOURCE", CurrencySourceCentralBank)

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 500*time.Millisecond, cfg.SyncDebounce)
	assert.True(t, cfg.SyncEnabled())
	assert.Equal(t, CurrencySourceCentralBank, cfg.QuoteCurrencySource)
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing db conn", map[string]string{"STORAGE": StoragePostgres, "DB_CONN": ""}},
		{"unknown storage", map[string]string{"STORAGE": "sqlite"}},
		{"missing jwt secret", map[string]string{"STORAGE": StorageMemory, "JWT_SECRET": ""}},
		{"half supabase config", map[string]string{"STORAGE": StorageMemory, "SUPABASE_URL": "https://x.supabase.co"}},
		{"bad debounce", map[string]string{"STORAGE": StorageMemory, "SYNC_DEBOUNCE": "soon"}},
		{"bad currency source", map[string]string{"STORAGE": StorageMemory, "QUOTE_CURRENCY_SOURCE": "ecb"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := NewConfig()
			assert.Error(t, err)
		})
	}
}
