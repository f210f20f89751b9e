package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "aspas.db", cfg.Store.SQLitePath)
	assert.Equal(t, 5*time.Second, cfg.Store.OpTimeout)
	assert.Equal(t, 0.3, cfg.Shop.ReorderRatio)
	assert.Equal(t, "ATIL", cfg.Shop.Code)
	assert.Equal(t, "₹", cfg.Shop.CurrencySymbol)
	assert.Equal(t, 24*time.Hour, cfg.Redis.IdempotencyTTL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.True(t, cfg.Auth.SeedDefaultUsers)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_DRIVER", "mysql")
	t.Setenv("MYSQL_DSN", "root:root@tcp(localhost:3306)/aspas?parseTime=true")
	t.Setenv("REORDER_RATIO", "0.5")
	t.Setenv("SHOP_TIMEZONE", "UTC")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMySQL, cfg.Store.Driver)
	assert.Equal(t, 0.5, cfg.Shop.ReorderRatio)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Store: Store{Driver: DriverSQLite, SQLitePath: "x.db"},
			Shop:  Shop{ReorderRatio: 0.3, Timezone: "Local"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"unknown driver", func(c *Config) { c.Store.Driver = "oracle" }, true},
		{"mysql without dsn", func(c *Config) { c.Store.Driver = DriverMySQL }, true},
		{"zero ratio", func(c *Config) { c.Shop.ReorderRatio = 0 }, true},
		{"ratio above one", func(c *Config) { c.Shop.ReorderRatio = 1.5 }, true},
		{"bad timezone", func(c *Config) { c.Shop.Timezone = "Mars/Olympus" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
