package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.InDelta(t, 0.20, cfg.Stock.LowStockRatio, 1e-9)
	assert.True(t, cfg.Stock.AllowNegative)
	assert.True(t, cfg.Stock.ProjectionCache)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
}

func TestFromViper_ValoresComoString(t *testing.T) {
	v := viper.New()
	v.Set("STOCK_LOW_RATIO", "0.35")
	v.Set("STOCK_ALLOW_NEGATIVE", "false")
	v.Set("HTTP_PORT", "9090")
	v.Set("STORAGE_DRIVER", "MEMORY")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.InDelta(t, 0.35, cfg.Stock.LowStockRatio, 1e-9)
	assert.False(t, cfg.Stock.AllowNegative)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
}

func TestFromViper_RatioFueraDeRango(t *testing.T) {
	v := viper.New()
	v.Set("STOCK_LOW_RATIO", "1.5")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestFromViper_DriverDesconocido(t *testing.T) {
	v := viper.New()
	v.Set("STORAGE_DRIVER", "mongo")

	_, err := fromViper(v)
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/w", DBName: "inv", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fw@db:5432/inv?sslmode=disable", c.ConnectionString())

	c.DatabaseURL = "postgres://x"
	assert.Equal(t, "postgres://x", c.ConnectionString())
}
