package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("STORAGE_DRIVER", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, StorageDriverPostgres, cfg.Storage.Driver)
	assert.Equal(t, 7*24*60, cfg.JWT.AccessExpiry)
	assert.Equal(t, "GHS", cfg.Payment.Currency)
	assert.Equal(t, "10.00", cfg.Payment.ShippingFee)
	assert.Equal(t, 100, cfg.RateLimit.Requests)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,,")
	t.Setenv("SHIPPING_FEE", "12.50")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, StorageDriverMemory, cfg.Storage.Driver)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "12.50", cfg.Payment.ShippingFee)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{Env: "development"},
		Storage: StorageConfig{Driver: StorageDriverMemory},
	}
	require.NoError(t, cfg.Validate())

	cfg.Server.Env = "production"
	cfg.JWT.Secret = "secret"
	assert.Error(t, cfg.Validate(), "memory storage must be refused in production")

	cfg.Storage.Driver = StorageDriverPostgres
	assert.NoError(t, cfg.Validate())

	cfg.JWT.Secret = ""
	assert.Error(t, cfg.Validate())

	cfg.Storage.Driver = "sqlite"
	assert.Error(t, cfg.Validate())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Database: "shop", Schema: "public"}
	assert.Equal(t, "postgres://u:p@db:5432/shop?sslmode=disable&search_path=public", d.DSN())
}
