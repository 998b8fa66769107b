package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ad-aid-platform/config"
)

func memoryConfig(t *testing.T) *config.Config {
	return &config.Config{
		Port:    "8080",
		Store:   config.StoreConfig{Driver: "memory"},
		Storage: config.StorageConfig{Driver: "memory", PublicPrefix: "/static"},
		Cache:   config.CacheConfig{Dir: t.TempDir()},
	}
}

func TestInitializeInMemory(t *testing.T) {
	application, err := Initialize(context.Background(), memoryConfig(t), Options{Seed: true})
	require.NoError(t, err)
	t.Cleanup(func() { application.Close() })

	rec := httptest.NewRecorder()
	application.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/templates/mt-f-1", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "seeded templates are served")
}

func TestInitializeLocalStorage(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Storage.Driver = "local"
	cfg.Storage.Root = t.TempDir()

	application, err := Initialize(context.Background(), cfg, Options{})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	application.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/templates", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestInitializeUnknownDrivers(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Store.Driver = "sqlite"
	_, err := Initialize(context.Background(), cfg, Options{})
	assert.Error(t, err)

	cfg = memoryConfig(t)
	cfg.Storage.Driver = "s3"
	_, err = Initialize(context.Background(), cfg, Options{})
	assert.Error(t, err)
}

func TestServedPrefix(t *testing.T) {
	assert.Equal(t, "/static", servedPrefix("/static"))
	assert.Equal(t, "/assets", servedPrefix("/assets/"))
	assert.Equal(t, "", servedPrefix("https://cdn.example.com/assets"))
}
