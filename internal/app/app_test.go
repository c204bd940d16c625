package app_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"catalog/internal/app"
	"catalog/internal/config"
	"catalog/internal/models"
	"catalog/internal/seed"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Port:            "0",
		UploadDir:       filepath.Join(t.TempDir(), "uploads"),
		MaxUploadSize:   5 * 1024 * 1024,
		StoreDriver:     config.StoreMemory,
		SQLiteDSN:       "file:" + uuid.New().String() + "?mode=memory&cache=shared",
		LogLevel:        "info",
		Environment:     "test",
		ShutdownTimeout: time.Second,
	}
}

func newApp(t *testing.T, cfg config.Config) *app.App {
	t.Helper()
	log := zerolog.Nop()
	a, err := app.New(cfg, &log)
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		assert.NoError(t, a.Shutdown(ctx))
	})
	return a
}

func TestNew_CreatesUploadDir(t *testing.T) {
	cfg := testConfig(t)
	newApp(t, cfg)

	info, err := os.Stat(cfg.UploadDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestHealth(t *testing.T) {
	a := newApp(t, testConfig(t))

	resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, config.StoreMemory, body["store"])
	assert.Equal(t, "disabled", body["events"])
}

func TestSQLiteStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreDriver = config.StoreSQLite
	a := newApp(t, cfg)

	resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodGet, "/api/products", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var products []models.Product
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	assert.Equal(t, seed.Products(), products)

	resp, err = a.Fiber.Test(httptest.NewRequest(http.MethodDelete, "/api/products/5", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	assert.Len(t, products, len(seed.Products())-1)
}

func TestServesUploads(t *testing.T) {
	cfg := testConfig(t)
	a := newApp(t, cfg)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.UploadDir, "product-image-1.png"), []byte("image"), 0o644))

	resp, err := a.Fiber.Test(httptest.NewRequest(http.MethodGet, "/uploads/product-image-1.png", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "image", string(data))
}

func TestCORSAndUnknownRoute(t *testing.T) {
	a := newApp(t, testConfig(t))

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	req.Header.Set("Origin", "http://storefront.example")
	resp, err := a.Fiber.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["message"], "Cannot GET")
}
