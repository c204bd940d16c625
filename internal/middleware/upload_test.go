package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"catalog/internal/middleware"
	"catalog/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 10, 11, 12, 345000000, time.UTC)

func setupGateApp(t *testing.T, maxSize int64) (*fiber.App, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := middleware.DefaultUploadConfig(dir)
	cfg.MaxSize = maxSize
	cfg.Now = func() time.Time { return fixedNow }

	log := zerolog.Nop()
	app := fiber.New()
	app.Post("/upload", middleware.UploadGate(cfg, &log), func(c *fiber.Ctx) error {
		return c.SendString(middleware.UploadedImage(c))
	})
	return app, dir
}

func postUpload(t *testing.T, app *fiber.App, fields map[string]string, files ...testutil.FilePart) (int, string) {
	t.Helper()
	body, contentType := testutil.MultipartBody(t, fields, files...)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func TestStoragePath(t *testing.T) {
	assert.Equal(t, "uploads/2026-10-19T10-11-12.345Zshirt.png", middleware.StoragePath("uploads", "shirt.png", fixedNow))
	assert.Equal(t, "uploads/2026-10-19T10-11-12.345Zshirt.png", middleware.StoragePath("./uploads", "shirt.png", fixedNow))
	assert.Equal(t, "uploads/2026-10-19T10-11-12.345Zpasswd", middleware.StoragePath("uploads", "../../etc/passwd", fixedNow))

	local := fixedNow.In(time.FixedZone("UTC+2", 2*60*60))
	assert.Equal(t, middleware.StoragePath("uploads", "a.png", fixedNow), middleware.StoragePath("uploads", "a.png", local))
}

func TestUploadGate_AcceptsPNG(t *testing.T) {
	app, dir := setupGateApp(t, 5*1024*1024)

	data := testutil.PNG(1024)
	status, path := postUpload(t, app, map[string]string{"name": "shirt"}, testutil.FilePart{
		Field: "productImage", Filename: "shirt.png", ContentType: "image/png", Data: data,
	})

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, filepath.ToSlash(filepath.Join(dir, "2026-10-19T10-11-12.345Zshirt.png")), path)
	stored, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, data, stored)
}

func TestUploadGate_AcceptsJPEG(t *testing.T) {
	app, _ := setupGateApp(t, 5*1024*1024)

	status, path := postUpload(t, app, nil, testutil.FilePart{
		Field: "productImage", Filename: "photo.jpg", ContentType: "image/jpeg", Data: []byte{0xFF, 0xD8, 0xFF, 0xE0},
	})

	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, path)
}

func TestUploadGate_DropsRejectedType(t *testing.T) {
	app, dir := setupGateApp(t, 5*1024*1024)

	status, path := postUpload(t, app, nil, testutil.FilePart{
		Field: "productImage", Filename: "manual.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4"),
	})

	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, path)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadGate_SniffsUndeclaredType(t *testing.T) {
	app, _ := setupGateApp(t, 5*1024*1024)

	status, path := postUpload(t, app, nil, testutil.FilePart{
		Field: "productImage", Filename: "blob", Data: testutil.PNG(512),
	})
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, path)

	status, path = postUpload(t, app, nil, testutil.FilePart{
		Field: "productImage", Filename: "notes", ContentType: "application/octet-stream", Data: []byte("plain text"),
	})
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, path)
}

func TestUploadGate_RejectsOversizedFile(t *testing.T) {
	app, dir := setupGateApp(t, 1024)

	status, _ := postUpload(t, app, nil, testutil.FilePart{
		Field: "productImage", Filename: "big.png", ContentType: "image/png", Data: testutil.PNG(2048),
	})

	assert.Equal(t, http.StatusRequestEntityTooLarge, status)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadGate_RejectsUnexpectedFields(t *testing.T) {
	app, _ := setupGateApp(t, 5*1024*1024)

	status, _ := postUpload(t, app, nil, testutil.FilePart{
		Field: "avatar", Filename: "a.png", ContentType: "image/png", Data: testutil.PNG(64),
	})
	assert.Equal(t, http.StatusBadRequest, status)

	image := testutil.FilePart{Field: "productImage", Filename: "a.png", ContentType: "image/png", Data: testutil.PNG(64)}
	status, _ = postUpload(t, app, nil, image, image)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestUploadGate_PassesThroughWithoutFile(t *testing.T) {
	app, _ := setupGateApp(t, 5*1024*1024)

	status, path := postUpload(t, app, map[string]string{"name": "shirt"})
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, path)

	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}
