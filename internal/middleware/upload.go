package middleware

import (
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/h2non/filetype"
	"github.com/rs/zerolog"
)

// ProductImageField is the multipart field that carries the product image.
const ProductImageField = "productImage"

const uploadedImageKey = "uploaded_image"

// sniffLen is the number of leading bytes filetype needs to recognise a format.
const sniffLen = 261

// UploadConfig configures the upload gate.
type UploadConfig struct {
	Dir          string
	Field        string
	MaxSize      int64
	AllowedTypes []string
	Now          func() time.Time
}

// DefaultUploadConfig accepts a single JPEG or PNG of up to 5 MiB under productImage.
func DefaultUploadConfig(dir string) UploadConfig {
	return UploadConfig{
		Dir:          dir,
		Field:        ProductImageField,
		MaxSize:      5 * 1024 * 1024,
		AllowedTypes: []string{"image/jpeg", "image/png"},
		Now:          time.Now,
	}
}

func (cfg UploadConfig) allows(contentType string) bool {
	for _, t := range cfg.AllowedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}

// UploadGate is a Fiber middleware that stores at most one image file from a
// multipart request. Files of a type that is not allowed are dropped and the
// request continues without an image. Oversized files fail the request.
func UploadGate(cfg UploadConfig, log *zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		contentType := strings.ToLower(string(c.Request().Header.ContentType()))
		if !strings.HasPrefix(contentType, fiber.MIMEMultipartForm) {
			return c.Next()
		}

		form, err := c.MultipartForm()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid multipart form")
		}

		var header *multipart.FileHeader
		for field, files := range form.File {
			if field != cfg.Field || len(files) > 1 {
				return fiber.NewError(fiber.StatusBadRequest, "Unexpected field")
			}
			header = files[0]
		}
		if header == nil {
			return c.Next()
		}

		fileType := detectContentType(header)
		if !cfg.allows(fileType) {
			log.Debug().Str("filename", header.Filename).Str("type", fileType).Msg("upload rejected by type")
			return c.Next()
		}
		if header.Size > cfg.MaxSize {
			return fiber.NewError(fiber.StatusRequestEntityTooLarge, "File too large")
		}

		path := StoragePath(cfg.Dir, header.Filename, cfg.Now())
		if err := c.SaveFile(header, path); err != nil {
			log.Error().Err(err).Str("path", path).Msg("failed to store upload")
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to store upload")
		}

		log.Debug().Str("path", path).Int64("size", header.Size).Msg("upload stored")
		c.Locals(uploadedImageKey, path)
		return c.Next()
	}
}

// UploadedImage returns the path stored by UploadGate for this request, or "".
func UploadedImage(c *fiber.Ctx) string {
	path, _ := c.Locals(uploadedImageKey).(string)
	return path
}

// StoragePath builds the destination of an upload: the UTC timestamp with
// colons replaced, followed by the base name of the original file.
func StoragePath(dir, originalName string, now time.Time) string {
	stamp := strings.ReplaceAll(now.UTC().Format("2006-01-02T15:04:05.000Z"), ":", "-")
	return filepath.ToSlash(filepath.Join(dir, stamp+sanitizeFilename(originalName)))
}

func sanitizeFilename(filename string) string {
	clean := filepath.Base(filepath.Clean(filename))
	clean = strings.ReplaceAll(clean, "/", "_")
	clean = strings.ReplaceAll(clean, "\\", "_")
	if clean == "." || clean == ".." || clean == "" {
		return "unnamed"
	}
	return clean
}

// detectContentType prefers the declared part type and sniffs the content
// when the client did not send a specific one.
func detectContentType(header *multipart.FileHeader) string {
	declared := header.Header.Get(fiber.HeaderContentType)
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil {
		declared = strings.ToLower(mediaType)
	}
	if declared != "" && declared != fiber.MIMEOctetStream {
		return declared
	}

	f, err := header.Open()
	if err != nil {
		return declared
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return declared
	}
	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown {
		return declared
	}
	return kind.MIME.Value
}
