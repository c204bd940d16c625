// Package testutil builds request bodies for HTTP tests.
package testutil

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"testing"
)

// FilePart is a file to attach to a multipart body. An empty ContentType
// leaves the part without a Content-Type header.
type FilePart struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// MultipartBody encodes fields and files as multipart/form-data and returns
// the body with its Content-Type header value.
func MultipartBody(t *testing.T, fields map[string]string, files ...FilePart) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			t.Fatalf("failed to write field %s: %v", name, err)
		}
	}
	for _, f := range files {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, f.Field, f.Filename))
		if f.ContentType != "" {
			header.Set("Content-Type", f.ContentType)
		}
		part, err := w.CreatePart(header)
		if err != nil {
			t.Fatalf("failed to create part %s: %v", f.Field, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			t.Fatalf("failed to write part %s: %v", f.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return body, w.FormDataContentType()
}

// PNG returns size bytes that start with the PNG signature.
func PNG(size int) []byte {
	data := make([]byte, size)
	copy(data, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'})
	return data
}
