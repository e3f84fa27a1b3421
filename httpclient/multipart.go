package httpclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"sort"

	"github.com/gabriel-vasile/mimetype"
)

// MultipartBody represents a multipart/form-data request body. It can be
// passed to Request.Body directly; Request.File and Request.Field build one
// implicitly.
type MultipartBody struct {
	// Fields are simple form fields. Repeated keys are sent as repeated parts.
	Fields url.Values
	// Files are file upload fields.
	Files []FileField
}

// FileField represents a file to upload in a multipart request.
type FileField struct {
	// FieldName is the form field name (e.g., "file", "avatar").
	FieldName string
	// FileName is the file name sent to the server. Defaults to the base
	// name of Path.
	FileName string
	// ContentType is the MIME type. Sniffed from the content when empty.
	ContentType string
	// Data is the file content.
	Data []byte
	// Reader is read fully when Data is nil.
	Reader io.Reader
	// Path is read from disk when Data and Reader are nil.
	Path string
}

func (f *FileField) content() ([]byte, error) {
	switch {
	case f.Data != nil:
		return f.Data, nil
	case f.Reader != nil:
		return io.ReadAll(f.Reader)
	case f.Path != "":
		return os.ReadFile(f.Path)
	default:
		return nil, nil
	}
}

// encode builds the multipart body and returns it with its content type.
// Fields are written first, sorted by name.
func (m *MultipartBody) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	names := make([]string, 0, len(m.Fields))
	for k := range m.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		for _, v := range m.Fields[k] {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", err
			}
		}
	}

	for i := range m.Files {
		f := &m.Files[i]
		data, err := f.content()
		if err != nil {
			return nil, "", fmt.Errorf("file field %q: %w", f.FieldName, err)
		}

		fileName := f.FileName
		if fileName == "" && f.Path != "" {
			fileName = filepath.Base(f.Path)
		}
		contentType := f.ContentType
		if contentType == "" {
			contentType = mimetype.Detect(data).String()
		}

		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			`form-data; name="`+escapeQuotes(f.FieldName)+`"; filename="`+escapeQuotes(fileName)+`"`)
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

// escapeQuotes replaces special characters in header values.
func escapeQuotes(s string) string {
	var buf bytes.Buffer
	for _, b := range []byte(s) {
		if b == '"' || b == '\\' {
			buf.WriteByte('\\')
		}
		buf.WriteByte(b)
	}
	return buf.String()
}
