package apiclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// MultipartBody is a multipart/form-data payload. Fields are written in order,
// then files; repeated field names are allowed (e.g. custom_tags).
type MultipartBody struct {
	Fields []FormField
	Files  []FormFile
}

// FormField is a plain text form value.
type FormField struct {
	Name  string
	Value string
}

// FormFile is a file part. Content is read fully when the request is built.
type FormFile struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Add appends a text field.
func (m *MultipartBody) Add(name, value string) {
	m.Fields = append(m.Fields, FormField{Name: name, Value: value})
}

func (m *MultipartBody) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range m.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", fmt.Errorf("apiclient: write field %q: %w", f.Name, err)
		}
	}
	for _, f := range m.Files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("apiclient: create file part %q: %w", f.Filename, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("apiclient: copy file %q: %w", f.Filename, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("apiclient: close multipart writer: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
