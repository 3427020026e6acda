package adpiler

import (
	"bytes"
	"fmt"
	"mime/multipart"
)

type filePart struct {
	field    string
	filename string
	data     []byte
}

// Form accumulates multipart fields and file parts. It is encoded to bytes
// once so a retried request can replay the identical body.
type Form struct {
	order  []string
	fields map[string]string
	files  []filePart
}

func NewForm() *Form {
	return &Form{fields: map[string]string{}}
}

// Set stores a text field, overwriting any previous value.
func (f *Form) Set(key, value string) {
	if _, ok := f.fields[key]; !ok {
		f.order = append(f.order, key)
	}
	f.fields[key] = value
}

// SetBool stores a boolean field as "1"/"0", the encoding the platform expects.
func (f *Form) SetBool(key string, value bool) {
	if value {
		f.Set(key, "1")
		return
	}
	f.Set(key, "0")
}

// AddFile attaches raw bytes as a file part.
func (f *Form) AddFile(field, filename string, data []byte) {
	f.files = append(f.files, filePart{field: field, filename: filename, data: data})
}

func (f *Form) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, key := range f.order {
		if err := w.WriteField(key, f.fields[key]); err != nil {
			return nil, "", fmt.Errorf("write field %q: %w", key, err)
		}
	}
	for _, file := range f.files {
		part, err := w.CreateFormFile(file.field, file.filename)
		if err != nil {
			return nil, "", fmt.Errorf("create file part %q: %w", file.field, err)
		}
		if _, err := part.Write(file.data); err != nil {
			return nil, "", fmt.Errorf("write file part %q: %w", file.field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
