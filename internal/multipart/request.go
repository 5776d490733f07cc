package multipart

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gabriel-vasile/mimetype"

	"anvil-esign/internal/payload"
)

const variablesPrefix = "variables"

// Names of the two JSON fields that precede the file parts.
const (
	OperationsField = "operations"
	MapField        = "map"
)

// ErrUnsupportedUpload is returned when an extracted value is neither an
// open handle nor a path. IsUpload only matches those two, so seeing it
// points to a bug rather than bad input.
var ErrUnsupportedUpload = errors.New("multipart: extracted value is not a file handle or path")

// IsUpload reports whether v must be sent as a multipart part. Inline
// *payload.Base64Upload values stay in the JSON document.
func IsUpload(v any) bool {
	switch u := v.(type) {
	case *payload.FileHandle:
		return u != nil
	case payload.FilePath:
		return u != ""
	}
	return false
}

// HasUploads reports whether tree contains at least one multipart upload.
func HasUploads(tree any) bool {
	_, pairs := Extract(tree, IsUpload, variablesPrefix)
	return len(pairs) > 0
}

// Part is a file part of the request. Key is the index used in the map field.
type Part struct {
	Key      string
	Path     string
	Filename string
	MimeType string
	Content  io.Reader
}

// Field is one form field of the multipart body, in send order.
type Field struct {
	Name        string
	Filename    string
	ContentType string
	Content     io.Reader
}

// IsFile reports whether f is a file part rather than the operations or map
// field.
func (f Field) IsFile() bool {
	return f.Name != OperationsField && f.Name != MapField
}

// Request is an assembled multipart request.
type Request struct {
	Operations []byte
	Map        []byte
	Parts      []Part

	opened []io.Closer
}

// BuildRequest extracts the uploads from variables and assembles the
// operations document, the index map and the file parts. Path uploads are
// opened here; call Close once the request has been sent.
func BuildRequest(document string, variables any) (*Request, error) {
	nulled, pairs := Extract(variables, IsUpload, variablesPrefix)
	if nulled == nil {
		nulled = payload.NewObject()
	}

	ops := payload.NewObject()
	ops.Set("query", document)
	ops.Set("variables", nulled)
	operations, err := payload.Marshal(ops)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal operations: %w", err)
	}

	index := payload.NewObject()
	for i, pair := range pairs {
		index.Set(strconv.Itoa(i), []string{pair.Path})
	}
	mapping, err := payload.Marshal(index)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal map: %w", err)
	}

	req := &Request{
		Operations: operations,
		Map:        mapping,
		Parts:      make([]Part, 0, len(pairs)),
	}
	for i, pair := range pairs {
		part, err := req.resolve(strconv.Itoa(i), pair)
		if err != nil {
			req.Close()
			return nil, err
		}
		req.Parts = append(req.Parts, part)
	}
	return req, nil
}

func (r *Request) resolve(key string, pair Pair) (Part, error) {
	switch u := pair.Value.(type) {
	case *payload.FileHandle:
		if u.Reader == nil {
			return Part{}, fmt.Errorf("file handle at %s has no reader", pair.Path)
		}
		name := u.Filename()
		if name == "" {
			name = "upload-" + key
		}
		return Part{
			Key:      key,
			Path:     pair.Path,
			Filename: name,
			MimeType: guessMimeType(name, ""),
			Content:  u.Reader,
		}, nil
	case payload.FilePath:
		f, err := os.Open(string(u))
		if err != nil {
			return Part{}, fmt.Errorf("failed to open upload %s: %w", u, err)
		}
		r.opened = append(r.opened, f)
		return Part{
			Key:      key,
			Path:     pair.Path,
			Filename: u.Filename(),
			MimeType: guessMimeType(u.Filename(), string(u)),
			Content:  f,
		}, nil
	default:
		return Part{}, fmt.Errorf("%w: %T at %s", ErrUnsupportedUpload, pair.Value, pair.Path)
	}
}

// Fields returns the form fields in wire order: operations, map, then the
// numbered file parts.
func (r *Request) Fields() []Field {
	fields := []Field{
		{Name: OperationsField, Content: bytes.NewReader(r.Operations)},
		{Name: MapField, Content: bytes.NewReader(r.Map)},
	}
	for _, p := range r.Parts {
		fields = append(fields, Field{
			Name:        p.Key,
			Filename:    p.Filename,
			ContentType: p.MimeType,
			Content:     p.Content,
		})
	}
	return fields
}

// Close closes the files opened by BuildRequest. Handles supplied by the
// caller are left open.
func (r *Request) Close() error {
	var errs []error
	for _, c := range r.opened {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.opened = nil
	return errors.Join(errs...)
}

// guessMimeType goes by the file extension. Files on disk without an
// extension are sniffed; anything else falls back to the default type.
func guessMimeType(name, path string) string {
	if ext := filepath.Ext(name); ext != "" {
		if t := mime.TypeByExtension(ext); t != "" {
			return mediaType(t)
		}
		return payload.DefaultMimeType
	}
	if path != "" {
		detected, err := mimetype.DetectFile(path)
		if err == nil && !detected.Is("application/octet-stream") {
			return mediaType(detected.String())
		}
	}
	return payload.DefaultMimeType
}

func mediaType(t string) string {
	mt, _, err := mime.ParseMediaType(t)
	if err != nil {
		return t
	}
	return mt
}
