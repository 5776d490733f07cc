package payload

import (
	"encoding/base64"
	"fmt"
	"io"
	"path/filepath"
)

// DefaultMimeType is used for uploads whose type cannot be guessed.
const DefaultMimeType = "application/pdf"

// Upload is the file content of an uploaded document. It is a closed set:
//   - *Base64Upload is embedded inline in the JSON document
//   - *FileHandle is an already open reader sent as a multipart part
//   - FilePath is a file on disk, opened only when the multipart request is built
type Upload interface {
	upload()
}

// Base64Upload carries small file content inline.
type Base64Upload struct {
	Data     string `anvil:"data" validate:"required"`
	Filename string `anvil:"filename" validate:"required"`
	Mimetype string `anvil:"mimetype"`
}

func (*Base64Upload) upload() {}

func (u *Base64Upload) SetDefaults() {
	if u.Mimetype == "" {
		u.Mimetype = DefaultMimeType
	}
}

// NewBase64Upload reads r to the end and encodes it for inline embedding.
// The whole content is held in memory, so keep this to small files.
func NewBase64Upload(filename, mimetype string, r io.Reader) (*Base64Upload, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", filename, err)
	}

	u := &Base64Upload{
		Data:     base64.StdEncoding.EncodeToString(content),
		Filename: filename,
		Mimetype: mimetype,
	}
	u.SetDefaults()
	return u, nil
}

// FileHandle is an open file-like reader. The owner of the handle closes it.
type FileHandle struct {
	Name   string
	Reader io.Reader
}

func (*FileHandle) upload() {}

// Filename returns the name to send with the part. When Name is empty it
// falls back to the reader's own name, as *os.File provides.
func (h *FileHandle) Filename() string {
	if h.Name != "" {
		return h.Name
	}
	if named, ok := h.Reader.(interface{ Name() string }); ok {
		return filepath.Base(named.Name())
	}
	return ""
}

// Close closes the underlying reader when it is closable.
func (h *FileHandle) Close() error {
	if c, ok := h.Reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// FilePath references a file on disk.
type FilePath string

func (FilePath) upload() {}

func (p FilePath) Filename() string {
	return filepath.Base(string(p))
}
