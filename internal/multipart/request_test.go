package multipart

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anvil-esign/internal/payload"
)

const testMutation = "mutation CreateEtchPacket($files: [EtchFile!]) { createEtchPacket(files: $files) { eid } }"

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestBuildRequest_Scenario(t *testing.T) {
	handle := &payload.FileHandle{Name: "contract.pdf", Reader: strings.NewReader("%PDF-1.7")}
	variables := map[string]any{
		"a": []any{map[string]any{"f": handle}},
		"b": "text",
	}

	req, err := BuildRequest(testMutation, variables)
	require.NoError(t, err)
	defer req.Close()

	assert.JSONEq(t, `{"0":["variables.a.0.f"]}`, string(req.Map))
	assert.JSONEq(t, `{
		"query": "`+testMutation+`",
		"variables": {"a": [{"f": null}], "b": "text"}
	}`, string(req.Operations))

	require.Len(t, req.Parts, 1)
	part := req.Parts[0]
	assert.Equal(t, "0", part.Key)
	assert.Equal(t, "contract.pdf", part.Filename)
	assert.Equal(t, "application/pdf", part.MimeType)
	assert.Same(t, handle.Reader, part.Content)
}

func TestBuildRequest_OperationsKeyOrder(t *testing.T) {
	req, err := BuildRequest("query { currentUser { eid } }", map[string]any{"x": 1})
	require.NoError(t, err)

	assert.Equal(t, `{"query":"query { currentUser { eid } }","variables":{"x":1}}`, string(req.Operations))
	assert.Equal(t, `{}`, string(req.Map))
	assert.Empty(t, req.Parts)
}

func TestBuildRequest_MapMatchesParts(t *testing.T) {
	pdf := writeTempFile(t, "one.pdf", "%PDF-1.4")
	png := writeTempFile(t, "two.png", "\x89PNG\r\n\x1a\n")

	variables := payload.NewObject()
	variables.Set("files", []any{
		map[string]any{"id": "one", "file": payload.FilePath(pdf)},
		map[string]any{"id": "two", "file": payload.FilePath(png)},
		map[string]any{"id": "three", "file": &payload.FileHandle{Name: "three.pdf", Reader: strings.NewReader("x")}},
	})

	req, err := BuildRequest(testMutation, variables)
	require.NoError(t, err)
	defer req.Close()

	var index map[string][]string
	require.NoError(t, json.Unmarshal(req.Map, &index))

	fields := req.Fields()
	require.Len(t, fields, 5)
	assert.Equal(t, "operations", fields[0].Name)
	assert.Empty(t, fields[0].Filename)
	assert.Equal(t, "map", fields[1].Name)
	assert.Empty(t, fields[1].Filename)

	partKeys := map[string]bool{}
	for _, f := range fields[2:] {
		partKeys[f.Name] = true
	}
	mapKeys := map[string]bool{}
	for k := range index {
		mapKeys[k] = true
	}
	assert.Equal(t, mapKeys, partKeys)

	assert.Equal(t, []string{"variables.files.0.file"}, index["0"])
	assert.Equal(t, []string{"variables.files.1.file"}, index["1"])
	assert.Equal(t, []string{"variables.files.2.file"}, index["2"])

	assert.Equal(t, "one.pdf", fields[2].Filename)
	assert.Equal(t, "application/pdf", fields[2].ContentType)
	assert.Equal(t, "image/png", fields[3].ContentType)

	body, err := io.ReadAll(fields[2].Content)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(body))
}

func TestBuildRequest_PathsOpenedLazily(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.pdf")
	variables := map[string]any{"file": payload.FilePath(missing)}

	// extraction alone never touches the filesystem
	_, pairs := Extract(variables, IsUpload, "variables")
	require.Len(t, pairs, 1)

	_, err := BuildRequest(testMutation, variables)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestBuildRequest_CloseReleasesOpenedFiles(t *testing.T) {
	path := writeTempFile(t, "doc.pdf", "%PDF")
	req, err := BuildRequest(testMutation, map[string]any{"file": payload.FilePath(path)})
	require.NoError(t, err)

	f := req.Parts[0].Content.(*os.File)
	require.NoError(t, req.Close())

	_, err = f.Read(make([]byte, 1))
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestBuildRequest_InlineUploadStaysInJSON(t *testing.T) {
	variables, err := payload.Flatten(map[string]any{
		"file": &payload.Base64Upload{Data: "JVBERg==", Filename: "inline.pdf", Mimetype: "application/pdf"},
	})
	require.NoError(t, err)

	req, err := BuildRequest(testMutation, variables)
	require.NoError(t, err)

	assert.Empty(t, req.Parts)
	assert.Contains(t, string(req.Operations),
		`"file":{"data":"JVBERg==","filename":"inline.pdf","mimetype":"application/pdf"}`)
}

func TestBuildRequest_UnnamedHandleGetsFilename(t *testing.T) {
	handle := &payload.FileHandle{Reader: bytes.NewReader([]byte("%PDF"))}

	req, err := BuildRequest(testMutation, map[string]any{"file": handle})
	require.NoError(t, err)

	require.Len(t, req.Parts, 1)
	assert.Equal(t, "upload-0", req.Parts[0].Filename)
	assert.Equal(t, "application/pdf", req.Parts[0].MimeType)

	fields := req.Fields()
	require.Len(t, fields, 3)
	assert.False(t, fields[0].IsFile())
	assert.False(t, fields[1].IsFile())
	assert.True(t, fields[2].IsFile())
	assert.Equal(t, "upload-0", fields[2].Filename)
}

func TestBuildRequest_HandleWithoutReader(t *testing.T) {
	_, err := BuildRequest(testMutation, map[string]any{"file": &payload.FileHandle{Name: "x.pdf"}})
	require.Error(t, err)
}

func TestResolve_UnsupportedValue(t *testing.T) {
	r := &Request{}
	_, err := r.resolve("0", Pair{Path: "variables.file", Value: 42})
	assert.ErrorIs(t, err, ErrUnsupportedUpload)
}

func TestGuessMimeType(t *testing.T) {
	assert.Equal(t, "application/pdf", guessMimeType("a.pdf", ""))
	assert.Equal(t, "image/png", guessMimeType("a.png", ""))
	assert.Equal(t, "application/pdf", guessMimeType("a.unknownext", ""))
	assert.Equal(t, "application/pdf", guessMimeType("noext", ""))

	png := writeTempFile(t, "noext", "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	assert.Equal(t, "image/png", guessMimeType("noext", png))
}

func TestHasUploads(t *testing.T) {
	assert.False(t, HasUploads(map[string]any{"name": "x"}))
	assert.False(t, HasUploads(map[string]any{"file": &payload.Base64Upload{Data: "AA"}}))
	assert.True(t, HasUploads(map[string]any{"files": []any{payload.FilePath("a.pdf")}}))
}
