package entity

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anvil-esign/internal/payload"
)

func TestValidate_FillPDFPayload(t *testing.T) {
	tests := []struct {
		name    string
		data    any
		wantErr string
	}{
		{name: "object", data: map[string]any{"name": "Ann"}},
		{name: "list", data: []any{map[string]any{"name": "Ann"}}},
		{name: "empty object", data: map[string]any{}, wantErr: "data cannot be empty"},
		{name: "missing", data: nil, wantErr: "data is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&FillPDFPayload{Data: tt.data})
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Error(), tt.wantErr)
		})
	}
}

func TestValidate_GeneratePDFType(t *testing.T) {
	p := &GeneratePDFPayload{Data: map[string]any{"html": "<p>x</p>"}}
	p.SetDefaults()
	assert.Equal(t, GenerateTypeMarkdown, p.Type)
	assert.NoError(t, Validate(p))

	p.Type = "docx"
	var verr *ValidationError
	require.ErrorAs(t, Validate(p), &verr)
	assert.Equal(t, "type", verr.Field)
}

func TestValidate_SignatureMode(t *testing.T) {
	s := &EtchSigner{Name: "Ann", Email: "ann@example.com", SignerType: "email", SignatureMode: "stamp"}
	var verr *ValidationError
	require.ErrorAs(t, Validate(s), &verr)
	assert.Equal(t, "signature_mode", verr.Field)
}

func TestDecodeFile_Variants(t *testing.T) {
	tests := []struct {
		name  string
		input map[string]any
		want  any
	}{
		{"cast", map[string]any{"id": "a", "cast_eid": "x"}, &CastReference{}},
		{"markup", map[string]any{"id": "a", "filename": "a.pdf", "markup": map[string]any{"html": "h"}}, &DocumentMarkup{}},
		{"upload", map[string]any{"id": "a", "title": "A", "file": "a.pdf"}, &DocumentUpload{}},
		{"upload without content", map[string]any{"id": "a", "title": "A"}, &DocumentUpload{}},
		{"markdown", map[string]any{"id": "a", "filename": "a.pdf"}, &DocumentMarkdown{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := DecodeFile(tt.input)
			require.NoError(t, err)
			assert.IsType(t, tt.want, f)
			assert.Equal(t, "a", f.FileID())
		})
	}
}

func TestDecodeFile_InlineUpload(t *testing.T) {
	f, err := DecodeFile(map[string]any{
		"id":    "a",
		"title": "A",
		"file":  map[string]any{"data": "JVBERg==", "filename": "a.pdf"},
	})
	require.NoError(t, err)

	doc := f.(*DocumentUpload)
	assert.Equal(t, &payload.Base64Upload{Data: "JVBERg==", Filename: "a.pdf"}, doc.File)
}

func TestDecodeFile_KeepsHandles(t *testing.T) {
	handle := &payload.FileHandle{Name: "a.pdf", Reader: strings.NewReader("x")}

	f, err := DecodeFile(map[string]any{"id": "a", "title": "A", "file": handle})
	require.NoError(t, err)
	assert.Same(t, handle, f.(*DocumentUpload).File)
}

func TestDecodeFile_BadContent(t *testing.T) {
	_, err := DecodeFile(map[string]any{"id": "a", "title": "A", "file": 42})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestDecodeMarkdownFields(t *testing.T) {
	f, err := DecodeFile(map[string]any{
		"id":       "md",
		"filename": "md.pdf",
		"fields": []any{
			map[string]any{"id": "sig", "type": "signature", "page_num": 1, "rect": map[string]any{"x": 1, "y": 2}},
			map[string]any{"heading": "Terms", "table": map[string]any{"rows": []any{[]any{"a", "b"}}}},
		},
	})
	require.NoError(t, err)

	md := f.(*DocumentMarkdown)
	require.Len(t, md.Fields, 2)
	assert.Equal(t, &SignatureField{ID: "sig", Type: "signature", PageNum: 1, Rect: Rect{X: 1, Y: 2}}, md.Fields[0])

	content := md.Fields[1].(*MarkdownContent)
	md.SetDefaults()
	assert.Equal(t, "Terms", content.Heading)
	assert.Equal(t, [][]string{{"a", "b"}}, content.Table.Rows)
	assert.True(t, *content.Table.RowGridLines)
	assert.False(t, *content.Table.ColumnGridLines)
	assert.Equal(t, "center", content.Table.VerticalAlign)
	assert.Equal(t, DefaultFontSize, md.FontSize)
}

func TestGraphQLResponse_Err(t *testing.T) {
	assert.NoError(t, (&GraphQLResponse{}).Err())

	err := (&GraphQLResponse{Errors: []GraphQLError{{Message: "a"}, {Message: "b"}}}).Err()
	var gqlErrs GraphQLErrors
	require.True(t, errors.As(err, &gqlErrs))
	assert.Equal(t, "graphql: a; b", err.Error())
}

func TestEtchSigner_Clone(t *testing.T) {
	s := &EtchSigner{Name: "Ann", Fields: []SignerField{{FileID: "a", FieldID: "b"}}, Extra: map[string]any{"k": 1}}
	c := s.Clone()
	c.Fields[0].FileID = "changed"
	c.Extra["k"] = 2

	assert.Equal(t, "a", s.Fields[0].FileID)
	assert.Equal(t, 1, s.Extra["k"])
}

func TestDecodeForgeSubmit(t *testing.T) {
	p, err := DecodeForgeSubmit(map[string]any{"forge_eid": "f1", "payload": map[string]any{"name": "Ann"}, "isTest": false})
	require.NoError(t, err)
	assert.Equal(t, "f1", p.ForgeEID)
	assert.Equal(t, map[string]any{"name": "Ann"}, p.Payload)
	assert.False(t, *p.IsTest)

	full, err := DecodeForgeSubmit(map[string]any{"payload": map[string]any{"forgeEid": "f2", "payload": map[string]any{"x": 1}}})
	require.NoError(t, err)
	assert.Equal(t, "f2", full.ForgeEID)

	_, err = DecodeForgeSubmit(map[string]any{"payload": "nope"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
