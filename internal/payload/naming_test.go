package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"signature_email_subject", "signatureEmailSubject"},
		{"page_num", "pageNum"},
		{"name", "name"},
		{"merge_pdfs", "mergePDFs"},
		{"webhook_url", "webhookURL"},
		{"redirect_url", "redirectURL"},
		{"create_cast_templates_from_uploads", "createCastTemplatesFromUploads"},
		{"s2_3", "s2_3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FieldName(tt.name))
		})
	}
}

func TestSnakeCase(t *testing.T) {
	assert.Equal(t, "signer_eid", SnakeCase("signerEid"))
	assert.Equal(t, "document_id", SnakeCase("DocumentID"))
	assert.Equal(t, "id", SnakeCase("ID"))
	assert.Equal(t, "name", SnakeCase("name"))
}

func TestMatchName(t *testing.T) {
	assert.True(t, MatchName("file_id", "file_id"))
	assert.True(t, MatchName("fileId", "file_id"))
	assert.True(t, MatchName("mergePDFs", "merge_pdfs"))
	assert.False(t, MatchName("mergePdfs", "merge_pdfs"))
	assert.False(t, MatchName("field_id", "file_id"))
}
