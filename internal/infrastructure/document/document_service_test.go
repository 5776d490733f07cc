package document

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"anvil-esign/internal/config"
	"anvil-esign/internal/domain/entity"
	"anvil-esign/internal/payload"
)

func newTestService(t *testing.T) DocumentService {
	t.Helper()
	cfg := &config.Config{Document: config.DocumentConfig{
		BasePath:       t.TempDir(),
		ReadyFolder:    "ready",
		ProgressFolder: "progress",
		FinishFolder:   "finish",
		FileExtension:  ".pdf",
	}}
	svc, err := NewDocumentService(cfg, zap.NewNop())
	require.NoError(t, err)
	return svc
}

func TestResolveReady(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, os.WriteFile(filepath.Join(svc.GetReadyPath(), "contract.pdf"), []byte("%PDF"), 0o644))

	path, err := svc.ResolveReady("contract.pdf")
	require.NoError(t, err)
	assert.Equal(t, payload.FilePath(filepath.Join(svc.GetReadyPath(), "contract.pdf")), path)
}

func TestResolveReady_Rejects(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, os.WriteFile(filepath.Join(svc.GetReadyPath(), "notes.txt"), []byte("x"), 0o644))

	for _, name := range []string{"", "..", "../secret.pdf", "sub/contract.pdf", `sub\contract.pdf`, "notes.txt", "missing.pdf"} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ResolveReady(name)
			var verr *entity.ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestMoveAndFinish(t *testing.T) {
	svc := newTestService(t)
	require.NoError(t, os.WriteFile(filepath.Join(svc.GetReadyPath(), "a.pdf"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(svc.GetReadyPath(), "b.pdf"), []byte("b"), 0o644))

	require.NoError(t, svc.MoveToProgress("a.pdf", "b.pdf"))
	assert.FileExists(t, filepath.Join(svc.GetProgressPath(), "a.pdf"))
	assert.NoFileExists(t, filepath.Join(svc.GetReadyPath(), "b.pdf"))

	require.NoError(t, svc.MoveToFinish("a.pdf"))
	assert.FileExists(t, filepath.Join(svc.GetFinishPath(), "a.pdf"))

	path, err := svc.SaveToFinish("packet.zip", []byte("PK"))
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "PK", string(content))

	_, err = svc.SaveToFinish("../escape.zip", nil)
	assert.Error(t, err)
}
