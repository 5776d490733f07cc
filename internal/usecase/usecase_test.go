package usecase

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"anvil-esign/internal/config"
	"anvil-esign/internal/domain/entity"
	"anvil-esign/internal/infrastructure/document"
	"anvil-esign/internal/infrastructure/redis"
	"anvil-esign/internal/payload"
)

type fakeAnvilRepository struct {
	created     *entity.EtchPacketPayload
	fill        *entity.FillPDFPayload
	forge       *entity.ForgeSubmitPayload
	downloads   []string
	queryVars   any
	mutation    string
	mutateVars  any
	packetEID   string
	documentEID string
}

func (f *fakeAnvilRepository) Query(_ context.Context, _ string, variables any) (json.RawMessage, error) {
	f.queryVars = variables
	return json.RawMessage(`{"ok":true}`), nil
}

func (f *fakeAnvilRepository) Mutate(_ context.Context, mutation string, variables any) (json.RawMessage, error) {
	f.mutation = mutation
	f.mutateVars = variables
	return json.RawMessage(`{"mutated":true}`), nil
}

func (f *fakeAnvilRepository) GetCurrentUser(context.Context) (*entity.User, error) {
	return &entity.User{EID: "u1"}, nil
}

func (f *fakeAnvilRepository) GetCast(_ context.Context, eid string, _ []string) (*entity.Cast, error) {
	return &entity.Cast{EID: eid}, nil
}

func (f *fakeAnvilRepository) GetCasts(context.Context, []string, bool) ([]entity.Cast, error) {
	return []entity.Cast{{EID: "c1"}}, nil
}

func (f *fakeAnvilRepository) GetWelds(context.Context) ([]entity.Weld, error) {
	return []entity.Weld{{EID: "w1"}}, nil
}

func (f *fakeAnvilRepository) CreateEtchPacket(_ context.Context, p *entity.EtchPacketPayload) (*entity.EtchPacket, error) {
	f.created = p
	return &entity.EtchPacket{
		EID:           f.packetEID,
		Name:          p.Name,
		DocumentGroup: &entity.DocumentGroup{EID: f.documentEID},
	}, nil
}

func (f *fakeAnvilRepository) GenerateEtchSigningURL(_ context.Context, p *entity.GenerateEtchSigningURLPayload) (string, error) {
	return "https://sign.example/" + p.SignerEID, nil
}

func (f *fakeAnvilRepository) ForgeSubmit(_ context.Context, p *entity.ForgeSubmitPayload) (json.RawMessage, error) {
	f.forge = p
	return json.RawMessage(`{"eid":"sub"}`), nil
}

func (f *fakeAnvilRepository) FillPDF(_ context.Context, _ string, p *entity.FillPDFPayload) ([]byte, error) {
	f.fill = p
	return []byte("%PDF"), nil
}

func (f *fakeAnvilRepository) GeneratePDF(context.Context, *entity.GeneratePDFPayload) ([]byte, error) {
	return []byte("%PDF"), nil
}

func (f *fakeAnvilRepository) DownloadDocuments(_ context.Context, eid string) ([]byte, error) {
	f.downloads = append(f.downloads, eid)
	return []byte("PK"), nil
}

type fixture struct {
	cfg     *config.Config
	repo    *fakeAnvilRepository
	store   *redis.MemoryStore
	docs    document.DocumentService
	etch    EtchUsecase
	webhook WebhookUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := &config.Config{
		Anvil: config.AnvilConfig{WebhookURL: "https://example.com/hook", WebhookToken: "tok"},
		Document: config.DocumentConfig{
			BasePath:       t.TempDir(),
			ReadyFolder:    "ready",
			ProgressFolder: "progress",
			FinishFolder:   "finish",
			FileExtension:  ".pdf",
		},
	}
	logger := zap.NewNop()
	docs, err := document.NewDocumentService(cfg, logger)
	require.NoError(t, err)

	f := &fixture{
		cfg:   cfg,
		repo:  &fakeAnvilRepository{packetEID: "p1", documentEID: "g1"},
		store: redis.NewMemoryStore(),
		docs:  docs,
	}
	f.etch = NewEtchUsecase(cfg, f.repo, docs, f.store, logger)
	f.webhook = NewWebhookUsecase(cfg, f.repo, f.store, docs, logger)
	return f
}

func packetInput(file string) map[string]any {
	return map[string]any{
		"name": "Contract",
		"signers": []any{
			map[string]any{"name": "Ann", "email": "ann@example.com", "fields": []any{map[string]any{"file_id": "doc", "field_id": "sig"}}},
		},
		"files": []any{
			map[string]any{"id": "doc", "title": "Contract", "file": file},
		},
	}
}

func TestCreatePacket_ResolvesReadyFolder(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.docs.GetReadyPath(), "contract.pdf"), []byte("%PDF"), 0o644))

	packet, err := f.etch.CreatePacket(context.Background(), packetInput("contract.pdf"), nil)
	require.NoError(t, err)
	assert.Equal(t, "p1", packet.EID)

	doc := f.repo.created.Files[0].(*entity.DocumentUpload)
	assert.Equal(t, payload.FilePath(filepath.Join(f.docs.GetReadyPath(), "contract.pdf")), doc.File)
	assert.Equal(t, "https://example.com/hook", f.repo.created.WebhookURL)

	assert.FileExists(t, filepath.Join(f.docs.GetProgressPath(), "contract.pdf"))

	record, err := f.etch.GetPacket(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, entity.PacketStatusSent, record.Status)
	assert.Equal(t, "g1", record.DocumentGroupEID)
	assert.Equal(t, []string{"contract.pdf"}, record.SourceFiles)
}

func TestCreatePacket_UsesUploads(t *testing.T) {
	f := newFixture(t)
	handle := &payload.FileHandle{Name: "upload.pdf", Reader: strings.NewReader("%PDF")}

	_, err := f.etch.CreatePacket(context.Background(), packetInput("upload.pdf"), map[string]*payload.FileHandle{"upload.pdf": handle})
	require.NoError(t, err)

	doc := f.repo.created.Files[0].(*entity.DocumentUpload)
	assert.Same(t, handle, doc.File)

	record, err := f.store.GetPacket(context.Background(), "p1")
	require.NoError(t, err)
	assert.Empty(t, record.SourceFiles)
}

func TestCreatePacket_RejectsSharedUpload(t *testing.T) {
	f := newFixture(t)
	handle := &payload.FileHandle{Name: "upload.pdf", Reader: strings.NewReader("%PDF")}
	input := packetInput("upload.pdf")
	input["files"] = append(input["files"].([]any),
		map[string]any{"id": "copy", "title": "Copy", "file": "contract"},
	)

	_, err := f.etch.CreatePacket(context.Background(), input, map[string]*payload.FileHandle{
		"contract":   handle,
		"upload.pdf": handle,
	})
	var rerr *entity.ReferenceError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "copy", rerr.FileID)
	assert.Nil(t, f.repo.created)
}

func TestCreatePacket_MissingDocument(t *testing.T) {
	f := newFixture(t)

	_, err := f.etch.CreatePacket(context.Background(), packetInput("missing.pdf"), nil)
	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Nil(t, f.repo.created)
}

func TestCreatePacket_KeepsExplicitWebhook(t *testing.T) {
	f := newFixture(t)
	input := packetInput("upload.pdf")
	input["webhook_url"] = "https://other.example/hook"

	_, err := f.etch.CreatePacket(context.Background(), input, map[string]*payload.FileHandle{
		"upload.pdf": {Name: "upload.pdf", Reader: strings.NewReader("%PDF")},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://other.example/hook", f.repo.created.WebhookURL)
}

func webhook(action, token string, data string) *entity.WebhookPayload {
	return &entity.WebhookPayload{Action: action, Token: token, Data: json.RawMessage(data)}
}

func TestProcessWebhook_InvalidToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.webhook.ProcessWebhook(context.Background(), webhook(entity.ActionEtchPacketComplete, "wrong", `{"eid":"p1"}`))
	assert.ErrorIs(t, err, ErrInvalidWebhookToken)
}

func TestProcessWebhook_SignerThenComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(filepath.Join(f.docs.GetReadyPath(), "contract.pdf"), []byte("%PDF"), 0o644))
	_, err := f.etch.CreatePacket(ctx, packetInput("contract.pdf"), nil)
	require.NoError(t, err)

	record, err := f.webhook.ProcessWebhook(ctx, webhook(entity.ActionSignerComplete, "tok", `{"etchPacket":{"eid":"p1"}}`))
	require.NoError(t, err)
	assert.Equal(t, entity.PacketStatusSigning, record.Status)
	assert.Empty(t, f.repo.downloads)

	record, err = f.webhook.ProcessWebhook(ctx, webhook(entity.ActionEtchPacketComplete, "tok", `{"eid":"p1","status":"completed"}`))
	require.NoError(t, err)
	assert.Equal(t, entity.PacketStatusCompleted, record.Status)
	assert.Equal(t, []string{"g1"}, f.repo.downloads)
	assert.Equal(t, filepath.Join(f.docs.GetFinishPath(), "p1.zip"), record.SignedArchive)
	sum := blake3.Sum256([]byte("PK"))
	assert.Equal(t, hex.EncodeToString(sum[:]), record.ArchiveChecksum)
	assert.FileExists(t, filepath.Join(f.docs.GetFinishPath(), "contract.pdf"))

	// a repeated completion does not download again
	_, err = f.webhook.ProcessWebhook(ctx, webhook(entity.ActionDocumentGroupDone, "tok", `{"eid":"p1"}`))
	require.NoError(t, err)
	assert.Len(t, f.repo.downloads, 1)
}

func TestProcessWebhook_UntrackedPacket(t *testing.T) {
	f := newFixture(t)

	record, err := f.webhook.ProcessWebhook(context.Background(),
		webhook(entity.ActionEtchPacketComplete, "tok", `"{\"eid\":\"p9\",\"documentGroup\":{\"eid\":\"g9\"}}"`))
	require.NoError(t, err)
	assert.Equal(t, "g9", record.DocumentGroupEID)
	assert.Equal(t, []string{"g9"}, f.repo.downloads)
}

func TestProcessWebhook_IgnoredAction(t *testing.T) {
	f := newFixture(t)

	record, err := f.webhook.ProcessWebhook(context.Background(), webhook("weldComplete", "tok", `{}`))
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestProcessWebhook_MissingEID(t *testing.T) {
	f := newFixture(t)

	_, err := f.webhook.ProcessWebhook(context.Background(), webhook(entity.ActionSignerComplete, "tok", `{"name":"x"}`))
	var verr *entity.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestFillPDF_DecodesMap(t *testing.T) {
	repo := &fakeAnvilRepository{}
	u := NewPDFUsecase(repo, zap.NewNop())

	_, err := u.FillPDF(context.Background(), "tmpl", map[string]any{"title": "T", "data": map[string]any{"a": "b"}, "fontSize": 10})
	require.NoError(t, err)
	assert.Equal(t, "T", repo.fill.Title)
	assert.Equal(t, 10, repo.fill.FontSize)
}

func TestAnvilUsecase(t *testing.T) {
	repo := &fakeAnvilRepository{}
	u := NewAnvilUsecase(repo, zap.NewNop())
	ctx := context.Background()

	_, err := u.Query(ctx, "", nil)
	var verr *entity.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = u.Query(ctx, "{ currentUser { eid } }", map[string]any{})
	require.NoError(t, err)
	assert.Nil(t, repo.queryVars)

	res, err := u.Query(ctx, "mutation Rename($eid: String) { updateCast(eid: $eid) { eid } }", map[string]any{"eid": "c1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"mutated":true}`, string(res))
	assert.Contains(t, repo.mutation, "updateCast")
	assert.Equal(t, map[string]any{"eid": "c1"}, repo.mutateVars)

	res, err = u.ForgeSubmit(ctx, map[string]any{"forge_eid": "f1", "payload": map[string]any{"a": 1}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"eid":"sub"}`, string(res))
	assert.Equal(t, "f1", repo.forge.ForgeEID)

	_, err = u.GetCast(ctx, "", nil)
	assert.ErrorAs(t, err, &verr)
}

func TestIsMutation(t *testing.T) {
	tests := []struct {
		document string
		want     bool
	}{
		{"mutation { a }", true},
		{"  mutation Create($x: Int) { a }", true},
		{"# create\nmutation{ a }", true},
		{"query { a }", false},
		{"{ mutationCount }", false},
		{"mutationCount", false},
		{"# only a comment", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isMutation(tt.document), tt.document)
	}
}
