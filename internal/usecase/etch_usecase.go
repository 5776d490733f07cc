package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"anvil-esign/internal/config"
	"anvil-esign/internal/domain/entity"
	"anvil-esign/internal/domain/repository"
	"anvil-esign/internal/etch"
	"anvil-esign/internal/infrastructure/document"
	"anvil-esign/internal/infrastructure/redis"
	"anvil-esign/internal/payload"
)

type EtchUsecase interface {
	// CreatePacket builds a packet from map data and sends it. A file entry
	// whose file is a string names either one of uploads or a document in the
	// ready folder.
	CreatePacket(ctx context.Context, input map[string]any, uploads map[string]*payload.FileHandle) (*entity.EtchPacket, error)
	// GetPacket returns the tracked state of a packet created by CreatePacket
	GetPacket(ctx context.Context, eid string) (*entity.PacketRecord, error)
	GenerateSigningURL(ctx context.Context, req *entity.GenerateEtchSigningURLPayload) (string, error)
}

type etchUsecase struct {
	config     *config.Config
	repo       repository.AnvilRepository
	docService document.DocumentService
	store      redis.PacketStore
	logger     *zap.Logger
}

func NewEtchUsecase(
	cfg *config.Config,
	repo repository.AnvilRepository,
	docService document.DocumentService,
	store redis.PacketStore,
	logger *zap.Logger,
) EtchUsecase {
	return &etchUsecase{
		config:     cfg,
		repo:       repo,
		docService: docService,
		store:      store,
		logger:     logger,
	}
}

func (u *etchUsecase) CreatePacket(ctx context.Context, input map[string]any, uploads map[string]*payload.FileHandle) (*entity.EtchPacket, error) {
	packet, err := etch.FromMap(input)
	if err != nil {
		return nil, err
	}

	u.logger.Info("Creating etch packet",
		zap.String("name", packet.Name()),
		zap.Int("signers_count", len(packet.Signers())),
		zap.Int("files_count", len(packet.Files())),
	)

	sources, err := u.resolveFiles(packet, uploads)
	if err != nil {
		return nil, err
	}

	assembled, pending, err := packet.Assemble()
	if err != nil {
		return nil, err
	}
	if assembled.WebhookURL == "" && u.config.Anvil.WebhookURL != "" {
		assembled.WebhookURL = u.config.Anvil.WebhookURL
	}

	u.logger.Info("Etch packet assembled",
		zap.String("name", assembled.Name),
		zap.Int("multipart_uploads", len(pending)),
		zap.Strings("ready_files", sources),
	)

	created, err := u.repo.CreateEtchPacket(ctx, assembled)
	if err != nil {
		u.logger.Error("Failed to create etch packet", zap.Error(err))
		return nil, err
	}

	now := time.Now()
	record := &entity.PacketRecord{
		EID:         created.EID,
		Name:        created.Name,
		DetailsURL:  created.DetailsURL,
		Status:      entity.PacketStatusSent,
		SourceFiles: sources,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if created.DocumentGroup != nil {
		record.DocumentGroupEID = created.DocumentGroup.EID
	}

	// The packet exists at Anvil from here on; tracking failures are logged only.
	if err := u.store.SavePacket(ctx, record); err != nil {
		u.logger.Warn("Failed to save packet record",
			zap.String("eid", created.EID),
			zap.Error(err),
		)
	}
	if len(sources) > 0 {
		if err := u.docService.MoveToProgress(sources...); err != nil {
			u.logger.Warn("Failed to move documents to progress",
				zap.String("eid", created.EID),
				zap.Error(err),
			)
		}
	}

	return created, nil
}

// resolveFiles replaces file name references with the matching upload or
// ready folder document. Each upload may back one file only. It returns the
// ready folder names it used.
func (u *etchUsecase) resolveFiles(packet *etch.Packet, uploads map[string]*payload.FileHandle) ([]string, error) {
	var sources []string
	used := make(map[*payload.FileHandle]string)
	for _, f := range packet.Files() {
		doc, ok := f.(*entity.DocumentUpload)
		if !ok {
			continue
		}
		ref, ok := doc.File.(payload.FilePath)
		if !ok || ref == "" {
			continue
		}

		name := string(ref)
		if handle, ok := uploads[name]; ok {
			// a handle is read once when the request is sent
			if other, seen := used[handle]; seen {
				return nil, &entity.ReferenceError{
					FileID:  doc.ID,
					Message: fmt.Sprintf("upload %s is already used by file %s", name, other),
				}
			}
			used[handle] = doc.ID
			doc.File = handle
			continue
		}

		path, err := u.docService.ResolveReady(name)
		if err != nil {
			return nil, fmt.Errorf("file %s: %w", doc.ID, err)
		}
		doc.File = path
		sources = append(sources, name)
	}
	return sources, nil
}

func (u *etchUsecase) GetPacket(ctx context.Context, eid string) (*entity.PacketRecord, error) {
	return u.store.GetPacket(ctx, eid)
}

func (u *etchUsecase) GenerateSigningURL(ctx context.Context, req *entity.GenerateEtchSigningURLPayload) (string, error) {
	u.logger.Info("Generating signing URL",
		zap.String("signer_eid", req.SignerEID),
		zap.String("client_user_id", req.ClientUserID),
	)

	return u.repo.GenerateEtchSigningURL(ctx, req)
}
