package usecase

import (
	"context"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"anvil-esign/internal/config"
	"anvil-esign/internal/domain/entity"
	"anvil-esign/internal/domain/repository"
	"anvil-esign/internal/infrastructure/document"
	"anvil-esign/internal/infrastructure/redis"
)

// ErrInvalidWebhookToken is returned when the callback token does not match
// the configured one.
var ErrInvalidWebhookToken = errors.New("invalid webhook token")

type WebhookUsecase interface {
	// ProcessWebhook processes the webhook callback from Anvil and returns
	// the updated packet record. Actions that carry no packet state are
	// acknowledged with a nil record.
	ProcessWebhook(ctx context.Context, payload *entity.WebhookPayload) (*entity.PacketRecord, error)
}

type webhookUsecase struct {
	config     *config.Config
	repo       repository.AnvilRepository
	store      redis.PacketStore
	docService document.DocumentService
	logger     *zap.Logger
}

func NewWebhookUsecase(
	cfg *config.Config,
	repo repository.AnvilRepository,
	store redis.PacketStore,
	docService document.DocumentService,
	logger *zap.Logger,
) WebhookUsecase {
	return &webhookUsecase{
		config:     cfg,
		repo:       repo,
		store:      store,
		docService: docService,
		logger:     logger,
	}
}

// decodeWebhookData accepts data as an object or as a JSON encoded string.
func decodeWebhookData(raw json.RawMessage) (*entity.WebhookData, error) {
	var data entity.WebhookData
	if len(raw) == 0 {
		return &data, nil
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		raw = json.RawMessage(encoded)
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, &entity.ValidationError{Field: "data", Message: "is not a packet object", Err: err}
	}
	return &data, nil
}

func (u *webhookUsecase) ProcessWebhook(ctx context.Context, payload *entity.WebhookPayload) (*entity.PacketRecord, error) {
	expected := u.config.Anvil.WebhookToken
	if expected != "" && subtle.ConstantTimeCompare([]byte(expected), []byte(payload.Token)) != 1 {
		u.logger.Warn("Rejected webhook with invalid token", zap.String("action", payload.Action))
		return nil, ErrInvalidWebhookToken
	}

	var status string
	switch payload.Action {
	case entity.ActionSignerComplete, entity.ActionSignerUpdateStatus:
		status = entity.PacketStatusSigning
	case entity.ActionEtchPacketComplete, entity.ActionDocumentGroupDone:
		status = entity.PacketStatusCompleted
	default:
		u.logger.Info("Ignoring webhook action", zap.String("action", payload.Action))
		return nil, nil
	}

	data, err := decodeWebhookData(payload.Data)
	if err != nil {
		return nil, err
	}
	eid := data.PacketEID()
	if eid == "" {
		return nil, &entity.ValidationError{Field: "data.eid", Message: "is required"}
	}

	u.logger.Info("Processing webhook callback",
		zap.String("action", payload.Action),
		zap.String("packet_eid", eid),
		zap.String("status", data.Status),
	)

	record, err := u.store.GetPacket(ctx, eid)
	if errors.Is(err, entity.ErrNotFound) {
		u.logger.Info("Webhook for untracked packet, tracking it now", zap.String("packet_eid", eid))
		record = &entity.PacketRecord{EID: eid, Name: data.Name, CreatedAt: time.Now()}
	} else if err != nil {
		return nil, fmt.Errorf("failed to get packet record: %w", err)
	}

	if data.DocumentGroup != nil && data.DocumentGroup.EID != "" {
		record.DocumentGroupEID = data.DocumentGroup.EID
	} else if data.Packet != nil && data.Packet.DocumentGroup != nil && data.Packet.DocumentGroup.EID != "" {
		record.DocumentGroupEID = data.Packet.DocumentGroup.EID
	}

	// completed is final
	if record.Status != entity.PacketStatusCompleted {
		record.Status = status
	}
	record.UpdatedAt = time.Now()

	if status == entity.PacketStatusCompleted && record.SignedArchive == "" {
		if err := u.archive(ctx, record); err != nil {
			u.logger.Error("Failed to archive signed documents",
				zap.String("packet_eid", eid),
				zap.Error(err),
			)
			return nil, err
		}
	}

	if err := u.store.SavePacket(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save packet record: %w", err)
	}

	return record, nil
}

// archive downloads the signed documents into the finish folder and moves
// the packet's source documents there.
func (u *webhookUsecase) archive(ctx context.Context, record *entity.PacketRecord) error {
	if record.DocumentGroupEID == "" {
		u.logger.Warn("Completed packet has no document group", zap.String("packet_eid", record.EID))
		return nil
	}

	content, err := u.repo.DownloadDocuments(ctx, record.DocumentGroupEID)
	if err != nil {
		return fmt.Errorf("failed to download signed documents: %w", err)
	}

	path, err := u.docService.SaveToFinish(record.EID+".zip", content)
	if err != nil {
		return fmt.Errorf("failed to save signed documents: %w", err)
	}
	sum := blake3.Sum256(content)
	record.SignedArchive = path
	record.ArchiveChecksum = hex.EncodeToString(sum[:])

	for _, filename := range record.SourceFiles {
		if err := u.docService.MoveToFinish(filename); err != nil {
			// Log warning but don't fail - file might have been moved already
			u.logger.Warn("Failed to move source document to finish",
				zap.String("filename", filename),
				zap.Error(err),
			)
		}
	}

	u.logger.Info("Signed documents saved to finish folder",
		zap.String("packet_eid", record.EID),
		zap.String("path", path),
		zap.String("checksum", record.ArchiveChecksum),
		zap.Int("size_bytes", len(content)),
	)
	return nil
}
