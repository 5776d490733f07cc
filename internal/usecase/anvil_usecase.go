package usecase

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"anvil-esign/internal/domain/entity"
	"anvil-esign/internal/domain/repository"
)

// AnvilUsecase exposes the account queries, forge submissions and document
// downloads.
type AnvilUsecase interface {
	CurrentUser(ctx context.Context) (*entity.User, error)
	GetCast(ctx context.Context, eid string, fields []string) (*entity.Cast, error)
	GetCasts(ctx context.Context, fields []string, all bool) ([]entity.Cast, error)
	GetWelds(ctx context.Context) ([]entity.Weld, error)
	// Query runs a raw GraphQL document. Mutations are sent with the
	// repository's Mutate.
	Query(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error)
	ForgeSubmit(ctx context.Context, input map[string]any) (json.RawMessage, error)
	DownloadDocuments(ctx context.Context, documentGroupEID string) ([]byte, error)
}

type anvilUsecase struct {
	repo   repository.AnvilRepository
	logger *zap.Logger
}

func NewAnvilUsecase(repo repository.AnvilRepository, logger *zap.Logger) AnvilUsecase {
	return &anvilUsecase{
		repo:   repo,
		logger: logger,
	}
}

func (u *anvilUsecase) CurrentUser(ctx context.Context) (*entity.User, error) {
	user, err := u.repo.GetCurrentUser(ctx)
	if err != nil {
		u.logger.Error("Failed to get current user", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (u *anvilUsecase) GetCast(ctx context.Context, eid string, fields []string) (*entity.Cast, error) {
	if eid == "" {
		return nil, &entity.ValidationError{Field: "eid", Message: "is required"}
	}
	return u.repo.GetCast(ctx, eid, fields)
}

func (u *anvilUsecase) GetCasts(ctx context.Context, fields []string, all bool) ([]entity.Cast, error) {
	casts, err := u.repo.GetCasts(ctx, fields, all)
	if err != nil {
		u.logger.Error("Failed to get casts", zap.Error(err))
		return nil, err
	}
	u.logger.Info("Casts retrieved", zap.Int("count", len(casts)))
	return casts, nil
}

func (u *anvilUsecase) GetWelds(ctx context.Context) ([]entity.Weld, error) {
	return u.repo.GetWelds(ctx)
}

func (u *anvilUsecase) Query(ctx context.Context, query string, variables map[string]any) (json.RawMessage, error) {
	if query == "" {
		return nil, &entity.ValidationError{Field: "query", Message: "is required"}
	}
	var vars any
	if len(variables) > 0 {
		vars = variables
	}
	if isMutation(query) {
		u.logger.Info("Running GraphQL mutation")
		return u.repo.Mutate(ctx, query, vars)
	}
	return u.repo.Query(ctx, query, vars)
}

// isMutation reports whether the first operation of document is a mutation.
func isMutation(document string) bool {
	doc := strings.TrimLeft(document, " \t\r\n")
	for strings.HasPrefix(doc, "#") {
		end := strings.IndexByte(doc, '\n')
		if end < 0 {
			return false
		}
		doc = strings.TrimLeft(doc[end:], " \t\r\n")
	}
	rest, ok := strings.CutPrefix(doc, "mutation")
	if !ok {
		return false
	}
	return rest == "" || strings.ContainsAny(rest[:1], " \t\r\n({@")
}

func (u *anvilUsecase) ForgeSubmit(ctx context.Context, input map[string]any) (json.RawMessage, error) {
	p, err := entity.DecodeForgeSubmit(input)
	if err != nil {
		return nil, err
	}

	u.logger.Info("Submitting forge", zap.String("forge_eid", p.ForgeEID))

	res, err := u.repo.ForgeSubmit(ctx, p)
	if err != nil {
		u.logger.Error("Failed to submit forge", zap.String("forge_eid", p.ForgeEID), zap.Error(err))
		return nil, err
	}
	return res, nil
}

func (u *anvilUsecase) DownloadDocuments(ctx context.Context, documentGroupEID string) ([]byte, error) {
	content, err := u.repo.DownloadDocuments(ctx, documentGroupEID)
	if err != nil {
		u.logger.Error("Failed to download documents",
			zap.String("document_group_eid", documentGroupEID),
			zap.Error(err),
		)
		return nil, err
	}

	u.logger.Info("Documents downloaded",
		zap.String("document_group_eid", documentGroupEID),
		zap.Int("size_bytes", len(content)),
	)
	return content, nil
}
