package repository

import (
	"context"
	"encoding/json"

	"anvil-esign/internal/domain/entity"
)

// AnvilRepository talks to the Anvil GraphQL and REST APIs. Non-2xx
// responses are returned as *entity.UpstreamError.
type AnvilRepository interface {
	// Query runs a raw GraphQL query and returns the data member
	Query(ctx context.Context, query string, variables any) (json.RawMessage, error)
	// Mutate sends a mutation, as multipart when variables carry file uploads
	Mutate(ctx context.Context, mutation string, variables any) (json.RawMessage, error)

	GetCurrentUser(ctx context.Context) (*entity.User, error)
	GetCast(ctx context.Context, eid string, fields []string) (*entity.Cast, error)
	// GetCasts lists templates of every organization; all includes non-template casts
	GetCasts(ctx context.Context, fields []string, all bool) ([]entity.Cast, error)
	GetWelds(ctx context.Context) ([]entity.Weld, error)

	CreateEtchPacket(ctx context.Context, payload *entity.EtchPacketPayload) (*entity.EtchPacket, error)
	GenerateEtchSigningURL(ctx context.Context, payload *entity.GenerateEtchSigningURLPayload) (string, error)
	ForgeSubmit(ctx context.Context, payload *entity.ForgeSubmitPayload) (json.RawMessage, error)

	// FillPDF returns the filled PDF bytes
	FillPDF(ctx context.Context, templateID string, payload *entity.FillPDFPayload) ([]byte, error)
	GeneratePDF(ctx context.Context, payload *entity.GeneratePDFPayload) ([]byte, error)
	// DownloadDocuments returns the zip of a completed document group
	DownloadDocuments(ctx context.Context, documentGroupEID string) ([]byte, error)
}
