package usecase

import (
	"context"

	"go.uber.org/zap"

	"anvil-esign/internal/domain/entity"
	"anvil-esign/internal/domain/repository"
)

type PDFUsecase interface {
	// FillPDF fills the template with map data and returns the PDF
	FillPDF(ctx context.Context, templateID string, input map[string]any) ([]byte, error)
	// GeneratePDF renders markdown or HTML map data into a PDF
	GeneratePDF(ctx context.Context, input map[string]any) ([]byte, error)
}

type pdfUsecase struct {
	repo   repository.AnvilRepository
	logger *zap.Logger
}

func NewPDFUsecase(repo repository.AnvilRepository, logger *zap.Logger) PDFUsecase {
	return &pdfUsecase{
		repo:   repo,
		logger: logger,
	}
}

func (u *pdfUsecase) FillPDF(ctx context.Context, templateID string, input map[string]any) ([]byte, error) {
	var p entity.FillPDFPayload
	if err := entity.Decode(input, &p); err != nil {
		return nil, err
	}

	u.logger.Info("Filling PDF template", zap.String("template_id", templateID))

	pdf, err := u.repo.FillPDF(ctx, templateID, &p)
	if err != nil {
		u.logger.Error("Failed to fill PDF", zap.String("template_id", templateID), zap.Error(err))
		return nil, err
	}

	u.logger.Info("PDF filled", zap.String("template_id", templateID), zap.Int("size_bytes", len(pdf)))
	return pdf, nil
}

func (u *pdfUsecase) GeneratePDF(ctx context.Context, input map[string]any) ([]byte, error) {
	var p entity.GeneratePDFPayload
	if err := entity.Decode(input, &p); err != nil {
		return nil, err
	}

	pdf, err := u.repo.GeneratePDF(ctx, &p)
	if err != nil {
		u.logger.Error("Failed to generate PDF", zap.Error(err))
		return nil, err
	}

	u.logger.Info("PDF generated", zap.String("type", p.Type), zap.Int("size_bytes", len(pdf)))
	return pdf, nil
}
