package document

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"anvil-esign/internal/config"
	"anvil-esign/internal/domain/entity"
	"anvil-esign/internal/payload"
)

// DocumentService manages the document folders. Source documents wait in
// the ready folder, move to progress once their packet is created, and the
// signed archive of a completed packet is written to the finish folder.
type DocumentService interface {
	// ResolveReady returns the path of a document in the ready folder.
	// Only bare file names are accepted.
	ResolveReady(filename string) (payload.FilePath, error)

	// MoveToProgress moves documents from ready to progress folder
	MoveToProgress(filenames ...string) error

	// MoveToFinish moves a document from progress to finish folder
	MoveToFinish(filename string) error

	// SaveToFinish writes content to the finish folder and returns its path
	SaveToFinish(filename string, content []byte) (string, error)

	// GetReadyPath returns the full path to ready folder
	GetReadyPath() string

	// GetProgressPath returns the full path to progress folder
	GetProgressPath() string

	// GetFinishPath returns the full path to finish folder
	GetFinishPath() string
}

type documentService struct {
	config *config.DocumentConfig
	logger *zap.Logger
}

func NewDocumentService(cfg *config.Config, logger *zap.Logger) (DocumentService, error) {
	svc := &documentService{
		config: &cfg.Document,
		logger: logger,
	}

	// Ensure all directories exist
	if err := svc.ensureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create document directories: %w", err)
	}

	logger.Info("Document service initialized",
		zap.String("base_path", cfg.Document.BasePath),
		zap.String("ready_folder", svc.GetReadyPath()),
		zap.String("progress_folder", svc.GetProgressPath()),
		zap.String("finish_folder", svc.GetFinishPath()),
	)

	return svc, nil
}

func (s *documentService) ensureDirectories() error {
	dirs := []string{
		s.GetReadyPath(),
		s.GetProgressPath(),
		s.GetFinishPath(),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

func (s *documentService) GetReadyPath() string {
	return filepath.Join(s.config.BasePath, s.config.ReadyFolder)
}

func (s *documentService) GetProgressPath() string {
	return filepath.Join(s.config.BasePath, s.config.ProgressFolder)
}

func (s *documentService) GetFinishPath() string {
	return filepath.Join(s.config.BasePath, s.config.FinishFolder)
}

// checkName rejects anything that could leave the document folders.
func checkName(filename string) error {
	if filename == "" || filename == "." || filename == ".." ||
		filepath.Base(filename) != filename || strings.ContainsAny(filename, `/\`) {
		return &entity.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("%q must be a file name in the ready folder", filename),
		}
	}
	return nil
}

func (s *documentService) ResolveReady(filename string) (payload.FilePath, error) {
	if err := checkName(filename); err != nil {
		return "", err
	}

	extension := s.config.FileExtension
	if extension == "" {
		extension = ".pdf"
	}
	if !strings.HasSuffix(strings.ToLower(filename), strings.ToLower(extension)) {
		return "", &entity.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("%q must have the %s extension", filename, extension),
		}
	}

	path := filepath.Join(s.GetReadyPath(), filename)
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", &entity.ValidationError{
			Field:   "file",
			Message: fmt.Sprintf("%q was not found in the ready folder", filename),
			Err:     err,
		}
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat document: %w", err)
	}
	if info.IsDir() {
		return "", &entity.ValidationError{Field: "file", Message: fmt.Sprintf("%q is a directory", filename)}
	}

	s.logger.Info("Found document in ready folder",
		zap.String("filename", filename),
		zap.Int64("size_bytes", info.Size()),
	)

	return payload.FilePath(path), nil
}

func (s *documentService) MoveToProgress(filenames ...string) error {
	for _, filename := range filenames {
		if err := checkName(filename); err != nil {
			return err
		}

		srcPath := filepath.Join(s.GetReadyPath(), filename)
		dstPath := filepath.Join(s.GetProgressPath(), filename)

		s.logger.Info("Moving document to progress",
			zap.String("filename", filename),
			zap.String("from", srcPath),
			zap.String("to", dstPath),
		)

		if err := os.Rename(srcPath, dstPath); err != nil {
			return fmt.Errorf("failed to move document to progress: %w", err)
		}
	}

	return nil
}

func (s *documentService) MoveToFinish(filename string) error {
	if err := checkName(filename); err != nil {
		return err
	}

	srcPath := filepath.Join(s.GetProgressPath(), filename)
	dstPath := filepath.Join(s.GetFinishPath(), filename)

	s.logger.Info("Moving document to finish",
		zap.String("filename", filename),
		zap.String("from", srcPath),
		zap.String("to", dstPath),
	)

	if err := os.Rename(srcPath, dstPath); err != nil {
		return fmt.Errorf("failed to move document to finish: %w", err)
	}

	return nil
}

func (s *documentService) SaveToFinish(filename string, content []byte) (string, error) {
	if err := checkName(filename); err != nil {
		return "", err
	}

	finishPath := filepath.Join(s.GetFinishPath(), filename)

	// Write content to finish folder
	if err := os.WriteFile(finishPath, content, 0644); err != nil {
		return "", fmt.Errorf("failed to save file to finish folder: %w", err)
	}

	s.logger.Info("File saved to finish folder",
		zap.String("filename", filename),
		zap.Int("size_bytes", len(content)),
	)

	return finishPath, nil
}

var Module = fx.Module("document",
	fx.Provide(NewDocumentService),
)
