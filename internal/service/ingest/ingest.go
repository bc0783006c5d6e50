package ingest

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/sandevgo/docvault/internal/config"
	"github.com/sandevgo/docvault/internal/core"
	"github.com/sandevgo/docvault/pkg/log"
)

// allowedExtensions is the accepted set of document formats. Matched
// case-insensitively against the uploaded file name.
var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".txt":  {},
	".doc":  {},
	".docx": {},
}

// Service drives a document from raw bytes to a registered, queryable
// resource: upload, create vector store, attach, persist. The steps are
// strictly sequential and there is no compensation of remote resources on
// partial failure; each step logs the IDs it created so orphans can be swept
// by hand.
type Service struct {
	provider  core.RAGProvider
	documents core.DocumentsRepository
	cfg       *config.OpenAIConfig
}

func NewService(provider core.RAGProvider, documents core.DocumentsRepository, cfg *config.OpenAIConfig) *Service {
	return &Service{
		provider:  provider,
		documents: documents,
		cfg:       cfg,
	}
}

func (s *Service) Ingest(ctx context.Context, data []byte, fileName string) (core.Document, error) {
	logger := log.FromCtx(ctx)

	if len(data) == 0 {
		return core.Document{}, core.NewValidationError("no file uploaded")
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if _, ok := allowedExtensions[ext]; !ok {
		return core.Document{}, &core.UnsupportedTypeError{Extension: ext}
	}

	// Refuse before any remote call when the key is missing, and with a
	// distinct error kind.
	if err := s.cfg.Validate(); err != nil {
		return core.Document{}, err
	}

	logger.Info().Str("file_name", fileName).Int("size", len(data)).Msg("starting document ingestion")

	fileID, size, err := s.provider.UploadFile(ctx, data, fileName)
	if err != nil {
		return core.Document{}, err
	}
	logger.Info().Str("file_id", fileID).Int64("size", size).Msg("file uploaded")

	storeID, err := s.provider.CreateVectorStore(ctx, "Store_"+fileName)
	if err != nil {
		return core.Document{}, err
	}
	logger.Info().Str("vector_store_id", storeID).Str("file_id", fileID).Msg("vector store created")

	if err := s.provider.AttachFile(ctx, storeID, fileID); err != nil {
		return core.Document{}, err
	}
	logger.Info().Str("vector_store_id", storeID).Str("file_id", fileID).Msg("file attached to vector store")

	doc := core.Document{
		VectorStoreID: storeID,
		FileID:        fileID,
		FileName:      fileName,
		SizeBytes:     size,
		UploadedAt:    time.Now().UTC(),
	}

	id, err := s.documents.Insert(ctx, doc)
	if err != nil {
		return core.Document{}, err
	}
	doc.ID = id

	logger.Info().Int64("document_id", id).Msg("document registered")
	return doc, nil
}
