package httpapi

import (
	"io"
	"net/http"
	"strconv"

	"github.com/sandevgo/docvault/internal/core"
)

const maxUploadBytes = 32 << 20

type uploadResponse struct {
	Message       string `json:"message"`
	DocumentID    int64  `json:"documentId"`
	VectorStoreID string `json:"vectorStoreId"`
	FileID        string `json:"fileId"`
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.writeError(w, r, core.NewValidationError("invalid multipart body: %v", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, r, core.NewValidationError("no file uploaded"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, r, core.NewValidationError("failed to read uploaded file: %v", err))
		return
	}

	doc, err := s.ingest.Ingest(r.Context(), data, header.Filename)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, uploadResponse{
		Message:       "File uploaded successfully",
		DocumentID:    doc.ID,
		VectorStoreID: doc.VectorStoreID,
		FileID:        doc.FileID,
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.documents.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if docs == nil {
		docs = []core.Document{}
	}
	s.writeJSON(w, http.StatusOK, docs)
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.writeError(w, r, core.NewValidationError("invalid document id %q", r.PathValue("id")))
		return
	}

	doc, err := s.documents.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, doc)
}
