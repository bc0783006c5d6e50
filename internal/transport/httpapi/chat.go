package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/sandevgo/docvault/internal/core"
)

type chatRequest struct {
	DocumentID int64  `json:"documentId"`
	ThreadID   string `json:"threadId"`
	Message    string `json:"message"`
}

type chatResponse struct {
	ThreadID    string `json:"threadId"`
	Response    string `json:"response"`
	AssistantID string `json:"assistantId"`
}

func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, core.NewValidationError("invalid request body: %v", err))
		return
	}
	if req.Message == "" {
		s.writeError(w, r, core.NewValidationError("message cannot be empty"))
		return
	}
	if req.DocumentID <= 0 {
		s.writeError(w, r, core.NewValidationError("invalid document id %d", req.DocumentID))
		return
	}

	result, err := s.chat.Converse(r.Context(), req.DocumentID, req.Message, req.ThreadID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, chatResponse{
		ThreadID:    result.ThreadID,
		Response:    result.Response,
		AssistantID: result.AssistantID,
	})
}

type feedbackRequest struct {
	DocumentID        int64  `json:"documentId"`
	ThreadID          string `json:"threadId"`
	UserMessage       string `json:"userMessage"`
	AssistantResponse string `json:"assistantResponse"`
	IsHelpful         bool   `json:"isHelpful"`
	Note              string `json:"note"`
}

func (s *Server) handleCreateFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, core.NewValidationError("invalid request body: %v", err))
		return
	}
	if req.DocumentID <= 0 {
		s.writeError(w, r, core.NewValidationError("invalid document id %d", req.DocumentID))
		return
	}
	if req.ThreadID == "" {
		s.writeError(w, r, core.NewValidationError("threadId cannot be empty"))
		return
	}

	// The record references a registered document.
	if _, err := s.documents.GetByID(r.Context(), req.DocumentID); err != nil {
		s.writeError(w, r, err)
		return
	}

	_, err := s.feedback.Insert(r.Context(), core.Feedback{
		DocumentID:        req.DocumentID,
		ThreadID:          req.ThreadID,
		UserMessage:       req.UserMessage,
		AssistantResponse: req.AssistantResponse,
		IsHelpful:         req.IsHelpful,
		Note:              req.Note,
		CreatedAt:         time.Now().UTC(),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListFeedback(w http.ResponseWriter, r *http.Request) {
	documentID, err := strconv.ParseInt(r.URL.Query().Get("documentId"), 10, 64)
	if err != nil || documentID <= 0 {
		s.writeError(w, r, core.NewValidationError("invalid documentId query parameter"))
		return
	}

	items, err := s.feedback.ListByDocument(r.Context(), documentID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if items == nil {
		items = []core.Feedback{}
	}
	s.writeJSON(w, http.StatusOK, items)
}
