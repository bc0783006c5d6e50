package chat

import (
	"context"
	"time"

	"github.com/sandevgo/docvault/internal/config"
	"github.com/sandevgo/docvault/internal/core"
	"github.com/sandevgo/docvault/pkg/log"
)

// Service orchestrates one question/answer turn: it binds a fresh assistant
// to the document's vector store, appends the user message to a thread,
// submits a run and polls it to a terminal state within a fixed budget.
type Service struct {
	provider  core.RAGProvider
	documents core.DocumentsRepository
	cfg       *config.OpenAIConfig

	pollInterval time.Duration
	maxPolls     int
}

func NewService(provider core.RAGProvider, documents core.DocumentsRepository, cfg *config.OpenAIConfig, app *config.AppConfig) *Service {
	return &Service{
		provider:     provider,
		documents:    documents,
		cfg:          cfg,
		pollInterval: app.RunPollInterval,
		maxPolls:     app.RunMaxPolls,
	}
}

type Result struct {
	ThreadID    string
	Response    string
	AssistantID string
}

// Converse runs a single grounded exchange. A non-empty threadID is reused
// verbatim; the caller owns thread continuity and ownership is not verified
// against the document. Partial remote state (message appended, run
// submitted) is not rolled back on failure.
func (s *Service) Converse(ctx context.Context, documentID int64, message, threadID string) (Result, error) {
	logger := log.FromCtx(ctx)

	if message == "" {
		return Result{}, core.NewValidationError("message cannot be empty")
	}
	if documentID <= 0 {
		return Result{}, core.NewValidationError("invalid document id %d", documentID)
	}
	if err := s.cfg.Validate(); err != nil {
		return Result{}, err
	}

	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return Result{}, err
	}

	// One assistant per turn. Caching one per vector store would change
	// the remote-resource counts callers can observe.
	assistantID, err := s.provider.CreateAssistant(ctx, doc.VectorStoreID)
	if err != nil {
		return Result{}, err
	}

	if threadID == "" {
		threadID, err = s.provider.CreateThread(ctx)
		if err != nil {
			return Result{}, err
		}
	}

	if err := s.provider.AddMessage(ctx, threadID, message); err != nil {
		return Result{}, err
	}

	runID, err := s.provider.CreateRun(ctx, threadID, assistantID)
	if err != nil {
		return Result{}, err
	}
	logger.Debug().
		Int64("document_id", documentID).
		Str("thread_id", threadID).
		Str("run_id", runID).
		Msg("run submitted")

	status, err := s.awaitRun(ctx, threadID, runID)
	if err != nil {
		return Result{}, err
	}
	if status == core.RunFailed {
		return Result{}, &core.RunFailedError{Status: status}
	}

	answer, err := s.provider.GetLatestMessage(ctx, threadID)
	if err != nil {
		return Result{}, err
	}

	return Result{
		ThreadID:    threadID,
		Response:    answer,
		AssistantID: assistantID,
	}, nil
}

// awaitRun waits one interval, polls, and repeats until the run reaches a
// terminal state or the attempt ceiling is exhausted. The remote run is not
// cancelled on timeout; it may still complete on the provider side.
func (s *Service) awaitRun(ctx context.Context, threadID, runID string) (core.RunStatus, error) {
	for attempt := 1; attempt <= s.maxPolls; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.pollInterval):
		}

		status, err := s.provider.GetRunStatus(ctx, threadID, runID)
		if err != nil {
			return "", err
		}
		if status.Terminal() {
			log.FromCtx(ctx).Debug().
				Str("run_id", runID).
				Str("status", string(status)).
				Int("polls", attempt).
				Msg("run reached terminal state")
			return status, nil
		}
	}
	return "", &core.RunTimeoutError{Attempts: s.maxPolls}
}
