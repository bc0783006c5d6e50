package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/docvault/internal/core"
	"github.com/sandevgo/docvault/internal/service/chat"
	"github.com/sandevgo/docvault/internal/service/ingest"
	"github.com/sandevgo/docvault/pkg/log"
)

// Server exposes the ingestion pipeline and chat orchestrator over HTTP. It
// implements srv.Service so the composition root can manage its lifecycle
// next to the other services.
type Server struct {
	httpSrv   *http.Server
	ingest    *ingest.Service
	chat      *chat.Service
	documents core.DocumentsRepository
	feedback  core.FeedbackRepository
	debug     bool
}

func NewServer(
	addr string,
	ingestSvc *ingest.Service,
	chatSvc *chat.Service,
	documents core.DocumentsRepository,
	feedback core.FeedbackRepository,
	debug bool,
) *Server {
	s := &Server{
		ingest:    ingestSvc,
		chat:      chatSvc,
		documents: documents,
		feedback:  feedback,
		debug:     debug,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /documents", s.handleUploadDocument)
	mux.HandleFunc("GET /documents", s.handleListDocuments)
	mux.HandleFunc("GET /documents/{id}", s.handleGetDocument)
	mux.HandleFunc("POST /chat/message", s.handleChatMessage)
	mux.HandleFunc("POST /chat/feedback", s.handleCreateFeedback)
	mux.HandleFunc("GET /chat/feedback", s.handleListFeedback)

	s.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the full middleware-wrapped handler. Used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

func (s *Server) Start(ctx context.Context) error {
	// Hand the context logger to every request.
	s.httpSrv.BaseContext = func(net.Listener) context.Context {
		return ctx
	}

	log.FromCtx(ctx).Info().Str("addr", s.httpSrv.Addr).Msg("starting http api")
	if err := s.httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}

// middleware assigns a request ID, answers CORS preflight, and logs each
// request on completion.
func (s *Server) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-Id", reqID)

		// The API is consumed from browsers and stays CORS-open.
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		logger := log.FromCtx(r.Context()).With().Str("request_id", reqID).Logger()
		ctx := logger.WithContext(r.Context())

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request handled")
	})
}
