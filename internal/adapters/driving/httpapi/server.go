// Package httpapi exposes the ingestion, search and question answering
// operations over a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/vishalkumar-swe/documind-rag-endee/internal/core/ports/driving"
	"github.com/vishalkumar-swe/documind-rag-endee/internal/logger"
)

// Version is the API version reported by the health endpoint.
const Version = "0.1.0"

// shutdownGrace bounds how long in-flight requests may run after the server
// is asked to stop.
const shutdownGrace = 10 * time.Second

// Services resolves the driving ports the handlers call. Resolution may
// initialise gateways lazily, so it can fail.
type Services interface {
	Retrieval(ctx context.Context) (driving.RetrievalService, error)
	QA(ctx context.Context) (driving.QAService, error)
}

// Server routes HTTP requests to the pipeline services.
type Server struct {
	services Services
	mux      *http.ServeMux
}

// NewServer creates a server over the given services.
func NewServer(services Services) *Server {
	s := &Server{
		services: services,
		mux:      http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleRoot)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /ingest/text", s.handleIngestText)
	s.mux.HandleFunc("POST /ingest/file", s.handleIngestFile)
	s.mux.HandleFunc("POST /ask", s.handleAsk)
	s.mux.HandleFunc("POST /search", s.handleSearch)
}

// Handler returns the root handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		err := <-errCh
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
