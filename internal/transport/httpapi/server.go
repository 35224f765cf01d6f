package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/verdantlabs/careloop/internal/core"
	"github.com/verdantlabs/careloop/internal/service/chat"
	"github.com/verdantlabs/careloop/pkg/log"
)

// Server is the narrow boundary the surrounding web application calls. It
// exposes the turn endpoint and session subject linkage; everything else
// (CRUD, calendars, theming) lives outside this repository.
type Server struct {
	addr     string
	chat     *chat.Service
	sessions core.SessionsRepository
	srv      *http.Server
}

func NewServer(addr string, chatSvc *chat.Service, sessions core.SessionsRepository) *Server {
	s := &Server{
		addr:     addr,
		chat:     chatSvc,
		sessions: sessions,
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/v1/sessions/{id}/turns", s.handleTurn).Methods(http.MethodPost)
	r.HandleFunc("/v1/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	r.HandleFunc("/v1/sessions/{id}/subject", s.handleSetSubject).Methods(http.MethodPut)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.addr).Msg("http api listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
