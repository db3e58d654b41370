// Package server hosts the delivery-bridge callback endpoint.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/diriredouane/AI-Recipe-Automator/internal/sheets"
)

// lockTimeout bounds how long a callback waits for the write lock before
// giving up with a 503.
const lockTimeout = 30 * time.Second

// Server serializes all inbound callback writes to the spreadsheet store.
// Board-catalog and row-status updates from the bridge can arrive
// concurrently with each other; the lock keeps their multi-cell writes
// from interleaving.
type Server struct {
	store  sheets.Store
	secret string
	lock   chan struct{}
	now    func() time.Time
}

func New(store sheets.Store, webhookSecret string) *Server {
	return &Server{
		store:  store,
		secret: webhookSecret,
		lock:   make(chan struct{}, 1),
		now:    time.Now,
	}
}

// acquire takes the callback write lock, failing after lockTimeout.
func (s *Server) acquire(ctx context.Context) error {
	timer := time.NewTimer(lockTimeout)
	defer timer.Stop()
	select {
	case s.lock <- struct{}{}:
		return nil
	case <-timer.C:
		return fmt.Errorf("timed out waiting for the callback write lock")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) release() {
	<-s.lock
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", methodOnly(http.MethodPost, s.requireAuth(s.handleCallback)))
	mux.HandleFunc("/health", methodOnly(http.MethodGet, s.handleHealth))
	return mux
}

// methodOnly restricts a route to one HTTP method, mirroring the Go 1.22+
// ServeMux method patterns ("POST /callback") on toolchains that predate
// them: GET routes also answer HEAD, and other methods get a 405 with an
// Allow header.
func methodOnly(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method && !(method == http.MethodGet && r.Method == http.MethodHead) {
			allow := method
			if method == http.MethodGet {
				allow = "GET, HEAD"
			}
			w.Header().Set("Allow", allow)
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListenAndServe runs the server until ctx is canceled, then drains
// in-flight callbacks before returning.
func (s *Server) ListenAndServe(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
