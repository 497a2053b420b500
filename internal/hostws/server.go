// Package hostws exposes a running viewer session over HTTP: a live stream
// of host events, a bus entry point for outside observers and a cart
// snapshot.
package hostws

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"

	"github.com/roach88/catalogview/internal/config"
	"github.com/roach88/catalogview/internal/loop"
	"github.com/roach88/catalogview/internal/shell"
)

const (
	maxBodyBytes = 1 << 20
	writeTimeout = 10 * time.Second
)

// Server serves one session.
type Server struct {
	app        *shell.App
	cfg        config.ServerConfig
	hub        *Hub
	router     chi.Router
	upgrader   websocket.Upgrader
	httpServer *http.Server
}

// New creates a server for app and starts observing its host events.
func New(app *shell.App, cfg config.ServerConfig) *Server {
	s := &Server{
		app: app,
		cfg: cfg,
		hub: NewHub(),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	app.Document.Observe(s.hub.Observe)
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/ws/events", s.handleEvents)
	r.Post("/bus/{name}", s.handlePublish)
	r.Get("/cart", s.handleCart)

	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Hub returns the host event hub.
func (s *Server) Hub() *Hub { return s.hub }

// ListenAndServe listens on the configured address until Shutdown.
func (s *Server) ListenAndServe() error {
	slog.Info("observation server listening", "addr", s.cfg.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return slices.Contains(s.cfg.AllowedOrigins, "*") || slices.Contains(s.cfg.AllowedOrigins, origin)
}

// handleEvents streams every host event to a websocket client until it
// disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	msgs, cancel := s.hub.Subscribe()
	defer cancel()

	// The reader only notices the client going away.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					slog.Debug("websocket read failed", "error", err)
				}
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				slog.Debug("websocket write failed", "error", err)
				return
			}
		}
	}
}

// handlePublish dispatches a JSON payload on the session bus.
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !shell.Accepts(name) {
		writeError(w, http.StatusNotFound, "bus name not accepted: "+name)
		return
	}

	payload := map[string]any{}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON payload: "+err.Error())
		return
	}

	var publishErr error
	if err := s.app.Loop.Do(r.Context(), func() {
		publishErr = s.app.Publish(name, payload)
	}); err != nil {
		writeLoopError(w, err)
		return
	}

	switch {
	case errors.Is(publishErr, shell.ErrNoCurrentProduct):
		writeError(w, http.StatusConflict, publishErr.Error())
	case publishErr != nil:
		writeError(w, http.StatusBadRequest, publishErr.Error())
	default:
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "dispatched", "name": name})
	}
}

// handleCart returns the cart snapshot.
func (s *Server) handleCart(w http.ResponseWriter, r *http.Request) {
	var snap shell.CartSnapshot
	if err := s.app.Loop.Do(r.Context(), func() {
		snap = s.app.Snapshot()
	}); err != nil {
		writeLoopError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func writeLoopError(w http.ResponseWriter, err error) {
	if errors.Is(err, loop.ErrStopped) {
		writeError(w, http.StatusServiceUnavailable, "session stopped")
		return
	}
	writeError(w, http.StatusGatewayTimeout, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response write failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
