// Package httpserver exposes the orchestrator and conversation store to
// the browser UI as a small JSON API. The UI performs no retry, caching or
// classification of its own; it renders whatever this API returns.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"shopmate/internal/ports"
	"shopmate/internal/services"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http *http.Server
	log  ports.Logger
}

// New builds the router and server.
func New(addr string, chat *services.ChatService, store *services.ConversationStore, log ports.Logger) *Server {
	h := &handlers{chat: chat, store: store, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))

	r.Get("/healthz", h.health)
	r.Route("/api", func(r chi.Router) {
		r.Post("/chat", h.chatTurn)
		r.Get("/conversation", h.conversation)
		r.Delete("/conversation", h.clearConversation)
	})

	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			// A chat turn can spend several backoff cycles on providers.
			WriteTimeout: 3 * time.Minute,
			IdleTimeout:  60 * time.Second,
		},
		log: log,
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Start runs the server until error or shutdown.
func (s *Server) Start() error {
	s.log.Info("http server listening", map[string]interface{}{"addr": s.http.Addr})
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("http server shutting down", nil)
	return s.http.Shutdown(ctx)
}

// requestLogger emits one structured line per request.
func requestLogger(log ports.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("request", map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   ww.Status(),
				"duration": time.Since(start).String(),
			})
		})
	}
}
