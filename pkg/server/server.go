// Package server exposes the HTTP surface: the bot webhook, the chat-bridge
// poll/send endpoints, and the lead-form action.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mymmrac/telego"

	"github.com/Saterlix/Nova/pkg/bridge"
	"github.com/Saterlix/Nova/pkg/leads"
)

// WebhookHandler processes one inbound bot update.
type WebhookHandler interface {
	HandleUpdate(ctx context.Context, update telego.Update) error
}

// ChatBridge is the widget-facing side of the support relay.
type ChatBridge interface {
	Poll(ctx context.Context, sessionID string) []bridge.Message
	Send(ctx context.Context, text string) error
}

// LeadRelay validates and forwards form submissions.
type LeadRelay interface {
	Submit(ctx context.Context, sub leads.Submission) map[string]string
}

// Server routes HTTP traffic to the relay components. Any component may be
// nil when its credentials are missing; the matching endpoint then answers
// with an explicit configuration error instead of crashing the process.
type Server struct {
	addr    string
	webhook WebhookHandler
	bridge  ChatBridge
	leads   LeadRelay
	log     *slog.Logger
}

// New assembles the server for the given listen address.
func New(addr string, webhook WebhookHandler, chatBridge ChatBridge, leadRelay LeadRelay, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}

	return &Server{
		addr:    addr,
		webhook: webhook,
		bridge:  chatBridge,
		leads:   leadRelay,
		log:     log.With("component", "server"),
	}
}

// Router builds the chi handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/bot/webhook", s.handleWebhook)
	r.Get("/chat/poll", s.handlePoll)
	r.Post("/chat/send", s.handleSend)
	r.Post("/api/leads", s.handleLeads)

	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	s.log.Info("HTTP server started", "address", s.addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
