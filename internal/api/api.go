// Package api provides the webhook HTTP server for ChanjoBot.
//
// It exposes the Meta webhook verification handshake, the event delivery
// endpoint, and a health check. Inbound messages are acknowledged
// immediately and processed asynchronously by the flow engine.
package api

import (
	"context"
	"log/slog"
	"net/http"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = ":8080"

// MessageHandler processes one inbound text message. Implemented by the
// flow engine.
type MessageHandler interface {
	HandleMessage(ctx context.Context, sender, text string) error
}

// Opts holds configuration options for the API server.
type Opts struct {
	Addr        string
	VerifyToken string
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithVerifyToken sets the webhook verification token shared with Meta.
func WithVerifyToken(token string) Option {
	return func(o *Opts) { o.VerifyToken = token }
}

// Server is the webhook HTTP server.
type Server struct {
	addr        string
	verifyToken string
	handler     MessageHandler
}

// NewServer creates a webhook server dispatching to the given handler.
func NewServer(handler MessageHandler, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	slog.Debug("API NewServer", "addr", cfg.Addr, "verify_token_set", cfg.VerifyToken != "")
	return &Server{
		addr:        cfg.Addr,
		verifyToken: cfg.VerifyToken,
		handler:     handler,
	}
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /webhook", s.verifyHandler)
	mux.HandleFunc("POST /webhook", s.webhookHandler)
	mux.HandleFunc("GET /health", s.healthHandler)
	return mux
}

// Run starts the HTTP server and blocks until it exits.
func (s *Server) Run() error {
	slog.Info("ChanjoBot webhook server listening", "addr", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}
