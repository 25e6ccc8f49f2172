package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/chanjohealth/chanjobot/internal/models"
)

// verifyHandler implements the Meta webhook verification handshake: echo the
// challenge when the mode is "subscribe" and the token matches.
func (s *Server) verifyHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	mode := query.Get("hub.mode")
	token := query.Get("hub.verify_token")
	challenge := query.Get("hub.challenge")

	if mode != "subscribe" || token != s.verifyToken {
		slog.Warn("Webhook verification rejected", "mode", mode)
		w.WriteHeader(http.StatusForbidden)
		return
	}

	slog.Info("Webhook verification successful")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(challenge))
}

// webhookHandler receives event deliveries. It always answers 200
// immediately; processing happens in the background so Meta's delivery
// timeout is never hit. Failures after acknowledgment are reported to the
// user directly by the engine, never retried by the provider.
func (s *Server) webhookHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		slog.Error("Failed to read webhook body", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	var payload models.WebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.Error("Failed to decode webhook payload", "error", err)
		w.WriteHeader(http.StatusOK)
		return
	}

	w.WriteHeader(http.StatusOK)

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			if len(change.Value.Statuses) > 0 {
				slog.Debug("Ignoring status update", "count", len(change.Value.Statuses))
			}
			for _, msg := range change.Value.Messages {
				if msg.Type != "text" {
					slog.Info("Ignoring non-text message", "type", msg.Type, "from", msg.From)
					continue
				}
				slog.Debug("Dispatching inbound message", "from", msg.From, "body_length", len(msg.Text.Body))
				// The request context dies with this handler; processing
				// continues on its own context.
				go func(from, text string) {
					if err := s.handler.HandleMessage(context.Background(), from, text); err != nil {
						slog.Error("Message processing failed", "error", err, "from", from)
					}
				}(msg.From, msg.Text.Body)
			}
		}
	}
}

// healthHandler reports liveness for the hosting platform.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
