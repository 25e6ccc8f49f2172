package messaging

import (
	"context"
	"log/slog"

	"github.com/chanjohealth/chanjobot/internal/whatsapp"
)

// TwilioService implements Service using the Twilio WhatsApp gateway.
// The injected sender is the twiliowhatsapp client (or a mock in tests).
type TwilioService struct {
	client whatsapp.Sender
}

// NewTwilioService creates a new TwilioService wrapping the given sender.
func NewTwilioService(client whatsapp.Sender) *TwilioService {
	slog.Debug("TwilioService created")
	return &TwilioService{client: client}
}

// ValidateAndCanonicalizeRecipient validates and canonicalizes a WhatsApp phone number.
func (s *TwilioService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizePhone(recipient)
}

// SendMessage sends a text message through Twilio.
func (s *TwilioService) SendMessage(ctx context.Context, to string, body string) error {
	canonical, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		return err
	}
	return s.client.SendMessage(ctx, canonical, body)
}
