package messaging

import (
	"context"
	"log/slog"

	"github.com/chanjohealth/chanjobot/internal/whatsapp"
)

// CloudAPIService implements Service using the WhatsApp Cloud API client.
type CloudAPIService struct {
	client whatsapp.Sender
}

// NewCloudAPIService creates a new CloudAPIService wrapping the given sender.
func NewCloudAPIService(client whatsapp.Sender) *CloudAPIService {
	slog.Debug("CloudAPIService created")
	return &CloudAPIService{client: client}
}

// ValidateAndCanonicalizeRecipient validates and canonicalizes a WhatsApp phone number.
func (s *CloudAPIService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return canonicalizePhone(recipient)
}

// SendMessage sends a text message through the Cloud API. Failures are the
// caller's to log and absorb; delivery is never retried here.
func (s *CloudAPIService) SendMessage(ctx context.Context, to string, body string) error {
	canonical, err := s.ValidateAndCanonicalizeRecipient(to)
	if err != nil {
		return err
	}
	return s.client.SendMessage(ctx, canonical, body)
}
