// Package messaging provides a pluggable message delivery abstraction.
//
// Two implementations exist: the WhatsApp Cloud API (default) and Twilio's
// WhatsApp gateway. The flow engine only sees this interface.
package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
)

// Service defines a pluggable message delivery abstraction.
type Service interface {
	// ValidateAndCanonicalizeRecipient validates and canonicalizes a recipient
	// identifier to a digits-only, country-code-prefixed phone number.
	ValidateAndCanonicalizeRecipient(recipient string) (string, error)

	// SendMessage sends a text message to a recipient.
	SendMessage(ctx context.Context, to string, body string) error
}

// MinimumPhoneDigits is the shortest recipient identifier accepted.
const MinimumPhoneDigits = 6

// nonDigitRegex strips everything that is not a digit from a recipient.
var nonDigitRegex = regexp.MustCompile(`[^0-9]`)

// canonicalizePhone validates and canonicalizes a phone number by removing
// all non-numeric characters. Shared by both service implementations.
func canonicalizePhone(recipient string) (string, error) {
	if recipient == "" {
		return "", fmt.Errorf("recipient cannot be empty")
	}

	canonical := nonDigitRegex.ReplaceAllString(recipient, "")
	if canonical == "" {
		return "", fmt.Errorf("invalid phone number: no digits found in recipient %q", recipient)
	}
	if len(canonical) < MinimumPhoneDigits {
		return "", fmt.Errorf("invalid phone number: %q is too short (minimum %d digits required)", canonical, MinimumPhoneDigits)
	}

	if canonical != recipient {
		slog.Debug("canonicalized recipient", "original", recipient, "canonical", canonical)
	}
	return canonical, nil
}
