package messaging

import (
	"context"
	"testing"
)

type recordingSender struct {
	sent []struct{ To, Body string }
}

func (r *recordingSender) SendMessage(ctx context.Context, to string, body string) error {
	r.sent = append(r.sent, struct{ To, Body string }{to, body})
	return nil
}

func TestValidateAndCanonicalizeRecipient(t *testing.T) {
	svc := NewCloudAPIService(&recordingSender{})

	cases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"already canonical", "254712345678", "254712345678", false},
		{"plus prefix", "+254712345678", "254712345678", false},
		{"formatted", "+254 712-345-678", "254712345678", false},
		{"empty", "", "", true},
		{"no digits", "whatsapp", "", true},
		{"too short", "12345", "", true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := svc.ValidateAndCanonicalizeRecipient(c.in)
			if c.wantErr {
				if err == nil {
					t.Errorf("expected error for %q, got %q", c.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != c.want {
				t.Errorf("canonicalize(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestSendMessageCanonicalizesRecipient(t *testing.T) {
	sender := &recordingSender{}
	svc := NewCloudAPIService(sender)

	if err := svc.SendMessage(context.Background(), "+254 712 345 678", "habari"); err != nil {
		t.Fatalf("SendMessage failed: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 send, got %d", len(sender.sent))
	}
	if sender.sent[0].To != "254712345678" {
		t.Errorf("expected canonicalized recipient, got %q", sender.sent[0].To)
	}
	if sender.sent[0].Body != "habari" {
		t.Errorf("unexpected body %q", sender.sent[0].Body)
	}
}

func TestSendMessageRejectsInvalidRecipient(t *testing.T) {
	sender := &recordingSender{}
	svc := NewTwilioService(sender)

	if err := svc.SendMessage(context.Background(), "abc", "habari"); err == nil {
		t.Error("expected error for invalid recipient, got nil")
	}
	if len(sender.sent) != 0 {
		t.Errorf("expected no sends, got %d", len(sender.sent))
	}
}
