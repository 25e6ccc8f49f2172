package models

// WebhookPayload is the envelope Meta delivers to the webhook. Only the
// nested path down to the messages array is mapped; everything else in the
// payload is ignored.
type WebhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []WebhookMessage `json:"messages"`
				Statuses []interface{}    `json:"statuses"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// WebhookMessage is a single inbound message within a webhook payload.
// Type is "text" for the messages the bot handles; other types (image,
// location, interactive, ...) are logged and dropped.
type WebhookMessage struct {
	ID   string `json:"id"`
	From string `json:"from"`
	Type string `json:"type"`
	Text struct {
		Body string `json:"body"`
	} `json:"text"`
}

// TextMessage is the outbound text payload for the WhatsApp Cloud API.
type TextMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

// NewTextMessage builds a Cloud API text message payload.
func NewTextMessage(to, body string) TextMessage {
	m := TextMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
	}
	m.Text.Body = body
	return m
}
