package mailer

import (
	"context"
	"time"
)

// Message is what crosses the outbound notification boundary.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Transport delivers rendered messages. Verify is called once per
// process before the first send so connectivity and authentication
// problems surface early and distinctly.
type Transport interface {
	Verify(ctx context.Context) error
	Send(ctx context.Context, msg *Message) (messageID string, err error)
}

// NotificationRecord is the ephemeral trace of one send attempt. It is
// returned to the caller and never persisted.
type NotificationRecord struct {
	To                string    `json:"to"`
	Subject           string    `json:"subject"`
	RenderedBody      string    `json:"rendered_body"`
	DispatchedAt      time.Time `json:"dispatched_at"`
	Success           bool      `json:"success"`
	ProviderMessageID string    `json:"provider_message_id,omitempty"`
}

// NotificationSent is published to subscribed observers after a
// successful delivery. Purely informational: subscribers must tolerate
// zero or many deliveries.
type NotificationSent struct {
	Kind      Kind
	To        string
	Subject   string
	MessageID string
}
