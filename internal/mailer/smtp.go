package mailer

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/v-anushka05/mockmate-backend/internal/model"
	gomail "github.com/wneessen/go-mail"
)

const (
	dialTimeout = 10 * time.Second
	sendTimeout = 20 * time.Second
)

// SMTPTransport sends messages over SMTP. Configuration comes from the
// environment at startup; there are no compiled-in account defaults.
type SMTPTransport struct {
	client *gomail.Client
	from   string
}

func NewSMTPTransport(host string, port int, secure bool, user, pass, from string) (*SMTPTransport, error) {
	opts := []gomail.Option{
		gomail.WithPort(port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(user),
		gomail.WithPassword(pass),
		gomail.WithTimeout(dialTimeout),
	}
	if secure {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}

	client, err := gomail.NewClient(host, opts...)
	if err != nil {
		return nil, classifyDeliveryError(err)
	}

	return &SMTPTransport{client: client, from: from}, nil
}

// Verify dials the server and authenticates without sending anything.
func (t *SMTPTransport) Verify(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	if err := t.client.DialWithContext(ctx); err != nil {
		return classifyDeliveryError(err)
	}
	if err := t.client.Close(); err != nil {
		return classifyDeliveryError(err)
	}
	return nil
}

func (t *SMTPTransport) Send(ctx context.Context, msg *Message) (string, error) {
	m := gomail.NewMsg()
	// A malformed address is a caller error, never retryable.
	if err := m.FromFormat("MockMate", t.from); err != nil {
		return "", &model.ValidationError{Reason: "sender address: " + err.Error()}
	}
	if err := m.To(msg.To); err != nil {
		return "", &model.ValidationError{Reason: "recipient address: " + err.Error()}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(gomail.TypeTextHTML, msg.HTML)
	m.SetMessageID()

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	if err := t.client.DialAndSendWithContext(ctx, m); err != nil {
		return "", classifyDeliveryError(err)
	}

	return m.GetMessageID(), nil
}

// classifyDeliveryError sorts a transport failure into the taxonomy that
// drives retry policy: timeouts and connection problems are transient,
// authentication failures indicate broken configuration.
func classifyDeliveryError(err error) error {
	var de *model.DeliveryError
	if errors.As(err, &de) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &model.DeliveryError{Kind: model.DeliveryTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &model.DeliveryError{Kind: model.DeliveryTimeout, Err: err}
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "auth") || strings.Contains(msg, "535") {
		return &model.DeliveryError{Kind: model.DeliveryAuth, Err: err}
	}

	return &model.DeliveryError{Kind: model.DeliveryConnectivity, Err: err}
}
