package mailer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/v-anushka05/mockmate-backend/internal/metrics"
	"github.com/v-anushka05/mockmate-backend/internal/model"
	"go.uber.org/zap"
)

const (
	retryBase     = time.Second
	retryAttempts = 2 // retries after the first attempt
)

// Dispatcher renders notification templates and hands them to the
// transport. Delivery is best-effort: callers report booking success
// independently of the outcome here.
type Dispatcher struct {
	transport Transport
	baseURL   string
	logger    *zap.Logger

	verifyMu sync.Mutex
	verified bool

	mu        sync.RWMutex
	observers []func(NotificationSent)
}

func NewDispatcher(transport Transport, baseURL string, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		baseURL:   baseURL,
		logger:    logger,
	}
}

// Subscribe registers an observer for successful deliveries. Observers
// replace ambient event-bus state: they are scoped to this dispatcher
// and invoked synchronously after a send succeeds.
func (d *Dispatcher) Subscribe(fn func(NotificationSent)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, fn)
}

// SendWelcome sends the WelcomeNotice for a newly registered user.
func (d *Dispatcher) SendWelcome(ctx context.Context, user *model.User) (*NotificationRecord, error) {
	msg, err := RenderWelcome(user, d.baseURL)
	if err != nil {
		return nil, err
	}
	return d.send(ctx, KindWelcomeNotice, msg)
}

// SendBookingConfirmation sends the confirmation for a committed booking.
func (d *Dispatcher) SendBookingConfirmation(ctx context.Context, user *model.User, interviewer *model.Interviewer, booking *model.Booking) (*NotificationRecord, error) {
	msg, err := RenderBookingConfirmation(user, interviewer, booking, d.baseURL)
	if err != nil {
		return nil, err
	}
	return d.send(ctx, KindBookingConfirmation, msg)
}

// verify checks the transport once and caches only success. A failed
// check (unreachable server, cancelled context) is retried on the next
// send so a transient outage at startup does not pin delivery down for
// the process lifetime.
func (d *Dispatcher) verify(ctx context.Context) error {
	d.verifyMu.Lock()
	defer d.verifyMu.Unlock()
	if d.verified {
		return nil
	}
	if err := d.transport.Verify(ctx); err != nil {
		d.logger.Error("Mail transport verification failed", zap.Error(err))
		return err
	}
	d.verified = true
	return nil
}

func (d *Dispatcher) send(ctx context.Context, kind Kind, msg *Message) (*NotificationRecord, error) {
	record := &NotificationRecord{
		To:           msg.To,
		Subject:      msg.Subject,
		RenderedBody: msg.HTML,
		DispatchedAt: time.Now(),
	}

	if err := d.verify(ctx); err != nil {
		d.countFailure(kind, err)
		return record, err
	}

	var messageID string
	backoff := retry.WithMaxRetries(retryAttempts, retry.NewExponential(retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		id, sendErr := d.transport.Send(ctx, msg)
		if sendErr != nil {
			var de *model.DeliveryError
			if errors.As(sendErr, &de) && de.Transient() {
				return retry.RetryableError(sendErr)
			}
			return sendErr
		}
		messageID = id
		return nil
	})

	if err != nil {
		d.countFailure(kind, err)
		var de *model.DeliveryError
		if errors.As(err, &de) && de.Kind == model.DeliveryAuth {
			// Broken configuration, not a transient condition: worth an
			// operational alert, not just a per-send log line.
			d.logger.Error("Mail transport authentication failed, check SMTP credentials",
				zap.String("template", string(kind)),
				zap.Error(err))
		} else {
			d.logger.Warn("Notification delivery failed",
				zap.String("template", string(kind)),
				zap.String("to", msg.To),
				zap.Error(err))
		}
		return record, err
	}

	record.Success = true
	record.ProviderMessageID = messageID
	metrics.EmailsSent.WithLabelValues(string(kind)).Inc()

	d.logger.Info("Notification sent",
		zap.String("template", string(kind)),
		zap.String("to", msg.To),
		zap.String("message_id", messageID))

	d.notifyObservers(NotificationSent{
		Kind:      kind,
		To:        msg.To,
		Subject:   msg.Subject,
		MessageID: messageID,
	})

	return record, nil
}

func (d *Dispatcher) notifyObservers(event NotificationSent) {
	d.mu.RLock()
	observers := make([]func(NotificationSent), len(d.observers))
	copy(observers, d.observers)
	d.mu.RUnlock()

	for _, fn := range observers {
		fn(event)
	}
}

func (d *Dispatcher) countFailure(kind Kind, err error) {
	failureKind := "unknown"
	var de *model.DeliveryError
	if errors.As(err, &de) {
		failureKind = string(de.Kind)
	}
	metrics.EmailsFailed.WithLabelValues(string(kind), failureKind).Inc()
}
