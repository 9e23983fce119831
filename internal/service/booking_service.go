package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/v-anushka05/mockmate-backend/internal/mailer"
	"github.com/v-anushka05/mockmate-backend/internal/metrics"
	"github.com/v-anushka05/mockmate-backend/internal/model"
	"go.uber.org/zap"
)

// Placeholder until a real meeting-link provider is wired in.
const defaultMeetingLink = "https://meet.google.com/itd-ptkv-bge"

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type InterviewerDirectory interface {
	GetByID(ctx context.Context, id int64) (*model.Interviewer, error)
	FindAvailable(ctx context.Context, subject model.Subject) ([]*model.Interviewer, error)
}

type BookingStore interface {
	CreateScheduled(ctx context.Context, booking *model.Booking, idempotencyKey string) (created bool, err error)
	GetByID(ctx context.Context, id int64) (*model.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status model.BookingStatus) error
	SetFeedback(ctx context.Context, id int64, fb *model.Feedback) error
}

type Notifier interface {
	SendWelcome(ctx context.Context, user *model.User) (*mailer.NotificationRecord, error)
	SendBookingConfirmation(ctx context.Context, user *model.User, interviewer *model.Interviewer, booking *model.Booking) (*mailer.NotificationRecord, error)
}

// MeetingLinkProvider supplies the meeting link frozen into a booking at
// commit time.
type MeetingLinkProvider func() string

// BookingService drives the booking workflow: selection, validation,
// transactional commit and the best-effort confirmation email.
type BookingService struct {
	users       UserStore
	directory   InterviewerDirectory
	bookings    BookingStore
	notifier    Notifier
	meetingLink MeetingLinkProvider
	sessions    *selectionStore
	logger      *zap.Logger
}

func NewBookingService(
	users UserStore,
	directory InterviewerDirectory,
	bookings BookingStore,
	notifier Notifier,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		users:       users,
		directory:   directory,
		bookings:    bookings,
		notifier:    notifier,
		meetingLink: func() string { return defaultMeetingLink },
		sessions:    newSelectionStore(),
		logger:      logger,
	}
}

// SetMeetingLinkProvider replaces the static placeholder link source.
func (s *BookingService) SetMeetingLinkProvider(p MeetingLinkProvider) {
	s.meetingLink = p
}

// RegisterUser creates a user and sends the welcome notice. Delivery
// failure never fails registration; the returned record carries the
// outcome for user feedback.
func (s *BookingService) RegisterUser(ctx context.Context, name, email string) (*model.User, *mailer.NotificationRecord, error) {
	if name == "" || email == "" {
		return nil, nil, &model.ValidationError{Reason: "name and email are required"}
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, &model.PersistenceError{Op: "lookup user", Err: err}
	}
	if existing != nil {
		return nil, nil, &model.ValidationError{Reason: fmt.Sprintf("email %s is already registered", email)}
	}

	user := &model.User{Name: name, Email: email}
	if err := s.users.Create(ctx, user); err != nil {
		var ve *model.ValidationError
		if errors.As(err, &ve) {
			return nil, nil, err
		}
		return nil, nil, &model.PersistenceError{Op: "create user", Err: err}
	}

	s.logger.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("email", user.Email))

	record, mailErr := s.notifier.SendWelcome(ctx, user)
	if mailErr != nil {
		s.logger.Warn("Welcome notice pending, registration unaffected",
			zap.Int64("user_id", user.ID),
			zap.Error(mailErr))
	}

	return user, record, nil
}

// StartSelection opens a new booking attempt for the user.
func (s *BookingService) StartSelection(userID int64) Selection {
	return s.sessions.Create(userID)
}

// UpdateSelection applies subject/date/time changes and re-runs the
// availability filter once all three are present. A previously chosen
// interviewer that drops out of the refreshed candidate set is cleared.
// An empty candidate list is a valid outcome, not an error.
func (s *BookingService) UpdateSelection(ctx context.Context, sessionID string, subject, date, timeSlot string) (Selection, []*model.Interviewer, error) {
	sel, ok := s.sessions.Get(sessionID)
	if !ok {
		return Selection{}, nil, &model.ValidationError{Reason: "unknown selection session"}
	}

	if subject != "" {
		tag, ok := model.ParseSubject(subject)
		if !ok {
			return Selection{}, nil, &model.ValidationError{Reason: fmt.Sprintf("unknown subject %q", subject)}
		}
		sel.Subject = tag
	}
	if date != "" {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			return Selection{}, nil, &model.ValidationError{Reason: fmt.Sprintf("malformed date %q, want YYYY-MM-DD", date)}
		}
		sel.Date = d
	}
	if timeSlot != "" {
		if !model.ValidTimeSlot(timeSlot) {
			return Selection{}, nil, &model.ValidationError{Reason: fmt.Sprintf("unknown time slot %q", timeSlot)}
		}
		sel.TimeSlot = timeSlot
	}

	var candidates []*model.Interviewer
	if sel.Subject.Valid() && !sel.Date.IsZero() && sel.TimeSlot != "" {
		var err error
		candidates, err = s.directory.FindAvailable(ctx, sel.Subject)
		if err != nil {
			return Selection{}, nil, &model.PersistenceError{Op: "availability filter", Err: err}
		}

		sel.Candidates = make(map[int64]struct{}, len(candidates))
		for _, iv := range candidates {
			sel.Candidates[iv.ID] = struct{}{}
		}
		if _, stillIn := sel.Candidates[sel.InterviewerID]; !stillIn {
			sel.InterviewerID = 0
		}
	}

	s.sessions.Put(sel)
	return sel, candidates, nil
}

// ChooseInterviewer records the interviewer choice. The id must belong
// to the most recently computed candidate set.
func (s *BookingService) ChooseInterviewer(sessionID string, interviewerID int64) (Selection, error) {
	sel, ok := s.sessions.Get(sessionID)
	if !ok {
		return Selection{}, &model.ValidationError{Reason: "unknown selection session"}
	}

	if _, inSet := sel.Candidates[interviewerID]; !inSet {
		return Selection{}, &model.ValidationError{Reason: "interviewer is not in the current filtered set"}
	}

	sel.InterviewerID = interviewerID
	s.sessions.Put(sel)
	return sel, nil
}

// DiscardSelection drops the attempt. Safe at any point before Confirm:
// nothing has been persisted yet.
func (s *BookingService) DiscardSelection(sessionID string) {
	s.sessions.Discard(sessionID)
}

// Confirm commits the booking atomically and then requests the
// confirmation email exactly once per committed booking; a replayed
// idempotency key returns the earlier booking without re-sending.
// Delivery failure leaves the booking scheduled and is reported through
// the returned record, never through the error.
func (s *BookingService) Confirm(ctx context.Context, sessionID, idempotencyKey string) (*model.Booking, *mailer.NotificationRecord, error) {
	sel, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, nil, &model.ValidationError{Reason: "unknown selection session"}
	}
	if !sel.Complete() {
		return nil, nil, &model.ValidationError{Reason: "incomplete selection"}
	}

	user, err := s.users.GetByID(ctx, sel.UserID)
	if err != nil {
		return nil, nil, &model.PersistenceError{Op: "lookup user", Err: err}
	}
	if user == nil {
		return nil, nil, &model.NotFoundError{Entity: "user", ID: sel.UserID}
	}

	interviewer, err := s.directory.GetByID(ctx, sel.InterviewerID)
	if err != nil {
		return nil, nil, &model.PersistenceError{Op: "lookup interviewer", Err: err}
	}
	if interviewer == nil {
		return nil, nil, &model.NotFoundError{Entity: "interviewer", ID: sel.InterviewerID}
	}
	if !interviewer.Availability || !interviewer.HasExpertise(sel.Subject) {
		return nil, nil, &model.ValidationError{Reason: "interviewer is no longer available for this subject"}
	}

	booking := &model.Booking{
		UserID:        sel.UserID,
		InterviewerID: sel.InterviewerID,
		Subject:       sel.Subject,
		ScheduledDate: sel.Date,
		ScheduledTime: sel.TimeSlot,
		MeetingLink:   s.meetingLink(),
	}

	created, err := s.bookings.CreateScheduled(ctx, booking, idempotencyKey)
	if err != nil {
		var conflict *model.ConflictError
		var notFound *model.NotFoundError
		if errors.As(err, &conflict) || errors.As(err, &notFound) {
			return nil, nil, err
		}
		return nil, nil, &model.PersistenceError{Op: "commit booking", Err: err}
	}

	s.sessions.Discard(sessionID)

	// An idempotency-key replay resolved to the earlier booking. The
	// first commit already sent its confirmation.
	if !created {
		s.logger.Info("Idempotent replay resolved to existing booking",
			zap.Int64("booking_id", booking.ID))
		return booking, nil, nil
	}

	metrics.BookingsCreated.Inc()

	s.logger.Info("Booking committed",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("user_id", booking.UserID),
		zap.Int64("interviewer_id", booking.InterviewerID),
		zap.String("subject", string(booking.Subject)),
		zap.String("date", booking.ScheduledDate.Format("2006-01-02")),
		zap.String("time", booking.ScheduledTime))

	record, mailErr := s.notifier.SendBookingConfirmation(ctx, user, interviewer, booking)
	if mailErr != nil {
		s.logger.Warn("Booking confirmed, confirmation email pending",
			zap.Int64("booking_id", booking.ID),
			zap.Error(mailErr))
	}

	return booking, record, nil
}

// Cancel moves a scheduled booking to cancelled. Cancelling a booking
// already in cancelled state is a no-op returning the same terminal
// state.
func (s *BookingService) Cancel(ctx context.Context, bookingID, userID int64) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, &model.PersistenceError{Op: "get booking", Err: err}
	}
	if booking == nil {
		return nil, &model.NotFoundError{Entity: "booking", ID: bookingID}
	}

	if booking.UserID != userID {
		return nil, &model.ValidationError{Reason: "no permission to cancel this booking"}
	}

	if booking.Status == model.BookingStatusCancelled {
		return booking, nil
	}
	if !booking.Status.CanTransitionTo(model.BookingStatusCancelled) {
		return nil, &model.ValidationError{Reason: fmt.Sprintf("cannot cancel a %s booking", booking.Status)}
	}

	if err := s.bookings.UpdateStatus(ctx, bookingID, model.BookingStatusCancelled); err != nil {
		return nil, &model.PersistenceError{Op: "cancel booking", Err: err}
	}

	metrics.BookingsCancelled.Inc()
	booking.Status = model.BookingStatusCancelled

	s.logger.Info("Booking cancelled",
		zap.Int64("booking_id", bookingID),
		zap.Int64("user_id", userID))

	return booking, nil
}

// CompleteWithFeedback moves a scheduled booking to completed and
// attaches the validated feedback.
func (s *BookingService) CompleteWithFeedback(ctx context.Context, bookingID int64, fb *model.Feedback) (*model.Booking, error) {
	if fb == nil {
		return nil, &model.ValidationError{Reason: "feedback is required"}
	}
	if err := fb.Validate(); err != nil {
		return nil, err
	}

	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, &model.PersistenceError{Op: "get booking", Err: err}
	}
	if booking == nil {
		return nil, &model.NotFoundError{Entity: "booking", ID: bookingID}
	}
	if !booking.Status.CanTransitionTo(model.BookingStatusCompleted) {
		return nil, &model.ValidationError{Reason: fmt.Sprintf("cannot complete a %s booking", booking.Status)}
	}
	if booking.Feedback != nil {
		return nil, &model.ValidationError{Reason: "booking already has feedback"}
	}

	if err := s.bookings.SetFeedback(ctx, bookingID, fb); err != nil {
		return nil, &model.PersistenceError{Op: "set feedback", Err: err}
	}

	metrics.BookingsCompleted.Inc()
	booking.Status = model.BookingStatusCompleted
	booking.Feedback = fb

	s.logger.Info("Booking completed",
		zap.Int64("booking_id", bookingID),
		zap.Int("score", fb.Score))

	return booking, nil
}

// AvailableInterviewers runs the filter for the directory endpoint.
func (s *BookingService) AvailableInterviewers(ctx context.Context, rawSubject string) ([]*model.Interviewer, error) {
	subject, ok := model.ParseSubject(rawSubject)
	if !ok {
		return nil, &model.ValidationError{Reason: fmt.Sprintf("unknown subject %q", rawSubject)}
	}
	interviewers, err := s.directory.FindAvailable(ctx, subject)
	if err != nil {
		return nil, &model.PersistenceError{Op: "availability filter", Err: err}
	}
	return interviewers, nil
}

// GetBooking returns one booking.
func (s *BookingService) GetBooking(ctx context.Context, id int64) (*model.Booking, error) {
	booking, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, &model.PersistenceError{Op: "get booking", Err: err}
	}
	if booking == nil {
		return nil, &model.NotFoundError{Entity: "booking", ID: id}
	}
	return booking, nil
}

// ListUserBookings returns the user's bookings, newest first.
func (s *BookingService) ListUserBookings(ctx context.Context, userID int64) ([]*model.Booking, error) {
	bookings, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, &model.PersistenceError{Op: "list bookings", Err: err}
	}
	return bookings, nil
}
