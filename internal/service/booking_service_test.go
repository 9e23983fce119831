package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/v-anushka05/mockmate-backend/internal/mailer"
	"github.com/v-anushka05/mockmate-backend/internal/model"
	"go.uber.org/zap"
)

// --- fakes ---

type fakeUsers struct {
	users     map[int64]*model.User
	nextID    int64
	createErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[int64]*model.User)}
}

func (f *fakeUsers) Create(ctx context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

type fakeDirectory struct {
	interviewers []*model.Interviewer
}

func (f *fakeDirectory) GetByID(ctx context.Context, id int64) (*model.Interviewer, error) {
	for _, iv := range f.interviewers {
		if iv.ID == id {
			return iv, nil
		}
	}
	return nil, nil
}

func (f *fakeDirectory) FindAvailable(ctx context.Context, subject model.Subject) ([]*model.Interviewer, error) {
	var out []*model.Interviewer
	for _, iv := range f.interviewers {
		if iv.Availability && iv.HasExpertise(subject) {
			out = append(out, iv)
		}
	}
	return out, nil
}

type fakeBookings struct {
	bookings map[int64]*model.Booking
	byKey    map[string]int64
	nextID   int64
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{
		bookings: make(map[int64]*model.Booking),
		byKey:    make(map[string]int64),
	}
}

func (f *fakeBookings) CreateScheduled(ctx context.Context, booking *model.Booking, idempotencyKey string) (bool, error) {
	if idempotencyKey != "" {
		if id, ok := f.byKey[idempotencyKey]; ok {
			*booking = *f.bookings[id]
			return false, nil
		}
	}

	for _, existing := range f.bookings {
		if existing.InterviewerID == booking.InterviewerID &&
			existing.ScheduledDate.Equal(booking.ScheduledDate) &&
			existing.ScheduledTime == booking.ScheduledTime &&
			existing.Status == model.BookingStatusScheduled {
			return false, &model.ConflictError{
				InterviewerID: booking.InterviewerID,
				Date:          booking.ScheduledDate.Format("2006-01-02"),
				Time:          booking.ScheduledTime,
			}
		}
	}

	f.nextID++
	booking.ID = f.nextID
	booking.Status = model.BookingStatusScheduled
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	copied := *booking
	f.bookings[booking.ID] = &copied
	if idempotencyKey != "" {
		f.byKey[idempotencyKey] = booking.ID
	}
	return true, nil
}

func (f *fakeBookings) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	booking, ok := f.bookings[id]
	if !ok {
		return nil, nil
	}
	copied := *booking
	return &copied, nil
}

func (f *fakeBookings) ListByUser(ctx context.Context, userID int64) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, booking := range f.bookings {
		if booking.UserID == userID {
			copied := *booking
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeBookings) UpdateStatus(ctx context.Context, id int64, status model.BookingStatus) error {
	booking, ok := f.bookings[id]
	if !ok || booking.Status != model.BookingStatusScheduled {
		return &model.NotFoundError{Entity: "scheduled booking", ID: id}
	}
	booking.Status = status
	booking.UpdatedAt = time.Now()
	return nil
}

func (f *fakeBookings) SetFeedback(ctx context.Context, id int64, fb *model.Feedback) error {
	booking, ok := f.bookings[id]
	if !ok || booking.Status != model.BookingStatusScheduled || booking.Feedback != nil {
		return &model.NotFoundError{Entity: "scheduled booking", ID: id}
	}
	booking.Status = model.BookingStatusCompleted
	booking.Feedback = fb
	booking.UpdatedAt = time.Now()
	return nil
}

type confirmationCall struct {
	user        *model.User
	interviewer *model.Interviewer
	booking     *model.Booking
}

type fakeNotifier struct {
	welcomeErr error
	confirmErr error

	welcomes      []*model.User
	confirmations []confirmationCall
}

func (f *fakeNotifier) SendWelcome(ctx context.Context, user *model.User) (*mailer.NotificationRecord, error) {
	f.welcomes = append(f.welcomes, user)
	record := &mailer.NotificationRecord{To: user.Email, DispatchedAt: time.Now()}
	if f.welcomeErr != nil {
		return record, f.welcomeErr
	}
	record.Success = true
	return record, nil
}

func (f *fakeNotifier) SendBookingConfirmation(ctx context.Context, user *model.User, interviewer *model.Interviewer, booking *model.Booking) (*mailer.NotificationRecord, error) {
	f.confirmations = append(f.confirmations, confirmationCall{user: user, interviewer: interviewer, booking: booking})
	record := &mailer.NotificationRecord{To: user.Email, DispatchedAt: time.Now()}
	if f.confirmErr != nil {
		return record, f.confirmErr
	}
	record.Success = true
	return record, nil
}

// --- fixtures ---

func testDirectory() *fakeDirectory {
	return &fakeDirectory{interviewers: []*model.Interviewer{
		{
			ID: 1, Name: "John Smith", Email: "john.smith@mockmate.com",
			Company: "Google", Position: "Senior Software Engineer",
			Expertise: []model.Subject{model.SubjectDSA, model.SubjectOS}, Availability: true, Rating: 4.8,
		},
		{
			ID: 2, Name: "Sarah Johnson", Email: "sarah.johnson@mockmate.com",
			Company: "Microsoft", Position: "HR Manager",
			Expertise: []model.Subject{model.SubjectHR}, Availability: true, Rating: 4.9,
		},
		{
			ID: 3, Name: "David Brown", Email: "david.brown@mockmate.com",
			Company: "Twitter", Position: "Database Engineer",
			Expertise: []model.Subject{model.SubjectDBMS}, Availability: false, Rating: 4.7,
		},
	}}
}

func newTestService(t *testing.T) (*BookingService, *fakeUsers, *fakeBookings, *fakeNotifier) {
	t.Helper()
	users := newFakeUsers()
	bookings := newFakeBookings()
	notifier := &fakeNotifier{}
	svc := NewBookingService(users, testDirectory(), bookings, notifier, zap.NewNop())
	return svc, users, bookings, notifier
}

func registerTestUser(t *testing.T, svc *BookingService) *model.User {
	t.Helper()
	user, _, err := svc.RegisterUser(context.Background(), "Anushka", "anushka@example.com")
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	return user
}

// completeSelection walks a session up to a committable state.
func completeSelection(t *testing.T, svc *BookingService, userID int64) string {
	t.Helper()
	ctx := context.Background()
	sel := svc.StartSelection(userID)
	if _, _, err := svc.UpdateSelection(ctx, sel.ID, "dsa", "2025-06-10", "10:00 AM"); err != nil {
		t.Fatalf("UpdateSelection: %v", err)
	}
	if _, err := svc.ChooseInterviewer(sel.ID, 1); err != nil {
		t.Fatalf("ChooseInterviewer: %v", err)
	}
	return sel.ID
}

// --- tests ---

func TestAvailabilityFilterPredicate(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	got, err := svc.AvailableInterviewers(context.Background(), "dbms")
	if err != nil {
		t.Fatalf("AvailableInterviewers: %v", err)
	}
	// Interviewer 3 covers dbms but is unavailable; nobody else does.
	if len(got) != 0 {
		t.Fatalf("expected no dbms interviewers, got %d", len(got))
	}

	got, err = svc.AvailableInterviewers(context.Background(), "dsa")
	if err != nil {
		t.Fatalf("AvailableInterviewers: %v", err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("dsa filter = %v, want exactly interviewer 1", got)
	}

	if _, err := svc.AvailableInterviewers(context.Background(), "cloud"); err == nil {
		t.Error("unknown subject should be a validation error")
	}
}

func TestSubjectSwitchClearsChosenInterviewer(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	user := registerTestUser(t, svc)
	ctx := context.Background()

	sel := svc.StartSelection(user.ID)
	if _, _, err := svc.UpdateSelection(ctx, sel.ID, "dsa", "2025-06-10", "10:00 AM"); err != nil {
		t.Fatalf("UpdateSelection: %v", err)
	}
	if _, err := svc.ChooseInterviewer(sel.ID, 1); err != nil {
		t.Fatalf("ChooseInterviewer: %v", err)
	}

	// Switching dsa -> hr drops interviewer 1 out of the candidate set.
	updated, candidates, err := svc.UpdateSelection(ctx, sel.ID, "hr", "", "")
	if err != nil {
		t.Fatalf("UpdateSelection: %v", err)
	}
	if updated.InterviewerID != 0 {
		t.Errorf("interviewer id = %d, want cleared on subject switch", updated.InterviewerID)
	}
	if len(candidates) != 1 || candidates[0].ID != 2 {
		t.Errorf("hr candidates = %v, want exactly interviewer 2", candidates)
	}

	// The cleared selection is no longer committable.
	if _, _, err := svc.Confirm(ctx, sel.ID, ""); err == nil {
		t.Error("Confirm after interviewer reset should fail validation")
	}
}

func TestConfirmRequiresCompleteSelection(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	user := registerTestUser(t, svc)
	ctx := context.Background()

	sel := svc.StartSelection(user.ID)
	if _, _, err := svc.UpdateSelection(ctx, sel.ID, "dsa", "2025-06-10", ""); err != nil {
		t.Fatalf("UpdateSelection: %v", err)
	}

	_, _, err := svc.Confirm(ctx, sel.ID, "")
	var validation *model.ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("Confirm on incomplete selection = %v, want ValidationError", err)
	}
	if validation.Reason != "incomplete selection" {
		t.Errorf("reason = %q, want %q", validation.Reason, "incomplete selection")
	}
}

func TestChooseInterviewerOutsideFilteredSet(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	user := registerTestUser(t, svc)
	ctx := context.Background()

	sel := svc.StartSelection(user.ID)
	if _, _, err := svc.UpdateSelection(ctx, sel.ID, "dsa", "2025-06-10", "10:00 AM"); err != nil {
		t.Fatalf("UpdateSelection: %v", err)
	}

	// Interviewer 2 is hr-only and not in the dsa candidate set.
	if _, err := svc.ChooseInterviewer(sel.ID, 2); err == nil {
		t.Error("choosing an interviewer outside the filtered set should fail")
	}
}

func TestBookingScenarioEndToEnd(t *testing.T) {
	svc, _, _, notifier := newTestService(t)
	user := registerTestUser(t, svc)
	ctx := context.Background()

	sel := svc.StartSelection(user.ID)
	_, candidates, err := svc.UpdateSelection(ctx, sel.ID, "dsa", "2025-06-10", "10:00 AM")
	if err != nil {
		t.Fatalf("UpdateSelection: %v", err)
	}
	if len(candidates) != 1 || candidates[0].ID != 1 {
		t.Fatalf("candidates = %v, want exactly interviewer 1", candidates)
	}

	if _, err := svc.ChooseInterviewer(sel.ID, 1); err != nil {
		t.Fatalf("ChooseInterviewer: %v", err)
	}

	booking, record, err := svc.Confirm(ctx, sel.ID, "")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if booking.Status != model.BookingStatusScheduled {
		t.Errorf("status = %s, want scheduled", booking.Status)
	}
	if booking.MeetingLink == "" {
		t.Error("meeting link must be frozen at commit time")
	}
	if record == nil || !record.Success {
		t.Error("confirmation email should have been reported as sent")
	}

	if len(notifier.confirmations) != 1 {
		t.Fatalf("confirmation sends = %d, want exactly 1", len(notifier.confirmations))
	}
	call := notifier.confirmations[0]
	if call.user.Email != user.Email {
		t.Errorf("confirmation to %q, want %q", call.user.Email, user.Email)
	}
	if call.booking.ID != booking.ID {
		t.Errorf("confirmation for booking %d, want %d", call.booking.ID, booking.ID)
	}

	// The session is discarded after a successful commit.
	if _, _, err := svc.Confirm(ctx, sel.ID, ""); err == nil {
		t.Error("second Confirm on the same session should fail")
	}
}

func TestNotificationFailureDoesNotAlterBooking(t *testing.T) {
	svc, _, bookings, notifier := newTestService(t)
	user := registerTestUser(t, svc)
	notifier.confirmErr = &model.DeliveryError{
		Kind: model.DeliveryConnectivity,
		Err:  fmt.Errorf("dial tcp: connection refused"),
	}

	sessionID := completeSelection(t, svc, user.ID)
	booking, record, err := svc.Confirm(context.Background(), sessionID, "")
	if err != nil {
		t.Fatalf("Confirm must not fail on delivery error, got %v", err)
	}
	if record.Success {
		t.Error("record should carry the delivery failure")
	}

	stored, _ := bookings.GetByID(context.Background(), booking.ID)
	if stored.Status != model.BookingStatusScheduled {
		t.Errorf("stored status = %s, want scheduled despite email failure", stored.Status)
	}
}

func TestConfirmIdempotencyKey(t *testing.T) {
	svc, _, _, notifier := newTestService(t)
	user := registerTestUser(t, svc)
	ctx := context.Background()

	first, _, err := svc.Confirm(ctx, completeSelection(t, svc, user.ID), "attempt-1")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	// A retried submission reuses the key and must not create a second
	// booking even though it comes through a fresh session.
	second, _, err := svc.Confirm(ctx, completeSelection(t, svc, user.ID), "attempt-1")
	if err != nil {
		t.Fatalf("retried Confirm: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("retried commit created booking %d, want original %d", second.ID, first.ID)
	}

	// The first commit already sent its confirmation; the replay must
	// not send another.
	if len(notifier.confirmations) != 1 {
		t.Fatalf("confirmation sends = %d, want 1 per committed booking", len(notifier.confirmations))
	}
}

func TestConfirmDoubleBookingConflict(t *testing.T) {
	svc, users, _, _ := newTestService(t)
	user := registerTestUser(t, svc)
	ctx := context.Background()

	if _, _, err := svc.Confirm(ctx, completeSelection(t, svc, user.ID), ""); err != nil {
		t.Fatalf("first Confirm: %v", err)
	}

	other := &model.User{Name: "Rahul", Email: "rahul@example.com"}
	if err := users.Create(ctx, other); err != nil {
		t.Fatalf("create second user: %v", err)
	}

	_, _, err := svc.Confirm(ctx, completeSelection(t, svc, other.ID), "")
	var conflict *model.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("second booking of the same slot = %v, want ConflictError", err)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	user := registerTestUser(t, svc)
	ctx := context.Background()

	booking, _, err := svc.Confirm(ctx, completeSelection(t, svc, user.ID), "")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	cancelled, err := svc.Cancel(ctx, booking.ID, user.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != model.BookingStatusCancelled {
		t.Fatalf("status = %s, want cancelled", cancelled.Status)
	}

	again, err := svc.Cancel(ctx, booking.ID, user.ID)
	if err != nil {
		t.Fatalf("repeated Cancel should be a no-op, got %v", err)
	}
	if again.Status != model.BookingStatusCancelled {
		t.Errorf("repeated Cancel status = %s, want cancelled", again.Status)
	}
}

func TestCancelRequiresOwnership(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	user := registerTestUser(t, svc)
	ctx := context.Background()

	booking, _, err := svc.Confirm(ctx, completeSelection(t, svc, user.ID), "")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	if _, err := svc.Cancel(ctx, booking.ID, user.ID+99); err == nil {
		t.Error("cancelling someone else's booking should fail")
	}
}

func TestCompleteWithFeedback(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	user := registerTestUser(t, svc)
	ctx := context.Background()

	booking, _, err := svc.Confirm(ctx, completeSelection(t, svc, user.ID), "")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	bad := &model.Feedback{Score: 150}
	if _, err := svc.CompleteWithFeedback(ctx, booking.ID, bad); err == nil {
		t.Error("out-of-range score should be rejected")
	}

	fb := &model.Feedback{
		Overall:      "strong problem solving",
		Strengths:    []string{"clear communication"},
		Improvements: []string{"edge cases"},
		Score:        82,
		Categories:   []model.FeedbackCategory{{Name: "Coding", Score: 8}},
	}
	completed, err := svc.CompleteWithFeedback(ctx, booking.ID, fb)
	if err != nil {
		t.Fatalf("CompleteWithFeedback: %v", err)
	}
	if completed.Status != model.BookingStatusCompleted {
		t.Errorf("status = %s, want completed", completed.Status)
	}

	// At most one feedback block per booking.
	if _, err := svc.CompleteWithFeedback(ctx, booking.ID, fb); err == nil {
		t.Error("second feedback submission should fail")
	}
}

func TestRegisterUserSurvivesWelcomeFailure(t *testing.T) {
	svc, _, _, notifier := newTestService(t)
	notifier.welcomeErr = &model.DeliveryError{
		Kind: model.DeliveryTimeout,
		Err:  fmt.Errorf("smtp dial timed out"),
	}

	user, record, err := svc.RegisterUser(context.Background(), "Priya", "priya@example.com")
	if err != nil {
		t.Fatalf("RegisterUser must not fail on welcome delivery, got %v", err)
	}
	if user.ID == 0 {
		t.Error("user was not persisted")
	}
	if record.Success {
		t.Error("record should carry the delivery failure")
	}
}

func TestRegisterUserRejectsDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	registerTestUser(t, svc)

	if _, _, err := svc.RegisterUser(context.Background(), "Other", "anushka@example.com"); err == nil {
		t.Error("duplicate email should be rejected")
	}
}

func TestRegisterUserLostInsertRaceIsValidation(t *testing.T) {
	svc, users, _, _ := newTestService(t)

	// A concurrent signup can pass the email lookup and lose the insert
	// to the unique constraint. That is still the caller's duplicate,
	// not a persistence failure.
	users.createErr = &model.ValidationError{Reason: "email anushka@example.com is already registered"}

	_, _, err := svc.RegisterUser(context.Background(), "Anushka", "anushka@example.com")
	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	var pe *model.PersistenceError
	if errors.As(err, &pe) {
		t.Fatalf("err = %v, must not be wrapped as a persistence error", err)
	}
}

func TestDiscardSelectionHasNoSideEffect(t *testing.T) {
	svc, _, bookings, _ := newTestService(t)
	user := registerTestUser(t, svc)

	sessionID := completeSelection(t, svc, user.ID)
	svc.DiscardSelection(sessionID)

	if _, _, err := svc.Confirm(context.Background(), sessionID, ""); err == nil {
		t.Error("Confirm after discard should fail")
	}
	if len(bookings.bookings) != 0 {
		t.Error("discarding a selection must not persist anything")
	}
}
