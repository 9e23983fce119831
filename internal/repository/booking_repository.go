package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/v-anushka05/mockmate-backend/internal/model"
	"github.com/v-anushka05/mockmate-backend/internal/repository/base"
)

type BookingRepository struct {
	*base.Repository
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{Repository: base.NewRepository(pool)}
}

const bookingColumns = `id, user_id, interviewer_id, subject, scheduled_date, scheduled_time, status, meeting_link, feedback, notes, created_at, updated_at`

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var b model.Booking
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.InterviewerID,
		&b.Subject,
		&b.ScheduledDate,
		&b.ScheduledTime,
		&b.Status,
		&b.MeetingLink,
		&b.Feedback,
		&b.Notes,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateScheduled commits a new scheduled booking in a single transaction:
// the idempotency key is checked first (a retried submission returns the
// booking the first attempt created), then the interviewer row is locked
// and the slot probed for a conflicting scheduled booking, then the row is
// inserted. A partial unique index on (interviewer_id, scheduled_date,
// scheduled_time) backstops the probe. The boolean reports whether a new
// row was inserted; false means the key resolved to an earlier booking.
func (r *BookingRepository) CreateScheduled(ctx context.Context, booking *model.Booking, idempotencyKey string) (bool, error) {
	tx, err := r.Pool().Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if idempotencyKey != "" {
		existing, err := scanBooking(tx.QueryRow(ctx,
			`SELECT `+bookingColumns+` FROM bookings WHERE idempotency_key = $1`,
			idempotencyKey,
		))
		if err == nil {
			*booking = *existing
			return false, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return false, fmt.Errorf("idempotency lookup: %w", err)
		}
	}

	// Lock the interviewer row so two concurrent commits for the same
	// interviewer serialize on the conflict probe.
	var interviewerID int64
	err = tx.QueryRow(ctx,
		`SELECT id FROM interviewers WHERE id = $1 FOR UPDATE`,
		booking.InterviewerID,
	).Scan(&interviewerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, &model.NotFoundError{Entity: "interviewer", ID: booking.InterviewerID}
		}
		return false, fmt.Errorf("lock interviewer: %w", err)
	}

	var taken bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE interviewer_id = $1
			  AND scheduled_date = $2
			  AND scheduled_time = $3
			  AND status = 'scheduled'
		)
	`, booking.InterviewerID, booking.ScheduledDate, booking.ScheduledTime).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("conflict probe: %w", err)
	}
	if taken {
		return false, &model.ConflictError{
			InterviewerID: booking.InterviewerID,
			Date:          booking.ScheduledDate.Format("2006-01-02"),
			Time:          booking.ScheduledTime,
		}
	}

	booking.Status = model.BookingStatusScheduled
	err = tx.QueryRow(ctx, `
		INSERT INTO bookings (user_id, interviewer_id, subject, scheduled_date, scheduled_time, status, meeting_link, notes, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''))
		RETURNING id, created_at, updated_at
	`,
		booking.UserID,
		booking.InterviewerID,
		booking.Subject,
		booking.ScheduledDate,
		booking.ScheduledTime,
		booking.Status,
		booking.MeetingLink,
		booking.Notes,
		idempotencyKey,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("insert booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit transaction: %w", err)
	}

	return true, nil
}

// GetByID returns the booking, or nil when no such row exists.
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	booking, err := scanBooking(r.QueryRow(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id,
	))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}
	return booking, nil
}

// ListByUser returns all bookings of a user, newest first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID int64) ([]*model.Booking, error) {
	rows, err := r.Query(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list bookings by user: %w", err)
	}
	defer rows.Close()

	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

// UpdateStatus moves a booking out of scheduled. The WHERE clause guards
// the legal transition so a lost race surfaces as zero affected rows.
func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status model.BookingStatus) error {
	affected, err := r.ExecAffected(ctx, `
		UPDATE bookings
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'scheduled'
	`, status, id)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}

	if affected == 0 {
		return &model.NotFoundError{Entity: "scheduled booking", ID: id}
	}

	return nil
}

// SetFeedback marks the booking completed and attaches the feedback in
// one statement, keeping the at-most-one-feedback invariant.
func (r *BookingRepository) SetFeedback(ctx context.Context, id int64, fb *model.Feedback) error {
	affected, err := r.ExecAffected(ctx, `
		UPDATE bookings
		SET status = 'completed', feedback = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'scheduled' AND feedback IS NULL
	`, fb, id)
	if err != nil {
		return fmt.Errorf("set booking feedback: %w", err)
	}

	if affected == 0 {
		return &model.NotFoundError{Entity: "scheduled booking", ID: id}
	}

	return nil
}

// MarkPastNoShows flips scheduled bookings dated before the cutoff to
// no-show and returns how many were affected.
func (r *BookingRepository) MarkPastNoShows(ctx context.Context, before time.Time) (int64, error) {
	affected, err := r.ExecAffected(ctx, `
		UPDATE bookings
		SET status = 'no-show', updated_at = NOW()
		WHERE status = 'scheduled' AND scheduled_date < $1
	`, before)
	if err != nil {
		return 0, fmt.Errorf("mark past no-shows: %w", err)
	}

	return affected, nil
}
