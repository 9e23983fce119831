package model

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingStatusScheduled BookingStatus = "scheduled"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusNoShow    BookingStatus = "no-show"
)

// CanTransitionTo enforces the one-directional progression: scheduled may
// move to any terminal status, terminal statuses never change again.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	if s != BookingStatusScheduled {
		return false
	}
	switch next {
	case BookingStatusCompleted, BookingStatusCancelled, BookingStatusNoShow:
		return true
	}
	return false
}

// Booking is the durable record of a scheduled mock interview.
// MeetingLink is frozen at creation and never updated afterwards;
// rescheduling means cancelling and creating a new booking.
type Booking struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"user_id"`
	InterviewerID int64         `json:"interviewer_id"`
	Subject       Subject       `json:"subject"`
	ScheduledDate time.Time     `json:"scheduled_date"`
	ScheduledTime string        `json:"scheduled_time"`
	Status        BookingStatus `json:"status"`
	MeetingLink   string        `json:"meeting_link"`
	Feedback      *Feedback     `json:"feedback,omitempty"`
	Notes         string        `json:"notes"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	// Joined for notifications, not stored on the bookings row
	User        *User        `json:"user,omitempty"`
	Interviewer *Interviewer `json:"interviewer,omitempty"`
}

type FeedbackCategory struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Feedback is populated only on completed bookings, at most once.
type Feedback struct {
	Overall      string             `json:"overall"`
	Strengths    []string           `json:"strengths"`
	Improvements []string           `json:"improvements"`
	Score        int                `json:"score"`
	Categories   []FeedbackCategory `json:"categories"`
}

// Validate checks score bounds before the feedback is persisted.
func (f *Feedback) Validate() error {
	if f.Score < 0 || f.Score > 100 {
		return &ValidationError{Reason: fmt.Sprintf("feedback score %d out of range [0,100]", f.Score)}
	}
	for _, c := range f.Categories {
		if c.Score < 0 || c.Score > 10 {
			return &ValidationError{Reason: fmt.Sprintf("category %q score %d out of range [0,10]", c.Name, c.Score)}
		}
	}
	return nil
}
