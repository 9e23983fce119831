package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/v-anushka05/mockmate-backend/internal/model"
	"github.com/v-anushka05/mockmate-backend/internal/repository/base"
)

type InterviewerRepository struct {
	*base.Repository
}

func NewInterviewerRepository(pool *pgxpool.Pool) *InterviewerRepository {
	return &InterviewerRepository{Repository: base.NewRepository(pool)}
}

const interviewerColumns = `id, name, email, company, position, expertise, availability, rating, total_interviews, created_at`

func scanInterviewer(row pgx.Row) (*model.Interviewer, error) {
	var iv model.Interviewer
	var expertise []string
	err := row.Scan(
		&iv.ID,
		&iv.Name,
		&iv.Email,
		&iv.Company,
		&iv.Position,
		&expertise,
		&iv.Availability,
		&iv.Rating,
		&iv.TotalInterviews,
		&iv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	for _, e := range expertise {
		iv.Expertise = append(iv.Expertise, model.Subject(e))
	}
	return &iv, nil
}

// GetByID returns the interviewer, or nil when no such row exists.
func (r *InterviewerRepository) GetByID(ctx context.Context, id int64) (*model.Interviewer, error) {
	query := `SELECT ` + interviewerColumns + ` FROM interviewers WHERE id = $1`

	iv, err := scanInterviewer(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get interviewer by id: %w", err)
	}

	return iv, nil
}

// FindAvailable returns available interviewers whose expertise contains
// the subject, ordered by rating descending then name ascending so the
// user-facing choice list is deterministic.
func (r *InterviewerRepository) FindAvailable(ctx context.Context, subject model.Subject) ([]*model.Interviewer, error) {
	query := `
		SELECT ` + interviewerColumns + `
		FROM interviewers
		WHERE availability = TRUE
		  AND $1 = ANY(expertise)
		ORDER BY rating DESC, name ASC
	`

	rows, err := r.Query(ctx, query, string(subject))
	if err != nil {
		return nil, fmt.Errorf("find available interviewers: %w", err)
	}
	defer rows.Close()

	var interviewers []*model.Interviewer
	for rows.Next() {
		iv, err := scanInterviewer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan interviewer: %w", err)
		}
		interviewers = append(interviewers, iv)
	}

	return interviewers, rows.Err()
}

// ListAll returns the whole directory, same ordering as FindAvailable.
func (r *InterviewerRepository) ListAll(ctx context.Context) ([]*model.Interviewer, error) {
	query := `SELECT ` + interviewerColumns + ` FROM interviewers ORDER BY rating DESC, name ASC`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list interviewers: %w", err)
	}
	defer rows.Close()

	var interviewers []*model.Interviewer
	for rows.Next() {
		iv, err := scanInterviewer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan interviewer: %w", err)
		}
		interviewers = append(interviewers, iv)
	}

	return interviewers, rows.Err()
}

// SetAvailability flips the availability flag.
func (r *InterviewerRepository) SetAvailability(ctx context.Context, id int64, available bool) error {
	query := `UPDATE interviewers SET availability = $1 WHERE id = $2`

	affected, err := r.ExecAffected(ctx, query, available, id)
	if err != nil {
		return fmt.Errorf("set interviewer availability: %w", err)
	}

	if affected == 0 {
		return &model.NotFoundError{Entity: "interviewer", ID: id}
	}

	return nil
}
