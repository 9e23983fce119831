package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/v-anushka05/mockmate-backend/internal/model"
	"github.com/v-anushka05/mockmate-backend/internal/repository/base"
)

type UserRepository struct {
	*base.Repository
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{Repository: base.NewRepository(pool)}
}

// Create inserts a user and fills in the generated id and timestamp.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (name, email)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, user.Name, user.Email).
		Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		// A concurrent signup can slip past the lookup and lose the
		// insert to the email unique constraint.
		if base.IsUniqueViolation(err) {
			return &model.ValidationError{Reason: fmt.Sprintf("email %s is already registered", user.Email)}
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID returns the user, or nil when no such user exists.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `
		SELECT id, name, email, created_at
		FROM users
		WHERE id = $1
	`

	var user model.User
	err := r.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return &user, nil
}

// GetByEmail returns the user with the given email, or nil.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `
		SELECT id, name, email, created_at
		FROM users
		WHERE email = $1
	`

	var user model.User
	err := r.QueryRow(ctx, query, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return &user, nil
}
