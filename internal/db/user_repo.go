package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"droughtwatch/internal/types"
)

// UserRepository provides data access for the users table. Accounts here are
// alert subscribers, not authenticated principals; there are no credentials.
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new UserRepository backed by the given
// database connection (pool or transaction).
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `u.id, u.email, u.name, u.region, u.organization, u.created_at`

func scanUser(row pgx.Row) (*types.User, error) {
	var u types.User
	var organization *string
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.Region,
		&organization,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if organization != nil {
		u.Organization = *organization
	}
	return &u, nil
}

// Create inserts a new subscriber. Returns ErrCodeConflictEmail if the email
// is already registered.
func (r *UserRepository) Create(ctx context.Context, user *types.User) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (email, name, region, organization, created_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 RETURNING id, created_at`,
		user.Email,
		user.Name,
		user.Region,
		nilIfEmpty(user.Organization),
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return types.NewAppError(types.ErrCodeConflictEmail, "email already registered", err)
		}
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create user", err)
	}
	return nil
}

// GetByID retrieves a subscriber by ID. Returns ErrCodeNotFoundUser when the
// account does not exist.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*types.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.id = $1`,
		id,
	)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve user", err)
	}
	return u, nil
}

// GetByEmail retrieves a subscriber by email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*types.User, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users u WHERE u.email = $1`,
		email,
	)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve user by email", err)
	}
	return u, nil
}

// Delete removes a subscriber. Triggers, their conditions, and notification
// log entries follow via ON DELETE CASCADE.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM users WHERE id = $1`,
		id,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
	}
	return nil
}
