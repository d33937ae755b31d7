package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/noah-isme/backend-ooh/internal/common"
)

// User is one staff account in the admin app. The password hash never leaves
// the API.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Store persists users in Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

const userColumns = `id, name, email, role, password_hash, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.PasswordHash,
		&u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// List returns all users, newest first.
func (s Store) List(ctx context.Context) ([]User, error) {
	rows, err := s.Pool.Query(ctx,
		fmt.Sprintf("SELECT %s FROM users ORDER BY created_at DESC", userColumns))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Get returns one user by id.
func (s Store) Get(ctx context.Context, id uuid.UUID) (User, error) {
	u, err := scanUser(s.Pool.QueryRow(ctx,
		fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns), id))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, common.NotFound("user not found")
	}
	return u, err
}

// Create inserts a user.
func (s Store) Create(ctx context.Context, u User) (User, error) {
	created, err := scanUser(s.Pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO users (id, name, email, role, password_hash, is_active)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING %s`, userColumns),
		uuid.New(), u.Name, u.Email, u.Role, u.PasswordHash, u.IsActive))
	if isUniqueViolation(err) {
		return User{}, common.Conflict("a user with this email already exists")
	}
	return created, err
}

// Update overwrites a user's mutable fields.
func (s Store) Update(ctx context.Context, u User) (User, error) {
	updated, err := scanUser(s.Pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE users SET name=$2, email=$3, role=$4, password_hash=$5, is_active=$6, updated_at=now()
		WHERE id=$1
		RETURNING %s`, userColumns),
		u.ID, u.Name, u.Email, u.Role, u.PasswordHash, u.IsActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, common.NotFound("user not found")
	}
	if isUniqueViolation(err) {
		return User{}, common.Conflict("a user with this email already exists")
	}
	return updated, err
}

// Delete removes a user.
func (s Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NotFound("user not found")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
