// Package users provides a PostgreSQL-backed repository for account records.
// Uniqueness of email and username is enforced by the database; a violation
// raised on commit is mapped to the matching typed error so a race between
// concurrent signups degrades to a safe failure.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/dbx"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres unique-constraint names, per the users table migration.
const (
	emailConstraint    = "users_email_key"
	usernameConstraint = "users_username_key"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new account and returns it with the store-assigned ID.
// A duplicate email or username yields common.ErrEmailTaken or
// common.ErrUsernameTaken.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash).Scan(&user.ID)

	if err != nil {
		if taken := classifyUniqueViolation(err); taken != nil {
			return nil, taken
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// GetByEmail returns the account stored under email, or common.ErrorNotFound.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, address, gender, age
		FROM users
		WHERE email = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, email))
}

// GetByID returns the account with the given ID, or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, address, gender, age
		FROM users
		WHERE id = $1
	`
	return r.scanUser(r.db.QueryRowContext(ctx, query, id))
}

// UpdateProfile applies a partial update of address, gender and age.
// Nil fields keep the stored value (COALESCE against NULL parameters).
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id int64, upd models.ProfileUpdate) error {
	query := `
		UPDATE users
		SET address = COALESCE($2, address),
		    gender = COALESCE($3, gender),
		    age = COALESCE($4, age)
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id, upd.Address, upd.Gender, upd.Age); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $2
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id, passwordHash); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var address, gender sql.NullString
	var age sql.NullInt64

	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&address, &gender, &age)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if address.Valid {
		user.Address = &address.String
	}
	if gender.Valid {
		user.Gender = &gender.String
	}
	if age.Valid {
		a := int(age.Int64)
		user.Age = &a
	}

	return user, nil
}

func classifyUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case usernameConstraint:
		return common.ErrUsernameTaken
	default:
		return common.ErrEmailTaken
	}
}
