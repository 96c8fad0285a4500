// Package usedtokens provides a PostgreSQL-backed ledger of consumed
// password-reset tokens. Tokens are stored only as one-way fingerprints of
// the raw string presented by the client; a fingerprint present in the
// ledger is permanently spent. Rows are never deleted.
package usedtokens

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/dbx"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Fingerprint returns the hex-encoded SHA-256 digest of the raw token
// string, exactly as presented by the client. Decoded payload fields are
// never part of the digest.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Exists reports whether the token's fingerprint is already in the ledger.
func (r *PostgresRepository) Exists(ctx context.Context, token string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM used_reset_tokens WHERE token_fingerprint = $1
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, Fingerprint(token)).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

// Create records the token as consumed. A second insert of the same
// fingerprint yields common.ErrTokenAlreadyUsed.
func (r *PostgresRepository) Create(ctx context.Context, token string, userEmail string) error {
	query := `
		INSERT INTO used_reset_tokens (token_fingerprint, user_email)
		VALUES ($1, $2)
	`
	if _, err := r.db.ExecContext(ctx, query, Fingerprint(token), userEmail); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return common.ErrTokenAlreadyUsed
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
