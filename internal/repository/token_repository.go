package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/api/internal/models"
)

var ErrTokenNotFound = errors.New("token not found")

// TokenRepository persists refresh tokens. A stored token is good for
// exactly one rotation; Rotate removes it atomically.
type TokenRepository struct {
	pool *pgxpool.Pool
}

func NewTokenRepository(pool *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{pool: pool}
}

func (r *TokenRepository) Store(ctx context.Context, token models.RefreshToken) error {
	const query = `
		INSERT INTO refresh_tokens (token, user_email, expires_at)
		VALUES ($1, $2, $3)
	`
	_, err := r.pool.Exec(ctx, query, token.Token, token.UserEmail, token.ExpiresAt)
	return err
}

func (r *TokenRepository) Find(ctx context.Context, token string) (models.RefreshToken, error) {
	const query = `
		SELECT id, token, user_email, expires_at
		FROM refresh_tokens WHERE token = $1
	`

	row := r.pool.QueryRow(ctx, query, token)
	var rt models.RefreshToken
	if err := row.Scan(&rt.ID, &rt.Token, &rt.UserEmail, &rt.ExpiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.RefreshToken{}, ErrTokenNotFound
		}
		return models.RefreshToken{}, err
	}
	return rt, nil
}

// Rotate deletes the old token row and inserts the replacement in one
// transaction. The conditional delete is the serialization point: of any
// number of concurrent rotations of the same token, exactly one commits;
// the rest observe zero deleted rows and report ErrTokenNotFound. Because
// delete and insert commit together, the owner always holds at least one
// valid refresh token.
func (r *TokenRepository) Rotate(ctx context.Context, oldToken string, next models.RefreshToken) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, oldToken)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrTokenNotFound
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO refresh_tokens (token, user_email, expires_at) VALUES ($1, $2, $3)`,
		next.Token, next.UserEmail, next.ExpiresAt)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// DeleteExpired removes rows whose JWT expiry has passed. Presence in this
// table is what makes a token rotatable; expired rows are only janitorial
// debris since ParseToken rejects them anyway.
func (r *TokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM refresh_tokens WHERE expires_at < $1`
	cmd, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
