package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shophub/internal/domain"
)

const refreshTokenColumns = `id, user_id, token, expires_at, created_at, revoked`

type refreshTokenRepository struct {
	db *sql.DB
}

func scanRefreshToken(row rowScanner) (*domain.RefreshToken, error) {
	var rt domain.RefreshToken
	if err := row.Scan(&rt.ID, &rt.UserID, &rt.Token, &rt.ExpiresAt, &rt.CreatedAt, &rt.Revoked); err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *refreshTokenRepository) CreateRefreshToken(ctx context.Context, token *domain.RefreshToken) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (`+refreshTokenColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		token.ID, token.UserID, token.Token, token.ExpiresAt, token.CreatedAt, token.Revoked,
	)
	if err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

// FindRefreshToken returns ErrRefreshTokenRevoked for tokens that were
// logged out, so callers can tell them apart from unknown ones.
func (r *refreshTokenRepository) FindRefreshToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+refreshTokenColumns+` FROM refresh_tokens WHERE token = $1`, token)

	rt, err := scanRefreshToken(row)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrRefreshTokenNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to find refresh token: %w", err)
	case rt.Revoked:
		return nil, ErrRefreshTokenRevoked
	}
	return rt, nil
}

func (r *refreshTokenRepository) RevokeRefreshToken(ctx context.Context, token string) error {
	var id string
	err := r.db.QueryRowContext(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1 RETURNING id`, token,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRefreshTokenNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}
