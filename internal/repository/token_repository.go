package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ErrNoValidToken indicates that no unexpired bearer credential is
// available. The structures job treats this as a hard failure.
var ErrNoValidToken = errors.New("no valid access token found")

// TokenRepository reads bearer credentials obtained out-of-band. This
// service never performs the acquisition flow itself.
type TokenRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewTokenRepository creates a new token repository
func NewTokenRepository(db *sqlx.DB, logger *zap.Logger) *TokenRepository {
	return &TokenRepository{
		db:     db,
		logger: logger,
	}
}

// ValidToken retrieves the freshest unexpired access token
func (r *TokenRepository) ValidToken(ctx context.Context) (string, error) {
	query := `
		SELECT access_token
		FROM esi_tokens
		WHERE expires_at > NOW()
		ORDER BY expires_at DESC
		LIMIT 1
	`

	var token string
	err := r.db.GetContext(ctx, &token, query)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoValidToken
	}
	if err != nil {
		r.logger.Error("Failed to get access token", zap.Error(err))
		return "", err
	}

	return token, nil
}
