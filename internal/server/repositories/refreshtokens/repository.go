// Package refreshtokens stores the server side of issued refresh tokens.
// A token is single use: redeeming it removes it.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/paperswipe/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, token models.RefreshToken) error

	// Consume deletes token and returns what was stored for it, expired or
	// not. An unknown token gives common.ErrorNotFound.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)

	// DeleteExpired removes tokens that expired before now and reports how
	// many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
