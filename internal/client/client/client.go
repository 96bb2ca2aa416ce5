package client

import (
	"context"
	"time"

	"github.com/dmitrijs2005/paperswipe/internal/client/models"
)

// Client is the CLI's view of the PaperSwipe server. Its Create, Update,
// Delete and ListAll methods make it a kept.RemoteStore.
type Client interface {
	Close() error
	Register(ctx context.Context, userName, password string) error
	Login(ctx context.Context, userName, password string) (Tokens, error)
	Ping(ctx context.Context) error

	SetTokens(t Tokens)
	Tokens() Tokens
	OnTokensRefreshed(fn func(Tokens))

	Create(ctx context.Context, item models.KeptItem) (string, error)
	Update(ctx context.Context, remoteID string, patch models.Patch) error
	Delete(ctx context.Context, remoteID string) error
	ListAll(ctx context.Context) ([]models.KeptItem, error)
	ListByTag(ctx context.Context, tag string) ([]models.KeptItem, error)
	Export(ctx context.Context, format, tag string) (ExportLink, error)
}

// Tokens is an access/refresh token pair.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// ExportLink points at a rendered library uploaded by the server.
type ExportLink struct {
	URL       string
	ExpiresAt time.Time
}
