// Package users stores library accounts. Usernames are unique without regard
// to case.
package users

import (
	"context"

	"github.com/dmitrijs2005/paperswipe/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills its ID and CreatedAt. A taken username
	// gives common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByUserName matches case-insensitively and gives
	// common.ErrorNotFound for an unknown name.
	GetByUserName(ctx context.Context, userName string) (*models.User, error)
}
