// Package papers stores users' saved papers.
package papers

import (
	"context"

	"github.com/dmitrijs2005/paperswipe/internal/server/models"
)

type Repository interface {
	// Create inserts p and fills ID and SavedAt. Saving the same PaperID twice
	// for one user gives common.ErrorAlreadyExists.
	Create(ctx context.Context, p *models.SavedPaper) (*models.SavedPaper, error)
	// Update applies patch to the user's paper id and returns the new row.
	Update(ctx context.Context, userID, id string, patch models.PaperPatch) (*models.SavedPaper, error)
	Delete(ctx context.Context, userID, id string) error
	// List returns the user's papers, newest first. A non-empty tag keeps only
	// papers carrying it.
	List(ctx context.Context, userID, tag string) ([]*models.SavedPaper, error)
}
