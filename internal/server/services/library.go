package services

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/paperswipe/internal/common"
	"github.com/dmitrijs2005/paperswipe/internal/export"
	"github.com/dmitrijs2005/paperswipe/internal/server/config"
	"github.com/dmitrijs2005/paperswipe/internal/server/models"
	"github.com/dmitrijs2005/paperswipe/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// ObjectStore keeps rendered exports.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type ExportLink struct {
	URL       string
	ExpiresAt time.Time
	Count     int
}

// LibraryService manages users' saved papers.
type LibraryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       ObjectStore
	exportTTL   time.Duration
	now         func() time.Time
}

func NewLibraryService(db *sql.DB, m repomanager.RepositoryManager, store ObjectStore, cfg *config.Config) *LibraryService {
	return &LibraryService{
		db:          db,
		repomanager: m,
		store:       store,
		exportTTL:   cfg.ExportURLValidity,
		now:         time.Now,
	}
}

// ExportStorageKey places an export under the owner's prefix, bucketed by day.
func ExportStorageKey(userID string, t time.Time, f export.Format) string {
	return path.Join("exports", userID, t.UTC().Format("2006/01/02"), uuid.NewString()+"."+f.Extension())
}

// normalizeTags trims tags and drops blanks and repeats, keeping order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// validID rejects ids that cannot name a row, so they read as missing rather
// than as a database error.
func validID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}
	return nil
}

// Create saves p for userID. A second save of the same paper id gives
// common.ErrorAlreadyExists.
func (s *LibraryService) Create(ctx context.Context, userID string, p *models.SavedPaper) (*models.SavedPaper, error) {
	if strings.TrimSpace(p.PaperID) == "" {
		return nil, fmt.Errorf("%w: empty paper id", common.ErrInvalidArgument)
	}
	p.UserID = userID
	p.Tags = normalizeTags(p.Tags)
	return s.repomanager.Papers(s.db).Create(ctx, p)
}

// Update applies the present fields of patch.
func (s *LibraryService) Update(ctx context.Context, userID, id string, patch models.PaperPatch) (*models.SavedPaper, error) {
	if err := validID(id); err != nil {
		return nil, err
	}
	if patch.Tags != nil {
		patch.Tags = normalizeTags(patch.Tags)
	}
	return s.repomanager.Papers(s.db).Update(ctx, userID, id, patch)
}

func (s *LibraryService) Delete(ctx context.Context, userID, id string) error {
	if err := validID(id); err != nil {
		return err
	}
	return s.repomanager.Papers(s.db).Delete(ctx, userID, id)
}

// List returns the user's papers, optionally only those tagged tag.
func (s *LibraryService) List(ctx context.Context, userID, tag string) ([]*models.SavedPaper, error) {
	return s.repomanager.Papers(s.db).List(ctx, userID, strings.TrimSpace(tag))
}

// Export renders the user's papers (optionally filtered by tag) in format,
// uploads the file and returns a presigned download link.
func (s *LibraryService) Export(ctx context.Context, userID, format, tag string) (ExportLink, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return ExportLink{}, fmt.Errorf("%w: %v", common.ErrInvalidArgument, err)
	}

	papers, err := s.List(ctx, userID, tag)
	if err != nil {
		return ExportLink{}, err
	}

	body, err := export.Render(f, ToExportPapers(papers))
	if err != nil {
		return ExportLink{}, err
	}

	now := s.now()
	key := ExportStorageKey(userID, now, f)
	if err := s.store.Put(ctx, key, f.ContentType(), []byte(body)); err != nil {
		return ExportLink{}, err
	}

	url, err := s.store.PresignGet(ctx, key, s.exportTTL)
	if err != nil {
		return ExportLink{}, err
	}

	return ExportLink{URL: url, ExpiresAt: now.Add(s.exportTTL), Count: len(papers)}, nil
}

func ToExportPapers(in []*models.SavedPaper) []export.Paper {
	out := make([]export.Paper, 0, len(in))
	for _, p := range in {
		out = append(out, export.Paper{
			ID:        p.PaperID,
			Title:     p.Title,
			Authors:   p.Authors,
			Abstract:  p.Abstract,
			Published: p.Published,
			SourceURL: p.SourceURL,
			PDFURL:    p.PDFURL,
			Notes:     p.Notes,
			Tags:      p.Tags,
		})
	}
	return out
}
