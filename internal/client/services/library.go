package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/paperswipe/internal/client/client"
	"github.com/dmitrijs2005/paperswipe/internal/client/models"
	"github.com/dmitrijs2005/paperswipe/internal/export"
	"github.com/dmitrijs2005/paperswipe/internal/filex"
	"github.com/dmitrijs2005/paperswipe/internal/netx"
)

// Library is the kept collection as the CLI sees it.
type Library interface {
	Items() []models.KeptItem
	FetchFromRemote(ctx context.Context) ([]models.KeptItem, error)
}

// Exporter renders the remote library on the server.
type Exporter interface {
	Export(ctx context.Context, format, tag string) (client.ExportLink, error)
}

type LibraryService struct {
	library  Library
	exporter Exporter
}

func NewLibraryService(library Library, exporter Exporter) *LibraryService {
	return &LibraryService{library: library, exporter: exporter}
}

// ExportLocal renders the local kept collection into path. It returns the
// number of exported papers.
func (s *LibraryService) ExportLocal(path string, format export.Format) (int, error) {
	papers := ToPapers(s.library.Items())

	out, err := export.Render(format, papers)
	if err != nil {
		return 0, err
	}
	if err := filex.WriteFile(path, []byte(out)); err != nil {
		return 0, fmt.Errorf("write export: %w", err)
	}
	return len(papers), nil
}

// ExportRemote asks the server to render the remote library, optionally
// restricted to tag. When path is not empty the result is downloaded there.
func (s *LibraryService) ExportRemote(ctx context.Context, format export.Format, tag, path string) (client.ExportLink, error) {
	link, err := s.exporter.Export(ctx, string(format), tag)
	if err != nil {
		return client.ExportLink{}, fmt.Errorf("remote export: %w", err)
	}
	if path == "" {
		return link, nil
	}

	data, err := netx.Download(ctx, link.URL)
	if err != nil {
		return link, fmt.Errorf("download export: %w", err)
	}
	if err := filex.WriteFile(path, data); err != nil {
		return link, fmt.Errorf("write export: %w", err)
	}
	return link, nil
}

// Sync replaces the kept collection with the remote one.
func (s *LibraryService) Sync(ctx context.Context) (int, error) {
	items, err := s.library.FetchFromRemote(ctx)
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// ToPapers converts kept items to the export form, preserving order.
func ToPapers(items []models.KeptItem) []export.Paper {
	out := make([]export.Paper, 0, len(items))
	for _, k := range items {
		out = append(out, export.Paper{
			ID:        k.ID,
			Title:     k.Title,
			Authors:   k.Authors,
			Abstract:  k.Abstract,
			Published: k.Published,
			SourceURL: k.SourceURL,
			PDFURL:    k.PDFURL,
			Notes:     k.Notes,
			Tags:      k.Tags,
		})
	}
	return out
}
