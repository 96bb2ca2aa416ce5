package rpc

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Paper is the wire form of a kept paper.
type Paper struct {
	RemoteID   string
	PaperID    string
	Title      string
	Authors    []string
	Abstract   string
	Categories []string
	Published  time.Time
	SourceURL  string
	PDFURL     string
	Notes      string
	Tags       []string
	SavedAt    time.Time
}

// Field names on the wire.
const (
	FieldID         = "id"
	FieldPaperID    = "paper_id"
	FieldTitle      = "title"
	FieldAuthors    = "authors"
	FieldAbstract   = "abstract"
	FieldCategories = "categories"
	FieldPublished  = "published"
	FieldSourceURL  = "source_url"
	FieldPDFURL     = "pdf_url"
	FieldNotes      = "notes"
	FieldTags       = "tags"
	FieldSavedAt    = "saved_at"
	FieldPapers     = "papers"
)

func PaperToStruct(p Paper) (*structpb.Struct, error) {
	m := map[string]any{
		FieldPaperID:    p.PaperID,
		FieldTitle:      p.Title,
		FieldAuthors:    stringList(p.Authors),
		FieldAbstract:   p.Abstract,
		FieldCategories: stringList(p.Categories),
		FieldSourceURL:  p.SourceURL,
		FieldPDFURL:     p.PDFURL,
		FieldNotes:      p.Notes,
		FieldTags:       stringList(p.Tags),
	}
	if p.RemoteID != "" {
		m[FieldID] = p.RemoteID
	}
	if !p.Published.IsZero() {
		m[FieldPublished] = p.Published.UTC().Format(time.RFC3339)
	}
	if !p.SavedAt.IsZero() {
		m[FieldSavedAt] = p.SavedAt.UTC().Format(time.RFC3339)
	}
	return structpb.NewStruct(m)
}

// PaperFromStruct decodes a paper. camelCase field names and date-only
// timestamps sent by older clients are accepted too.
func PaperFromStruct(s *structpb.Struct) (Paper, error) {
	if s == nil {
		return Paper{}, fmt.Errorf("empty paper")
	}
	p := Paper{
		RemoteID:   String(s, FieldID),
		PaperID:    String(s, FieldPaperID, "arxiv_id", "paperId"),
		Title:      String(s, FieldTitle),
		Authors:    Strings(s, FieldAuthors),
		Abstract:   String(s, FieldAbstract),
		Categories: Strings(s, FieldCategories),
		SourceURL:  String(s, FieldSourceURL, "sourceUrl"),
		PDFURL:     String(s, FieldPDFURL, "pdfUrl"),
		Notes:      String(s, FieldNotes),
		Tags:       Strings(s, FieldTags),
	}
	if p.PaperID == "" {
		return Paper{}, fmt.Errorf("paper without %s", FieldPaperID)
	}

	var err error
	if p.Published, err = parseTime(String(s, FieldPublished, "published_date", "publishedDate")); err != nil {
		return Paper{}, fmt.Errorf("bad %s: %w", FieldPublished, err)
	}
	if p.SavedAt, err = parseTime(String(s, FieldSavedAt, "savedAt")); err != nil {
		return Paper{}, fmt.Errorf("bad %s: %w", FieldSavedAt, err)
	}
	return p, nil
}

func PapersToStruct(papers []Paper) (*structpb.Struct, error) {
	list := make([]any, 0, len(papers))
	for _, p := range papers {
		s, err := PaperToStruct(p)
		if err != nil {
			return nil, err
		}
		list = append(list, s.AsMap())
	}
	return structpb.NewStruct(map[string]any{FieldPapers: list})
}

func PapersFromStruct(s *structpb.Struct) ([]Paper, error) {
	v, ok := s.GetFields()[FieldPapers]
	if !ok {
		return []Paper{}, nil
	}
	values := v.GetListValue().GetValues()
	out := make([]Paper, 0, len(values))
	for i, item := range values {
		p, err := PaperFromStruct(item.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("paper %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
