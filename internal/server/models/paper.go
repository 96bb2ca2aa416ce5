// Package models holds the server-side rows.
package models

import "time"

// SavedPaper is one paper in a user's library. PaperID is the content
// provider's id; ID is assigned by the server.
type SavedPaper struct {
	ID         string
	UserID     string
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

// PaperPatch carries the mutable fields of a SavedPaper. A nil field is left
// unchanged.
type PaperPatch struct {
	Notes *string
	Tags  []string
}

func (p PaperPatch) Empty() bool {
	return p.Notes == nil && p.Tags == nil
}
