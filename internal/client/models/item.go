// Package models defines client-side data models used by the PaperSwipe CLI.
package models

import (
	"slices"
	"time"
)

// Item is one feed entry. Two items with the same ID are the same paper
// regardless of payload.
type Item struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Authors    []string  `json:"authors"`
	Abstract   string    `json:"abstract"`
	Categories []string  `json:"categories"`
	Published  time.Time `json:"published"`
	SourceURL  string    `json:"source_url"`
	PDFURL     string    `json:"pdf_url,omitempty"`
}

// Clone returns a deep copy of the item.
func (i Item) Clone() Item {
	i.Authors = slices.Clone(i.Authors)
	i.Categories = slices.Clone(i.Categories)
	return i
}

// KeptItem is an item the user chose to keep.
//
// RemoteID is empty until the remote store acknowledges creation. An empty
// RemoteID means local-only: not yet confirmed, or confirmation failed.
type KeptItem struct {
	Item
	Notes    string    `json:"notes"`
	Tags     []string  `json:"tags"`
	RemoteID string    `json:"remote_id,omitempty"`
	KeptAt   time.Time `json:"kept_at"`
}

// NewKeptItem decorates item with empty notes and tags.
func NewKeptItem(item Item, now time.Time) KeptItem {
	return KeptItem{Item: item.Clone(), Tags: []string{}, KeptAt: now.UTC()}
}

// Clone returns a deep copy of the kept item.
func (k KeptItem) Clone() KeptItem {
	k.Item = k.Item.Clone()
	k.Tags = slices.Clone(k.Tags)
	return k
}

// HasRemote reports whether the item is mirrored remotely.
func (k KeptItem) HasRemote() bool {
	return k.RemoteID != ""
}
