// Package export renders kept papers as BibTeX, CSV or plain text. The
// writers are pure: identical input gives identical output.
package export

import (
	"fmt"
	"strings"
	"time"
)

// Paper is the export view of a kept item.
type Paper struct {
	ID        string
	Title     string
	Authors   []string
	Abstract  string
	Published time.Time
	SourceURL string
	PDFURL    string
	Notes     string
	Tags      []string
}

type Format string

const (
	FormatBibTeX Format = "bibtex"
	FormatCSV    Format = "csv"
	FormatText   Format = "txt"
)

// ParseFormat accepts bibtex|bib, csv and txt|text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bibtex", "bib":
		return FormatBibTeX, nil
	case "csv":
		return FormatCSV, nil
	case "txt", "text":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown export format %q", s)
	}
}

// Extension returns the conventional file extension, without the dot.
func (f Format) Extension() string {
	if f == FormatBibTeX {
		return "bib"
	}
	return string(f)
}

func (f Format) ContentType() string {
	switch f {
	case FormatBibTeX:
		return "application/x-bibtex"
	case FormatCSV:
		return "text/csv"
	default:
		return "text/plain"
	}
}

// Render dispatches to the writer for f.
func Render(f Format, papers []Paper) (string, error) {
	switch f {
	case FormatBibTeX:
		return BibTeX(papers), nil
	case FormatCSV:
		return CSV(papers), nil
	case FormatText:
		return Text(papers), nil
	default:
		return "", fmt.Errorf("unknown export format %q", f)
	}
}

func publishedDate(p Paper) string {
	if p.Published.IsZero() {
		return ""
	}
	return p.Published.UTC().Format(time.DateOnly)
}
