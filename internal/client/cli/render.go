package cli

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/paperswipe/internal/client/models"
)

const abstractWidth = 400

func formatItem(it models.Item) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", it.Title)
	if len(it.Authors) > 0 {
		fmt.Fprintf(&b, "  %s\n", strings.Join(it.Authors, ", "))
	}

	meta := []string{it.ID}
	if !it.Published.IsZero() {
		meta = append(meta, it.Published.Format("2006-01-02"))
	}
	if len(it.Categories) > 0 {
		meta = append(meta, strings.Join(it.Categories, " "))
	}
	fmt.Fprintf(&b, "  [%s]\n", strings.Join(meta, " | "))

	if it.Abstract != "" {
		fmt.Fprintf(&b, "\n  %s\n", truncate(it.Abstract, abstractWidth))
	}
	if it.SourceURL != "" {
		fmt.Fprintf(&b, "\n  %s", it.SourceURL)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatKept(k models.KeptItem) string {
	marker := " "
	if !k.HasRemote() {
		marker = "*"
	}
	line := fmt.Sprintf("%s %-18s %s", marker, k.ID, k.Title)
	if len(k.Tags) > 0 {
		line += " [" + strings.Join(k.Tags, ", ") + "]"
	}
	if k.Notes != "" {
		line += "\n    " + k.Notes
	}
	return line
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
