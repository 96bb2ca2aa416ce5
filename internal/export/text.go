package export

import (
	"strconv"
	"strings"
)

// Text renders a 1-based numbered list. Each block ends with a newline and
// blocks are separated by an empty line.
func Text(papers []Paper) string {
	blocks := make([]string, 0, len(papers))
	for i, p := range papers {
		var b strings.Builder
		b.WriteString(strconv.Itoa(i+1) + ". " + p.Title + "\n")
		b.WriteString("   Authors: " + strings.Join(p.Authors, ", ") + "\n")
		b.WriteString("   Published: " + publishedDate(p) + "\n")
		b.WriteString("   arXiv: " + p.ID + "\n")
		b.WriteString("   URL: " + p.SourceURL + "\n")
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n")
}
