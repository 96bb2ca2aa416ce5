package export

import (
	"strconv"
	"strings"
)

var keyReplacer = strings.NewReplacer(".", "_", "/", "_", "-", "_")

// BibTeX renders one @article entry per paper, separated by a blank line.
func BibTeX(papers []Paper) string {
	entries := make([]string, 0, len(papers))
	for _, p := range papers {
		year := bibYear(p)

		var b strings.Builder
		b.WriteString("@article{" + citationKey(p, year) + ",\n")
		b.WriteString("  title = {" + p.Title + "},\n")
		b.WriteString("  author = {" + strings.Join(p.Authors, " and ") + "},\n")
		b.WriteString("  year = {" + year + "},\n")
		b.WriteString("  journal = {arXiv preprint arXiv:" + p.ID + "},\n")
		b.WriteString("  eprint = {" + p.ID + "},\n")
		b.WriteString("  archivePrefix = {arXiv},\n")
		b.WriteString("  url = {" + p.SourceURL + "}\n")
		b.WriteString("}")

		entries = append(entries, b.String())
	}
	return strings.Join(entries, "\n\n")
}

// citationKey is the first author's last name token, the year and the
// sanitised id, e.g. "Vaswani2017_1706_03762".
func citationKey(p Paper, year string) string {
	author := "Unknown"
	if len(p.Authors) > 0 {
		if fields := strings.Fields(p.Authors[0]); len(fields) > 0 {
			author = fields[len(fields)-1]
		}
	}
	return author + year + "_" + keyReplacer.Replace(p.ID)
}

func bibYear(p Paper) string {
	if p.Published.IsZero() {
		return "XXXX"
	}
	return strconv.Itoa(p.Published.UTC().Year())
}
