package export

import "strings"

const csvHeader = "Title,Authors,Published Date,arXiv ID,PDF URL,Abstract"

// CSV renders a header row and one row per paper. Every field is quoted and
// embedded quotes are doubled. Rows are separated by "\n" with no trailing
// newline.
func CSV(papers []Paper) string {
	lines := make([]string, 0, len(papers)+1)
	lines = append(lines, csvHeader)
	for _, p := range papers {
		fields := []string{
			p.Title,
			strings.Join(p.Authors, "; "),
			publishedDate(p),
			p.ID,
			p.PDFURL,
			p.Abstract,
		}
		for i, f := range fields {
			fields[i] = quote(f)
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	return strings.Join(lines, "\n")
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
