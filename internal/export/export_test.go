package export

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var update = flag.Bool("update", false, "rewrite golden files")

func samplePapers() []Paper {
	return []Paper{
		{
			ID:        "1706.03762",
			Title:     "Attention Is All You Need",
			Authors:   []string{"Ashish Vaswani", "Noam Shazeer"},
			Abstract:  `The dominant "sequence transduction" models, revisited.`,
			Published: time.Date(2017, 6, 12, 17, 57, 34, 0, time.UTC),
			SourceURL: "http://arxiv.org/abs/1706.03762v7",
			PDFURL:    "http://arxiv.org/pdf/1706.03762v7",
		},
		{
			ID:        "2401.00001",
			Title:     "Agents, Tools, and Planning",
			SourceURL: "http://arxiv.org/abs/2401.00001v1",
		},
	}
}

func golden(t *testing.T, name, got string) {
	t.Helper()
	path := filepath.Join("testdata", name+".golden")
	if *update {
		require.NoError(t, os.WriteFile(path, []byte(got), 0o644))
	}
	want, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, string(want), got)
}

func TestBibTeX_Golden(t *testing.T) {
	golden(t, "papers.bib", BibTeX(samplePapers()))
}

func TestCSV_Golden(t *testing.T) {
	golden(t, "papers.csv", CSV(samplePapers()))
}

func TestText_Golden(t *testing.T) {
	golden(t, "papers.txt", Text(samplePapers()))
}

func TestCSV_TwoItemsGiveThreeLines(t *testing.T) {
	out := CSV(samplePapers())

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	require.Equal(t, csvHeader, lines[0])
	require.True(t, strings.HasPrefix(lines[2], `"Agents, Tools, and Planning",`))
}

func TestWriters_EmptyInput(t *testing.T) {
	require.Equal(t, "", BibTeX(nil))
	require.Equal(t, csvHeader, CSV(nil))
	require.Equal(t, "", Text(nil))
}

func TestWriters_Deterministic(t *testing.T) {
	for _, f := range []Format{FormatBibTeX, FormatCSV, FormatText} {
		a, err := Render(f, samplePapers())
		require.NoError(t, err)
		b, err := Render(f, samplePapers())
		require.NoError(t, err)
		require.Equal(t, a, b, f)
	}
}

func TestCitationKey(t *testing.T) {
	tests := []struct {
		name string
		p    Paper
		year string
		want string
	}{
		{name: "new style id", p: Paper{ID: "2401.12345", Authors: []string{"Jane Q. Doe"}}, year: "2024", want: "Doe2024_2401_12345"},
		{name: "old style id", p: Paper{ID: "hep-th/9901001", Authors: []string{"Ed Witten"}}, year: "1999", want: "Witten1999_hep_th_9901001"},
		{name: "no authors", p: Paper{ID: "1.2"}, year: "XXXX", want: "UnknownXXXX_1_2"},
		{name: "blank author", p: Paper{ID: "1.2", Authors: []string{"  "}}, year: "2020", want: "Unknown2020_1_2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, citationKey(tt.p, tt.year))
		})
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"bibtex": FormatBibTeX, "BIB": FormatBibTeX, "csv": FormatCSV, "text": FormatText, "txt": FormatText} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseFormat("pdf")
	require.Error(t, err)

	_, err = Render(Format("pdf"), nil)
	require.Error(t, err)
}

func TestFormat_ExtensionAndContentType(t *testing.T) {
	require.Equal(t, "bib", FormatBibTeX.Extension())
	require.Equal(t, "csv", FormatCSV.Extension())
	require.Equal(t, "txt", FormatText.Extension())
	require.Equal(t, "text/csv", FormatCSV.ContentType())
	require.Equal(t, "application/x-bibtex", FormatBibTeX.ContentType())
}
