package provider

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/paperswipe/internal/client/models"
	"github.com/dmitrijs2005/paperswipe/internal/common"
	"github.com/dmitrijs2005/paperswipe/internal/logging"
	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"
)

// maxFeedBytes caps one response body. A full page of entries is well under it.
const maxFeedBytes = 16 << 20

var ErrFeedTooLarge = errors.New("feed response too large")

// ArxivProvider queries the arXiv Atom API. Requests are spaced by the
// configured interval as arXiv asks of API clients.
type ArxivProvider struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	parser   *gofeed.Parser
	logger   logging.Logger
	maxBody  int64
}

func NewArxivProvider(endpoint string, interval, timeout time.Duration, logger logging.Logger) *ArxivProvider {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &ArxivProvider{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(limit, 1),
		parser:   gofeed.NewParser(),
		logger:   logger.With("module", "arxiv"),
		maxBody:  maxFeedBytes,
	}
}

// Search runs q against arXiv. Browse sorts by submission date, search by
// relevance; both descending.
func (p *ArxivProvider) Search(ctx context.Context, q Query, maxResults int) ([]models.Item, error) {
	params, err := buildParams(q, maxResults)
	if err != nil {
		return nil, err
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, &common.ProviderError{Op: "wait", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &common.ProviderError{Op: "request", Err: err}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &common.ProviderError{Op: "fetch", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBody+1))
	if err != nil {
		return nil, &common.ProviderError{Op: "read", Err: err}
	}
	if int64(len(body)) > p.maxBody {
		return nil, &common.ProviderError{Op: "read", Err: ErrFeedTooLarge}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &common.ProviderError{Op: "fetch", Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	feed, err := p.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, &common.ProviderError{Op: "parse", Err: err}
	}

	items := make([]models.Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if item, ok := toItem(entry); ok {
			items = append(items, item)
		}
	}

	p.logger.Debug(ctx, "arxiv query done", "query", params.Get("search_query"), "requested", maxResults, "returned", len(items))

	return items, nil
}

func buildParams(q Query, maxResults int) (url.Values, error) {
	if maxResults <= 0 {
		return nil, fmt.Errorf("%w: max results must be positive", common.ErrInvalidArgument)
	}

	var search, sortBy string
	switch q.Mode {
	case ModeSearch:
		kw := strings.TrimSpace(q.Keyword)
		if kw == "" {
			return nil, fmt.Errorf("%w: empty search keyword", common.ErrInvalidArgument)
		}
		search = `all:"` + strings.ReplaceAll(kw, `"`, "") + `"`
		sortBy = "relevance"
	default:
		cats := make([]string, 0, len(q.Topics))
		for _, t := range q.Topics {
			if c := NormalizeTopic(t); c != "" {
				cats = append(cats, "cat:"+c)
			}
		}
		if len(cats) == 0 {
			return nil, fmt.Errorf("%w: no browse topics", common.ErrInvalidArgument)
		}
		search = "(" + strings.Join(cats, " OR ") + ")"
		sortBy = "submittedDate"
	}

	v := url.Values{}
	v.Set("search_query", search)
	v.Set("start", "0")
	v.Set("max_results", strconv.Itoa(maxResults))
	v.Set("sortBy", sortBy)
	v.Set("sortOrder", "descending")
	return v, nil
}

// toItem maps one Atom entry. Entries without an /abs/ id are skipped.
func toItem(e *gofeed.Item) (models.Item, bool) {
	source := e.GUID
	if source == "" {
		source = e.Link
	}
	_, id, ok := strings.Cut(source, "/abs/")
	if !ok || id == "" {
		return models.Item{}, false
	}

	item := models.Item{
		ID:         id,
		Title:      collapse(e.Title),
		Abstract:   collapse(e.Description),
		Authors:    make([]string, 0, len(e.Authors)),
		Categories: append([]string{}, e.Categories...),
		SourceURL:  source,
		PDFURL:     pdfLink(e),
	}
	for _, a := range e.Authors {
		if a != nil && a.Name != "" {
			item.Authors = append(item.Authors, a.Name)
		}
	}
	switch {
	case e.PublishedParsed != nil:
		item.Published = e.PublishedParsed.UTC()
	case e.UpdatedParsed != nil:
		item.Published = e.UpdatedParsed.UTC()
	}

	return item, true
}

func pdfLink(e *gofeed.Item) string {
	for _, l := range e.Links {
		if strings.Contains(l, "/pdf/") {
			return l
		}
	}
	if strings.Contains(e.Link, "/abs/") {
		return strings.Replace(e.Link, "/abs/", "/pdf/", 1)
	}
	return ""
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
