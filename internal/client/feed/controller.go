// Package feed keeps the in-memory, never-repeating feed of items for one
// session and decides when to fetch more of them.
package feed

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/paperswipe/internal/client/models"
	"github.com/dmitrijs2005/paperswipe/internal/client/provider"
	"github.com/dmitrijs2005/paperswipe/internal/common"
	"github.com/dmitrijs2005/paperswipe/internal/logging"
)

type State int

const (
	StateIdle State = iota
	StateFetching
	StateReady
	StateError
)

func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

var (
	ErrFetchInFlight = errors.New("feed fetch already in progress")
	ErrNotInFeed     = errors.New("item is not in the feed")
)

// Preferences is the part of the preference store the feed reads.
type Preferences interface {
	Topics() []string
	SeenIDs() map[string]struct{}
	ResetHistory(ctx context.Context) error
}

type Config struct {
	BatchSize         int
	PrefetchThreshold int
	DefaultTopic      string
	// RequestTimeout bounds background loads.
	RequestTimeout time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.BatchSize <= 0 {
		out.BatchSize = 20
	}
	if out.PrefetchThreshold <= 0 {
		out.PrefetchThreshold = 5
	}
	if out.DefaultTopic == "" {
		out.DefaultTopic = common.DefaultTopic
	}
	if out.RequestTimeout <= 0 {
		out.RequestTimeout = 30 * time.Second
	}
	return out
}

// Controller owns the feed. Items are appended at the end and consumed from
// the end, so the most recently fetched item is shown first.
//
// It never mutates preferences or kept items; callers mark decisions
// themselves and then call Advance.
type Controller struct {
	mu       sync.Mutex
	provider provider.ContentProvider
	prefs    Preferences
	logger   logging.Logger
	cfg      Config

	mode    provider.Mode
	keyword string
	since   *time.Time

	items []models.Item
	state State
	err   error

	// generation changes whenever the feed is restarted; a response for an
	// older generation is dropped.
	generation uint64
	fetching   bool
	fetchGen   uint64

	wg sync.WaitGroup
}

func NewController(p provider.ContentProvider, prefs Preferences, cfg Config, logger logging.Logger) *Controller {
	return &Controller{
		provider: p,
		prefs:    prefs,
		logger:   logger.With("module", "feed"),
		cfg:      cfg.withDefaults(),
		mode:     provider.ModeBrowse,
		items:    []models.Item{},
	}
}

// LoadMore fetches the next batch for the current mode and appends the
// unseen part of it. A call made while a fetch for the same feed is in
// flight returns ErrFetchInFlight without doing anything.
func (c *Controller) LoadMore(ctx context.Context) error {
	return c.load(ctx, nil)
}

// load runs one fetch. When seen is nil the preference store's seen set is
// used; ResetAndReload passes an explicit empty set.
func (c *Controller) load(ctx context.Context, seen map[string]struct{}) error {
	c.mu.Lock()
	if c.inFlightLocked() {
		c.mu.Unlock()
		return ErrFetchInFlight
	}
	gen := c.generation
	c.fetching, c.fetchGen = true, gen
	c.state, c.err = StateFetching, nil
	q := c.queryLocked()
	since := c.since
	c.mu.Unlock()

	if seen == nil {
		seen = c.prefs.SeenIDs()
	}

	fetched, err := c.provider.Search(ctx, q, c.cfg.BatchSize+len(seen))

	// items marked seen while the request was in flight are excluded too
	for id := range c.prefs.SeenIDs() {
		seen[id] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.logger.Debug(ctx, "stale feed response dropped", "generation", gen, "current", c.generation)
		return nil
	}
	c.fetching = false

	if err != nil {
		var pe *common.ProviderError
		if !errors.As(err, &pe) {
			err = &common.ProviderError{Op: "search", Err: err}
		}
		c.state, c.err = StateError, err
		c.logger.Warn(ctx, "feed fetch failed", "mode", q.Mode, "error", err)
		return err
	}

	added := c.appendLocked(fetched, seen, since)
	c.state = StateReady

	c.logger.Info(ctx, "feed loaded", "mode", q.Mode, "fetched", len(fetched), "added", added, "size", len(c.items))
	return nil
}

func (c *Controller) appendLocked(fetched []models.Item, seen map[string]struct{}, since *time.Time) int {
	present := make(map[string]struct{}, len(c.items))
	for _, it := range c.items {
		present[it.ID] = struct{}{}
	}

	added := 0
	for _, it := range fetched {
		if added == c.cfg.BatchSize {
			break
		}
		if since != nil && it.Published.Before(*since) {
			continue
		}
		if _, ok := seen[it.ID]; ok {
			continue
		}
		if _, ok := present[it.ID]; ok {
			continue
		}
		present[it.ID] = struct{}{}
		c.items = append(c.items, it.Clone())
		added++
	}
	return added
}

func (c *Controller) queryLocked() provider.Query {
	if c.mode == provider.ModeSearch {
		return provider.Query{Mode: provider.ModeSearch, Keyword: c.keyword}
	}
	selected := c.prefs.Topics()
	topics := make([]string, 0, len(selected))
	for _, t := range selected {
		if provider.NormalizeTopic(t) != "" {
			topics = append(topics, t)
		}
	}
	if len(topics) == 0 {
		topics = []string{c.cfg.DefaultTopic}
	}
	return provider.Query{Mode: provider.ModeBrowse, Topics: topics}
}

// SetBrowse switches to topic browsing, empties the feed and starts loading.
func (c *Controller) SetBrowse(ctx context.Context) {
	c.restart(ctx, func() {
		c.mode, c.keyword = provider.ModeBrowse, ""
	})
}

// SetSearch switches to keyword search. An empty keyword returns to browse.
func (c *Controller) SetSearch(ctx context.Context, keyword string) {
	if keyword == "" {
		c.SetBrowse(ctx)
		return
	}
	c.restart(ctx, func() {
		c.mode, c.keyword = provider.ModeSearch, keyword
	})
}

// SetDateFilter keeps only items published at or after since. A nil since
// removes the filter. The feed restarts as on a mode switch.
func (c *Controller) SetDateFilter(ctx context.Context, since *time.Time) {
	c.restart(ctx, func() {
		if since == nil {
			c.since = nil
			return
		}
		t := *since
		c.since = &t
	})
}

func (c *Controller) restart(ctx context.Context, apply func()) {
	c.mu.Lock()
	apply()
	c.resetLocked()
	c.mu.Unlock()

	c.loadInBackground(ctx)
}

func (c *Controller) resetLocked() {
	c.items = []models.Item{}
	c.generation++
	c.state, c.err = StateIdle, nil
}

// ResetAndReload clears the feed and the seen/disliked history, then loads
// a fresh batch ignoring any history.
func (c *Controller) ResetAndReload(ctx context.Context) error {
	c.mu.Lock()
	c.resetLocked()
	c.mu.Unlock()

	if err := c.prefs.ResetHistory(ctx); err != nil {
		return fmt.Errorf("reset history: %w", err)
	}
	return c.load(ctx, map[string]struct{}{})
}

// Advance removes the consumed item. When fewer than PrefetchThreshold items
// remain and no load is in flight, a load is started in the background.
func (c *Controller) Advance(ctx context.Context, id string) error {
	c.mu.Lock()
	i := slices.IndexFunc(c.items, func(it models.Item) bool { return it.ID == id })
	if i < 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotInFeed, id)
	}
	c.items = slices.Delete(c.items, i, i+1)
	prefetch := len(c.items) < c.cfg.PrefetchThreshold && !c.inFlightLocked()
	c.mu.Unlock()

	if prefetch {
		c.loadInBackground(ctx)
	}
	return nil
}

func (c *Controller) inFlightLocked() bool {
	return c.fetching && c.fetchGen == c.generation
}

func (c *Controller) loadInBackground(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.RequestTimeout)
		defer cancel()

		if err := c.LoadMore(tctx); err != nil && !errors.Is(err, ErrFetchInFlight) {
			c.logger.Debug(ctx, "background load failed", "error", err)
		}
	}()
}

// Current returns the item on top of the feed.
func (c *Controller) Current() (models.Item, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.items) == 0 {
		return models.Item{}, false
	}
	return c.items[len(c.items)-1].Clone(), true
}

// Items returns the feed in storage order; the last element is on top.
func (c *Controller) Items() []models.Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Item, len(c.items))
	for i, it := range c.items {
		out[i] = it.Clone()
	}
	return out
}

func (c *Controller) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// State returns the fetch state and, in StateError, the last error.
func (c *Controller) State() (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.err
}

func (c *Controller) Mode() (provider.Mode, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode, c.keyword
}

func (c *Controller) DateFilter() *time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.since == nil {
		return nil
	}
	t := *c.since
	return &t
}

// Wait blocks until background loads have finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}
