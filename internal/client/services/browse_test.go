package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/paperswipe/internal/client/feed"
	"github.com/dmitrijs2005/paperswipe/internal/client/kept"
	"github.com/dmitrijs2005/paperswipe/internal/client/models"
	"github.com/dmitrijs2005/paperswipe/internal/client/preferences"
	"github.com/dmitrijs2005/paperswipe/internal/client/provider"
	"github.com/dmitrijs2005/paperswipe/internal/client/storage"
	"github.com/dmitrijs2005/paperswipe/internal/logging"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type countingProvider struct {
	mu    sync.Mutex
	items []models.Item
	calls int
}

func (p *countingProvider) Search(ctx context.Context, q provider.Query, maxResults int) ([]models.Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return p.items, nil
}

func (p *countingProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// silentRemote fails the test on any call.
type silentRemote struct {
	kept.RemoteStore
	t *testing.T
}

func (r silentRemote) Create(ctx context.Context, item models.KeptItem) (string, error) {
	r.t.Errorf("unexpected remote create for %s", item.ID)
	return "", errors.New("unexpected")
}

func numbered(n int) []models.Item {
	items := make([]models.Item, n)
	for i := range items {
		items[i] = models.Item{
			ID:        fmt.Sprintf("p%d", i+1),
			Title:     fmt.Sprintf("Paper %d", i+1),
			Published: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}
	}
	return items
}

type stack struct {
	store *storage.MemoryStore
	prefs *preferences.Store
	kept  *kept.Engine
	feed  *feed.Controller
	svc   *BrowseService
	prov  *countingProvider
}

func newStack(t *testing.T, items []models.Item) *stack {
	t.Helper()
	ctx := context.Background()
	log := logging.NewNop()

	st := storage.NewMemoryStore()
	prefs, err := preferences.New(ctx, st, log)
	require.NoError(t, err)
	require.NoError(t, prefs.SetTopics(ctx, []string{"cs.AI"}))

	engine, err := kept.New(ctx, st, silentRemote{t: t}, log)
	require.NoError(t, err)
	t.Cleanup(engine.Close)

	prov := &countingProvider{items: items}
	fc := feed.NewController(prov, prefs, feed.Config{BatchSize: 20, PrefetchThreshold: 5}, log)
	t.Cleanup(fc.Wait)

	return &stack{
		store: st,
		prefs: prefs,
		kept:  engine,
		feed:  fc,
		svc:   NewBrowseService(fc, prefs, engine, log),
		prov:  prov,
	}
}

// ---- tests ----

func TestAccept_EndToEndFirstDecision(t *testing.T) {
	s := newStack(t, numbered(20))
	ctx := context.Background()

	require.NoError(t, s.feed.LoadMore(ctx))

	ids := make([]string, 0, 20)
	for _, it := range s.feed.Items() {
		ids = append(ids, it.ID)
	}
	want := make([]string, 0, 20)
	for i := 1; i <= 20; i++ {
		want = append(want, fmt.Sprintf("p%d", i))
	}
	require.Equal(t, want, ids, "feed keeps fetch order")

	got, err := s.svc.Accept(ctx)
	require.NoError(t, err)
	require.Equal(t, "p20", got.ID)

	require.True(t, s.prefs.IsSeen("p20"))
	require.True(t, s.kept.IsKept("p20"))
	require.False(t, s.prefs.IsDisliked("p20"))

	s.feed.Wait()
	require.Equal(t, 19, s.feed.Remaining())
	require.Equal(t, 1, s.prov.callCount(), "19 remaining is above the prefetch threshold")

	k, ok := s.kept.Get("p20")
	require.True(t, ok)
	require.False(t, k.HasRemote())
}

func TestReject_MarksSeenAndDisliked(t *testing.T) {
	s := newStack(t, numbered(3))
	ctx := context.Background()
	require.NoError(t, s.feed.LoadMore(ctx))

	got, err := s.svc.Reject(ctx)
	require.NoError(t, err)
	require.Equal(t, "p3", got.ID)
	require.True(t, s.prefs.IsSeen("p3"))
	require.True(t, s.prefs.IsDisliked("p3"))
	require.False(t, s.kept.IsKept("p3"))
}

func TestDecisions_DrainTriggersPrefetch(t *testing.T) {
	s := newStack(t, numbered(5))
	ctx := context.Background()
	require.NoError(t, s.feed.LoadMore(ctx))

	_, err := s.svc.Reject(ctx)
	require.NoError(t, err)
	s.feed.Wait()

	require.Equal(t, 2, s.prov.callCount())
	// everything returned again is already seen or in the feed
	require.Equal(t, 4, s.feed.Remaining())
}

func TestAccept_EmptyFeed(t *testing.T) {
	s := newStack(t, nil)
	_, err := s.svc.Accept(context.Background())
	require.ErrorIs(t, err, ErrFeedEmpty)
}

type failingPrefs struct{ err error }

func (f failingPrefs) MarkSeen(ctx context.Context, id string) error { return f.err }
func (f failingPrefs) MarkDisliked(ctx context.Context, id string) error { return f.err }

type oneItemFeed struct {
	item     models.Item
	advanced []string
}

func (f *oneItemFeed) Current() (models.Item, bool) { return f.item, true }
func (f *oneItemFeed) Advance(ctx context.Context, id string) error {
	f.advanced = append(f.advanced, id)
	return nil
}

type recordingKeeper struct{ kept []string }

func (k *recordingKeeper) Keep(ctx context.Context, item models.Item) (bool, error) {
	k.kept = append(k.kept, item.ID)
	return true, nil
}

func TestAccept_PreferenceFailureStopsBeforeKeepAndAdvance(t *testing.T) {
	boom := errors.New("disk full")
	f := &oneItemFeed{item: models.Item{ID: "x1"}}
	k := &recordingKeeper{}
	svc := NewBrowseService(f, failingPrefs{err: boom}, k, logging.NewNop())

	_, err := svc.Accept(context.Background())
	require.ErrorIs(t, err, boom)
	require.Empty(t, k.kept)
	require.Empty(t, f.advanced)
}
