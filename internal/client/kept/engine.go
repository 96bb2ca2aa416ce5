// Package kept owns the collection of kept items. Mutations are applied to
// the local collection first and mirrored to the remote store in the
// background; a failed remote delete is compensated by re-inserting the item.
package kept

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/dmitrijs2005/paperswipe/internal/client/models"
	"github.com/dmitrijs2005/paperswipe/internal/client/storage"
	"github.com/dmitrijs2005/paperswipe/internal/common"
	"github.com/dmitrijs2005/paperswipe/internal/logging"
)

// Advisory messages stored in SyncError.
const (
	MsgSaveFailed   = "Failed to save paper to server"
	MsgRemoveFailed = "Failed to remove paper from server"
	MsgNotesFailed  = "Failed to update notes on server"
	MsgTagsFailed   = "Failed to update tags on server"
	MsgSyncFailed   = "Failed to sync with server"
)

var (
	ErrNotKept          = errors.New("item is not kept")
	ErrFetchInFlight    = errors.New("fetch from remote already in progress")
	ErrNotAuthenticated = errors.New("not authenticated")
)

// RemoteStore is the authenticated mirror of the kept collection.
type RemoteStore interface {
	Create(ctx context.Context, item models.KeptItem) (string, error)
	Update(ctx context.Context, remoteID string, patch models.Patch) error
	Delete(ctx context.Context, remoteID string) error
	ListAll(ctx context.Context) ([]models.KeptItem, error)
}

// Engine is the single owner of the kept collection.
//
// The local collection is the source of truth for readers. The remote store
// is a best-effort mirror: a remote failure only updates SyncError, which
// holds the most recent failure and is cleared by the next remote success.
type Engine struct {
	mu            sync.Mutex
	store         storage.Store
	remote        RemoteStore
	logger        logging.Logger
	now           func() time.Time
	timeout       time.Duration
	observer      func(SyncTask)
	items         []models.KeptItem
	authenticated bool
	fetching      bool
	closed        bool
	syncErr       string
	wg            sync.WaitGroup
}

type Option func(*Engine)

// WithTimeout bounds every background remote call.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithClock overrides time.Now for KeptAt stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithObserver registers fn to be called after every SyncTask resolves.
func WithObserver(fn func(SyncTask)) Option {
	return func(e *Engine) { e.observer = fn }
}

// New loads the kept collection from store. The engine starts
// unauthenticated; OnLogin enables remote mirroring.
func New(ctx context.Context, store storage.Store, remote RemoteStore, logger logging.Logger, opts ...Option) (*Engine, error) {
	e := &Engine{
		store:   store,
		remote:  remote,
		logger:  logger.With("module", "kept"),
		now:     time.Now,
		timeout: 30 * time.Second,
		items:   []models.KeptItem{},
	}
	for _, o := range opts {
		o(e)
	}

	data, err := store.Get(ctx, storage.KeyKeptItems)
	if err != nil {
		return nil, fmt.Errorf("failed to load kept items: %w", err)
	}
	if data != nil {
		if err := json.Unmarshal(data, &e.items); err != nil {
			return nil, fmt.Errorf("failed to decode kept items: %w", err)
		}
	}

	return e, nil
}

// Keep adds item to the collection. It reports false if an item with the
// same ID is already kept. When authenticated, a create is sent to the
// remote store in the background.
func (e *Engine) Keep(ctx context.Context, item models.Item) (bool, error) {
	e.mu.Lock()
	if e.indexLocked(item.ID) >= 0 {
		e.mu.Unlock()
		return false, nil
	}

	k := models.NewKeptItem(item, e.now())
	e.items = append(e.items, k)
	if err := e.persistLocked(ctx); err != nil {
		e.items = e.items[:len(e.items)-1]
		e.mu.Unlock()
		return false, err
	}
	mirror := e.mirrorLocked()
	e.mu.Unlock()

	if mirror {
		e.spawn(ctx, SyncTask{Kind: TaskCreate, ItemID: k.ID}, func(tctx context.Context) (Outcome, error) {
			return e.applyCreate(ctx, tctx, k)
		})
	}
	return true, nil
}

func (e *Engine) applyCreate(ctx, tctx context.Context, k models.KeptItem) (Outcome, error) {
	remoteID, err := e.remote.Create(tctx, k)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		e.syncErr = MsgSaveFailed
		return OutcomeFailure, &common.RemoteError{Op: string(TaskCreate), Err: err}
	}

	i := e.indexLocked(k.ID)
	if i < 0 {
		// removed or replaced while in flight; the result is discarded
		return OutcomeSuperseded, nil
	}

	e.items[i].RemoteID = remoteID
	e.syncErr = ""
	if err := e.persistLocked(ctx); err != nil {
		e.logger.Warn(ctx, "remote id not persisted", "id", k.ID, "error", err)
	}
	return OutcomeSuccess, nil
}

// Remove deletes the item locally. If it was mirrored and the session is
// authenticated, a remote delete follows; when that fails the item is put
// back at the end of the collection.
func (e *Engine) Remove(ctx context.Context, id string) (bool, error) {
	e.mu.Lock()
	i := e.indexLocked(id)
	if i < 0 {
		e.mu.Unlock()
		return false, nil
	}

	prev := e.items
	removed := e.items[i]
	e.items = slices.Delete(slices.Clone(e.items), i, i+1)
	if err := e.persistLocked(ctx); err != nil {
		e.items = prev
		e.mu.Unlock()
		return false, err
	}
	mirror := e.mirrorLocked() && removed.HasRemote()
	e.mu.Unlock()

	if mirror {
		e.spawn(ctx, SyncTask{Kind: TaskDelete, ItemID: id}, func(tctx context.Context) (Outcome, error) {
			return e.applyDelete(ctx, tctx, removed)
		})
	}
	return true, nil
}

func (e *Engine) applyDelete(ctx, tctx context.Context, removed models.KeptItem) (Outcome, error) {
	err := e.remote.Delete(tctx, removed.RemoteID)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err == nil {
		e.syncErr = ""
		return OutcomeSuccess, nil
	}

	e.syncErr = MsgRemoveFailed
	if e.indexLocked(removed.ID) < 0 {
		e.items = append(e.items, removed)
		if perr := e.persistLocked(ctx); perr != nil {
			e.logger.Warn(ctx, "restored item not persisted", "id", removed.ID, "error", perr)
		}
	}
	return OutcomeFailure, &common.RemoteError{Op: string(TaskDelete), Err: err}
}

// UpdateNotes replaces the notes of a kept item. A failed remote update is
// not rolled back: the local value wins.
func (e *Engine) UpdateNotes(ctx context.Context, id, notes string) error {
	return e.update(ctx, id, MsgNotesFailed, func(k *models.KeptItem) models.Patch {
		k.Notes = notes
		return models.Patch{Notes: &notes}
	})
}

// UpdateTags replaces the tags of a kept item. Tags are normalised to an
// ordered unique set.
func (e *Engine) UpdateTags(ctx context.Context, id string, tags []string) error {
	tags = models.NormalizeTags(tags)
	return e.update(ctx, id, MsgTagsFailed, func(k *models.KeptItem) models.Patch {
		k.Tags = tags
		return models.Patch{Tags: slices.Clone(tags)}
	})
}

func (e *Engine) update(ctx context.Context, id, failMsg string, apply func(k *models.KeptItem) models.Patch) error {
	e.mu.Lock()
	i := e.indexLocked(id)
	if i < 0 {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotKept, id)
	}

	prev := e.items[i].Clone()
	patch := apply(&e.items[i])
	if err := e.persistLocked(ctx); err != nil {
		e.items[i] = prev
		e.mu.Unlock()
		return err
	}
	remoteID := e.items[i].RemoteID
	mirror := e.mirrorLocked() && remoteID != ""
	e.mu.Unlock()

	if mirror {
		e.spawn(ctx, SyncTask{Kind: TaskUpdate, ItemID: id}, func(tctx context.Context) (Outcome, error) {
			err := e.remote.Update(tctx, remoteID, patch)

			e.mu.Lock()
			defer e.mu.Unlock()

			if err != nil {
				e.syncErr = failMsg
				return OutcomeFailure, &common.RemoteError{Op: string(TaskUpdate), Err: err}
			}
			if j := e.indexLocked(id); j < 0 || e.items[j].RemoteID != remoteID {
				return OutcomeSuperseded, nil
			}
			e.syncErr = ""
			return OutcomeSuccess, nil
		})
	}
	return nil
}

// FetchFromRemote replaces the local collection with the remote one.
// A call made while another fetch is in flight returns ErrFetchInFlight and
// does nothing.
func (e *Engine) FetchFromRemote(ctx context.Context) ([]models.KeptItem, error) {
	e.mu.Lock()
	if e.fetching {
		e.mu.Unlock()
		return nil, ErrFetchInFlight
	}
	if !e.mirrorLocked() {
		e.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	e.fetching = true
	e.mu.Unlock()

	items, err := e.remote.ListAll(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.fetching = false

	if err != nil {
		e.syncErr = MsgSyncFailed
		e.logger.Warn(ctx, "fetch from remote failed", "error", err)
		return nil, &common.RemoteError{Op: string(TaskList), Err: err}
	}

	prev := e.items
	e.items = dedupeByID(items)
	if err := e.persistLocked(ctx); err != nil {
		e.items = prev
		return nil, err
	}
	e.syncErr = ""

	e.logger.Info(ctx, "kept items synced from remote", "count", len(e.items))
	return cloneItems(e.items), nil
}

// OnLogin enables remote mirroring and starts one background fetch.
func (e *Engine) OnLogin(ctx context.Context) {
	e.mu.Lock()
	e.authenticated = true
	e.mu.Unlock()

	e.spawn(ctx, SyncTask{Kind: TaskList}, func(tctx context.Context) (Outcome, error) {
		if _, err := e.FetchFromRemote(tctx); err != nil {
			if errors.Is(err, ErrFetchInFlight) {
				return OutcomeSuperseded, nil
			}
			return OutcomeFailure, err
		}
		return OutcomeSuccess, nil
	})
}

// OnLogout disables remote mirroring. Items are retained; their remote ids
// are not used until the next login.
func (e *Engine) OnLogout() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.authenticated = false
}

// SyncError returns the last remote failure message, or "".
func (e *Engine) SyncError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.syncErr
}

// Items returns a copy of the collection in insertion order.
func (e *Engine) Items() []models.KeptItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneItems(e.items)
}

func (e *Engine) Get(id string) (models.KeptItem, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := e.indexLocked(id)
	if i < 0 {
		return models.KeptItem{}, false
	}
	return e.items[i].Clone(), true
}

func (e *Engine) IsKept(id string) bool {
	_, ok := e.Get(id)
	return ok
}

// Wait blocks until every background task has resolved.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// Close stops remote mirroring and waits for tasks already started.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.wg.Wait()
}

func (e *Engine) mirrorLocked() bool {
	return e.authenticated && !e.closed && e.remote != nil
}

func (e *Engine) indexLocked(id string) int {
	return slices.IndexFunc(e.items, func(k models.KeptItem) bool { return k.ID == id })
}

func (e *Engine) persistLocked(ctx context.Context) error {
	data, err := json.Marshal(e.items)
	if err != nil {
		return fmt.Errorf("failed to encode kept items: %w", err)
	}
	if err := e.store.Set(ctx, storage.KeyKeptItems, data); err != nil {
		return fmt.Errorf("failed to persist kept items: %w", err)
	}
	return nil
}

func dedupeByID(items []models.KeptItem) []models.KeptItem {
	out := make([]models.KeptItem, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, k := range items {
		if _, ok := seen[k.ID]; ok {
			continue
		}
		seen[k.ID] = struct{}{}
		if k.Tags == nil {
			k.Tags = []string{}
		}
		out = append(out, k.Clone())
	}
	return out
}

func cloneItems(items []models.KeptItem) []models.KeptItem {
	out := make([]models.KeptItem, len(items))
	for i, k := range items {
		out[i] = k.Clone()
	}
	return out
}
