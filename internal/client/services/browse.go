package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/paperswipe/internal/client/models"
	"github.com/dmitrijs2005/paperswipe/internal/logging"
)

var ErrFeedEmpty = errors.New("no paper to decide on")

// Feed is the part of the feed controller the decision flow drives.
type Feed interface {
	Current() (models.Item, bool)
	Advance(ctx context.Context, id string) error
}

// Preferences records decisions.
type Preferences interface {
	MarkSeen(ctx context.Context, id string) error
	MarkDisliked(ctx context.Context, id string) error
}

// Keeper adds items to the kept collection.
type Keeper interface {
	Keep(ctx context.Context, item models.Item) (bool, error)
}

// BrowseService applies a decision on the top feed item.
//
// Each decision first records the item as seen, then keeps or dislikes it,
// and only then advances the feed. A failing step leaves the item on top so
// the decision can be repeated; all steps are idempotent.
type BrowseService struct {
	feed   Feed
	prefs  Preferences
	keeper Keeper
	logger logging.Logger
}

func NewBrowseService(feed Feed, prefs Preferences, keeper Keeper, logger logging.Logger) *BrowseService {
	return &BrowseService{feed: feed, prefs: prefs, keeper: keeper, logger: logger.With("module", "browse")}
}

// Accept keeps the current item.
func (s *BrowseService) Accept(ctx context.Context) (models.Item, error) {
	return s.decide(ctx, "accept", func(item models.Item) error {
		if _, err := s.keeper.Keep(ctx, item); err != nil {
			return fmt.Errorf("keep %s: %w", item.ID, err)
		}
		return nil
	})
}

// Reject dislikes the current item.
func (s *BrowseService) Reject(ctx context.Context) (models.Item, error) {
	return s.decide(ctx, "reject", func(item models.Item) error {
		if err := s.prefs.MarkDisliked(ctx, item.ID); err != nil {
			return fmt.Errorf("dislike %s: %w", item.ID, err)
		}
		return nil
	})
}

func (s *BrowseService) decide(ctx context.Context, action string, apply func(models.Item) error) (models.Item, error) {
	item, ok := s.feed.Current()
	if !ok {
		return models.Item{}, ErrFeedEmpty
	}

	if err := s.prefs.MarkSeen(ctx, item.ID); err != nil {
		return models.Item{}, fmt.Errorf("mark %s seen: %w", item.ID, err)
	}
	if err := apply(item); err != nil {
		return models.Item{}, err
	}
	if err := s.feed.Advance(ctx, item.ID); err != nil {
		return models.Item{}, fmt.Errorf("advance: %w", err)
	}

	s.logger.Debug(ctx, "decision applied", "action", action, "id", item.ID)
	return item, nil
}
