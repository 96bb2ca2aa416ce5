package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/paperswipe/internal/client/feed"
	"github.com/dmitrijs2005/paperswipe/internal/client/provider"
	"github.com/dmitrijs2005/paperswipe/internal/client/services"
)

// Topics shows the selected topics, lists the known names ("topics list"),
// or replaces the selection ("topics machine learning, cs.CV").
func (a *App) Topics(ctx context.Context, args []string) error {
	if len(args) == 0 {
		topics := a.prefs.Topics()
		if len(topics) == 0 {
			a.printf("No topics selected; browsing %s\n", a.defaultTopic)
			return nil
		}
		a.println("Topics:", strings.Join(topics, ", "))
		return nil
	}

	if len(args) == 1 && args[0] == "list" {
		known := provider.KnownTopics()
		names := make([]string, 0, len(known))
		for name := range known {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			a.printf("  %-30s %s\n", name, known[name])
		}
		return nil
	}

	var topics []string
	for _, t := range strings.Split(strings.Join(args, " "), ",") {
		if t = provider.NormalizeTopic(t); t != "" {
			topics = append(topics, t)
		}
	}
	if err := a.prefs.SetTopics(ctx, topics); err != nil {
		return err
	}
	a.println("Topics:", strings.Join(a.prefs.Topics(), ", "))

	if mode, _ := a.feed.Mode(); mode == provider.ModeBrowse {
		a.feed.SetBrowse(ctx)
		return a.waitAndShow(ctx)
	}
	return nil
}

func (a *App) Browse(ctx context.Context) error {
	a.feed.SetBrowse(ctx)
	return a.waitAndShow(ctx)
}

func (a *App) Search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: search <keywords>")
	}
	a.feed.SetSearch(ctx, strings.Join(args, " "))
	return a.waitAndShow(ctx)
}

// Since filters the feed by publication date; "off" removes the filter.
func (a *App) Since(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: since <YYYY-MM-DD|off>")
	}
	if args[0] == "off" {
		a.feed.SetDateFilter(ctx, nil)
		return a.waitAndShow(ctx)
	}

	t, err := time.Parse(time.DateOnly, args[0])
	if err != nil {
		return fmt.Errorf("bad date %q: use YYYY-MM-DD", args[0])
	}
	a.feed.SetDateFilter(ctx, &t)
	return a.waitAndShow(ctx)
}

func (a *App) Show(ctx context.Context) error {
	item, ok := a.feed.Current()
	if ok {
		a.println(formatItem(item))
		a.printf("(%d more queued) keep: y, skip: n\n", a.feed.Remaining()-1)
		return nil
	}

	state, err := a.feed.State()
	switch state {
	case feed.StateFetching:
		a.println("Loading papers...")
	case feed.StateError:
		a.printf("Could not load papers: %v\nType 'more' to retry.\n", err)
	default:
		a.println("No more papers here. Try 'more', another search, or 'reset'.")
	}
	return nil
}

func (a *App) Keep(ctx context.Context) error {
	item, err := a.browse.Accept(ctx)
	if err != nil {
		return a.decisionError(err)
	}
	a.println("Saved:", item.Title)
	return a.Show(ctx)
}

func (a *App) Skip(ctx context.Context) error {
	item, err := a.browse.Reject(ctx)
	if err != nil {
		return a.decisionError(err)
	}
	a.println("Skipped:", item.Title)
	return a.Show(ctx)
}

func (a *App) decisionError(err error) error {
	if errors.Is(err, services.ErrFeedEmpty) {
		a.println("Nothing to decide on.")
		return nil
	}
	return err
}

func (a *App) More(ctx context.Context) error {
	before := a.feed.Remaining()
	err := a.feed.LoadMore(ctx)
	if errors.Is(err, feed.ErrFetchInFlight) {
		a.println("Already loading, try 'show' in a moment.")
		return nil
	}
	if err != nil {
		return err
	}
	a.printf("%d new papers\n", a.feed.Remaining()-before)
	return nil
}

// Reset forgets seen and disliked papers and reloads the feed.
func (a *App) Reset(ctx context.Context) error {
	ok, err := getConfirmation(a.reader, "Forget seen and disliked papers?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		a.println("Cancelled.")
		return nil
	}
	if err := a.feed.ResetAndReload(ctx); err != nil {
		return err
	}
	a.println("History cleared.")
	return a.Show(ctx)
}

func (a *App) waitAndShow(ctx context.Context) error {
	a.feed.Wait()
	return a.Show(ctx)
}
