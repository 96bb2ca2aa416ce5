package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/paperswipe/internal/client/kept"
	"github.com/dmitrijs2005/paperswipe/internal/client/models"
	"github.com/dmitrijs2005/paperswipe/internal/export"
)

// Saved lists the kept papers. Papers not yet stored on the server are
// marked with "*".
func (a *App) Saved(ctx context.Context) error {
	items := a.kept.Items()
	if len(items) == 0 {
		a.println("No saved papers.")
		return nil
	}

	for _, k := range items {
		a.println(formatKept(k))
	}
	if a.isLoggedIn() {
		a.println("* not stored on the server yet")
	}
	if msg := a.kept.SyncError(); msg != "" {
		a.println("Sync:", msg)
	}
	return nil
}

func (a *App) Notes(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: notes <id> <text>")
	}
	if err := a.kept.UpdateNotes(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
		return notKept(err, args[0])
	}
	a.println("Notes updated.")
	return nil
}

func (a *App) Tags(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: tags <id> <t1,t2>")
	}
	tags := models.ParseTags(strings.Join(args[1:], " "))
	if err := a.kept.UpdateTags(ctx, args[0], tags); err != nil {
		return notKept(err, args[0])
	}
	a.println("Tags:", strings.Join(tags, ", "))
	return nil
}

func (a *App) Remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: rm <id>")
	}
	removed, err := a.kept.Remove(ctx, args[0])
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%s is not saved", args[0])
	}
	a.println("Removed", args[0])
	return nil
}

func (a *App) Export(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: export <bibtex|csv|txt> <file>")
	}
	format, err := export.ParseFormat(args[0])
	if err != nil {
		return err
	}

	n, err := a.library.ExportLocal(args[1], format)
	if err != nil {
		return err
	}
	a.printf("Exported %d papers to %s\n", n, args[1])
	return nil
}

// RemoteExport asks the server for an export of the remote library. With a
// file argument the export is downloaded as well.
func (a *App) RemoteExport(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return ErrNotLoggedIn
	}
	if len(args) < 1 || len(args) > 3 {
		return errors.New("usage: remote-export <bibtex|csv|txt> [tag] [file]")
	}
	format, err := export.ParseFormat(args[0])
	if err != nil {
		return err
	}

	var tag, path string
	if len(args) > 1 {
		tag = args[1]
	}
	if len(args) > 2 {
		path = args[2]
	}

	link, err := a.library.ExportRemote(ctx, format, tag, path)
	if err != nil {
		return err
	}

	a.println("Download:", link.URL)
	if !link.ExpiresAt.IsZero() {
		a.println("Valid until:", link.ExpiresAt.Local().Format(time.DateTime))
	}
	if path != "" {
		a.println("Saved to", path)
	}
	return nil
}

// Sync replaces the local kept papers with the server copy.
func (a *App) Sync(ctx context.Context) error {
	if !a.isLoggedIn() {
		return ErrNotLoggedIn
	}
	n, err := a.library.Sync(ctx)
	if errors.Is(err, kept.ErrFetchInFlight) {
		a.println("Sync already running.")
		return nil
	}
	if err != nil {
		return err
	}
	a.printf("Synced %d papers from the server\n", n)
	return nil
}

func notKept(err error, id string) error {
	if errors.Is(err, kept.ErrNotKept) {
		return fmt.Errorf("%s is not saved", id)
	}
	return err
}
