package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/paperswipe/internal/client/client"
	"github.com/dmitrijs2005/paperswipe/internal/client/feed"
	"github.com/dmitrijs2005/paperswipe/internal/client/models"
	"github.com/dmitrijs2005/paperswipe/internal/client/provider"
	"github.com/dmitrijs2005/paperswipe/internal/client/services"
	"github.com/dmitrijs2005/paperswipe/internal/export"
	"github.com/dmitrijs2005/paperswipe/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// FeedView is the feed controller surface used by the CLI.
type FeedView interface {
	LoadMore(ctx context.Context) error
	SetBrowse(ctx context.Context)
	SetSearch(ctx context.Context, keyword string)
	SetDateFilter(ctx context.Context, since *time.Time)
	ResetAndReload(ctx context.Context) error
	Current() (models.Item, bool)
	Remaining() int
	State() (feed.State, error)
	Mode() (provider.Mode, string)
	DateFilter() *time.Time
	Wait()
}

// Decider applies a decision on the current item.
type Decider interface {
	Accept(ctx context.Context) (models.Item, error)
	Reject(ctx context.Context) (models.Item, error)
}

// TopicStore is the preference surface used by the CLI.
type TopicStore interface {
	Topics() []string
	SetTopics(ctx context.Context, topics []string) error
	SeenCount() int
}

// KeptStore is the kept-item surface used by the CLI.
type KeptStore interface {
	Items() []models.KeptItem
	UpdateNotes(ctx context.Context, id, notes string) error
	UpdateTags(ctx context.Context, id string, tags []string) error
	Remove(ctx context.Context, id string) (bool, error)
	SyncError() string
}

// LibraryOps moves the kept library in and out.
type LibraryOps interface {
	ExportLocal(path string, format export.Format) (int, error)
	ExportRemote(ctx context.Context, format export.Format, tag, path string) (client.ExportLink, error)
	Sync(ctx context.Context) (int, error)
}

// Deps are the collaborators of an App.
type Deps struct {
	Auth                services.AuthService
	Browse              Decider
	Feed                FeedView
	Prefs               TopicStore
	Kept                KeptStore
	Library             LibraryOps
	Logger              logging.Logger
	In                  io.Reader
	Out                 io.Writer
	OnlineCheckInterval time.Duration
	DefaultTopic        string
}

type App struct {
	auth          services.AuthService
	browse        Decider
	feed          FeedView
	prefs         TopicStore
	kept          KeptStore
	library       LibraryOps
	logger        logging.Logger
	reader        *bufio.Reader
	out           io.Writer
	checkInterval time.Duration
	defaultTopic  string

	mu   sync.Mutex
	mode Mode
}

func NewApp(d Deps) *App {
	return &App{
		auth:          d.Auth,
		browse:        d.Browse,
		feed:          d.Feed,
		prefs:         d.Prefs,
		kept:          d.Kept,
		library:       d.Library,
		logger:        d.Logger.With("module", "cli"),
		reader:        bufio.NewReader(d.In),
		out:           d.Out,
		checkInterval: d.OnlineCheckInterval,
		defaultTopic:  d.DefaultTopic,
	}
}

// Run resumes a stored session, starts the first feed load and the
// connectivity watcher, then blocks in the REPL.
func (a *App) Run(ctx context.Context) {
	ok, err := a.auth.Resume(ctx)
	if err != nil {
		a.logger.Warn(ctx, "session not resumed", "error", err)
	}
	if ok {
		a.println("Welcome back,", a.auth.Session().UserName)
	}

	if a.checkInterval > 0 {
		go a.StartOnlineStatusWatcher(ctx, a.checkInterval)
	}

	a.feed.SetBrowse(ctx)

	a.println("Welcome to PaperSwipe CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	s := a.auth.Session()
	return s.Authenticated()
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

func (a *App) currentMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()

	if err := a.auth.Ping(pctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) getStatus() string {
	s := ""
	if u := a.auth.Session().UserName; u != "" {
		s = u + " "
	}
	if m := a.currentMode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
