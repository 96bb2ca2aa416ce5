// Package cli provides the interactive PaperSwipe command-line client.
//
// The App wires the feed controller, the decision flow, the kept-item engine
// and the auth service behind a line-oriented REPL. A background watcher
// pings the server and switches the prompt between online and offline.
//
// Key commands:
//   - browse / search / since / topics: choose what the feed shows
//   - show / keep (y) / skip (n) / more / reset: work through the feed
//   - saved / notes / tags / rm: manage kept papers
//   - export / remote-export / sync: move the library around
//   - register / login / logout / status
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
