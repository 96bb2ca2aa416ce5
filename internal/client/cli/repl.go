package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for REPL output.
var printlnFn = fmt.Println

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) error

	Topics(ctx context.Context, args []string) error
	Browse(ctx context.Context) error
	Search(ctx context.Context, args []string) error
	Since(ctx context.Context, args []string) error
	Show(ctx context.Context) error
	Keep(ctx context.Context) error
	Skip(ctx context.Context) error
	More(ctx context.Context) error
	Reset(ctx context.Context) error

	Saved(ctx context.Context) error
	Notes(ctx context.Context, args []string) error
	Tags(ctx context.Context, args []string) error
	Remove(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
	RemoteExport(ctx context.Context, args []string) error
	Sync(ctx context.Context) error
}

const (
	helpFeed    = "Feed: topics [list|<t1,t2>], browse, search <kw>, since <YYYY-MM-DD|off>, show, keep (y), skip (n), more, reset"
	helpLibrary = "Library: saved, notes <id> <text>, tags <id> <t1,t2>, rm <id>, export <bibtex|csv|txt> <file>"
	helpRemote  = "Account: remote-export <format> [tag] [file], sync, logout, status, exit"
	helpGuest   = "Account: register, login, status, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
// The loop exits on EOF or when the user types "exit" or "quit". Command
// errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("paperswipe %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			printlnFn(helpFeed)
			printlnFn(helpLibrary)
			if a.isLoggedIn() {
				printlnFn(helpRemote)
			} else {
				printlnFn(helpGuest)
			}

		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "status":
			cmdErr = a.Status(ctx)

		case "topics":
			cmdErr = a.Topics(ctx, args)
		case "browse":
			cmdErr = a.Browse(ctx)
		case "search":
			cmdErr = a.Search(ctx, args)
		case "since":
			cmdErr = a.Since(ctx, args)
		case "show":
			cmdErr = a.Show(ctx)
		case "keep", "y":
			cmdErr = a.Keep(ctx)
		case "skip", "n":
			cmdErr = a.Skip(ctx)
		case "more":
			cmdErr = a.More(ctx)
		case "reset":
			cmdErr = a.Reset(ctx)

		case "saved":
			cmdErr = a.Saved(ctx)
		case "notes":
			cmdErr = a.Notes(ctx, args)
		case "tags":
			cmdErr = a.Tags(ctx, args)
		case "rm":
			cmdErr = a.Remove(ctx, args)
		case "export":
			cmdErr = a.Export(ctx, args)
		case "remote-export":
			cmdErr = a.RemoteExport(ctx, args)
		case "sync":
			cmdErr = a.Sync(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr.Error())
		}
	}
}
