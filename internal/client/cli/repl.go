package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	hasDocument() bool
	Register(ctx context.Context, args []string) error
	Login(ctx context.Context, args []string) error
	New(ctx context.Context, args []string) error
	Open(ctx context.Context, args []string) error
	Set(ctx context.Context, args []string) error
	Unset(ctx context.Context, args []string) error
	Show(ctx context.Context) error
	Status(ctx context.Context) error
	Save(ctx context.Context) error
	Duplicate(ctx context.Context) error
	Drafts(ctx context.Context) error
	Docs(ctx context.Context, args []string) error
	Close(ctx context.Context) (bool, error)
}

// runREPL starts a read–eval–print loop for the DraftKeeper CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. The loop exits on scanner EOF,
// when ctx is done, or when the user types "exit" or "quit" and the open
// document could be closed.
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("dk %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			printHelp(a)

		case "register":
			_ = a.Register(ctx, args)

		case "login":
			_ = a.Login(ctx, args)

		case "new":
			_ = a.New(ctx, args)

		case "open":
			_ = a.Open(ctx, args)

		case "set":
			_ = a.Set(ctx, args)

		case "unset":
			_ = a.Unset(ctx, args)

		case "show":
			_ = a.Show(ctx)

		case "status":
			_ = a.Status(ctx)

		case "save":
			_ = a.Save(ctx)

		case "duplicate":
			_ = a.Duplicate(ctx)

		case "drafts":
			_ = a.Drafts(ctx)

		case "docs":
			_ = a.Docs(ctx, args)

		case "close":
			_, _ = a.Close(ctx)

		case "exit", "quit":
			if closed, _ := a.Close(ctx); !closed {
				continue
			}
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func printHelp(a execIface) {
	var cmds []string
	if !a.isLoggedIn() {
		cmds = append(cmds, "register", "login")
	} else {
		cmds = append(cmds, "docs [kind]")
	}
	cmds = append(cmds, "new <kind>", "open <kind> <id>", "drafts")
	if a.hasDocument() {
		cmds = append(cmds, "set <field> <value>", "unset <field>", "show", "status", "save", "duplicate", "close")
	}
	cmds = append(cmds, "exit")
	printlnFn("Available commands: " + strings.Join(cmds, ", "))
}
