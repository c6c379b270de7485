package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Signup(ctx context.Context) error
	Verify(ctx context.Context) error
	Resend(ctx context.Context) error
	Forgot(ctx context.Context) error
	Reset(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Meetings(ctx context.Context) error
	Show(ctx context.Context, args []string) error
	Summary(ctx context.Context, args []string) error
	Transcript(ctx context.Context, args []string) error
	Tasks(ctx context.Context, args []string) error
	SetDone(ctx context.Context, args []string, done bool) error
	Integrations(ctx context.Context) error
	Automations(ctx context.Context) error
	Account(ctx context.Context) error
	Token(ctx context.Context) error
}

const (
	helpSignedOut = "Available commands: signup, verify, resend, forgot, reset, login, exit"
	helpSignedIn  = "Available commands: meetings, show <id>, summary <id>, transcript <id>, tasks [meeting-id], done <task-id>, undone <task-id>, integrations, automations, account, token, logout, exit"
)

// commands that need a signed-in session
var sessionCommands = map[string]bool{
	"meetings": true, "m": true, "show": true, "summary": true, "transcript": true,
	"tasks": true, "done": true, "undone": true, "integrations": true,
	"automations": true, "account": true, "token": true, "logout": true,
}

// commands that take one required argument
var usage = map[string]string{
	"show":       "Usage: show <meeting-id>",
	"summary":    "Usage: summary <meeting-id>",
	"transcript": "Usage: transcript <meeting-id>",
	"done":       "Usage: done <task-id>",
	"undone":     "Usage: undone <task-id>",
}

// runREPL starts a simple read–eval–print loop for the Minutes CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF, when ctx is done, or when the user types
// "exit" or "quit".
//
// Commands that need a session are refused while signed out. Errors
// returned by command handlers are ignored here; handlers report them to the
// user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}

		printlnFn(fmt.Sprintf("minutes %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if sessionCommands[cmd] && !a.isLoggedIn() {
			printlnFn("Please log in first (type 'login').")
			continue
		}
		if u, ok := usage[cmd]; ok && len(args) == 0 {
			printlnFn(u)
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}

		case "signup":
			_ = a.Signup(ctx)

		case "verify":
			_ = a.Verify(ctx)

		case "resend":
			_ = a.Resend(ctx)

		case "forgot":
			_ = a.Forgot(ctx)

		case "reset":
			_ = a.Reset(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "m", "meetings":
			_ = a.Meetings(ctx)

		case "show":
			_ = a.Show(ctx, args)

		case "summary":
			_ = a.Summary(ctx, args)

		case "transcript":
			_ = a.Transcript(ctx, args)

		case "tasks":
			_ = a.Tasks(ctx, args)

		case "done":
			_ = a.SetDone(ctx, args, true)

		case "undone":
			_ = a.SetDone(ctx, args, false)

		case "integrations":
			_ = a.Integrations(ctx)

		case "automations":
			_ = a.Automations(ctx)

		case "account":
			_ = a.Account(ctx)

		case "token":
			_ = a.Token(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
