package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/codepulse/internal/client/client"
	"github.com/dmitrijs2005/codepulse/internal/client/session"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Categories(ctx context.Context) error
	AddCategory(ctx context.Context) error
	EditCategory(ctx context.Context, id string) error
	DeleteCategory(ctx context.Context, id string) error
	Posts(ctx context.Context) error
	Post(ctx context.Context, idOrHandle string) error
	AddPost(ctx context.Context) error
	EditPost(ctx context.Context, idOrHandle string) error
	DeletePost(ctx context.Context, id string) error
	Images(ctx context.Context) error
	Upload(ctx context.Context) error
}

const (
	helpAnonymous = "Available commands: register, login, whoami, categories, posts, post <id|handle>, images, exit"
	helpSignedIn  = "Available commands: logout, whoami, categories, addcategory, editcategory <id>, delcategory <id>, posts, post <id|handle>, addpost, editpost <id|handle>, delpost <id>, images, upload, exit"
)

// runREPL reads one command per line from reader and dispatches it to a.
// Command errors are printed and the loop carries on. The loop ends on EOF,
// "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("codepulse %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				printlnFn("Error:", err)
			}
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
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpAnonymous)
			}
		case "register":
			cmdErr = a.Register(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "whoami":
			cmdErr = a.WhoAmI(ctx)
		case "categories":
			cmdErr = a.Categories(ctx)
		case "addcategory":
			cmdErr = a.AddCategory(ctx)
		case "editcategory":
			if len(args) == 0 {
				printlnFn("Usage: editcategory <id>")
				continue
			}
			cmdErr = a.EditCategory(ctx, args[0])
		case "delcategory":
			if len(args) == 0 {
				printlnFn("Usage: delcategory <id>")
				continue
			}
			cmdErr = a.DeleteCategory(ctx, args[0])
		case "posts":
			cmdErr = a.Posts(ctx)
		case "post":
			if len(args) == 0 {
				printlnFn("Usage: post <id|handle>")
				continue
			}
			cmdErr = a.Post(ctx, args[0])
		case "addpost":
			cmdErr = a.AddPost(ctx)
		case "editpost":
			if len(args) == 0 {
				printlnFn("Usage: editpost <id|handle>")
				continue
			}
			cmdErr = a.EditPost(ctx, args[0])
		case "delpost":
			if len(args) == 0 {
				printlnFn("Usage: delpost <id>")
				continue
			}
			cmdErr = a.DeletePost(ctx, args[0])
		case "images":
			cmdErr = a.Images(ctx)
		case "upload":
			cmdErr = a.Upload(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn(describeError(cmdErr))
		}
	}
}

// describeError renders command failures for people rather than logs.
func describeError(err error) string {
	var pe *client.ProblemError
	switch {
	case errors.As(err, &pe) && len(pe.Problems) > 0:
		return "Error:\n  - " + strings.Join(pe.Problems, "\n  - ")
	case errors.Is(err, session.ErrNotSignedIn):
		return "Please log in first."
	case errors.Is(err, session.ErrSessionExpired):
		return "Your session has expired, please log in again."
	case errors.Is(err, session.ErrNotWriter):
		return "Unauthorized: this command needs the Writer role."
	case errors.Is(err, client.ErrUnauthorized):
		return "The server did not accept your session, please log in again."
	case errors.Is(err, client.ErrForbidden):
		return "Unauthorized: the server refused this operation."
	case errors.Is(err, client.ErrNotFound):
		return "Not found."
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable, try again later."
	default:
		return "Error: " + err.Error()
	}
}
