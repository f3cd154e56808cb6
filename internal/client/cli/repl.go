package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/filevault/internal/client/client"
	"github.com/dmitrijs2005/filevault/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

var errUsage = errors.New("usage")

// execIface is the command surface the REPL needs. The real App satisfies
// it; tests provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	List(ctx context.Context) error
	Upload(ctx context.Context, args []string) error
	Put(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error
	Link(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
}

// runREPL reads commands from reader until EOF, "exit" or "quit". File
// commands require a session. Command errors are printed and the loop
// continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("fv%s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}
		if err := dispatch(ctx, a, cmd, args); err != nil {
			report(err)
		}
	}
}

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn("Available commands: whoami, (l)ist, upload <path>, put <path>, download <id> [--proxy], link <id>, delete <id>, logout, exit")
		} else {
			printlnFn("Available commands: register, login, exit")
		}
		return nil
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	}

	if !a.isLoggedIn() {
		switch cmd {
		case "logout", "whoami", "l", "list", "upload", "put", "download", "link", "delete":
			printlnFn("Please login first")
			return nil
		}
	}

	switch cmd {
	case "logout":
		return a.Logout(ctx)
	case "whoami":
		return a.Whoami(ctx)
	case "l", "list":
		return a.List(ctx)
	case "upload":
		return a.Upload(ctx, args)
	case "put":
		return a.Put(ctx, args)
	case "download":
		return a.Download(ctx, args)
	case "link":
		return a.Link(ctx, args)
	case "delete":
		return a.Delete(ctx, args)
	default:
		printlnFn("Unknown command:", cmd)
		return nil
	}
}

func report(err error) {
	var apiErr *client.APIError
	switch {
	case errors.Is(err, errUsage):
		printlnFn(err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		printlnFn("Error:", err, "(try login again)")
	case errors.As(err, &apiErr) && len(apiErr.Fields) > 0:
		printlnFn("Error:", apiErr.Message)
		for field, msg := range apiErr.Fields {
			printlnFn("  "+field+":", msg)
		}
	default:
		printlnFn("Error:", err)
	}
}
