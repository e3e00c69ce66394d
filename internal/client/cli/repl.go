package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Validate(ctx context.Context, token string) error
	ShowToken(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads commands from reader until EOF or "exit". Handler errors are
// reported by the handlers themselves and do not stop the loop. Prompts
// inside handlers share reader, so no input is buffered away from them.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, out io.Writer) {
	for {
		fmt.Fprintf(out, "authctl%s> ", statusFn())
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(out, "Available commands: validate [token], token, logout, register, login, exit")
			} else {
				fmt.Fprintln(out, "Available commands: register, login, validate <token>, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "validate":
			token := ""
			if len(args) > 0 {
				token = args[0]
			}
			_ = a.Validate(ctx, token)

		case "token":
			_ = a.ShowToken(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			fmt.Fprintln(out, "Bye!")
			return

		default:
			fmt.Fprintln(out, "Unknown command:", cmd)
		}
	}
}
