package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// AuthClient is the server surface the CLI needs.
type AuthClient interface {
	Register(ctx context.Context, identity string, password []byte) (string, error)
	Login(ctx context.Context, identity string, password []byte) (string, error)
	Validate(ctx context.Context, token string) (bool, error)
}

type App struct {
	client   AuthClient
	reader   *bufio.Reader
	out      io.Writer
	identity string
	token    string
}

func NewApp(c AuthClient, in io.Reader, out io.Writer) *App {
	return &App{client: c, reader: bufio.NewReader(in), out: out}
}

func (a *App) isLoggedIn() bool {
	return a.token != ""
}

func (a *App) status() string {
	if a.identity == "" && !a.isLoggedIn() {
		return ""
	}
	return fmt.Sprintf("(%s)", a.identity)
}

// Run starts the interactive REPL and blocks until exit or EOF.
func (a *App) Run(ctx context.Context) {
	fmt.Fprintln(a.out, "credkeeper CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader, a.out)
}

// RunCommand executes a single command given on the command line.
func (a *App) RunCommand(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("no command given")
	}

	switch args[0] {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "validate":
		if len(args) < 2 {
			return fmt.Errorf("usage: validate <token>")
		}
		return a.Validate(ctx, args[1])
	default:
		return fmt.Errorf("unknown command %q", args[0])
	}
}
