package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/credkeeper/internal/client/cli"
	"github.com/dmitrijs2005/credkeeper/internal/client/client"
	"github.com/dmitrijs2005/credkeeper/internal/client/config"
	"github.com/dmitrijs2005/credkeeper/internal/flagx"
)

type commandRunner interface {
	Run(ctx context.Context)
	RunCommand(ctx context.Context, args []string) error
}

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	c, err := client.NewGRPCClient(cfg.ServerEndpointAddr, cfg.RequestTimeout)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app := cli.NewApp(c, os.Stdin, os.Stdout)
	args := flagx.Positional(os.Args[1:], []string{"-a", "-r", "-c", "-config"})

	code := run(ctx, app, args, os.Stderr)
	c.Close()
	os.Exit(code)
}

// run starts the REPL when no command is given, otherwise executes the
// command and reports its error on stderr.
func run(ctx context.Context, app commandRunner, args []string, stderr io.Writer) int {
	if len(args) == 0 {
		app.Run(ctx)
		return 0
	}

	if err := app.RunCommand(ctx, args); err != nil {
		fmt.Fprintf(stderr, "authctl: %v\n", err)
		return 1
	}
	return 0
}
