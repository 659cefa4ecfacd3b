package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"go.voidsdatastore.net/voids/app"
	actx "go.voidsdatastore.net/voids/app/context"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(
		app.WithContext(ctx),
		app.WithEnv(osEnv{}),
		app.WithFS(osfs.New()),
		app.WithFDs(os.Stdin, os.Stdout, colorable.NewColorableStderr()),
		app.WithLogger(
			isatty.IsTerminal(os.Stdout.Fd()),
			isatty.IsTerminal(os.Stderr.Fd()),
		),
		app.WithExit(os.Exit),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "voids: %v\n", err)
		os.Exit(1)
	}

	a.FatalIfErrorf(a.Run(os.Args[1:]))
}

type osEnv struct{}

var _ actx.Environment = &osEnv{}

func (e osEnv) Get(key string) string {
	return os.Getenv(key)
}

func (e osEnv) Set(key, val string) error {
	return os.Setenv(key, val)
}
