package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/componentry/capgen/internal/app"
	"github.com/componentry/capgen/internal/cli"
)

// main is the entrypoint for the capgen generator.
func main() {
	if err := run(os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if exitErr, ok := err.(*cli.ExitError); ok {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run holds the real logic so tests can exercise it with fake streams.
func run(outW, errW io.Writer, args []string) error {
	cfg, shouldExit, err := cli.Parse(args, errW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}
	return app.New(outW, errW, cfg).Run(context.Background())
}
