package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/dgallion1/syllabook/internal/config"
)

// Exit codes.
const (
	ExitSuccess = 0
	ExitFailure = 1 // Any stage failed
	ExitUsage   = 2 // Bad command line
)

const usage = `Usage: syllabook <command> [flags]

Commands:
  build    generate a .docx book from a syllabus
  serve    run the HTTP API and job workers
  browse   run a browser action script

Run "syllabook <command> --help" for command flags.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return ExitUsage
	}

	cfg := config.Load()
	var err error
	switch args[0] {
	case "build":
		err = runBuild(ctx, cfg, args[1:], stdout, stderr)
	case "serve":
		err = runServe(ctx, cfg, args[1:], stdout, stderr)
	case "browse":
		err = runBrowse(ctx, cfg, args[1:], stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return ExitSuccess
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return ExitUsage
	}

	switch {
	case err == nil, errors.Is(err, flag.ErrHelp):
		return ExitSuccess
	case errors.Is(err, errUsage):
		fmt.Fprintln(stderr, err)
		return ExitUsage
	default:
		return ExitFailure
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}
