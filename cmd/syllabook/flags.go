package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/dgallion1/syllabook/internal/config"
)

// errUsage marks bad command lines; main exits with ExitUsage for these.
var errUsage = errors.New("usage error")

type commonFlags struct {
	verbose bool
}

type buildFlags struct {
	common      commonFlags
	syllabus    string
	output      string
	title       string
	concurrency int
	model       string
}

type serveFlags struct {
	common commonFlags
	port   string
}

type browseFlags struct {
	common  commonFlags
	script  string
	remote  string
	headful bool
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parseBuildFlags(args []string, stderr io.Writer) (*buildFlags, error) {
	fs := newFlagSet("build", stderr)
	f := &buildFlags{}
	fs.StringVarP(&f.syllabus, "syllabus", "s", "", "syllabus file (.pdf, .txt, .md, .docx, .html)")
	fs.StringVarP(&f.output, "out", "o", "", "output .docx path (default Generated_Book.docx)")
	fs.StringVarP(&f.title, "title", "t", "", "book title (default: from syllabus file name)")
	fs.IntVarP(&f.concurrency, "concurrency", "c", 0, "topics generated in parallel (0 = CONCURRENCY env or 4)")
	fs.StringVarP(&f.model, "model", "m", "", "OpenRouter model id")
	addCommonFlags(fs, &f.common)

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() > 0 {
		if f.syllabus != "" || fs.NArg() > 1 {
			return nil, fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
		}
		f.syllabus = fs.Arg(0)
	}
	return f, nil
}

func (f *buildFlags) apply(cfg *config.Config) {
	if f.syllabus != "" {
		cfg.SyllabusPath = f.syllabus
	}
	if f.output != "" {
		cfg.OutputPath = f.output
	}
	if f.title != "" {
		cfg.Title = f.title
	}
	if f.concurrency > 0 {
		cfg.Concurrency = f.concurrency
	}
	if f.model != "" {
		cfg.OpenRouterModel = f.model
	}
}

func parseServeFlags(args []string, stderr io.Writer) (*serveFlags, error) {
	fs := newFlagSet("serve", stderr)
	f := &serveFlags{}
	fs.StringVarP(&f.port, "port", "p", "", "listen port (default PORT env or 8090)")
	addCommonFlags(fs, &f.common)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}
	return f, nil
}

func (f *serveFlags) apply(cfg *config.Config) {
	if f.port != "" {
		cfg.Port = f.port
	}
}

func parseBrowseFlags(args []string, stderr io.Writer) (*browseFlags, error) {
	fs := newFlagSet("browse", stderr)
	f := &browseFlags{}
	fs.StringVar(&f.script, "script", "", "YAML action script (default: built-in Reddit first-comment task)")
	fs.StringVar(&f.remote, "remote", "", "WebSocket URL of a running Chrome (default BROWSER_REMOTE_URL env)")
	fs.BoolVar(&f.headful, "headful", false, "show the browser window")
	addCommonFlags(fs, &f.common)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", errUsage, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}
	return f, nil
}

func (f *browseFlags) apply(cfg *config.Config) {
	if f.remote != "" {
		cfg.BrowserRemoteURL = f.remote
	}
}
