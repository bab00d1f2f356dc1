package main

import (
	"context"
	"fmt"
	"io"

	"github.com/dgallion1/syllabook/internal/browser"
	"github.com/dgallion1/syllabook/internal/config"
)

// runBrowse executes one action script against Chrome and prints the answer.
func runBrowse(ctx context.Context, cfg config.Config, args []string, stdout, stderr io.Writer) error {
	f, err := parseBrowseFlags(args, stderr)
	if err != nil {
		return err
	}
	f.apply(&cfg)
	log := newLogger(stderr, f.common.verbose)

	script := browser.DefaultScript()
	if f.script != "" {
		if script, err = browser.LoadScript(f.script); err != nil {
			log.Error("load script", "path", f.script, "error", err)
			return err
		}
	}

	capability, err := browser.NewRodCapability(ctx, browser.RodConfig{
		RemoteURL: cfg.BrowserRemoteURL,
		Headful:   f.headful,
		Logger:    log,
	})
	if err != nil {
		log.Error("start browser", "error", err)
		return err
	}
	defer capability.Close()

	results, err := browser.NewRunner(capability, cfg.BrowserTimeout, log).Run(ctx, script)
	if err != nil {
		log.Error("script failed", "script", script.Name, "completed_steps", len(results), "error", err)
		return err
	}
	fmt.Fprintln(stdout, browser.Answer(results))
	return nil
}
