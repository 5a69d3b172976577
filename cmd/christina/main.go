// christina captures the subtitle region of the screen, recognizes the
// Japanese text, copies it and shows a translation.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/light4/christina/internal/config"
	"github.com/light4/christina/internal/desktop"
	apperr "github.com/light4/christina/internal/errors"
	"github.com/light4/christina/internal/grpcclient"
	"github.com/light4/christina/internal/orchestrator/pipeline"
	"github.com/light4/christina/internal/trace"
	"github.com/light4/christina/internal/trigger"
	"github.com/light4/christina/internal/trigger/hotkey"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("christina failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: l}))
}

// startInput selects the first run: the image file given on the command
// line, or a screen capture.
func startInput(args []string) pipeline.Input {
	if len(args) > 0 && args[0] != "" {
		return pipeline.Input{Source: "file", Path: args[0]}
	}
	return pipeline.Input{Source: "startup"}
}

// invocation is what the command line asks for. The query modes only talk
// to a running instance.
type invocation struct {
	mode  string // "run", "current" or "translate"
	input pipeline.Input
	text  string
}

func parseArgs(args []string) (invocation, error) {
	if len(args) == 0 {
		return invocation{mode: "run", input: startInput(nil)}, nil
	}
	switch args[0] {
	case "current":
		return invocation{mode: "current"}, nil
	case "translate":
		text := strings.TrimSpace(strings.Join(args[1:], " "))
		if text == "" {
			return invocation{}, apperr.New(apperr.InvalidArgument, "usage: christina translate <text>")
		}
		return invocation{mode: "translate", text: text}, nil
	}
	return invocation{mode: "run", input: startInput(args)}, nil
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(newLogger(cfg.LogLevel))
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx, _ = trace.EnsureContext(ctx)
	log := trace.Logger(ctx)

	inv, err := parseArgs(args)
	if err != nil {
		return err
	}
	if forwarded, err := forward(ctx, cfg, inv, os.Stdout); forwarded || err != nil {
		return err
	}
	input := inv.input

	app, err := newApp(cfg, deps{})
	if err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer app.Shutdown()
	log.Info("christina started", "version", version, "panel", app.PanelURL(), "control", cfg.ControlAddr)

	go func() {
		if _, err := app.manager.Do(ctx, input); err != nil {
			log.Debug("first run finished with error", "error", err)
		}
	}()

	go trigger.Signals{Submitter: app.manager, Shutdown: cancel}.Listen(ctx)

	if cfg.Hotkey != "" {
		combo, err := trigger.ParseCombo(cfg.Hotkey)
		if err != nil {
			return err
		}
		go func() {
			if err := hotkey.Listen(ctx, combo, app.manager); err != nil {
				log.Warn("global hotkey unavailable", "combo", combo.String(), "error", err)
			}
		}()
	}

	go func() {
		select {
		case err := <-app.Errors():
			log.Error("server error", "error", err)
			cancel()
		case <-ctx.Done():
		}
	}()

	if cfg.Tray {
		runTray(ctx, cancel, app)
	} else {
		<-ctx.Done()
	}

	log.Info("shutting down...")
	return nil
}

// runTray blocks on the tray loop until ctx is done or Quit is chosen.
func runTray(ctx context.Context, cancel context.CancelFunc, app *App) {
	tray := desktop.NewTray(desktop.TrayActions{
		Capture: func() { app.manager.Submit("tray") },
		OpenPanel: func() {
			if err := desktop.OpenURL(app.PanelURL()); err != nil {
				trace.Logger(ctx).Warn("open panel failed", "error", err)
			}
		},
		Quit: cancel,
	}, "christina "+version)

	events, unsubscribe := app.manager.Subscribe()
	go func() {
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				tray.Stop()
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				tray.Show(evt.Result)
			}
		}
	}()
	tray.Run()
	cancel()
}

// forward hands the request to a running instance and prints the answer to
// out. It reports true when one answered, in which case this process has
// nothing left to do. The query modes fail when no instance is running.
func forward(ctx context.Context, cfg *config.Config, inv invocation, out io.Writer) (bool, error) {
	client, err := grpcclient.New(cfg.ControlAddr, grpcclient.DefaultConfig())
	if err != nil {
		return false, err
	}
	defer func() { _ = client.Close() }()

	if !client.Probe(ctx) {
		if inv.mode != "run" {
			return false, apperr.Newf(apperr.Unavailable, "no instance running on %s", cfg.ControlAddr)
		}
		return false, nil
	}
	log := trace.Logger(ctx)

	switch inv.mode {
	case "current":
		res, err := client.Current(ctx)
		if err != nil {
			return true, err
		}
		fmt.Fprintln(out, res.Origin)
		fmt.Fprintln(out, res.Translated)
		return true, nil
	case "translate":
		translated, err := client.Translate(ctx, inv.text)
		if err != nil {
			return true, err
		}
		fmt.Fprintln(out, translated)
		return true, nil
	}

	if inv.input.Path != "" {
		return true, apperr.Newf(apperr.Busy, "an instance is already running on %s; image files are read by the first instance only", cfg.ControlAddr)
	}

	log.Info("instance already running, requesting a capture", "control", cfg.ControlAddr)
	res, unchanged, err := client.Capture(ctx)
	if err != nil {
		return true, err
	}
	if unchanged {
		fmt.Fprintln(out, "(unchanged)")
	}
	fmt.Fprintln(out, res.Origin)
	fmt.Fprintln(out, res.Translated)
	return true, nil
}
