//go:build !tinygo

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"knobmenu/app"
	"knobmenu/hal"
	"knobmenu/nav"
)

const (
	modeWindow   = "window"
	modeHeadless = "headless"
	modeTerm     = "term"
)

type runOptions struct {
	headless   bool
	term       bool
	ticks      uint64
	frame      time.Duration
	items      int
	subItems   int
	returnPos  string
	tapSelects bool
	trace      bool
	noConsole  bool
	logPath    string
}

func (o *runOptions) bind(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVar(&o.headless, "headless", false, "Run without a window")
	f.BoolVar(&o.term, "term", false, "Render the menu in this terminal")
	f.Uint64Var(&o.ticks, "ticks", 0, "Stop after N frames in headless mode (0 = run until interrupted)")
	f.DurationVar(&o.frame, "frame", 0, "Frame delay (default 20ms)")
	f.IntVar(&o.items, "items", 0, "Main list size")
	f.IntVar(&o.subItems, "subitems", 0, "Sub list size including Return")
	f.StringVar(&o.returnPos, "return", "", "Return item position: first or last")
	f.BoolVar(&o.tapSelects, "tap-selects", false, "Tapping a main item also moves the highlight")
	f.BoolVar(&o.trace, "trace", false, "Log every selection move and ignored event")
	f.BoolVar(&o.noConsole, "no-console", false, "Do not read console commands from stdin")
	f.StringVar(&o.logPath, "log", "", "Write the log to this file instead of stdout")
}

// mode picks the runner. Flags win over the settings file.
func (o *runOptions) mode(s Settings) (string, error) {
	if o.headless && o.term {
		return "", errors.New("--headless and --term are exclusive")
	}
	switch {
	case o.headless:
		return modeHeadless, nil
	case o.term:
		return modeTerm, nil
	}
	switch s.Mode {
	case "", modeWindow:
		return modeWindow, nil
	case modeHeadless, modeTerm:
		return s.Mode, nil
	}
	return "", fmt.Errorf("settings: unknown mode %q", s.Mode)
}

// config builds the app configuration from the compiled defaults.
func (o *runOptions) config(cmd *cobra.Command, s Settings) (app.Config, error) {
	return o.layer(cmd, s, app.DefaultConfig())
}

// layer overlays the settings file and then the flags that were set on
// base. On boot base already carries the flash device record.
func (o *runOptions) layer(cmd *cobra.Command, s Settings, base app.Config) (app.Config, error) {
	cfg, err := s.apply(base)
	if err != nil {
		return cfg, err
	}
	f := cmd.Flags()
	if f.Changed("frame") {
		if o.frame <= 0 {
			return cfg, fmt.Errorf("--frame must be positive, got %s", o.frame)
		}
		cfg.FrameDelay = o.frame
	}
	if f.Changed("items") {
		cfg.MainItems = o.items
	}
	if f.Changed("subitems") {
		cfg.SubItems = o.subItems
	}
	if f.Changed("return") {
		pos, err := nav.ParseTerminalPosition(o.returnPos)
		if err != nil {
			return cfg, err
		}
		cfg.Terminal = pos
	}
	if f.Changed("tap-selects") {
		cfg.TapSelects = o.tapSelects
	}
	if f.Changed("trace") {
		cfg.Trace = o.trace
	}
	if o.noConsole {
		cfg.Console = false
	}
	return cfg, nil
}

func runMenu(cmd *cobra.Command, root *rootOptions, o *runOptions) error {
	s, err := loadSettings(root.configPath)
	if err != nil {
		return err
	}
	mode, err := o.mode(s)
	if err != nil {
		return err
	}
	// Reject bad settings and flags before the flash file is touched.
	if _, err := o.config(cmd, s); err != nil {
		return err
	}

	hostOpts := hal.DefaultHostOptions()
	hostOpts.Stdin = cmd.InOrStdin()
	hostOpts.Stdout = cmd.OutOrStdout()
	if p := flashPath(root, s); p != "" {
		hostOpts.FlashPath = p
	}
	if mode == modeHeadless {
		hostOpts.VirtualClock = true
	}
	if mode == modeTerm {
		// The terminal owns stdin and stdout.
		hostOpts.Stdin = nil
		hostOpts.Stdout = io.Discard
	}
	if o.logPath != "" {
		f, err := os.Create(o.logPath)
		if err != nil {
			return err
		}
		defer f.Close()
		hostOpts.Stdout = f
	}

	host, err := hal.NewHost(hostOpts)
	if err != nil {
		return err
	}
	defer host.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	overrides := func(c app.Config) (app.Config, error) {
		c, err := o.layer(cmd, s, c)
		if mode == modeTerm {
			c.Console = false
		}
		return c, err
	}
	if mode == modeTerm {
		return runTerm(ctx, host, app.DefaultConfig(), app.WithOverrides(overrides))
	}

	a, err := app.Open(host, app.DefaultConfig(), app.WithContext(ctx), app.WithOverrides(overrides))
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.Config()
	newApp := func(hal.HAL) (func() error, error) { return a.Step, nil }

	if mode == modeHeadless {
		err := hal.RunHeadless(ctx, host, newApp, hal.HeadlessConfig{
			FrameMillis: uint64(cfg.FrameDelay / time.Millisecond),
			Ticks:       o.ticks,
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	return hal.RunWindow(host, newApp, cfg.FrameDelay)
}

func flashPath(root *rootOptions, s Settings) string {
	if root.flashPath != "" {
		return root.flashPath
	}
	return s.Flash
}
