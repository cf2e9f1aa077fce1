//go:build !tinygo

package cli

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/term"

	"knobmenu/app"
	"knobmenu/hal"
	"knobmenu/nav"
	"knobmenu/ui/termui"
)

var errNotTerminal = errors.New("--term needs stdout to be a terminal")

var (
	isTerminal     = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
	newTermToolkit = termui.New
)

// runTerm renders the menu with tcell. Arrow keys and Enter drive the
// simulated encoder and button through the same GPIO path as the window.
func runTerm(ctx context.Context, host *hal.Host, cfg app.Config, opts ...app.Option) error {
	if !isTerminal() {
		return errNotTerminal
	}

	var tk *termui.Toolkit
	opts = append(opts, app.WithContext(ctx), app.WithToolkit(func(post func(nav.Event) bool) (app.Toolkit, error) {
		t, err := newTermToolkit(host.Controls(), func(ev nav.Event) { post(ev) })
		if err != nil {
			return nil, err
		}
		tk = t
		return t, nil
	}))
	a, err := app.Open(host, cfg, opts...)
	if err != nil {
		if tk != nil {
			tk.Close()
		}
		return err
	}
	defer a.Close()
	defer tk.Close()
	tk.Start()

	frame := a.Config().FrameDelay
	ticker := time.NewTicker(frame)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tk.Done():
			return nil
		case <-ticker.C:
		}
		host.Controls().Tick()
		if err := a.Step(); err != nil {
			return err
		}
	}
}
