// Package app wires the HAL to the menu core and runs one frame per Step:
// queued taps and console requests, then the encoder, then the button,
// then the highlight and the screen.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"knobmenu/config"
	"knobmenu/console"
	"knobmenu/hal"
	"knobmenu/highlight"
	"knobmenu/input"
	"knobmenu/internal/buildinfo"
	"knobmenu/kernel"
	"knobmenu/nav"
	"knobmenu/storage"
	"knobmenu/touch"
	"knobmenu/ui/canvas"
	"knobmenu/ui/fbui"
)

// Toolkit is a list renderer the app can drive.
type Toolkit interface {
	nav.Toolkit
	highlight.Styler
	Refresh() error
}

// touchToolkit hit-tests panel touches itself.
type touchToolkit interface {
	Touch(p touch.Point, down bool)
}

type invalidator interface {
	Invalidate()
}

type statusSetter interface {
	SetStatus(s string)
}

// ToolkitFactory builds a toolkit that reports taps through post.
type ToolkitFactory func(post func(nav.Event) bool) (Toolkit, error)

type options struct {
	ctx       context.Context
	toolkit   ToolkitFactory
	overrides func(Config) (Config, error)
}

type Option func(*options)

// WithToolkit replaces the framebuffer toolkit.
func WithToolkit(f ToolkitFactory) Option {
	return func(o *options) { o.toolkit = f }
}

// WithOverrides layers host settings over the configuration after the
// flash device record has been applied.
func WithOverrides(f func(Config) (Config, error)) Option {
	return func(o *options) { o.overrides = f }
}

// WithContext bounds the console reader goroutine on hosts.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

// App is the running controller. All methods except Post must be called
// from the frame loop.
type App struct {
	h   hal.HAL
	cfg Config
	log hal.Logger

	mb      kernel.Mailbox[console.Request]
	machine *nav.Machine
	sync    *highlight.Sync
	tk      Toolkit
	enc     *input.Encoder
	btn     *input.Button

	cv        *canvas.Canvas
	store     *storage.Manager
	mapper    *touch.Mapper
	cal       *touch.Calibrator
	touchDown bool
	lastTouch touch.Point

	con       *console.Console
	conPolled bool
	cancel    context.CancelFunc

	// taps lost to a full mailbox
	dropped atomic.Uint32
}

// Open builds the app: settings and calibration are loaded from flash, the
// pins are configured and the main list is created.
func Open(h hal.HAL, cfg Config, opts ...Option) (*App, error) {
	if h == nil {
		return nil, errors.New("app: nil HAL")
	}
	o := options{ctx: context.Background()}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{h: h, log: h.Logger()}
	if a.log == nil {
		a.log = discardLogger{}
	}
	a.logf("knobmenu %s booting", buildinfo.Short())

	if disp := h.Display(); disp != nil {
		if fb := disp.Framebuffer(); fb != nil {
			a.cv = canvas.New(fb)
			bootScreen(a.cv, "loading settings")
		}
	}

	a.openStorage()
	a.cfg = a.loadDevice(cfg)
	if o.overrides != nil {
		c, err := o.overrides(a.cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.cfg = c
	}

	if err := a.openInputs(); err != nil {
		a.Close()
		return nil, err
	}

	post := func(ev nav.Event) bool {
		if a.Post(console.Request{Event: ev}) {
			return true
		}
		a.dropped.Add(1)
		return false
	}
	switch {
	case o.toolkit != nil:
		tk, err := o.toolkit(post)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("app: toolkit: %w", err)
		}
		a.tk = tk
	case a.cv != nil:
		a.tk = fbui.New(a.cv, fbui.DefaultOptions(), func(ev nav.Event) { post(ev) })
	default:
		a.Close()
		return nil, errors.New("app: no display and no toolkit")
	}

	m, err := nav.NewMachine(a.tk, a.cfg.navConfig())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("app: %w", err)
	}
	a.machine = m
	a.sync = highlight.New(a.tk)

	a.setupTouch()
	a.setupConsole(o.ctx)

	a.logf("menu: %d items, %d sub-items, return %s, debounce %s, frame %s",
		a.cfg.MainItems, a.cfg.SubItems, a.cfg.Terminal, a.cfg.DebounceDelay, a.cfg.FrameDelay)
	return a, nil
}

func (a *App) openStorage() {
	flash := a.h.Flash()
	if flash == nil {
		a.logf("storage: no flash")
		return
	}
	dev, err := storage.NewFlashDevice(flash)
	if err != nil {
		a.logf("storage: unavailable: %v", err)
		return
	}
	store, err := storage.New(dev, true)
	if err != nil {
		a.logf("storage: mount failed: %v", err)
		return
	}
	if store.Wiped() {
		a.logf("storage: records from another version wiped")
	}
	a.store = store
}

func (a *App) loadDevice(cfg Config) Config {
	if a.store == nil {
		return cfg
	}
	var d config.DeviceConfig
	switch err := a.store.LoadDevice(&d); {
	case err == nil:
		a.logf("storage: device settings loaded")
		return cfg.withDevice(d)
	case errors.Is(err, storage.ErrNotFound):
		return cfg
	default:
		a.logf("storage: device settings: %v", err)
		return cfg
	}
}

func (a *App) openInputs() error {
	gpio := a.h.GPIO()
	if gpio == nil {
		return errors.New("app: no GPIO")
	}
	pin := func(id int, name string, pull hal.GPIOPull) (hal.GPIOPin, error) {
		p := gpio.Pin(id)
		if p == nil {
			return nil, fmt.Errorf("app: %s pin %d out of range (have %d)", name, id, gpio.PinCount())
		}
		if err := p.Configure(hal.GPIOModeInput, pull); err != nil {
			return nil, fmt.Errorf("app: %s pin: %w", name, err)
		}
		return p, nil
	}

	pa, err := pin(a.cfg.Pins.EncoderA, "encoder A", hal.GPIOPullUp)
	if err != nil {
		return err
	}
	pb, err := pin(a.cfg.Pins.EncoderB, "encoder B", hal.GPIOPullUp)
	if err != nil {
		return err
	}
	pull := hal.GPIOPullDown
	if a.cfg.ButtonActiveLow {
		pull = hal.GPIOPullUp
	}
	pbtn, err := pin(a.cfg.Pins.Button, "button", pull)
	if err != nil {
		return err
	}

	a.enc, err = input.NewEncoder(pa, pb, a.cfg.InvertEncoder)
	if err != nil {
		return err
	}
	a.btn = input.NewButton(pbtn, a.cfg.ButtonActiveLow, input.Timestamp(a.cfg.DebounceDelay/time.Millisecond))
	return nil
}

// setupTouch picks a mapper for panel touches, starting the calibrator
// when the panel reports raw readings and no usable calibration is stored.
func (a *App) setupTouch() {
	if _, ok := a.tk.(touchToolkit); !ok || a.h.Touch() == nil || a.cv == nil {
		return
	}
	w, h := a.cv.Size()
	if st, ok := a.h.Touch().(hal.ScreenTouch); ok && st.ScreenSpace() {
		a.mapper = touch.Identity(int(w), int(h))
		return
	}
	if !a.cfg.RepeatCalibration && a.store != nil {
		var cal config.Calibration
		err := a.store.LoadCalibration(&cal)
		if err == nil {
			var m *touch.Mapper
			if m, err = touch.NewMapper(cal, int(w), int(h)); err == nil {
				a.mapper = m
				a.logf("touch: calibration loaded")
				return
			}
		}
		a.logf("touch: calibration: %v", err)
	}
	a.logf("touch: calibrating")
	a.cal = touch.NewCalibrator(int(w), int(h))
}

func (a *App) setupConsole(ctx context.Context) {
	if !a.cfg.Console {
		return
	}
	serial := a.h.Serial()
	if serial == nil {
		return
	}
	a.con = console.New(serial, serial, a.Post)
	if _, ok := serial.(interface{ Buffered() int }); ok {
		a.conPolled = true
		return
	}
	ctx, a.cancel = context.WithCancel(ctx)
	go func() {
		if err := a.con.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.logf("console: %v", err)
		}
	}()
}

// Post queues a request for the next frame. It is safe from any goroutine.
func (a *App) Post(r console.Request) bool {
	return a.mb.TrySend(r)
}

// Step runs one frame. Panics are returned as *PanicError.
func (a *App) Step() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newPanicError(r)
		}
	}()
	return a.step()
}

func (a *App) step() error {
	now := a.h.Time().Millis()

	if a.cal != nil {
		return a.stepCalibration()
	}

	// 1. touches and queued requests
	a.pollTouch()
	a.pollConsole()
	for {
		r, ok := a.mb.TryRecv()
		if !ok {
			break
		}
		a.handle(r)
	}

	// 2. encoder
	step, ok, err := a.enc.Poll()
	if err != nil {
		return err
	}
	if ok {
		a.dispatch(nav.EncoderStep(int(step)))
	}

	// 3. button
	pressed, err := a.btn.Poll(input.Timestamp(now))
	if err != nil {
		return err
	}
	if pressed {
		a.dispatch(nav.ConfirmPressed())
	}

	// 4. highlight and screen
	list, sel := a.machine.Active()
	a.sync.Apply(list, sel)
	if s, ok := a.tk.(statusSetter); ok {
		s.SetStatus(a.stateLine())
	}
	return a.tk.Refresh()
}

func (a *App) pollTouch() {
	tt, ok := a.tk.(touchToolkit)
	if !ok || a.mapper == nil {
		return
	}
	raw, down := a.h.Touch().Read()
	if down {
		p, _ := a.mapper.Map(raw)
		a.lastTouch = p
		a.touchDown = true
		tt.Touch(p, true)
		return
	}
	if a.touchDown {
		a.touchDown = false
		tt.Touch(a.lastTouch, false)
	}
}

func (a *App) pollConsole() {
	if a.con == nil || !a.conPolled {
		return
	}
	b := a.h.Serial().(interface{ Buffered() int })
	if b.Buffered() == 0 {
		return
	}
	if err := a.con.Poll(); err != nil {
		a.logf("console: %v", err)
		a.con = nil
	}
}

func (a *App) handle(r console.Request) {
	switch r.Query {
	case console.QueryState:
		if a.con != nil {
			a.con.Println(a.stateLine())
		}
		return
	}
	a.dispatch(r.Event)
}

func (a *App) dispatch(ev nav.Event) {
	res := a.machine.Dispatch(ev)
	switch res {
	case nav.Entered:
		a.sync.Reset()
		a.logf("nav: enter sub %d", a.machine.State().Parent)
	case nav.Exited:
		a.sync.Reset()
		a.logf("nav: return main idx=%d", a.machine.MainIndex())
	case nav.Moved:
		if a.cfg.Trace {
			_, sel := a.machine.Active()
			a.logf("nav: %v -> %s idx=%d", ev, a.machine.State(), sel.Index())
		}
	case nav.Ignored:
		if a.cfg.Trace {
			a.logf("nav: ignored %v in %s", ev, a.machine.State())
		}
	}
}

func (a *App) stepCalibration() error {
	raw, down := a.h.Touch().Read()
	done := a.cal.Step(raw, down)
	if err := a.cal.Draw(a.cv); err != nil {
		return err
	}
	if !done {
		return nil
	}

	cal, err := a.cal.Result()
	if err != nil {
		a.logf("touch: %v, retrying", err)
		w, h := a.cv.Size()
		a.cal = touch.NewCalibrator(int(w), int(h))
		return nil
	}
	w, h := a.cv.Size()
	m, err := touch.NewMapper(cal, int(w), int(h))
	if err != nil {
		return err
	}
	a.mapper = m
	a.cal = nil
	a.logf("touch: calibrated x=%d..%d y=%d..%d flags=%#x", cal.XMin, cal.XMax, cal.YMin, cal.YMax, cal.Flags)
	if a.store != nil {
		if err := a.store.SaveCalibration(&cal); err != nil {
			a.logf("touch: calibration not saved: %v", err)
		}
	}
	if inv, ok := a.tk.(invalidator); ok {
		inv.Invalidate()
	}
	return nil
}

// Calibrating reports whether the touch calibrator owns the screen.
func (a *App) Calibrating() bool { return a.cal != nil }

// State is the navigation state.
func (a *App) State() nav.State { return a.machine.State() }

// Index is the highlighted row of the list on screen.
func (a *App) Index() int {
	_, sel := a.machine.Active()
	return sel.Index()
}

// MainIndex is the main list highlight.
func (a *App) MainIndex() int { return a.machine.MainIndex() }

// Config is the effective configuration after flash and host overrides.
func (a *App) Config() Config { return a.cfg }

func (a *App) stateLine() string {
	return fmt.Sprintf("state %s idx=%d main=%d ignored=%d faults=%d dropped=%d",
		a.machine.State(), a.Index(), a.machine.MainIndex(), a.machine.Ignored(), a.machine.Faults(), a.dropped.Load())
}

// Close unmounts storage and stops the console reader.
func (a *App) Close() error {
	if a.cancel != nil {
		a.cancel()
	}
	if a.store != nil {
		err := a.store.Close()
		a.store = nil
		return err
	}
	return nil
}

func (a *App) logf(format string, args ...any) {
	a.log.WriteLineString(fmt.Sprintf(format, args...))
}

type discardLogger struct{}

func (discardLogger) WriteLineString(string) {}
func (discardLogger) WriteLineBytes([]byte)  {}
