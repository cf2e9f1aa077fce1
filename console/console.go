// Package console is the line-oriented debug console on the serial port.
// Commands become requests queued for the frame loop; nothing here touches
// navigation state directly.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"

	"knobmenu/nav"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
	ErrBusy           = errors.New("event queue full")
)

// Query asks the frame loop to report something.
type Query uint8

const (
	QueryNone Query = iota
	QueryState
)

// Request is what the console posts. Exactly one of Event and Query is set.
type Request struct {
	Event nav.Event
	Query Query
}

const (
	lineMax   = 128
	idleSleep = 10 * time.Millisecond
)

type command struct {
	Name  string
	Usage string
	Desc  string
	Run   func(c *Console, args []string) error
}

// Console parses lines from r and answers on w.
type Console struct {
	r    io.Reader
	w    io.Writer
	post func(Request) bool

	cmds map[string]command
	line [lineMax]byte
	n    int
	drop bool
}

func New(r io.Reader, w io.Writer, post func(Request) bool) *Console {
	c := &Console{r: r, w: w, post: post, cmds: map[string]command{}}
	for _, cmd := range []command{
		{Name: "tap", Usage: "tap main|sub N", Desc: "tap row N (0-based) of a list", Run: cmdTap},
		{Name: "confirm", Usage: "confirm", Desc: "press the confirm button", Run: cmdConfirm},
		{Name: "turn", Usage: "turn +N|-N", Desc: "turn the encoder N detents", Run: cmdTurn},
		{Name: "state", Usage: "state", Desc: "print the navigation state", Run: cmdState},
		{Name: "help", Usage: "help", Desc: "list commands", Run: cmdHelp},
	} {
		c.cmds[cmd.Name] = cmd
	}
	return c
}

// Println writes one reply line.
func (c *Console) Println(s string) {
	if c.w == nil {
		return
	}
	_, _ = io.WriteString(c.w, s+"\n")
}

// Execute runs one command line. Errors are also reported on the console.
func (c *Console) Execute(line string) error {
	err := c.execute(line)
	if err != nil {
		c.Println("error: " + err.Error())
	}
	return err
}

func (c *Console) execute(line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	cmd, ok := c.cmds[strings.ToLower(args[0])]
	if !ok {
		return fmt.Errorf("%w: %q (try help)", ErrUnknownCommand, args[0])
	}
	if err := cmd.Run(c, args[1:]); err != nil {
		if errors.Is(err, ErrUsage) {
			return fmt.Errorf("%w: %s", ErrUsage, cmd.Usage)
		}
		return err
	}
	return nil
}

// Feed splits p into lines and executes each complete one. Over-long lines
// are discarded.
func (c *Console) Feed(p []byte) {
	for _, b := range p {
		switch b {
		case '\r', '\n':
			if c.drop {
				c.Println("error: line too long")
			} else if c.n > 0 {
				_ = c.Execute(string(c.line[:c.n]))
			}
			c.n, c.drop = 0, false
		default:
			if c.n == lineMax {
				c.drop = true
				continue
			}
			c.line[c.n] = b
			c.n++
		}
	}
}

// Poll performs one read and feeds whatever arrived. It is meant for
// readers that never block, like the UART.
func (c *Console) Poll() error {
	var buf [32]byte
	n, err := c.r.Read(buf[:])
	if n > 0 {
		c.Feed(buf[:n])
	}
	return err
}

// Run reads until ctx is done, the reader hits EOF or fails.
func (c *Console) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		var buf [64]byte
		n, err := c.r.Read(buf[:])
		if n > 0 {
			c.Feed(buf[:n])
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if n == 0 {
			time.Sleep(idleSleep)
		}
	}
	return ctx.Err()
}

func (c *Console) send(r Request) error {
	if c.post == nil || !c.post(r) {
		return ErrBusy
	}
	return nil
}

func cmdTap(c *Console, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	var kind nav.Kind
	switch strings.ToLower(args[0]) {
	case "main":
		kind = nav.KindMain
	case "sub":
		kind = nav.KindSub
	default:
		return ErrUsage
	}
	idx, err := strconv.Atoi(args[1])
	if err != nil {
		return ErrUsage
	}
	return c.send(Request{Event: nav.ItemTapped(kind, idx)})
}

func cmdConfirm(c *Console, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return c.send(Request{Event: nav.ConfirmPressed()})
}

func cmdTurn(c *Console, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	delta, err := strconv.Atoi(args[0])
	if err != nil || delta == 0 {
		return ErrUsage
	}
	return c.send(Request{Event: nav.EncoderStep(delta)})
}

func cmdState(c *Console, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	return c.send(Request{Query: QueryState})
}

func cmdHelp(c *Console, _ []string) error {
	names := make([]string, 0, len(c.cmds))
	for name := range c.cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd := c.cmds[name]
		c.Println(fmt.Sprintf("  %-16s %s", cmd.Usage, cmd.Desc))
	}
	return nil
}
