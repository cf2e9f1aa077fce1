package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"knobmenu/nav"
)

type recorder struct {
	reqs []Request
	full bool
}

func (r *recorder) post(req Request) bool {
	if r.full {
		return false
	}
	r.reqs = append(r.reqs, req)
	return true
}

func newTestConsole(in string) (*Console, *recorder, *bytes.Buffer) {
	rec := &recorder{}
	out := &bytes.Buffer{}
	return New(strings.NewReader(in), out, rec.post), rec, out
}

func TestExecuteCommands(t *testing.T) {
	tests := []struct {
		line string
		want Request
	}{
		{"tap main 2", Request{Event: nav.ItemTapped(nav.KindMain, 2)}},
		{"TAP sub 3", Request{Event: nav.ItemTapped(nav.KindSub, 3)}},
		{"confirm", Request{Event: nav.ConfirmPressed()}},
		{"turn +2", Request{Event: nav.EncoderStep(2)}},
		{"turn -1", Request{Event: nav.EncoderStep(-1)}},
		{"turn 4", Request{Event: nav.EncoderStep(4)}},
		{"  state  ", Request{Query: QueryState}},
		{`tap "main" 0`, Request{Event: nav.ItemTapped(nav.KindMain, 0)}},
	}
	for _, tt := range tests {
		c, rec, _ := newTestConsole("")
		if err := c.Execute(tt.line); err != nil {
			t.Fatalf("Execute(%q) error: %v", tt.line, err)
		}
		if len(rec.reqs) != 1 || rec.reqs[0] != tt.want {
			t.Fatalf("Execute(%q) posted %v, want %v", tt.line, rec.reqs, tt.want)
		}
	}
}

func TestExecuteErrors(t *testing.T) {
	tests := []struct {
		line string
		want error
	}{
		{"jump", ErrUnknownCommand},
		{"tap", ErrUsage},
		{"tap left 1", ErrUsage},
		{"tap main x", ErrUsage},
		{"turn 0", ErrUsage},
		{"turn", ErrUsage},
		{"confirm now", ErrUsage},
	}
	for _, tt := range tests {
		c, rec, out := newTestConsole("")
		err := c.Execute(tt.line)
		if !errors.Is(err, tt.want) {
			t.Fatalf("Execute(%q) err = %v, want %v", tt.line, err, tt.want)
		}
		if len(rec.reqs) != 0 {
			t.Fatalf("Execute(%q) posted %v", tt.line, rec.reqs)
		}
		if !strings.HasPrefix(out.String(), "error: ") {
			t.Fatalf("Execute(%q) output = %q, want error line", tt.line, out.String())
		}
	}
}

func TestExecuteUnterminatedQuote(t *testing.T) {
	c, _, _ := newTestConsole("")
	if err := c.Execute(`tap "main 1`); err == nil {
		t.Fatal("Execute() with an open quote succeeded")
	}
}

func TestQueueFull(t *testing.T) {
	c, rec, _ := newTestConsole("")
	rec.full = true
	if err := c.Execute("confirm"); !errors.Is(err, ErrBusy) {
		t.Fatalf("Execute() err = %v, want ErrBusy", err)
	}
}

func TestEmptyLineIsIgnored(t *testing.T) {
	c, rec, out := newTestConsole("")
	if err := c.Execute("   "); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if len(rec.reqs) != 0 || out.Len() != 0 {
		t.Fatalf("empty line posted %v / wrote %q", rec.reqs, out.String())
	}
}

func TestHelpListsCommands(t *testing.T) {
	c, _, out := newTestConsole("")
	if err := c.Execute("help"); err != nil {
		t.Fatalf("Execute(help) error: %v", err)
	}
	for _, name := range []string{"tap main|sub N", "confirm", "turn +N|-N", "state"} {
		if !strings.Contains(out.String(), name) {
			t.Fatalf("help output missing %q:\n%s", name, out.String())
		}
	}
}

func TestFeedSplitsLines(t *testing.T) {
	c, rec, _ := newTestConsole("")
	c.Feed([]byte("turn +1\r\ncon"))
	c.Feed([]byte("firm\n\n"))
	want := []Request{{Event: nav.EncoderStep(1)}, {Event: nav.ConfirmPressed()}}
	if len(rec.reqs) != len(want) {
		t.Fatalf("posted %v, want %v", rec.reqs, want)
	}
	for i := range want {
		if rec.reqs[i] != want[i] {
			t.Fatalf("request %d = %v, want %v", i, rec.reqs[i], want[i])
		}
	}
}

func TestFeedDropsLongLine(t *testing.T) {
	c, rec, out := newTestConsole("")
	c.Feed([]byte(strings.Repeat("x", lineMax+10) + "\nconfirm\n"))
	if len(rec.reqs) != 1 || rec.reqs[0].Event != nav.ConfirmPressed() {
		t.Fatalf("posted %v, want only confirm", rec.reqs)
	}
	if !strings.Contains(out.String(), "line too long") {
		t.Fatalf("output = %q, want line too long", out.String())
	}
}

func TestRunUntilEOF(t *testing.T) {
	c, rec, _ := newTestConsole("tap main 1\nstate\n")
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(rec.reqs) != 2 {
		t.Fatalf("posted %v, want two requests", rec.reqs)
	}
}

func TestRunCancelled(t *testing.T) {
	c, _, _ := newTestConsole("")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() err = %v, want context.Canceled", err)
	}
}

func TestPoll(t *testing.T) {
	c, rec, _ := newTestConsole("confirm\n")
	if err := c.Poll(); err != nil {
		t.Fatalf("Poll() error: %v", err)
	}
	if len(rec.reqs) != 1 {
		t.Fatalf("posted %v, want confirm", rec.reqs)
	}
}
