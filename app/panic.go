package app

import (
	"fmt"
	"runtime/debug"
	"strings"

	"knobmenu/hal"
	"knobmenu/ui/canvas"
)

// PanicError is a recovered panic from a frame.
type PanicError struct {
	Value any
	Stack []byte
}

func newPanicError(v any) *PanicError {
	return &PanicError{Value: v, Stack: debug.Stack()}
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// reportFatal logs err and paints it on the display in black on white.
func reportFatal(h hal.HAL, err error) {
	var stack []byte
	if pe, ok := err.(*PanicError); ok {
		stack = pe.Stack
	}

	if l := h.Logger(); l != nil {
		l.WriteLineString("knobmenu fatal: " + err.Error())
		for _, line := range strings.Split(string(stack), "\n") {
			if line != "" {
				l.WriteLineString(line)
			}
		}
	}

	disp := h.Display()
	if disp == nil {
		return
	}
	fb := disp.Framebuffer()
	if fb == nil {
		return
	}
	cv := canvas.New(fb)
	cv.Clear(canvas.RGB(0xFFFFFF))

	lines := []string{"knobmenu fatal:", err.Error()}
	if len(stack) > 0 {
		lines = append(lines, "stack:")
		for _, line := range strings.Split(string(stack), "\n") {
			if line != "" {
				lines = append(lines, strings.TrimSpace(line))
			}
		}
	} else {
		lines = append(lines, "stack: unavailable")
	}

	w, hgt := cv.Size()
	cols := 1
	if cw := canvas.TextWidth("0"); cw > 0 {
		cols = int(w) / cw
	}
	lh := canvas.LineHeight()
	fg := canvas.RGB(0x000000)
	y := lh

out:
	for _, line := range lines {
		for _, chunk := range canvas.Wrap(line, cols) {
			if y > int(hgt) {
				break out
			}
			cv.Text(0, y, chunk, fg)
			y += lh
		}
	}
	_ = cv.Display()
}
