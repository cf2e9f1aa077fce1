//go:build !tinygo && cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// pollInput maps the window onto the board: left mouse button is the touch
// panel, the wheel and Up/Down are the encoder, Space/Enter is the button.
func (h *Host) pollInput() {
	x, y := ebiten.CursorPosition()
	h.touch.set(x, y, ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))

	_, wy := ebiten.Wheel()
	switch {
	case wy > 0:
		h.controls.Turn(-1)
	case wy < 0:
		h.controls.Turn(1)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) || inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		h.controls.Turn(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) || inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		h.controls.Turn(-1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		h.controls.Click()
	}
}
