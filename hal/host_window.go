//go:build !tinygo && cgo

package hal

import (
	"image"
	"time"

	"knobmenu/internal/buildinfo"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunWindow starts a desktop window that displays the framebuffer and
// forwards mouse, wheel and keys to the simulated touch panel, encoder and
// button. It blocks until the window closes.
func RunWindow(h *Host, newApp func(HAL) (func() error, error), frame time.Duration) error {
	step, err := newApp(h)
	if err != nil {
		return err
	}

	tps := 50
	if frame > 0 {
		tps = int(time.Second / frame)
	}

	g := &hostGame{h: h, step: step, frameMillis: uint64(frame / time.Millisecond)}
	ebiten.SetWindowTitle("knobmenu (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.fb.width*2, h.fb.height*2)
	ebiten.SetTPS(tps)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h           *Host
	img         *image.RGBA
	fbImg       *ebiten.Image
	scratch     []byte
	step        func() error
	frameMillis uint64
}

func (g *hostGame) Update() error {
	g.h.pollInput()
	g.h.t.advance(g.frameMillis)
	g.h.controls.Tick()
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.img == nil || g.img.Bounds().Dx() != fb.width || g.img.Bounds().Dy() != fb.height {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.scratch = make([]byte, len(fb.buf))
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}

	fb.snapshotRGB565(g.scratch)

	src := g.scratch
	dst := g.img.Pix
	for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
		r, gg, b := rgb888From565(uint16(src[i]) | uint16(src[i+1])<<8)
		j := (i / 2) * 4
		dst[j+0] = r
		dst[j+1] = gg
		dst[j+2] = b
		dst[j+3] = 0xFF
	}

	g.fbImg.WritePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
