package app

import "knobmenu/ui/canvas"

// bootScreen shows the version and a status line until the first frame.
func bootScreen(cv *canvas.Canvas, msg string) {
	cv.Clear(canvas.RGB(0x000000))
	fg := canvas.RGB(0xFFFFFF)
	lh := canvas.LineHeight()
	cv.Text(4, 4+lh, "knobmenu", fg)
	cv.Text(4, 4+2*lh, msg, canvas.RGB(0xA0A0A0))
	_ = cv.Display()
}
