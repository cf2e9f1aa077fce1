//go:build tinygo

package main

import (
	"knobmenu/app"
	"knobmenu/hal"
)

func main() {
	app.Run(hal.New(), app.DefaultConfig())
}
