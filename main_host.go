//go:build !tinygo

package main

import (
	"os"

	"knobmenu/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
