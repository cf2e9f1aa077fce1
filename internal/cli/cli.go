//go:build !tinygo

// Package cli is the host command line: it runs the menu in a window, a
// terminal or headless, and inspects the simulated flash.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"knobmenu/internal/buildinfo"
)

type rootOptions struct {
	configPath string
	flashPath  string
}

func Execute() int {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	run := &runOptions{}

	cmd := &cobra.Command{
		Use:          "knobmenu",
		Short:        "Two-level menu driven by a rotary encoder, a button and touch",
		SilenceUsage: true,
		Version:      buildVersion(),
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMenu(cmd, opts, run)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Settings file (default: OS user config dir)")
	cmd.PersistentFlags().StringVar(&opts.flashPath, "flash", "", "Simulated flash image (default: $KNOBMENU_FLASH_PATH or knobmenu.flash)")
	run.bind(cmd)

	cmd.AddCommand(
		newCalibrationCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "knobmenu %s (commit %s, built %s)\n",
				buildinfo.Version, buildinfo.Commit, buildinfo.Date)
		},
	}
}

func buildVersion() string {
	v := buildinfo.Short()
	if buildinfo.Commit != "" && buildinfo.Commit != "unknown" && v != buildinfo.Commit {
		v += " (" + buildinfo.Commit + ")"
	}
	if buildinfo.Date != "" && buildinfo.Date != "unknown" {
		v += " " + buildinfo.Date
	}
	return v
}
