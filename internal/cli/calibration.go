//go:build !tinygo

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"knobmenu/config"
	"knobmenu/hal"
	"knobmenu/storage"
)

func newCalibrationCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calibration",
		Short: "Inspect the touch calibration stored in the flash image",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the stored calibration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withStorage(root, func(m *storage.Manager) error {
					return showCalibration(cmd.OutOrStdout(), m)
				})
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Delete the stored calibration so the next boot calibrates",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withStorage(root, func(m *storage.Manager) error {
					err := m.DeleteCalibration()
					switch {
					case errors.Is(err, storage.ErrNotFound):
						fmt.Fprintln(cmd.OutOrStdout(), "no calibration stored")
						return nil
					case err != nil:
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "calibration deleted")
					return nil
				})
			},
		},
	)
	return cmd
}

// withStorage mounts the flash image named by --flash or the settings file.
func withStorage(root *rootOptions, fn func(*storage.Manager) error) error {
	s, err := loadSettings(root.configPath)
	if err != nil {
		return err
	}
	opts := hal.DefaultHostOptions()
	opts.Stdin = nil
	opts.Stdout = io.Discard
	if p := flashPath(root, s); p != "" {
		opts.FlashPath = p
	}
	host, err := hal.NewHost(opts)
	if err != nil {
		return err
	}
	defer host.Close()

	dev, err := storage.NewFlashDevice(host.Flash())
	if err != nil {
		return err
	}
	m, err := storage.New(dev, true)
	if err != nil {
		return fmt.Errorf("mount %s: %w", opts.FlashPath, err)
	}
	defer m.Close()
	return fn(m)
}

func showCalibration(w io.Writer, m *storage.Manager) error {
	var cal config.Calibration
	err := m.LoadCalibration(&cal)
	if errors.Is(err, storage.ErrNotFound) {
		fmt.Fprintln(w, "no calibration stored")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "version: %d\n", cal.Version)
	fmt.Fprintf(w, "x:       %d..%d\n", cal.XMin, cal.XMax)
	fmt.Fprintf(w, "y:       %d..%d\n", cal.YMin, cal.YMax)
	fmt.Fprintf(w, "swap xy: %t\n", cal.Flags&config.CalSwapXY != 0)
	fmt.Fprintf(w, "invert:  x=%t y=%t\n", cal.Flags&config.CalInvertX != 0, cal.Flags&config.CalInvertY != 0)
	return nil
}
