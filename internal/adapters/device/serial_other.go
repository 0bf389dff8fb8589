//go:build !linux

package device

import "os"

// configure leaves the port settings alone; configure the line with the
// platform's tools (stty, mode) before starting.
func configure(f *os.File, baud int) error {
	return nil
}
