//go:build !unix

package resource

import "os"

// readable falls back to opening the path where access(2) is unavailable.
func readable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}
