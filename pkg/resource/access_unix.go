//go:build unix

package resource

import "golang.org/x/sys/unix"

// readable checks read permission for the real user, like access(2).
func readable(path string) error {
	return unix.Access(path, unix.R_OK)
}
