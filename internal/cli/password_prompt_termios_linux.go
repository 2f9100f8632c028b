//go:build linux

package cli

import "golang.org/x/sys/unix"

const (
	tcGetRequest = unix.TCGETS
	tcSetRequest = unix.TCSETS
)
