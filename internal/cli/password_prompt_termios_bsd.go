//go:build darwin || freebsd || netbsd || openbsd || dragonfly

package cli

import "golang.org/x/sys/unix"

const (
	tcGetRequest = unix.TIOCGETA
	tcSetRequest = unix.TIOCSETA
)
