//go:build unix

package rtic

import (
	"os"
	"syscall"
)

var signals = []os.Signal{syscall.SIGHUP, syscall.SIGTERM, os.Interrupt}
