//go:build windows

package pdfgen

import (
	"syscall"

	"github.com/tinkertanker/googlepdfgen/internal/process"
)

// sysProcAttr returns nil on Windows; taskkill /T handles the process tree.
func sysProcAttr() *syscall.SysProcAttr {
	return nil
}

// killProcessGroup terminates the process and all its children.
func killProcessGroup(pid int) {
	process.KillProcessGroup(pid)
}
