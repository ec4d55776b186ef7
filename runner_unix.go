//go:build !windows

package pdfgen

import (
	"syscall"

	"github.com/tinkertanker/googlepdfgen/internal/process"
)

// sysProcAttr puts the child in its own process group so a timeout kill
// reaches any helpers the tool forked.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// killProcessGroup terminates the process and all its children.
func killProcessGroup(pid int) {
	process.KillProcessGroup(pid)
}
