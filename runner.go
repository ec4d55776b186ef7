package pdfgen

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner abstracts external command execution to enable testing without real
// subprocesses. Implementations must respect context cancellation.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner implements Runner using os/exec. Each invocation runs in its
// own process group so a timeout kills the tool together with any children
// it forked (LibreOffice spawns helpers that outlive the parent otherwise).
type ExecRunner struct{}

// Compile-time interface check.
var _ Runner = ExecRunner{}

// Run starts the command and waits for it, killing the whole process group
// when the context expires. The context error takes precedence over the
// kill-induced wait error so callers can distinguish timeout from crash.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	cmd := exec.Command(name, args...) // #nosec G204 -- binary and args come from validated config
	cmd.SysProcAttr = sysProcAttr()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return "", "", fmt.Errorf("starting %s: %w", name, err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-ctx.Done():
		killProcessGroup(cmd.Process.Pid)
		<-done
		return stdout.String(), stderr.String(), ctx.Err()
	case err := <-done:
		return stdout.String(), stderr.String(), err
	}
}

// maxDiagnosticLen caps how much tool output is attached to an error.
const maxDiagnosticLen = 512

// diagnostic trims and truncates captured stderr for error messages,
// keeping the tail where external tools print their final verdict.
func diagnostic(stderr string) string {
	s := strings.TrimSpace(stderr)
	if s == "" {
		return "(no output)"
	}
	if len(s) > maxDiagnosticLen {
		s = "..." + s[len(s)-maxDiagnosticLen:]
	}
	return s
}
