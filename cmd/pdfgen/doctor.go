package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	pdfgen "github.com/tinkertanker/googlepdfgen"
)

// versionProbeTimeout bounds each tool's --version invocation. LibreOffice
// first-start profile creation can stall for several seconds.
const versionProbeTimeout = 15 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status      string     `json:"status"` // "ready", "warnings", "errors"
	LibreOffice toolInfo   `json:"libreoffice"`
	Ghostscript toolInfo   `json:"ghostscript"`
	Env         envInfo    `json:"environment"`
	System      systemInfo `json:"system"`
	Warnings    []string   `json:"warnings,omitempty"`
	Errors      []string   `json:"errors,omitempty"`
}

// toolInfo holds external tool detection results.
type toolInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS   string `json:"os"`
	Arch string `json:"arch"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found, 2 = bad flags.
func runDoctorCmd(args []string, env *Environment) int {
	flags, err := parseDoctorFlags(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, "Error:", err)
		return ExitUsage
	}

	result := runDoctor(flags.tools.soffice, flags.tools.gs)

	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks. Empty overrides fall back to the
// platform-default binary names, matching what run would invoke.
func runDoctor(soffice, gs string) *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:   runtime.GOOS,
			Arch: runtime.GOARCH,
		},
	}

	if soffice == "" {
		soffice = pdfgen.DefaultSofficeBin()
	}
	if gs == "" {
		gs = pdfgen.DefaultGhostscriptBin()
	}
	result.LibreOffice = checkTool(soffice, "LibreOffice", result)
	result.Ghostscript = checkTool(gs, "Ghostscript", result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkTool locates a binary on PATH and probes its version.
func checkTool(bin, label string, result *doctorResult) toolInfo {
	info := toolInfo{}

	path, err := exec.LookPath(bin)
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("%s not found on PATH (looked for %q)", label, bin))
		return info
	}
	info.Found = true
	info.Path = path

	ctx, cancel := context.WithTimeout(context.Background(), versionProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--version").Output() // #nosec G204 -- path from LookPath
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("%s found at %s but --version failed: %v", label, path, err))
		return info
	}

	version := strings.TrimSpace(string(out))
	if idx := strings.IndexByte(version, '\n'); idx >= 0 {
		version = version[:idx]
	}
	info.Version = version

	return info
}

// checkSystem verifies the scratch area is writable.
func checkSystem(result *doctorResult) {
	tmp, err := os.MkdirTemp("", "pdfgen-doctor-*")
	if err != nil {
		result.System.TempWritable = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("temp directory not writable: %v", err))
		return
	}
	_ = os.RemoveAll(tmp)
	result.System.TempWritable = true
}

// printDoctorResult outputs a human-readable diagnostic report.
func printDoctorResult(w io.Writer, result *doctorResult) {
	fmt.Fprintf(w, "pdfgen doctor (%s/%s)\n\n", result.Env.OS, result.Env.Arch)

	printToolStatus(w, "LibreOffice", result.LibreOffice)
	printToolStatus(w, "Ghostscript", result.Ghostscript)

	if result.System.TempWritable {
		fmt.Fprintln(w, "  [ok] temp directory writable")
	} else {
		fmt.Fprintln(w, "  [!!] temp directory not writable")
	}

	fmt.Fprintln(w)
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(w, "error: %s\n", e)
	}

	fmt.Fprintf(w, "Status: %s\n", result.Status)
}

// printToolStatus writes one line per external tool.
func printToolStatus(w io.Writer, label string, info toolInfo) {
	if !info.Found {
		fmt.Fprintf(w, "  [!!] %s not found\n", label)
		return
	}
	if info.Version != "" {
		fmt.Fprintf(w, "  [ok] %s: %s (%s)\n", label, info.Version, info.Path)
		return
	}
	fmt.Fprintf(w, "  [ok] %s: %s\n", label, info.Path)
}
