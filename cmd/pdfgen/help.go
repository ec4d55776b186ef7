package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pdfgen <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run        Generate normalized PDFs from a dataset and a template")
	fmt.Fprintln(w, "  publish    Upload outputs recorded in a saved manifest")
	fmt.Fprintln(w, "  doctor     Check external tools and environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'pdfgen help <command>' for details on a specific command.")
}

// printRunUsage prints usage for the run command.
func printRunUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pdfgen run --data <dataset> --template <pptx> --output <dir|url> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate one normalized PDF per dataset row by substituting <token>")
	fmt.Fprintln(w, "placeholders in the template, rendering with LibreOffice, and")
	fmt.Fprintln(w, "normalizing with Ghostscript.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -d, --data <path>         Dataset file (.xlsx or .csv)")
	fmt.Fprintln(w, "      --template <loc>      Presentation template (.pptx), path or URL")
	fmt.Fprintln(w, "  -o, --output <loc>        Output directory or storage URL")
	fmt.Fprintln(w, "      --manifest <path>     Manifest path (default: <output>/manifest.yaml)")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Pipeline:")
	fmt.Fprintln(w, "      --dpi <n>             Image downsampling target (72-1200)")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel rows (0 = auto)")
	fmt.Fprintln(w, "  -t, --timeout <dur>       Per-tool timeout (e.g., 90s, 2m)")
	fmt.Fprintln(w, "      --soffice <path>      LibreOffice binary override")
	fmt.Fprintln(w, "      --gs <path>           Ghostscript binary override")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Phases:")
	fmt.Fprintln(w, "      --no-publish          Skip the publish phase")
	fmt.Fprintln(w, "      --no-writeback        Do not write file references back to the dataset")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show warnings and errors")
	fmt.Fprintln(w, "  -v, --verbose             Show per-row detail")
	fmt.Fprintln(w, "      --log-file <path>     Append JSON logs to this file")
}

// printPublishUsage prints usage for the publish command.
func printPublishUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pdfgen publish --manifest <path> --output <dir|url> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Upload the successful outputs of a previous run to a destination and")
	fmt.Fprintln(w, "record the references in the manifest.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -m, --manifest <path>     Manifest produced by a previous run")
	fmt.Fprintln(w, "  -o, --output <loc>        Destination directory or storage URL")
	fmt.Fprintln(w, "  -q, --quiet               Only show warnings and errors")
	fmt.Fprintln(w, "  -v, --verbose             Show per-row detail")
	fmt.Fprintln(w, "      --log-file <path>     Append JSON logs to this file")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: pdfgen doctor [--json] [--soffice <path>] [--gs <path>]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that LibreOffice and Ghostscript are installed and runnable.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "      --json                Output as JSON")
	fmt.Fprintln(w, "      --soffice <path>      LibreOffice binary override")
	fmt.Fprintln(w, "      --gs <path>           Ghostscript binary override")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "run":
		printRunUsage(env.Stdout)
	case "publish":
		printPublishUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: pdfgen version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: pdfgen help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
