package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
	logFile string
}

// toolFlags holds external tool binary overrides.
type toolFlags struct {
	soffice string
	gs      string
}

// runFlags holds all flags for the run command.
type runFlags struct {
	common      commonFlags
	dataset     string
	template    string
	output      string
	manifest    string
	dpi         int
	workers     int
	timeout     string
	tools       toolFlags
	noPublish   bool
	noWriteback bool
}

// publishFlags holds all flags for the publish command.
type publishFlags struct {
	common   commonFlags
	manifest string
	output   string
}

// doctorFlags holds all flags for the doctor command. The tool overrides
// mirror run's so doctor probes the same binaries run would use.
type doctorFlags struct {
	tools toolFlags
	json  bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show warnings and errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-row detail")
	fs.StringVar(&f.logFile, "log-file", "", "append JSON logs to this file")
}

// addToolFlags adds external tool flags to a FlagSet.
func addToolFlags(fs *flag.FlagSet, f *toolFlags) {
	fs.StringVar(&f.soffice, "soffice", "", "LibreOffice binary (default: platform name)")
	fs.StringVar(&f.gs, "gs", "", "Ghostscript binary (default: platform name)")
}

// parseRunFlags parses run command flags and returns positional args.
func parseRunFlags(args []string) (*runFlags, []string, error) {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	f := &runFlags{}

	fs.StringVarP(&f.dataset, "data", "d", "", "dataset file (.xlsx or .csv)")
	fs.StringVar(&f.template, "template", "", "presentation template (.pptx), path or URL")
	fs.StringVarP(&f.output, "output", "o", "", "output directory or storage URL")
	fs.StringVar(&f.manifest, "manifest", "", "manifest path (default: <output>/manifest.yaml)")
	fs.IntVar(&f.dpi, "dpi", 0, "image downsampling target DPI (0 = config/default)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel rows (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-tool timeout (e.g., 90s, 2m)")
	fs.BoolVar(&f.noPublish, "no-publish", false, "skip the publish phase")
	fs.BoolVar(&f.noWriteback, "no-writeback", false, "do not write file references back to the dataset")

	addToolFlags(fs, &f.tools)
	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printRunUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}

// parseDoctorFlags parses doctor command flags.
func parseDoctorFlags(args []string) (*doctorFlags, error) {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	f := &doctorFlags{}

	fs.BoolVar(&f.json, "json", false, "output as JSON")
	addToolFlags(fs, &f.tools)

	fs.Usage = func() { printDoctorUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

// parsePublishFlags parses publish command flags and returns positional args.
func parsePublishFlags(args []string) (*publishFlags, []string, error) {
	fs := flag.NewFlagSet("publish", flag.ContinueOnError)
	f := &publishFlags{}

	fs.StringVarP(&f.manifest, "manifest", "m", "", "manifest produced by a previous run")
	fs.StringVarP(&f.output, "output", "o", "", "destination directory or storage URL")

	addCommonFlags(fs, &f.common)

	fs.Usage = func() { printPublishUsage(os.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
