package main

import (
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Error ignored: maxprocs.Set only fails if GOMAXPROCS env is invalid,
	// in which case Go runtime defaults apply and the program continues safely.
	_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))

	env := DefaultEnv()
	os.Exit(dispatch(os.Args[1:], env))
}

// dispatch routes to the subcommand and returns the process exit code.
func dispatch(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stderr)
		return ExitUsage
	}

	switch args[0] {
	case "run":
		return runCmd(args[1:], env)
	case "publish":
		return publishCmd(args[1:], env)
	case "doctor":
		return runDoctorCmd(args[1:], env)
	case "version", "--version":
		fmt.Fprintf(env.Stdout, "pdfgen %s\n", Version)
		return ExitSuccess
	case "help", "--help", "-h":
		runHelp(args[1:], env)
		return ExitSuccess
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
}

// runCmd parses run flags, wires the logger and signal handling, and
// executes the batch.
func runCmd(args []string, env *Environment) int {
	flags, _, err := parseRunFlags(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	logger, closeLog, err := newLogger(env.Stderr, logLevel(flags.common.quiet, flags.common.verbose), flags.common.logFile)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitIO
	}
	defer func() { _ = closeLog() }()
	env.Logger = logger

	ctx, stop := notifyContext()
	defer stop()

	if err := runGenerate(ctx, flags, env); err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}

// publishCmd parses publish flags and executes the publish phase on a
// saved manifest.
func publishCmd(args []string, env *Environment) int {
	flags, _, err := parsePublishFlags(args)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitUsage
	}

	logger, closeLog, err := newLogger(env.Stderr, logLevel(flags.common.quiet, flags.common.verbose), flags.common.logFile)
	if err != nil {
		fmt.Fprintln(env.Stderr, err)
		return ExitIO
	}
	defer func() { _ = closeLog() }()
	env.Logger = logger

	ctx, stop := notifyContext()
	defer stop()

	if err := runPublishCmd(ctx, flags, env); err != nil {
		fmt.Fprintln(env.Stderr, err)
		return exitCodeFor(err)
	}
	return ExitSuccess
}
