package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// command is one favorites subcommand.
type command struct {
	name    string
	summary string
	run     func(env *cmdEnv, args []string) error
}

// cmdEnv carries the streams and context shared by every subcommand.
type cmdEnv struct {
	ctx    context.Context
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

var commands = []command{
	{"tally", "Rank titles in a CSV file by how often they appear", runTally},
	{"count", "Count CSV rows whose title contains a substring", runCount},
	{"lookup", "Count database rows whose title matches a term", runLookup},
	{"import", "Load a favorites CSV file into the database", runImport},
	{"init", "Create the projects and tasks tables", runInit},
	{"serve", "Serve tallies and counts over HTTP", runServe},
}

// run is the real entry point. Using a separate function ensures all defers
// (including connection release) execute even on error paths, unlike os.Exit
// which skips deferred calls.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		usage(stderr)
		return fmt.Errorf("expected a subcommand")
	}
	env := &cmdEnv{ctx: ctx, stdin: stdin, stdout: stdout, stderr: stderr}
	for _, c := range commands {
		if c.name == args[0] {
			return c.run(env, args[1:])
		}
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		usage(stdout)
		return nil
	}
	usage(stderr)
	return fmt.Errorf("unknown subcommand %q", args[0])
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "Usage: favorites <command> [flags]\n\n")
	fmt.Fprintf(w, "Tallies and looks up favorite titles from a CSV survey or a SQLite database.\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "\nRun 'favorites <command> -h' for command flags.\n")
}

// newFlagSet returns a flag set that reports parse errors instead of exiting.
func newFlagSet(env *cmdEnv, name, args string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	fs.Usage = func() {
		fmt.Fprintf(env.stderr, "Usage: favorites %s [flags] %s\n\nFlags:\n", name, args)
		fs.PrintDefaults()
	}
	return fs
}
