// Package main is the entry point for the bitgrid command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/dshills/bitgrid/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	if opts.View && !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintf(os.Stderr, "Error: -view: %v\n", app.ErrNotTerminal)
		return 1
	}

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	go func() {
		select {
		case <-signals:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := application.Run(ctx); err != nil {
		// Check if it's a normal quit using errors.Is for wrapped errors
		if errors.Is(err, app.ErrQuit) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}

func parseFlags() app.Options {
	var opts app.Options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config file")
	flag.StringVar(&opts.Format, "format", "text", "Output format (text, json, yaml)")
	flag.StringVar(&opts.Format, "f", "text", "Output format (shorthand)")
	flag.StringVar(&opts.New, "new", "", "Create a blank WxH bitmap instead of reading files")
	flag.StringVar(&opts.Script, "script", "", "Lua script to run against every bitmap")
	flag.StringVar(&opts.Script, "s", "", "Lua script to run against every bitmap (shorthand)")
	flag.BoolVar(&opts.Watch, "watch", false, "Reprocess inputs when they change")
	flag.BoolVar(&opts.Watch, "w", false, "Reprocess inputs when they change (shorthand)")
	flag.BoolVar(&opts.View, "view", false, "Show bitmaps in the terminal viewer")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "bitgrid - boolean bitmap tool\n\n")
		fmt.Fprintf(os.Stderr, "Usage: bitgrid [options] [files...]\n\n")
		fmt.Fprintf(os.Stderr, "Input files are .txt ('.'/'#' rows), .json or .yaml sheets.\n")
		fmt.Fprintf(os.Stderr, "With no files and no -new, a demonstration is printed.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  bitgrid                       Run the demonstration\n")
		fmt.Fprintf(os.Stderr, "  bitgrid -new 8x4 -f json      Print a blank 8x4 bitmap as JSON\n")
		fmt.Fprintf(os.Stderr, "  bitgrid -s invert.lua a.txt   Run a script over a bitmap\n")
		fmt.Fprintf(os.Stderr, "  bitgrid -view -w sprites.yaml View a sheet, reloading on change\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("bitgrid %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	// Validate log level
	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
		// Valid
	default:
		fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
		os.Exit(1)
	}

	// Remaining arguments are input files
	opts.Files = flag.Args()

	return opts
}
