package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

type commandOptions struct {
	Address     string `short:"a" long:"address"      default:"127.0.0.1:8125" description:"Address to receive metrics on"                  `
	ReusePort   bool   `          long:"reuse-port"                             description:"Bind with SO_REUSEPORT, one socket per reader"    `
	Readers     int    `short:"r" long:"readers"      default:"1"              description:"Number of goroutines reading datagrams"          `
	Print       bool   `short:"p" long:"print"                                  description:"Print every received line"                       `
	MetricsAddr string `          long:"metrics-addr"                           description:"Serve Prometheus metrics on this address"         `
	Verbose     bool   `short:"v" long:"verbose"                                description:"Verbose"                                         `
	JSON        bool   `          long:"json"                                   description:"Log in JSON format"                              `
}

func parseArgs(args []string) commandOptions {
	var opts commandOptions
	parser := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	parser.LongDescription = "" + // because gofmt
		"Receives statsd datagrams and reports what arrived. Without --reuse-port all\n" +
		"readers share one socket, with it every reader binds its own."

	positional, err := parser.ParseArgs(args)
	if err != nil {
		if !isHelp(err) {
			parser.WriteHelp(os.Stderr)
			_, _ = fmt.Fprintf(os.Stderr, "\n\nerror parsing command line: %v\n", err)
			os.Exit(1)
		}
		parser.WriteHelp(os.Stdout)
		os.Exit(0)
	}

	if len(positional) != 0 {
		// Near as I can tell there's no way to say no positional arguments allowed.
		parser.WriteHelp(os.Stderr)
		_, _ = fmt.Fprintf(os.Stderr, "\n\nno positional arguments allowed\n")
		os.Exit(1)
	}

	if opts.Readers < 1 {
		parser.WriteHelp(os.Stderr)
		_, _ = fmt.Fprintf(os.Stderr, "\n\nreaders must be positive\n")
		os.Exit(1)
	}
	return opts
}

// isHelp is a helper to test the error from ParseArgs() to
// determine if the help message was written. It is safe to
// call without first checking that error is nil.
func isHelp(err error) bool {
	if err == nil {
		return false
	}
	flagError, ok := err.(*flags.Error)
	if !ok {
		return false
	}
	return flagError.Type == flags.ErrHelp
}
