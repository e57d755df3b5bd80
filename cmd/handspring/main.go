package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/toyz/handspring/internal/cli"
	"github.com/toyz/handspring/internal/utils"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("handspring", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		configFlag  = flags.String("config", "application.yaml", "Application configuration file, relative to -root")
		rootFlag    = flags.String("root", ".", "Directory namespaces are resolved against")
		outFlag     = flags.String("out", "", "Generated catalog path (default <root>/autogen_catalog.go)")
		moduleFlag  = flags.String("module", "", "Import path of -root (defaults to go.mod)")
		verboseFlag = flags.Bool("verbose", false, "Enable verbose output")
		quietFlag   = flags.Bool("quiet", false, "Only show errors and final results")
	)

	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: handspring [options] <command>\n\n")
		fmt.Fprintf(stderr, "Handspring container tooling.\n\n")
		fmt.Fprintf(stderr, "Commands:\n")
		fmt.Fprintf(stderr, "  scan      List the types and markers found under scan-package\n")
		fmt.Fprintf(stderr, "  routes    Print the route table derived from the markers\n")
		fmt.Fprintf(stderr, "  gen       Write the catalog file\n")
		fmt.Fprintf(stderr, "  clean     Remove generated catalog files under -root\n")
		fmt.Fprintf(stderr, "\nOptions:\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if flags.NArg() != 1 {
		fmt.Fprintf(stderr, "Error: exactly one command is required\n\n")
		flags.Usage()
		return 2
	}

	var diagnostics *utils.DiagnosticSystem
	switch {
	case *quietFlag:
		diagnostics = utils.NewDiagnosticSystemWithWriters(utils.DiagnosticError, stdout, stderr)
	case *verboseFlag:
		diagnostics = utils.NewDiagnosticSystemWithWriters(utils.DiagnosticVerbose, stdout, stderr)
	default:
		diagnostics = utils.NewDiagnosticSystemWithWriters(utils.DiagnosticInfo, stdout, stderr)
	}

	runner := cli.NewRunner(cli.Config{
		ConfigFile: *configFlag,
		Root:       *rootFlag,
		Out:        *outFlag,
		ModuleName: *moduleFlag,
		Verbose:    *verboseFlag,
		Quiet:      *quietFlag,
	}, diagnostics, stdout)

	command := flags.Arg(0)
	var err error
	switch command {
	case "scan":
		err = runner.Scan()
	case "routes":
		err = runner.Routes()
	case "gen":
		diagnostics.Section("Generating catalog")
		err = runner.Gen()
	case "clean":
		err = runner.Clean()
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", command)
		flags.Usage()
		return 2
	}

	if err != nil {
		diagnostics.Problem(err)
		return 1
	}

	summary := runner.Summary()
	switch command {
	case "gen":
		diagnostics.Summary("Generation complete", map[string]interface{}{
			"Controllers found": summary.Controllers,
			"Services found":    summary.Services,
			"Interfaces found":  summary.Interfaces,
			"Problems":          len(summary.Problems),
		})
	case "clean":
		diagnostics.Success("removed %d generated file(s)", len(summary.RemovedFiles))
	}
	return 0
}
