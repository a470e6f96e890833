package main

import (
	"errors"
	"os"

	"github.com/alecthomas/kong"
	"github.com/posener/complete"
	"github.com/willabides/kongplete"

	"github.com/semmy-space/signcfg/internal/cli"
	"github.com/semmy-space/signcfg/internal/output"
)

var (
	version = "dev"
)

func main() {
	cliInstance := &cli.CLI{}
	parser := kong.Must(cliInstance,
		kong.Name("signcfg"),
		kong.Description("Resolve and check Android release signing configuration from key.properties"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)

	// Handles COMP_LINE requests from the shell and exits; no-op otherwise
	kongplete.Complete(parser,
		kongplete.WithPredictor("properties", complete.PredictFiles("*.properties")),
		kongplete.WithPredictor("dirs", complete.PredictDirs("*")),
	)

	ctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		// AfterApply failures surface here as CLIErrors; anything else is usage
		var cliErr *output.CLIError
		if errors.As(err, &cliErr) {
			os.Exit(output.Report(output.New("plain"), err))
		}
		parser.FatalIfErrorf(err)
	}

	if err := ctx.Run(); err != nil {
		os.Exit(output.Report(output.New("plain"), err))
	}
}
