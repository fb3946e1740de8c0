package main

import (
	"github.com/alecthomas/kong"

	"github.com/craylabs/smartbuild/cmd/smartbuild/commands"
	"github.com/craylabs/smartbuild/internal/errors"
	"github.com/craylabs/smartbuild/internal/version"
)

func main() {
	cli := commands.CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("smartbuild"),
		kong.Description("Build orchestrator for the SmartSim runtime stack: key-value server, IP extension and AI-inference extension."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)

	err := ctx.Run(&commands.Global{})
	errors.NewCLIErrorAdapter(cli.Verbose, nil).HandleError(err)
}
