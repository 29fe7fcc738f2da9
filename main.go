package main

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
)

var version = "dev"

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("mdsite"),
		kong.Description("Render a directory of Markdown documents into a static HTML site."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
		kong.Bind(&cli),
	)
	if err := ctx.Run(); err != nil {
		slog.Error("Command failed", "command", ctx.Command(), "error", err)
		os.Exit(1)
	}
}
