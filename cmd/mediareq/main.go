package main

import (
	corecmd "github.com/m3rciful/mediareq/core/cmd"
	"github.com/m3rciful/mediareq/internal/app"
)

func main() {
	root := corecmd.NewRootCommand("mediareq", "Telegram bot for requesting shows and movies", corecmd.Options{
		DefaultConfigPath: "config.yaml",
		Bootstrap:         app.Bootstrap,
	})
	corecmd.Execute(root)
}
