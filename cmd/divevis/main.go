// divevis is a terminal client for the dive visibility backend.
//
// Usage:
//
//	divevis [tui]
//	divevis predict --lat 49.21 --lon -2.13
//	divevis weather --lat 49.21 --lon -2.13 --predict
//	divevis dives | logbook | history
//	divevis presets list | import sites.zip
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	app := &cli.App{
		Name:    "divevis",
		Usage:   "Predict underwater visibility and keep a dive log",
		Version: version,

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML config file (default: configs/divevis.toml, then divevis.toml)",
				EnvVars: []string{"DIVEVIS_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "Backend URL, overriding the config file",
				EnvVars: []string{"DIVEVIS_BASE_URL"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error), overriding the config file",
				EnvVars: []string{"DIVEVIS_LOG_LEVEL"},
			},
		},

		Action: runTUI,
		Commands: []*cli.Command{
			tuiCommand(),
			predictCommand(),
			weatherCommand(),
			divesCommand(),
			logbookCommand(),
			presetsCommand(),
			historyCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
