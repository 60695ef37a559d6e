package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

const version = "0.1.0"

func main() {
	app := &cli.App{
		Name:    "travelctl",
		Usage:   "Browse CapeTravel places and vote on them from the terminal",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "API base `URL`",
				Value:   "http://localhost:8000",
				EnvVars: []string{"CT_API_URL"},
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "Session `TOKEN`; omit to vote anonymously",
				EnvVars: []string{"CT_SESSION_TOKEN"},
			},
			&cli.StringFlag{
				Name:    "state-dir",
				Usage:   "`DIR` holding the persisted anonymous id",
				Value:   defaultStateDir(),
				EnvVars: []string{"CT_STATE_DIR"},
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print JSON instead of tables",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log requests and fallbacks to stderr",
			},
		},
		Commands: []*cli.Command{
			placesCommand(),
			galleryCommand(),
			reactionsCommand(),
			voteCommand("like", "Like a subject, or retract an existing like"),
			voteCommand("dislike", "Dislike a subject, or retract an existing dislike"),
			viewportCommand(),
			whoamiCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
