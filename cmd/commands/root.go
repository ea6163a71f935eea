package commands

import (
	"github.com/urfave/cli/v3"

	"github.com/GiftNdimande/taskdeck/internal/config"
)

// NewRootCommand returns the top-level CLI command.
func NewRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "taskdeck",
		Usage: "Local-first task manager",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   config.ConfigPath(),
			},
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "Data directory (default ~/.taskdeck, env TASKDECK_PATH)",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			NewInitCommand(),
			NewAddCommand(),
			NewListCommand(),
			NewShowCommand(),
			NewEditCommand(),
			NewDoneCommand(),
			NewCycleCommand(),
			NewRemoveCommand(),
			NewSearchCommand(),
			NewStatsCommand(),
			NewClearCommand(),
			NewExportCommand(),
			NewImportCommand(),
			NewHistoryCommand(),
			NewPrefsCommand(),
			NewServeCommand(),
			NewStatusCommand(),
			NewWatchCommand(),
		},
	}
}
