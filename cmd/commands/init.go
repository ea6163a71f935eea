package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/GiftNdimande/taskdeck/internal/config"
)

// NewInitCommand returns the onboarding subcommand.
func NewInitCommand() *cli.Command {
	return &cli.Command{
		Name:   "init",
		Usage:  "Initialize the taskdeck home directory (~/.taskdeck)",
		Action: runInit,
	}
}

func runInit(_ context.Context, cmd *cli.Command) error {
	applyDataDir(cmd)

	root := config.TaskdeckPath()
	created := false

	// Ensure directories exist.
	dirs := []string{
		root,
		config.LogsPath(),
	}
	for _, d := range dirs {
		if _, err := os.Stat(d); err != nil {
			if err := os.MkdirAll(d, 0o755); err != nil {
				return fmt.Errorf("create dir %s: %w", d, err)
			}
			fmt.Printf("  Created %s\n", d)
			created = true
		}
	}

	// Write default config if missing.
	configPath := config.ConfigPath()
	if _, err := os.Stat(configPath); err != nil {
		if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("  Created %s\n", configPath)
		created = true
	}

	// Write default .env if missing.
	dotenvPath := config.DotenvPath()
	if _, err := os.Stat(dotenvPath); err != nil {
		if err := os.WriteFile(dotenvPath, []byte(defaultDotenv), 0o600); err != nil {
			return fmt.Errorf("write .env: %w", err)
		}
		fmt.Printf("  Created %s\n", dotenvPath)
		created = true
	}

	if !created {
		fmt.Printf("Already initialized at %s. Nothing to do.\n", root)
		return nil
	}

	fmt.Println(initMessage(root))
	return nil
}

const defaultConfig = `{
	// taskdeck configuration
	// Docs: https://github.com/GiftNdimande/taskdeck

	"gateway": {
		"host": "127.0.0.1",
		"port": 7360
	},

	"storage": {
		// "sqlite" or "memory"; an empty path means <data-dir>/taskdeck.db
		"backend": "sqlite",
		"path": ""
	},

	"events": {
		"buffer_size": 256
	},

	"reminder": {
		"enabled": true,
		"cron": "*/15 * * * *",
		"horizon": "24h"
	}
}
`

const defaultDotenv = `# taskdeck environment variables
# This file is loaded automatically. Existing env vars are never overridden.

# TASKDECK_PATH=/path/to/data
`

func initMessage(root string) string {
	return fmt.Sprintf(`
  taskdeck is ready.

  Home set up at %s
  Config, logs, and the database all live in there.

  Next steps:
    1. Add your first task: taskdeck add "Buy milk"
    2. Tweak %s/config.jsonc if you feel like it
    3. Run: taskdeck serve
`, root, root)
}
