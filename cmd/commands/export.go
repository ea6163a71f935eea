package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/GiftNdimande/taskdeck/internal/events"
	"github.com/GiftNdimande/taskdeck/internal/export"
)

// NewExportCommand returns the export subcommand.
func NewExportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export tasks to a file or stdout",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   fmt.Sprintf("Output format (%s)", strings.Join(export.Formats, ", ")),
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file (default stdout)",
			},
		},
		Action: runExport,
	}
}

// NewImportCommand returns the import subcommand.
func NewImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import tasks from a json or yaml file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Input format (default: detected from the file extension)",
			},
		},
		Action: runImport,
	}
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	a, err := openRepo(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	list, err := a.repo.All(ctx)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}

	data, err := export.Render(list, cmd.String("format"))
	if err != nil {
		return err
	}

	output := cmd.String("output")
	if output == "" {
		_, err := os.Stdout.Write(data)
		return err
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	fmt.Printf("Exported %d tasks to %s\n", len(list), output)
	return nil
}

func runImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: taskdeck import <file>")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	format := cmd.String("format")
	if format == "" {
		format = export.DetectFormat(path)
	}

	incoming, err := export.Parse(data, format)
	if err != nil {
		return err
	}

	a, err := openState(ctx, cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	added, skipped, err := a.state.Import(ctx, events.SourceCLI, incoming)
	if err != nil {
		return fmt.Errorf("import tasks: %w", err)
	}

	if skipped > 0 {
		fmt.Printf("Imported %d tasks (%d already present).\n", added, skipped)
		return nil
	}
	fmt.Printf("Imported %d tasks.\n", added)
	return nil
}
