package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/GiftNdimande/taskdeck/internal/prefs"
	"github.com/GiftNdimande/taskdeck/internal/tasks"
)

// NewPrefsCommand returns the prefs subcommand.
func NewPrefsCommand() *cli.Command {
	return &cli.Command{
		Name:  "prefs",
		Usage: "Show and change preferences",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show current preferences",
				Action: runPrefsShow,
			},
			{
				Name:      "set",
				Usage:     "Set a preference",
				ArgsUsage: "<key> <value>",
				Action:    runPrefsSet,
			},
		},
		DefaultCommand: "show",
	}
}

func runPrefsShow(ctx context.Context, cmd *cli.Command) error {
	a, err := openRepo(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	store := prefs.NewStore(a.adapter)

	p, err := store.Preferences(ctx)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	theme, err := store.Theme(ctx)
	if err != nil {
		return fmt.Errorf("load theme: %w", err)
	}

	fmt.Println("Preferences:")
	fmt.Printf("  defaultPriority:  %s\n", p.DefaultPriority)
	fmt.Printf("  sortBy:           %s\n", p.SortBy)
	fmt.Printf("  showCompleted:    %v\n", p.ShowCompleted)
	fmt.Printf("  confirmDelete:    %v\n", p.ConfirmDelete)
	fmt.Println("Theme:")
	fmt.Printf("  theme.mode:       %s\n", theme.Mode)
	fmt.Printf("  theme.accent:     %s\n", theme.Accent)
	return nil
}

// themeModes are the accepted values for theme.mode.
var themeModes = []string{"system", "light", "dark"}

func runPrefsSet(ctx context.Context, cmd *cli.Command) error {
	key := cmd.Args().Get(0)
	value := cmd.Args().Get(1)
	if key == "" || value == "" {
		return fmt.Errorf("usage: taskdeck prefs set <key> <value>")
	}

	a, err := openRepo(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	store := prefs.NewStore(a.adapter)

	switch key {
	case "defaultPriority":
		p := tasks.Priority(value)
		if !p.Valid() {
			return fmt.Errorf("invalid priority %q", value)
		}
		_, err = store.UpdatePreferences(ctx, prefs.PreferencesPatch{DefaultPriority: &p})

	case "sortBy":
		if !tasks.ValidSortKey(value) {
			return fmt.Errorf("invalid sort key %q (one of %s)", value, strings.Join(tasks.SortKeys, ", "))
		}
		_, err = store.UpdatePreferences(ctx, prefs.PreferencesPatch{SortBy: &value})

	case "showCompleted", "confirmDelete":
		b, parseErr := strconv.ParseBool(value)
		if parseErr != nil {
			return fmt.Errorf("%s wants true or false, got %q", key, value)
		}
		patch := prefs.PreferencesPatch{}
		if key == "showCompleted" {
			patch.ShowCompleted = &b
		} else {
			patch.ConfirmDelete = &b
		}
		_, err = store.UpdatePreferences(ctx, patch)

	case "theme.mode":
		ok := false
		for _, m := range themeModes {
			if m == value {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("invalid theme mode %q (one of %s)", value, strings.Join(themeModes, ", "))
		}
		_, err = store.UpdateTheme(ctx, prefs.ThemePatch{Mode: &value})

	case "theme.accent":
		_, err = store.UpdateTheme(ctx, prefs.ThemePatch{Accent: &value})

	default:
		return fmt.Errorf("unknown preference %q (defaultPriority, sortBy, showCompleted, confirmDelete, theme.mode, theme.accent)", key)
	}

	if err != nil {
		return fmt.Errorf("save preference: %w", err)
	}

	fmt.Printf("Set %s = %s\n", key, value)
	return nil
}
