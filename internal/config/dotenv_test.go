package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDotenv(t *testing.T) {
	content := `# taskdeck env
TASKDECK_DATA=/tmp/deck
export DECK_EXPORTED=yes

# Quoted values
DECK_QUOTED="with # hash"
DECK_SINGLE='single'

DECK_SPACED = spaced_value
DECK_COMMENTED=value # trailing note
`

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	keys := []string{"TASKDECK_DATA", "DECK_EXPORTED", "DECK_QUOTED", "DECK_SINGLE", "DECK_SPACED", "DECK_COMMENTED"}
	for _, k := range keys {
		os.Unsetenv(k)
	}

	if err := LoadDotenv(path); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		key, want string
	}{
		{"TASKDECK_DATA", "/tmp/deck"},
		{"DECK_EXPORTED", "yes"},
		{"DECK_QUOTED", "with # hash"},
		{"DECK_SINGLE", "single"},
		{"DECK_SPACED", "spaced_value"},
		{"DECK_COMMENTED", "value"},
	}

	for _, tt := range tests {
		if got := os.Getenv(tt.key); got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestLoadDotenvNoOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("DECK_EXISTING=new-value"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("DECK_EXISTING", "original")

	if err := LoadDotenv(path); err != nil {
		t.Fatal(err)
	}

	if got := os.Getenv("DECK_EXISTING"); got != "original" {
		t.Errorf("expected existing var to be preserved, got %q", got)
	}
}

func TestLoadDotenvMissingFile(t *testing.T) {
	if err := LoadDotenv("/nonexistent/.env"); err != nil {
		t.Errorf("missing file should be silently ignored, got: %v", err)
	}
}

func TestParseDotenvLine(t *testing.T) {
	tests := []struct {
		line      string
		key, want string
		ok        bool
	}{
		{"A=1", "A", "1", true},
		{"export B=2", "B", "2", true},
		{"# comment", "", "", false},
		{"", "", "", false},
		{"no-equals-here", "", "", false},
		{"=orphan", "", "", false},
	}

	for _, tt := range tests {
		key, value, ok := parseDotenvLine(tt.line)
		if ok != tt.ok {
			t.Errorf("%q: ok=%v, want %v", tt.line, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if key != tt.key || value != tt.want {
			t.Errorf("%q: got %s=%q, want %s=%q", tt.line, key, value, tt.key, tt.want)
		}
	}
}
