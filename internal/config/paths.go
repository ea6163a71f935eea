package config

import (
	"os"
	"path/filepath"
)

// TaskdeckPath returns the root directory for taskdeck data.
// It uses $TASKDECK_PATH if set, otherwise defaults to ~/.taskdeck.
func TaskdeckPath() string {
	if v := os.Getenv("TASKDECK_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".taskdeck")
	}
	return filepath.Join(home, ".taskdeck")
}

// ConfigPath returns the path to the taskdeck config file.
func ConfigPath() string {
	return filepath.Join(TaskdeckPath(), "config.jsonc")
}

// DotenvPath returns the path to the taskdeck .env file.
func DotenvPath() string {
	return filepath.Join(TaskdeckPath(), ".env")
}

// DBPath returns the default path of the sqlite database file.
func DBPath() string {
	return filepath.Join(TaskdeckPath(), "taskdeck.db")
}

// LogsPath returns the directory holding activity logs.
func LogsPath() string {
	return filepath.Join(TaskdeckPath(), "logs")
}

// HeartbeatPath returns the path of the serve daemon's heartbeat file.
func HeartbeatPath() string {
	return filepath.Join(TaskdeckPath(), "heartbeat.json")
}
