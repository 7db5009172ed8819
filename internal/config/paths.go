package config

import (
	"os"
	"path/filepath"
)

// HomePath returns the root directory for liftlab data.
// It uses $LIFTLAB_PATH if set, otherwise defaults to ~/.liftlab.
func HomePath() string {
	if v := os.Getenv("LIFTLAB_PATH"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".liftlab")
	}
	return filepath.Join(home, ".liftlab")
}

// ConfigPath returns the path to the liftlab config file.
func ConfigPath() string {
	return filepath.Join(HomePath(), "config.jsonc")
}

// DotenvPath returns the path to the liftlab .env file.
func DotenvPath() string {
	return filepath.Join(HomePath(), ".env")
}

// RunsPath returns the directory holding per-run manifests.
func RunsPath() string {
	return filepath.Join(HomePath(), "runs")
}

// LedgerPath returns the path of the SQLite run ledger.
func LedgerPath() string {
	return filepath.Join(HomePath(), "runs.db")
}

// LogsPath returns the directory holding JSONL event logs.
func LogsPath() string {
	return filepath.Join(HomePath(), "logs")
}

// HeartbeatPath returns the path of the gateway heartbeat file.
func HeartbeatPath() string {
	return filepath.Join(HomePath(), "heartbeat.json")
}
