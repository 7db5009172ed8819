package workflow

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
)

// CheckpointLatest is the sentinel value that resolves to the newest
// checkpoint file matching the configured glob.
const CheckpointLatest = "latest"

// ResolveCheckpoint turns a --checkpoint flag value into a concrete path.
// Any value other than "latest" passes through untouched, without an
// existence check — the workflow script reports missing files itself.
func ResolveCheckpoint(value, glob string) (string, error) {
	if value != CheckpointLatest {
		return value, nil
	}

	matches, err := doublestar.FilepathGlob(glob)
	if err != nil {
		return "", fmt.Errorf("glob checkpoints %q: %w", glob, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no checkpoint matches %q", glob)
	}

	latest := ""
	var latestMod int64
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		if mod := info.ModTime().UnixNano(); latest == "" || mod > latestMod {
			latest = m
			latestMod = mod
		}
	}
	if latest == "" {
		return "", fmt.Errorf("no checkpoint files match %q", glob)
	}
	return latest, nil
}
