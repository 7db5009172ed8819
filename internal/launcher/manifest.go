package launcher

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robolab/liftlab/internal/workflow"
)

// Manifest is the YAML record of a launch, dumped before dispatch so the
// exact command of every run survives next to its artifacts.
type Manifest struct {
	RunID     string          `yaml:"run_id"`
	Mode      string          `yaml:"mode"`
	CreatedAt time.Time       `yaml:"created_at"`
	Command   []string        `yaml:"command"`
	Params    workflow.Params `yaml:"params"`
}

func writeManifest(runsDir, runID string, l *workflow.Launch, created time.Time) error {
	m := Manifest{
		RunID:     runID,
		Mode:      string(l.Mode),
		CreatedAt: created,
		Command:   l.Argv,
		Params:    l.Params,
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}

	dir := filepath.Join(runsDir, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "launch.yaml"), data, 0o644)
}
