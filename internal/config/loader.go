package config

import (
	"fmt"
	"os"
	"regexp"

	"github.com/marcozac/go-jsonc"
)

var envTemplateRe = regexp.MustCompile(`\$\{\{\s*\.Env\.(\w+)\s*\}\}`)

// Load reads a JSONC config file, strips comments, expands ${{ .Env.VAR }}
// templates, unmarshals it into Config, and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variable templates before stripping, since templates
	// live inside strings.
	expanded := expandEnvTemplates(string(data))

	var cfg Config
	if err := jsonc.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a Config with every field set to its default value.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// expandEnvTemplates replaces ${{ .Env.VAR }} with the env var value.
func expandEnvTemplates(s string) string {
	return envTemplateRe.ReplaceAllStringFunc(s, func(match string) string {
		parts := envTemplateRe.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}
		return os.Getenv(parts[1])
	})
}

// applyDefaults fills in zero-value fields.
//
// The launch defaults mirror the parameters the wrapped skrl workflows were
// tuned with: 15 training envs, 2 evaluation envs, 200-step clips every 500
// steps.
func applyDefaults(cfg *Config) {
	if cfg.Python == "" {
		cfg.Python = "python"
	}
	if cfg.Workflows.TrainRGB == "" {
		cfg.Workflows.TrainRGB = "source/standalone/workflows/skrl/train_rgb.py"
	}
	if cfg.Workflows.Train == "" {
		cfg.Workflows.Train = "source/standalone/workflows/skrl/train.py"
	}
	if cfg.Workflows.Play == "" {
		cfg.Workflows.Play = "source/standalone/workflows/skrl/play_rgb.py"
	}
	if cfg.Launch.NumEnvs == 0 {
		cfg.Launch.NumEnvs = 15
	}
	if cfg.Launch.PlayNumEnvs == 0 {
		cfg.Launch.PlayNumEnvs = 2
	}
	if cfg.Launch.ArchType == "" {
		cfg.Launch.ArchType = "large_model-rgb-state"
	}
	if cfg.Launch.VideoLength == 0 {
		cfg.Launch.VideoLength = 200
	}
	if cfg.Launch.VideoInterval == 0 {
		cfg.Launch.VideoInterval = 500
	}
	if cfg.Launch.CheckpointGlob == "" {
		cfg.Launch.CheckpointGlob = "logs/skrl/**/checkpoints/*.pt"
	}
	if cfg.Gateway.Host == "" {
		cfg.Gateway.Host = "127.0.0.1"
	}
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = 18430
	}
	if cfg.Events.BufferSize == 0 {
		cfg.Events.BufferSize = 1024
	}
}
