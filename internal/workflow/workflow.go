// Package workflow maps launch modes to the external training and evaluation
// commands of the Franka cube-lift task.
package workflow

import (
	"fmt"
	"strconv"

	"mvdan.cc/sh/v3/shell"

	"github.com/robolab/liftlab/internal/config"
)

// Mode selects which workflow entry point a launch targets.
type Mode string

const (
	ModeTrainRGBState Mode = "train_rgb_and_state"
	ModeTrainState    Mode = "train_state"
	ModePlay          Mode = "play"
)

// Registered gym task identifiers for the Franka cube-lift environments.
const (
	TaskLiftCubeRGB     = "Isaac-Lift-Cube-Franka-v0-RGB"
	TaskLiftCube        = "Isaac-Lift-Cube-Franka-v0"
	TaskLiftCubePlayRGB = "Isaac-Lift-Cube-Franka-Play-v0-RGB"
)

// ParseMode maps a mode string to a Mode. Any unrecognized value, including
// the empty string, selects evaluation.
func ParseMode(s string) Mode {
	switch s {
	case string(ModeTrainRGBState):
		return ModeTrainRGBState
	case string(ModeTrainState):
		return ModeTrainState
	default:
		return ModePlay
	}
}

// Training reports whether the mode launches a training workflow.
func (m Mode) Training() bool {
	return m == ModeTrainRGBState || m == ModeTrainState
}

// Params holds everything needed to construct one workflow command.
type Params struct {
	Script        string   `yaml:"script"`
	Task          string   `yaml:"task"`
	NumEnvs       int      `yaml:"num_envs"`
	ArchType      string   `yaml:"arch_type,omitempty"`
	Headless      bool     `yaml:"headless"`
	EnableCameras bool     `yaml:"enable_cameras"`
	Video         bool     `yaml:"video"`
	VideoLength   int      `yaml:"video_length,omitempty"`
	VideoInterval int      `yaml:"video_interval,omitempty"`
	Seed          int      `yaml:"seed,omitempty"`           // <0 means unset
	MaxIterations int      `yaml:"max_iterations,omitempty"` // 0 means unset
	Distributed   bool     `yaml:"distributed,omitempty"`
	MLFramework   string   `yaml:"ml_framework,omitempty"`
	Checkpoint    string   `yaml:"checkpoint,omitempty"`
	Track         bool     `yaml:"track,omitempty"` // experiment-tracking (wandb)
	Extra         []string `yaml:"extra,omitempty"`
}

// Args renders the script flags in a fixed order. The same Params always
// produce the same slice.
func (p *Params) Args() []string {
	args := []string{
		"--task", p.Task,
		"--num_envs", strconv.Itoa(p.NumEnvs),
	}
	if p.ArchType != "" {
		args = append(args, "--arch_type", p.ArchType)
	}
	if p.Headless {
		args = append(args, "--headless")
	}
	if p.EnableCameras {
		args = append(args, "--enable_cameras")
	}
	if p.Video {
		args = append(args,
			"--video",
			"--video_length", strconv.Itoa(p.VideoLength),
			"--video_interval", strconv.Itoa(p.VideoInterval),
		)
	}
	if p.Seed >= 0 {
		args = append(args, "--seed", strconv.Itoa(p.Seed))
	}
	if p.MaxIterations > 0 {
		args = append(args, "--max_iterations", strconv.Itoa(p.MaxIterations))
	}
	if p.Distributed {
		args = append(args, "--distributed")
	}
	if p.MLFramework != "" {
		args = append(args, "--ml_framework", p.MLFramework)
	}
	if p.Checkpoint != "" {
		args = append(args, "--checkpoint", p.Checkpoint)
	}
	if p.Track {
		args = append(args, "--wandb")
	}
	args = append(args, p.Extra...)
	return args
}

// Launch is a fully resolved workflow invocation.
type Launch struct {
	Mode   Mode
	Params Params
	Argv   []string // interpreter, script, flags
}

// Build resolves a mode against the configuration into a runnable Launch.
// The three modes are mutually exclusive; ParseMode already folded every
// unrecognized value into ModePlay.
func Build(mode Mode, cfg *config.Config) (*Launch, error) {
	params, err := ModeParams(mode, cfg)
	if err != nil {
		return nil, err
	}
	return Assemble(mode, params, cfg)
}

// ModeParams returns the fixed parameter set of a mode.
func ModeParams(mode Mode, cfg *config.Config) (Params, error) {
	switch mode {
	case ModeTrainRGBState:
		return Params{
			Script:        cfg.Workflows.TrainRGB,
			Task:          TaskLiftCubeRGB,
			NumEnvs:       cfg.Launch.NumEnvs,
			ArchType:      cfg.Launch.ArchType,
			Headless:      true,
			EnableCameras: true,
			Video:         true,
			VideoLength:   cfg.Launch.VideoLength,
			VideoInterval: cfg.Launch.VideoInterval,
			Seed:          -1,
		}, nil
	case ModeTrainState:
		// Cameras stay on: video capture needs a render product even though
		// the policy consumes no image observations.
		return Params{
			Script:        cfg.Workflows.Train,
			Task:          TaskLiftCube,
			NumEnvs:       cfg.Launch.NumEnvs,
			Headless:      true,
			EnableCameras: true,
			Video:         true,
			VideoLength:   cfg.Launch.VideoLength,
			VideoInterval: cfg.Launch.VideoInterval,
			Seed:          -1,
		}, nil
	case ModePlay:
		return Params{
			Script:        cfg.Workflows.Play,
			Task:          TaskLiftCubePlayRGB,
			NumEnvs:       cfg.Launch.PlayNumEnvs,
			Headless:      true,
			EnableCameras: true,
			Seed:          -1,
		}, nil
	default:
		return Params{}, fmt.Errorf("unknown mode %q", mode)
	}
}

// Assemble builds the final argv from an interpreter, a parameter set, and
// the configured extra args.
func Assemble(mode Mode, params Params, cfg *config.Config) (*Launch, error) {
	interp, err := shell.Fields(cfg.Python, nil)
	if err != nil {
		return nil, fmt.Errorf("split python command %q: %w", cfg.Python, err)
	}
	if len(interp) == 0 {
		return nil, fmt.Errorf("empty python command")
	}

	if cfg.Launch.ExtraArgs != "" {
		extra, err := shell.Fields(cfg.Launch.ExtraArgs, nil)
		if err != nil {
			return nil, fmt.Errorf("split extra args %q: %w", cfg.Launch.ExtraArgs, err)
		}
		params.Extra = append(params.Extra, extra...)
	}

	argv := make([]string, 0, len(interp)+1+len(params.Extra)+16)
	argv = append(argv, interp...)
	argv = append(argv, params.Script)
	argv = append(argv, params.Args()...)

	return &Launch{Mode: mode, Params: params, Argv: argv}, nil
}
