package config

// Config is the root configuration for liftlab.
type Config struct {
	Python    string           `json:"python"`
	Workflows WorkflowsConfig  `json:"workflows"`
	Launch    LaunchConfig     `json:"launch"`
	Gateway   GatewayConfig    `json:"gateway"`
	Events    EventsConfig     `json:"events"`
	Schedules []ScheduleConfig `json:"schedules,omitempty"`
}

// WorkflowsConfig holds the paths of the external workflow entry points.
// Paths are passed verbatim to the interpreter; relative paths are resolved
// against the working directory liftlab is invoked from.
type WorkflowsConfig struct {
	TrainRGB string `json:"train_rgb"` // combined RGB+state training script
	Train    string `json:"train"`     // state-only training script
	Play     string `json:"play"`      // evaluation script
}

// LaunchConfig holds the parameters substituted into workflow commands.
type LaunchConfig struct {
	NumEnvs        int    `json:"num_envs"`        // parallel envs for training
	PlayNumEnvs    int    `json:"play_num_envs"`   // parallel envs for evaluation
	ArchType       string `json:"arch_type"`       // policy architecture tag (RGB training)
	VideoLength    int    `json:"video_length"`    // recorded clip length in steps
	VideoInterval  int    `json:"video_interval"`  // steps between recordings
	CheckpointGlob string `json:"checkpoint_glob"` // glob used by --checkpoint latest
	ExtraArgs      string `json:"extra_args"`      // shell-style string appended to every command
}

// GatewayConfig holds the status gateway server settings.
type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// EventsConfig holds event bus settings.
type EventsConfig struct {
	BufferSize int `json:"buffer_size"`
}

// ScheduleConfig describes one cron-triggered launch.
type ScheduleConfig struct {
	Name        string `json:"name"`
	Cron        string `json:"cron"`
	Mode        string `json:"mode"`
	CooldownSec int    `json:"cooldown_sec,omitempty"`
}
