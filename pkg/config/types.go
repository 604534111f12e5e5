package config

// Config represents a full training-run configuration. The tuner reads the
// trainer/env/saving sections; everything the trainer itself needs beyond
// that travels in the free-form params maps.
type Config struct {
	LogLevel string  `yaml:"log_level,omitempty"`
	Trainer  Trainer `yaml:"trainer"`
	Env      Env     `yaml:"env"`
	Saving   Saving  `yaml:"saving"`
}

// Trainer holds the training-loop parameters. NumEnvs and TrainBatchSize are
// the two knobs the tuner searches over; NumEpisodes is derived during tuning
// and restored afterward.
type Trainer struct {
	NumEnvs        int            `yaml:"num_envs"`
	TrainBatchSize int            `yaml:"train_batch_size"`
	NumEpisodes    float64        `yaml:"num_episodes"`
	Params         map[string]any `yaml:"params,omitempty"`
}

// Env holds the simulation environment parameters
type Env struct {
	Name          string         `yaml:"name,omitempty"`
	EpisodeLength float64        `yaml:"episode_length"`
	Params        map[string]any `yaml:"params,omitempty"`
}

// Saving holds result-saving and experiment-tracking settings
type Saving struct {
	UseWandb bool   `yaml:"use_wandb"`
	Tag      string `yaml:"tag,omitempty"`
}

// Clone returns a deep copy of the configuration. Probe attempts receive a
// clone rather than a live reference, so a crashing worker can never be
// holding shared state.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	out := *c
	out.Trainer.Params = cloneMap(c.Trainer.Params)
	out.Env.Params = cloneMap(c.Env.Params)
	return &out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch vv := v.(type) {
		case map[string]any:
			out[k] = cloneMap(vv)
		case []any:
			s := make([]any, len(vv))
			copy(s, vv)
			out[k] = s
		default:
			out[k] = v
		}
	}
	return out
}
