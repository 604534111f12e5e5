package config

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"
)

// ToStruct converts the configuration to a protobuf Struct. The Struct form
// is what crosses the parent/worker process boundary, so the conversion must
// retain every field including the free-form params maps.
func (c *Config) ToStruct() (*structpb.Struct, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}

	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to remarshal config: %w", err)
	}

	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, fmt.Errorf("failed to convert config to proto struct: %w", err)
	}
	return s, nil
}

// FromStruct converts a protobuf Struct back into a validated Config.
func FromStruct(s *structpb.Struct) (*Config, error) {
	if s == nil {
		return nil, fmt.Errorf("config struct is required")
	}

	data, err := yaml.Marshal(s.AsMap())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config struct: %w", err)
	}

	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config struct: %w", err)
	}
	return cfg, nil
}
