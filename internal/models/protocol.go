package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProtocolPhase is one timed phase in the assessment sequence.
type ProtocolPhase struct {
	Kind            TestKind `yaml:"kind" json:"kind"`
	Hand            Hand     `yaml:"hand" json:"hand"`
	DurationSeconds float64  `yaml:"duration_seconds" json:"durationSeconds"`
	Instructions    string   `yaml:"instructions,omitempty" json:"instructions,omitempty"`
}

// Protocol holds the ordered phase sequence the collaborator drives.
type Protocol struct {
	Name   string          `yaml:"name" json:"name"`
	Phases []ProtocolPhase `yaml:"phases" json:"phases"`
}

// LoadProtocol reads and parses the protocol YAML file.
func LoadProtocol(path string) (*Protocol, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read protocol file: %w", err)
	}

	var protocol Protocol
	if err := yaml.Unmarshal(data, &protocol); err != nil {
		return nil, fmt.Errorf("failed to unmarshal protocol YAML: %w", err)
	}

	for i, phase := range protocol.Phases {
		if phase.Kind != TappingTest && phase.Kind != TremorTest {
			return nil, fmt.Errorf("phase %d: unknown test kind %q", i, phase.Kind)
		}
		if phase.Hand != LeftHand && phase.Hand != RightHand {
			return nil, fmt.Errorf("phase %d: unknown hand %q", i, phase.Hand)
		}
		if phase.DurationSeconds <= 0 {
			return nil, fmt.Errorf("phase %d: duration must be positive", i)
		}
	}

	return &protocol, nil
}
