package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/grove/internal/event"
)

// Scenario is a scripted event sequence with optional expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// StartAt is the clock's starting time in unix epoch milliseconds.
	StartAt int64 `yaml:"start_at"`

	// Legacy, when present, is a v2 cumulative metrics document seeded
	// into storage before the provider starts, exercising migration.
	Legacy map[string]any `yaml:"legacy,omitempty"`

	// Steps run in order against the provider.
	Steps []Step `yaml:"steps,omitempty"`

	// Expect validates the final projections. Optional; golden files
	// cover the full snapshot regardless.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Step is one scenario action: emit an event, advance the clock, or rotate
// the session. Exactly one field group may be set.
type Step struct {
	// Emit is an event type name. Args supply the variant fields; the
	// envelope is stamped by the provider and may be overridden per key.
	Emit string         `yaml:"emit,omitempty"`
	Args map[string]any `yaml:"args,omitempty"`

	// AdvanceMs moves the clock forward.
	AdvanceMs int64 `yaml:"advance_ms,omitempty"`

	// NewSession rotates to a fresh session.
	NewSession bool `yaml:"new_session,omitempty"`
}

// Expect lists projection assertions. Only set fields are checked.
type Expect struct {
	Stage             string   `yaml:"stage,omitempty"`
	LensID            string   `yaml:"lens_id,omitempty"`
	InteractionCount  *int     `yaml:"interaction_count,omitempty"`
	ExchangeCount     *int     `yaml:"exchange_count,omitempty"`
	JourneysCompleted *int     `yaml:"journeys_completed,omitempty"`
	SessionCount      *int     `yaml:"session_count,omitempty"`
	StreamItems       *int     `yaml:"stream_items,omitempty"`
	HasActiveQuery    *bool    `yaml:"has_active_query,omitempty"`
	ActiveMoments     []string `yaml:"active_moments,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos fail loudly instead of silently skipping assertions.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.StartAt <= 0 {
		return fmt.Errorf("start_at must be a positive epoch-millisecond timestamp")
	}
	if len(s.Steps) == 0 && s.Legacy == nil {
		return fmt.Errorf("steps or legacy is required")
	}

	for i, step := range s.Steps {
		set := 0
		if step.Emit != "" {
			set++
		}
		if step.AdvanceMs != 0 {
			set++
		}
		if step.NewSession {
			set++
		}
		if set != 1 {
			return fmt.Errorf("step %d: exactly one of emit, advance_ms, new_session must be set", i)
		}
		if step.AdvanceMs < 0 {
			return fmt.Errorf("step %d: advance_ms must be positive", i)
		}
		if step.Emit != "" && !slices.Contains(event.Types, event.Type(step.Emit)) {
			return fmt.Errorf("step %d: unknown event type %q", i, step.Emit)
		}
		if step.Emit == "" && step.Args != nil {
			return fmt.Errorf("step %d: args requires emit", i)
		}
	}
	return nil
}
