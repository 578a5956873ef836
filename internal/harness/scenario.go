package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario for the campaign pipeline.
type Scenario struct {
	// Name uniquely identifies this scenario. It doubles as the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Counters are the fake counters the campaign runs.
	Counters []CounterSpec `yaml:"counters"`

	// Instances are written to disk before the campaign starts.
	Instances []InstanceSpec `yaml:"instances"`

	// Verified pins ground-truth counts per instance name.
	Verified map[string]string `yaml:"verified,omitempty"`

	// Expect states the verdict the campaign must reach.
	Expect Expectation `yaml:"expect"`
}

// CounterSpec describes one fake counter. Exactly one of Count, Output, or
// a nonzero ExitCode should be set.
type CounterSpec struct {
	Name string `yaml:"name"`

	// Count makes the counter report this exact arbitrary-precision
	// integer in competition output format.
	Count string `yaml:"count,omitempty"`

	// Output replaces the whole combined output, one line per entry.
	Output []string `yaml:"output,omitempty"`

	// ExitCode makes the counter exit with this code after printing.
	ExitCode int `yaml:"exit_code,omitempty"`
}

// InstanceSpec is one inline extended-DIMACS instance.
type InstanceSpec struct {
	Name   string `yaml:"name"`
	DIMACS string `yaml:"dimacs"`
}

// Expectation is the verdict a scenario requires.
type Expectation struct {
	Agreements    int      `yaml:"agreements"`
	Disagreements int      `yaml:"disagreements"`
	Errors        int      `yaml:"errors"`
	Problematic   []string `yaml:"problematic,omitempty"`
}

// LoadScenario reads and validates a single scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}
	return &s, nil
}

// LoadScenarios reads every .yaml scenario under dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("load scenarios: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".yaml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	scenarios := make([]*Scenario, 0, len(names))
	for _, name := range names {
		s, err := LoadScenario(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario has no name")
	}
	if len(s.Counters) == 0 {
		return fmt.Errorf("scenario %s has no counters", s.Name)
	}
	if len(s.Instances) == 0 {
		return fmt.Errorf("scenario %s has no instances", s.Name)
	}
	for _, c := range s.Counters {
		if c.Name == "" {
			return fmt.Errorf("scenario %s: counter has no name", s.Name)
		}
		if c.Count != "" && len(c.Output) > 0 {
			return fmt.Errorf("scenario %s: counter %s sets both count and output", s.Name, c.Name)
		}
	}
	for _, in := range s.Instances {
		if in.Name == "" || in.DIMACS == "" {
			return fmt.Errorf("scenario %s: instance needs name and dimacs", s.Name)
		}
	}
	return nil
}
