package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is a conformance test: theories and setup commands establish
// declarations, steps run commands with optional expectations, and
// assertions check the final state.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Theories lists CUE theory files loaded before setup, relative to the
	// scenario file when loaded with LoadScenarioWithBasePath.
	Theories []string `yaml:"theories,omitempty"`

	// MaxSteps bounds every normalization. Zero keeps the kernel default.
	MaxSteps int `yaml:"max_steps,omitempty"`

	// Atomic rolls back a Group whose children fail.
	Atomic bool `yaml:"atomic,omitempty"`

	// Setup commands must all succeed.
	Setup []string `yaml:"setup,omitempty"`

	// Steps are commands that may fail.
	Steps []Step `yaml:"steps,omitempty"`

	// Assertions are evaluated after every command ran.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one command of a scenario.
type Step struct {
	// Command is a single prover command in prefix syntax.
	Command string `yaml:"command"`

	// Expect is checked against the command's record. Nil means no check.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause is the expected outcome of a step.
type ExpectClause struct {
	// Case is "ok" or "error".
	Case string `yaml:"case"`

	// Output, when set, must equal what the command printed.
	Output string `yaml:"output,omitempty"`
}

// Expected outcomes.
const (
	CaseOK    = "ok"
	CaseError = "error"
)

// Assertion checks the state left by a scenario.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Left and Right are the terms compared by equal and not_equal.
	Left  string `yaml:"left,omitempty"`
	Right string `yaml:"right,omitempty"`

	// Term is the subject of normal_form, type and rules.
	Term string `yaml:"term,omitempty"`

	// Expect is the expected normal form or type.
	Expect string `yaml:"expect,omitempty"`

	// Command narrows an error assertion to one command source.
	Command string `yaml:"command,omitempty"`

	// Contains is the text looked for by error and output_contains.
	Contains string `yaml:"contains,omitempty"`

	// Rules is the expected rule sequence (used by rules).
	Rules []string `yaml:"rules,omitempty"`
}

// Assertion type constants.
const (
	AssertEqual          = "equal"
	AssertNotEqual       = "not_equal"
	AssertNormalForm     = "normal_form"
	AssertType           = "type"
	AssertError          = "error"
	AssertOutputContains = "output_contains"
	AssertRules          = "rules"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, "")
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving theory paths relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	for i, p := range scenario.Theories {
		if !filepath.IsAbs(p) && basePath != "" {
			scenario.Theories[i] = filepath.Join(basePath, p)
		}
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario decodes a scenario without checking that its theory files
// exist.
func ParseScenario(data []byte) (*Scenario, error) {
	// Reject unknown fields so "assertion:" does not silently mean nothing.
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Assertions) == 0 && len(s.Steps) == 0 {
		return fmt.Errorf("a scenario needs steps or assertions")
	}
	if s.MaxSteps < 0 {
		return fmt.Errorf("max_steps must be non-negative")
	}

	for _, p := range s.Theories {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("theory file not found: %s", p)
		}
	}

	for i, cmd := range s.Setup {
		if cmd == "" {
			return fmt.Errorf("setup[%d]: command is empty", i)
		}
	}

	for i, step := range s.Steps {
		if step.Command == "" {
			return fmt.Errorf("steps[%d]: command is required", i)
		}
		if step.Expect != nil && step.Expect.Case != CaseOK && step.Expect.Case != CaseError {
			return fmt.Errorf("steps[%d].expect: case must be %q or %q, got %q", i, CaseOK, CaseError, step.Expect.Case)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertEqual, AssertNotEqual:
		if a.Left == "" || a.Right == "" {
			return fmt.Errorf("assertions[%d]: left and right are required for %s", index, a.Type)
		}
	case AssertNormalForm, AssertType:
		if a.Term == "" || a.Expect == "" {
			return fmt.Errorf("assertions[%d]: term and expect are required for %s", index, a.Type)
		}
	case AssertError:
		if a.Command == "" && a.Contains == "" {
			return fmt.Errorf("assertions[%d]: command or contains is required for error", index)
		}
	case AssertOutputContains:
		if a.Contains == "" {
			return fmt.Errorf("assertions[%d]: contains is required for output_contains", index)
		}
	case AssertRules:
		if a.Term == "" {
			return fmt.Errorf("assertions[%d]: term is required for rules", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
