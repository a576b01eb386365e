package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/rowfilter/internal/filter"
	"github.com/roach88/rowfilter/internal/value"
)

// Scenario defines one filter run and its expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Types declares the column types by name, e.g. [str, int, int].
	Types []string `yaml:"types"`

	// Expression is the filter expression under test.
	Expression string `yaml:"expression"`

	// SkipLines is the number of header lines.
	SkipLines int `yaml:"skip_lines,omitempty"`

	// Input is the complete input text.
	Input string `yaml:"input"`

	// Expect holds the assertions on the run.
	Expect Expect `yaml:"expect"`
}

// Expect lists what a scenario checks. Nil fields are not checked.
type Expect struct {
	Output           *string `yaml:"output,omitempty"`
	Report           *string `yaml:"report,omitempty"`
	Kept             *int    `yaml:"kept,omitempty"`
	Invalid          *int    `yaml:"invalid,omitempty"`
	Skipped          *int    `yaml:"skipped,omitempty"`
	FirstInvalidLine *int    `yaml:"first_invalid_line,omitempty"`

	// Error, when set, requires the run to fail with a message containing it.
	Error string `yaml:"error,omitempty"`

	// ErrorKind optionally requires a compile error of this kind.
	ErrorKind string `yaml:"error_kind,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields and missing required fields are errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
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

// ColumnTypes parses the declared type names.
func (s *Scenario) ColumnTypes() ([]value.Type, error) {
	types := make([]value.Type, len(s.Types))
	for i, name := range s.Types {
		t, err := value.ParseType(name)
		if err != nil {
			return nil, fmt.Errorf("types[%d]: %w", i, err)
		}
		types[i] = t
	}
	return types, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Expression == "" {
		return fmt.Errorf("expression is required")
	}

	if s.SkipLines < 0 {
		return fmt.Errorf("skip_lines must not be negative")
	}

	if _, err := s.ColumnTypes(); err != nil {
		return err
	}

	switch filter.CompileErrorKind(s.Expect.ErrorKind) {
	case "", filter.CompileSyntax, filter.CompileValidation:
	default:
		return fmt.Errorf("expect.error_kind must be %q or %q, got %q",
			filter.CompileSyntax, filter.CompileValidation, s.Expect.ErrorKind)
	}

	if s.Expect.ErrorKind != "" && s.Expect.Error == "" {
		return fmt.Errorf("expect.error_kind requires expect.error")
	}

	return nil
}
