// Package config loads filter jobs: the parameters of one invocation,
// stored in a YAML or CUE file so a filter can be rerun or shared.
//
// A YAML job:
//
//	input: regions.bed.gz
//	output: chr1-long.bed
//	expression: c1=="chr1" && c3-c2>=2000
//	skip_lines: 1
//	types: [str, int, int, str, int, str]
//
// The same job in CUE uses identical field names. Relative paths are
// resolved against the directory holding the job file.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/rowfilter/internal/fingerprint"
	"github.com/roach88/rowfilter/internal/value"
)

//go:embed job.cue
var jobSchema string

// Error codes for job loading.
const (
	ErrCodeRead    = "E201" // job file unreadable
	ErrCodeFormat  = "E202" // unknown job file extension
	ErrCodeParse   = "E203" // malformed YAML or CUE
	ErrCodeSchema  = "E204" // job violates the #Job schema
	ErrCodeInvalid = "E205" // job fields are inconsistent
)

// LoadError reports a job file that could not be loaded.
type LoadError struct {
	Code    string
	Path    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError returns true if err is or wraps a *LoadError.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// Job holds the parameters of one filter invocation.
type Job struct {
	Input      string
	Output     string
	Expression string
	SkipLines  int
	Types      []value.Type
	History    string
}

// fileJob is the on-disk shape shared by YAML and CUE job files.
type fileJob struct {
	Input      string   `yaml:"input" json:"input"`
	Output     string   `yaml:"output" json:"output"`
	Expression string   `yaml:"expression" json:"expression"`
	SkipLines  int      `yaml:"skip_lines" json:"skip_lines"`
	Types      []string `yaml:"types" json:"types"`
	History    string   `yaml:"history" json:"history"`
}

// LoadJob reads a job file. The format is chosen by extension: .yaml and
// .yml are YAML, .cue is CUE. Unknown fields are rejected in both.
func LoadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeRead, Path: path, Message: "failed to read job file", Err: err}
	}

	var raw fileJob
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		err = decodeYAML(data, &raw)
	case ".cue":
		err = decodeCUE(path, data, &raw)
	default:
		return nil, &LoadError{Code: ErrCodeFormat, Path: path,
			Message: fmt.Sprintf("unsupported job file extension %q (want .yaml, .yml or .cue)", ext)}
	}
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}

	job, err := raw.job()
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalid, Path: path, Message: err.Error(), Err: err}
	}
	job.resolvePaths(filepath.Dir(path))
	if err := job.Validate(); err != nil {
		return nil, &LoadError{Code: ErrCodeInvalid, Path: path, Message: err.Error(), Err: err}
	}
	return job, nil
}

func decodeYAML(data []byte, raw *fileJob) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(raw); err != nil {
		return &LoadError{Code: ErrCodeParse, Message: fmt.Sprintf("failed to parse YAML: %v", err), Err: err}
	}
	return nil
}

func decodeCUE(path string, data []byte, raw *fileJob) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(jobSchema).LookupPath(cue.ParsePath("#Job"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("job schema: %w", err)
	}

	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return &LoadError{Code: ErrCodeParse, Message: fmt.Sprintf("failed to parse CUE: %v", err), Err: err}
	}

	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return &LoadError{Code: ErrCodeSchema, Message: fmt.Sprintf("job does not match schema: %v", err), Err: err}
	}
	if err := unified.Decode(raw); err != nil {
		return &LoadError{Code: ErrCodeSchema, Message: fmt.Sprintf("failed to decode job: %v", err), Err: err}
	}
	return nil
}

func (f fileJob) job() (*Job, error) {
	job := &Job{
		Input:      f.Input,
		Output:     f.Output,
		Expression: f.Expression,
		SkipLines:  f.SkipLines,
		History:    f.History,
	}
	for i, name := range f.Types {
		t, err := value.ParseType(name)
		if err != nil {
			return nil, fmt.Errorf("types[%d]: %w", i, err)
		}
		job.Types = append(job.Types, t)
	}
	return job, nil
}

func (j *Job) resolvePaths(dir string) {
	for _, p := range []*string{&j.Input, &j.Output, &j.History} {
		if *p != "" && *p != "-" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// Validate checks the fields every run needs.
func (j *Job) Validate() error {
	if j.Expression == "" {
		return errors.New("expression is required")
	}
	if j.SkipLines < 0 {
		return fmt.Errorf("skip_lines must not be negative, got %d", j.SkipLines)
	}
	return nil
}

// Fingerprint identifies the job by what it computes. Paths do not
// contribute, so one job run over different files shares a fingerprint.
func (j *Job) Fingerprint() (string, error) {
	return fingerprint.Job(j.Expression, j.Types, j.SkipLines)
}

// Overrides carries explicitly set command-line values. A nil field leaves
// the job's value alone.
type Overrides struct {
	Input      *string
	Output     *string
	Expression *string
	SkipLines  *int
	Types      []value.Type
	TypesSet   bool
	History    *string
}

// Apply returns a copy of j with every set override applied.
func (j Job) Apply(o Overrides) Job {
	if o.Input != nil {
		j.Input = *o.Input
	}
	if o.Output != nil {
		j.Output = *o.Output
	}
	if o.Expression != nil {
		j.Expression = *o.Expression
	}
	if o.SkipLines != nil {
		j.SkipLines = *o.SkipLines
	}
	if o.TypesSet {
		j.Types = o.Types
	}
	if o.History != nil {
		j.History = *o.History
	}
	return j
}
