package convert

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/compozy/plistyaml/engine/codec"
)

var (
	// ErrInputNotFound marks a source that does not exist or cannot be read.
	ErrInputNotFound = errors.New("input not found")

	// ErrOutputUnwritable marks a destination that cannot be created or written.
	ErrOutputUnwritable = errors.New("output unwritable")

	// ErrUsage marks a request whose paths cannot be resolved.
	ErrUsage = errors.New("usage error")
)

// Status is the outcome of one conversion.
type Status string

const (
	StatusWritten Status = "written"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Operation names a conversion entry point.
type Operation string

const (
	OpYAMLToPlist Operation = "yaml-plist"
	OpPlistToYAML Operation = "plist-yaml"
	OpJSONToPlist Operation = "json-plist"
	OpPlistToJSON Operation = "plist-json"
	OpJSONToYAML  Operation = "json-yaml"
	OpYAMLToJSON  Operation = "yaml-json"
	OpTidyYAML    Operation = "tidy"
	OpConvert     Operation = "convert"
)

// Report describes what happened to one document. Caught failures are
// reported here instead of being returned as errors.
type Report struct {
	Status    Status
	Operation Operation
	Input     string
	Output    string
	Recipe    bool
	Err       error
}

// Failed reports whether the conversion was aborted.
func (r *Report) Failed() bool {
	return r.Status == StatusFailed
}

// Message renders the single human-readable line for the outcome.
func (r *Report) Message() string {
	switch r.Status {
	case StatusWritten:
		return "Wrote to: " + r.Output
	case StatusSkipped:
		return "Not processing " + r.Input
	}
	switch {
	case errors.Is(r.Err, ErrInputNotFound):
		return fmt.Sprintf("ERROR: %s not found", r.Input)
	case errors.Is(r.Err, ErrOutputUnwritable):
		return fmt.Sprintf("ERROR: could not create %s", r.Output)
	case errors.Is(r.Err, codec.ErrDuplicateKey):
		return fmt.Sprintf("ERROR: Duplicate key found in %s", r.Input)
	case errors.Is(r.Err, codec.ErrUnsupportedValue):
		return fmt.Sprintf("ERROR: %s contains a value that cannot be converted: %v", r.Input, r.Err)
	case errors.Is(r.Err, ErrUsage):
		return fmt.Sprintf("ERROR: %v", r.Err)
	case r.Err != nil:
		return fmt.Sprintf("ERROR: %s: %v", r.Input, r.Err)
	default:
		return "ERROR: " + r.Input
	}
}

// MarshalJSON renders the report as a flat record for machine output.
func (r *Report) MarshalJSON() ([]byte, error) {
	out := struct {
		Status    Status    `json:"status"`
		Operation Operation `json:"operation"`
		Input     string    `json:"input"`
		Output    string    `json:"output,omitempty"`
		Recipe    bool      `json:"recipe,omitempty"`
		Message   string    `json:"message"`
		Error     string    `json:"error,omitempty"`
	}{
		Status:    r.Status,
		Operation: r.Operation,
		Input:     r.Input,
		Output:    r.Output,
		Recipe:    r.Recipe,
		Message:   r.Message(),
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

func written(op Operation, in, out string, recipe bool) *Report {
	return &Report{Status: StatusWritten, Operation: op, Input: in, Output: out, Recipe: recipe}
}

func skipped(op Operation, in string) *Report {
	return &Report{Status: StatusSkipped, Operation: op, Input: in}
}

func failed(op Operation, in, out string, err error) *Report {
	return &Report{Status: StatusFailed, Operation: op, Input: in, Output: out, Err: err}
}
