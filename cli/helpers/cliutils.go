package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// CliError represents a CLI-specific error with enhanced context
type CliError struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   string         `json:"details,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	cause     error
}

func (e *CliError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CliError) Unwrap() error {
	return e.cause
}

// NewCliError creates a new CLI error with context
func NewCliError(code, message string, details ...string) *CliError {
	err := &CliError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Context:   make(map[string]any),
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// WrapCliError creates a CLI error whose details and chain come from cause
func WrapCliError(code, message string, cause error) *CliError {
	err := NewCliError(code, message)
	if cause != nil {
		err.Details = cause.Error()
		err.cause = cause
	}
	return err
}

// WithContext adds context to the error
func (e *CliError) WithContext(key string, value any) *CliError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// FormatError renders err for the given mode
func FormatError(err error, mode Mode, color bool) string {
	if err == nil {
		return ""
	}
	if mode == ModeJSON {
		return formatErrorJSON(err)
	}
	return formatErrorText(err, color)
}

func formatErrorJSON(err error) string {
	response := map[string]any{"error": err.Error(), "details": ""}
	var cliErr *CliError
	if errors.As(err, &cliErr) {
		response = map[string]any{
			"code":    cliErr.Code,
			"error":   cliErr.Message,
			"details": cliErr.Details,
		}
	}
	data, marshalErr := json.Marshal(response)
	if marshalErr != nil {
		return `{"error": "JSON marshaling failed", "details": ""}`
	}
	return string(data)
}

func formatErrorText(err error, color bool) string {
	message, details := err.Error(), ""
	var cliErr *CliError
	if errors.As(err, &cliErr) {
		message, details = cliErr.Message, cliErr.Details
	}
	if !color {
		if details != "" {
			return fmt.Sprintf("Error: %s\nDetails: %s", message, details)
		}
		return "Error: " + message
	}
	result := errorStyle.Render("Error: " + message)
	if details != "" {
		result += "\n" + detailStyle.Render("Details: "+details)
	}
	return result
}

// OutputError writes the formatted error to w
func OutputError(w io.Writer, err error, mode Mode, color bool) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, FormatError(err, mode, color))
}

// Pluralize returns singular or plural form based on count
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

var (
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)
	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)
)
