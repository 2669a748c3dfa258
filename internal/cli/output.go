package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Process exit codes. A Failure resolution is an ordinary result of solve,
// so it shares ExitFailure with an unmet --check rather than with broken
// input.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // unsolvable conflicts or unmet expectations
	ExitCommandError = 2 // bad input, config or database
)

// Error codes reported in CLIError.Code and the text "Error [..]" prefix.
const (
	ErrCodeGeneric         = "E001"
	ErrCodeScenario        = "E002" // scenario file missing or invalid
	ErrCodeConfig          = "E003" // solver config missing or invalid
	ErrCodeDatabase        = "E004" // database open, read or write failed
	ErrCodeNotFound        = "E005" // snapshot or transaction log not found
	ErrCodeUnsolvable      = "E010"
	ErrCodeExpectationFail = "E011"
)

// ExitError carries the process exit code for a command failure.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// NewExitError returns an ExitError with no cause.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError returns an ExitError wrapping err.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps err to a process exit code. Errors without an ExitError
// in their chain exit with ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter writes command results to stdout as text or as a
// CLIResponse envelope. Diagnostics go through slog, never through here.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the JSON envelope of every --format json result.
type CLIResponse struct {
	Status string    `json:"status"` // "ok" or "error"
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

// CLIError is the error half of CLIResponse.
type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success writes data.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error writes a command error and logs it at debug level.
func (f *OutputFormatter) Error(code, message string) error {
	slog.Debug("command failed", "code", code, "error", message)
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message},
		})
	}
	_, err := fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return err
}
