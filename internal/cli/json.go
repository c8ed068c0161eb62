package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/semtext/semtext/internal/annotation"
)

// Global JSON output flag
var jsonOutput bool

// Response is the standard JSON envelope for all CLI output.
type Response struct {
	OK       bool       `json:"ok"`
	Data     any        `json:"data,omitempty"`
	Error    *ErrorInfo `json:"error,omitempty"`
	Warnings []Warning  `json:"warnings,omitempty"`
	Meta     *Meta      `json:"meta,omitempty"`
}

// ErrorInfo contains structured error information.
type ErrorInfo struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Warning represents a non-fatal warning.
type Warning struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Property string `json:"property,omitempty"`
	Value    string `json:"value,omitempty"`
	File     string `json:"file,omitempty"`
}

// Meta contains metadata about the response.
type Meta struct {
	Count       int   `json:"count,omitempty"`
	QueryTimeMs int64 `json:"query_time_ms,omitempty"`
}

// stdout is where command output goes; tests point it elsewhere.
var stdout io.Writer = os.Stdout

// outputJSON outputs the response as JSON.
func outputJSON(resp Response) {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(resp)
}

// outputSuccess outputs a successful JSON response.
func outputSuccess(data any, warnings []Warning, meta *Meta) {
	outputJSON(Response{OK: true, Data: data, Warnings: warnings, Meta: meta})
}

// handleError handles an error appropriately based on output mode.
// In JSON mode, outputs a JSON error. In text mode, returns the error for Cobra.
func handleError(code string, err error, suggestion string) error {
	if jsonOutput {
		outputJSON(Response{Error: &ErrorInfo{Code: code, Message: err.Error(), Suggestion: suggestion}})
		return errReported
	}
	if suggestion != "" {
		return fmt.Errorf("%w\n\n%s", err, suggestion)
	}
	return err
}

// errReported signals a failure whose JSON envelope was already written.
var errReported = errors.New("error reported")

// diagnosticWarnings maps parse diagnostics to warning codes.
func diagnosticWarnings(file string, diags []annotation.Diagnostic) []Warning {
	var out []Warning
	for _, d := range diags {
		code := WarnInvalidValue
		switch d.Key {
		case annotation.KeySinkRejected:
			code = WarnSinkRejected
		case annotation.KeyNestingTooDeep:
			code = WarnNestingTooDeep
		case annotation.KeyRecursionLimit:
			code = WarnRecursionLimit
		}
		out = append(out, Warning{Code: code, Message: d.Message, Property: d.Property, Value: d.Value, File: file})
	}
	return out
}
