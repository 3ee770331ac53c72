// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
)

// ActionableError is an error enriched with enough context to tell the
// user what was being attempted, on what, and what to try next.
//
// A zero ActionableError is not useful; build one through ErrorContext:
//
//	return issue.NewErrorContext().
//		WithOperation("load world file").
//		WithResource("./maze.cue").
//		WithSuggestion("Run 'vaultrun examples' to list the builtin worlds").
//		Wrap(err).
//		BuildError()
type ActionableError struct {
	// Operation is what was being attempted, phrased as a verb clause
	// ("launch interpreter", "parse program").
	Operation string
	// Resource is the thing the operation acted on (a path, an image
	// name, an address). May be empty.
	Resource string
	// Suggestions are concrete next steps for the user, in order of
	// likelihood to help.
	Suggestions []string
	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *ActionableError) Error() string {
	var sb strings.Builder
	sb.WriteString("failed to ")
	sb.WriteString(e.Operation)
	if e.Resource != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Resource)
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *ActionableError) Unwrap() error {
	return e.Cause
}

// HasSuggestions reports whether any suggestions were attached.
func (e *ActionableError) HasSuggestions() bool {
	return len(e.Suggestions) > 0
}

// Format renders the error for terminal output. With verbose set, the
// full cause chain is listed one frame per line.
func (e *ActionableError) Format(verbose bool) string {
	var sb strings.Builder
	sb.WriteString(e.Error())
	if e.HasSuggestions() {
		sb.WriteString("\n\nSuggestions:\n")
		for _, s := range e.Suggestions {
			sb.WriteString("  • ")
			sb.WriteString(s)
			sb.WriteString("\n")
		}
	}
	if verbose && e.Cause != nil {
		sb.WriteString("\nError chain:\n")
		depth := 1
		for cause := e.Cause; cause != nil; cause = errors.Unwrap(cause) {
			sb.WriteString(fmt.Sprintf("  %d. %s\n", depth, cause.Error()))
			depth++
		}
	}
	return sb.String()
}

// ErrorContext accumulates context for an ActionableError. Methods
// return the receiver so calls chain.
type ErrorContext struct {
	operation   string
	resource    string
	suggestions []string
	cause       error
}

// NewErrorContext starts an empty builder.
func NewErrorContext() *ErrorContext {
	return &ErrorContext{}
}

// WithOperation sets the attempted operation.
func (c *ErrorContext) WithOperation(op string) *ErrorContext {
	c.operation = op
	return c
}

// WithResource sets the resource the operation acted on.
func (c *ErrorContext) WithResource(res string) *ErrorContext {
	c.resource = res
	return c
}

// WithSuggestion appends a single suggestion.
func (c *ErrorContext) WithSuggestion(s string) *ErrorContext {
	c.suggestions = append(c.suggestions, s)
	return c
}

// WithSuggestions appends several suggestions at once.
func (c *ErrorContext) WithSuggestions(s ...string) *ErrorContext {
	c.suggestions = append(c.suggestions, s...)
	return c
}

// Wrap records the underlying cause.
func (c *ErrorContext) Wrap(err error) *ErrorContext {
	c.cause = err
	return c
}

// Build assembles the ActionableError.
func (c *ErrorContext) Build() *ActionableError {
	return &ActionableError{
		Operation:   c.operation,
		Resource:    c.resource,
		Suggestions: c.suggestions,
		Cause:       c.cause,
	}
}

// BuildError is Build typed as error, convenient in return statements.
func (c *ErrorContext) BuildError() error {
	return c.Build()
}

// WrapWithOperation wraps err with just an operation, for call sites
// that have nothing more to add. Returns nil when err is nil.
func WrapWithOperation(err error, op string) error {
	if err == nil {
		return nil
	}
	return &ActionableError{Operation: op, Cause: err}
}
