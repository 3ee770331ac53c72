// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/errors"
)

// ValidationError is one schema violation, located by file and value path.
// FormatError returns it whenever a CUE error carries exactly one
// violation, so callers can pick the location out with errors.As.
type ValidationError struct {
	// FilePath names the file being validated.
	FilePath string

	// CUEPath locates the invalid value in JSON-path notation, "rows[2]".
	// Empty when the violation has no position, as with top-level syntax
	// errors.
	CUEPath string

	// Message is the violation text with any leading path repetition
	// stripped.
	Message string
}

func (e *ValidationError) Error() string {
	if e.CUEPath != "" {
		return fmt.Sprintf("%s: %s: %s", e.FilePath, e.CUEPath, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.FilePath, e.Message)
}

// FormatError rewrites a CUE error as "<file>: <json-path>: <message>"
// lines, e.g.
//
//	maze.cue: rows[2]: value exceeds maximum length
//	config.cue: container.image: expected string, got int
//
// Multiple violations collapse into one error listing each on its own line.
// Non-CUE errors are wrapped with the file path unchanged.
func FormatError(err error, filePath string) error {
	if err == nil {
		return nil
	}

	cueErrors := errors.Errors(err)
	if len(cueErrors) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	violations := make([]*ValidationError, 0, len(cueErrors))
	for _, e := range cueErrors {
		pathStr := formatPath(errors.Path(e))
		msg := e.Error()

		// CUE sometimes repeats the path inside the message itself.
		if pathStr != "" && strings.HasPrefix(msg, pathStr) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, pathStr), ":"))
		}

		violations = append(violations, &ValidationError{
			FilePath: filePath,
			CUEPath:  pathStr,
			Message:  msg,
		})
	}

	if len(violations) == 1 {
		return violations[0]
	}

	lines := make([]string, len(violations))
	for i, v := range violations {
		if v.CUEPath == "" {
			lines[i] = v.Message
		} else {
			lines[i] = v.CUEPath + ": " + v.Message
		}
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}

// formatPath renders CUE's flat error path (["rows", "2"]) in JSON-path
// notation ("rows[2]"). Numeric elements become indices except in leading
// position, where there is nothing to index into.
func formatPath(path []string) string {
	var b strings.Builder
	for i, part := range path {
		switch {
		case i > 0 && isDigits(part):
			b.WriteString("[")
			b.WriteString(part)
			b.WriteString("]")
		case i > 0:
			b.WriteString(".")
			b.WriteString(part)
		default:
			b.WriteString(part)
		}
	}
	return b.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// CheckFileSize rejects data larger than maxSize bytes, before any CUE
// compilation touches it.
func CheckFileSize(data []byte, maxSize int64, filename string) error {
	if int64(len(data)) > maxSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes",
			filename, len(data), maxSize)
	}
	return nil
}
