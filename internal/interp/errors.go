// SPDX-License-Identifier: MPL-2.0

package interp

import "errors"

// Sentinel errors for the documented failure classes. Callers detect them
// with errors.Is; the wrapped messages carry source positions.
var (
	// ErrInvalidToken marks characters the tokenizer cannot place.
	ErrInvalidToken = errors.New("invalid token")

	// ErrParse marks structural syntax errors.
	ErrParse = errors.New("parse error")

	// ErrNestingDepth marks programs nesting deeper than MaxNestingDepth.
	ErrNestingDepth = errors.New("nesting depth exceeded")

	// ErrLoopLimit marks LOOP counts above MaxLoopIterations.
	ErrLoopLimit = errors.New("loop limit exceeded")

	// ErrBudget marks runs that exceed MaxExecutions statements.
	ErrBudget = errors.New("execution budget exceeded")
)
