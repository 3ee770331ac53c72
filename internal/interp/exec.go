// SPDX-License-Identifier: MPL-2.0

package interp

import (
	"fmt"

	"vaultrun-cli/internal/bot"
)

// MaxExecutions caps the number of leaf statements a run may execute. The
// cap is charged at every executed action, including inside nested bodies.
const MaxExecutions = 1000

// StepFunc observes each executed leaf action with the bot state after it.
type StepFunc func(action Token, status bot.Status)

// Executor walks a parsed program against a bot.
type Executor struct {
	bot      *bot.Bot
	executed int
	trace    StepFunc
}

// NewExecutor returns an executor for one run. trace may be nil.
func NewExecutor(b *bot.Bot, trace StepFunc) *Executor {
	return &Executor{bot: b, trace: trace}
}

// Executed returns the number of leaf statements executed so far.
func (e *Executor) Executed() int { return e.executed }

// Execute runs the program. It returns true as soon as the bot stands on
// the exit when checked: after every top-level statement, and after every
// statement inside a loop body. A program that completes anywhere else
// returns false with no error; limit violations return an error.
func (e *Executor) Execute(program []Node) (bool, error) {
	for _, node := range program {
		if err := e.execNode(node); err != nil {
			return false, err
		}
		if e.bot.OnExit() {
			return true, nil
		}
	}
	return false, nil
}

func (e *Executor) execNode(node Node) error {
	switch n := node.(type) {
	case *Action:
		return e.execAction(n)
	case *If:
		return e.execIf(n)
	case *Loop:
		return e.execLoop(n)
	default:
		return fmt.Errorf("%w: unknown node %T", ErrParse, node)
	}
}

func (e *Executor) execAction(n *Action) error {
	if e.executed >= MaxExecutions {
		return fmt.Errorf("%w: %d statements", ErrBudget, e.executed)
	}

	switch n.Tok.Type {
	case MOVE:
		// A blocked move is not an error; the program just stays put.
		if _, err := e.bot.Move(); err != nil {
			return err
		}
	case LEFT:
		e.bot.TurnLeft()
	case RIGHT:
		e.bot.TurnRight()
	case PICK:
		e.bot.PickKey()
	case OPEN:
		e.bot.OpenDoor()
	case END:
		// END is a marker with no effect.
	}

	e.executed++
	if e.trace != nil {
		e.trace(n.Tok, e.bot.Status())
	}
	return nil
}

func (e *Executor) execIf(n *If) error {
	if e.eval(n.Cond) {
		for _, stmt := range n.Then {
			if err := e.execNode(stmt); err != nil {
				return err
			}
		}
		return nil
	}
	for _, stmt := range n.Else {
		if err := e.execNode(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) execLoop(n *Loop) error {
	for i := 0; i < n.Times; i++ {
		for _, stmt := range n.Body {
			if err := e.execNode(stmt); err != nil {
				return err
			}
			if e.bot.OnExit() {
				return nil
			}
		}
		if e.bot.OnExit() {
			return nil
		}
	}
	return nil
}

func (e *Executor) eval(c *Cond) bool {
	switch c.Op {
	case OpNot:
		return !e.eval(c.Left)
	case OpAnd:
		return e.eval(c.Left) && e.eval(c.Right)
	case OpOr:
		return e.eval(c.Left) || e.eval(c.Right)
	}

	switch c.Tok.Type {
	case FRONT_CLEAR:
		return e.bot.FrontClear()
	case ON_KEY:
		return e.bot.OnKey()
	case AT_DOOR:
		return e.bot.OnDoor()
	case AT_EXIT:
		return e.bot.OnExit()
	case HAVE_KEY:
		return e.bot.HaveKey()
	}
	return false
}
