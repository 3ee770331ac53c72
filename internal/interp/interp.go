// SPDX-License-Identifier: MPL-2.0

package interp

import (
	"vaultrun-cli/internal/bot"
	"vaultrun-cli/internal/world"
)

// Interpreter bundles the pipeline for running source against one
// world/bot pair. It is single-use state: build a fresh one per run.
type Interpreter struct {
	world *world.World
	bot   *bot.Bot
	trace StepFunc
}

// New returns an interpreter for the given world and bot.
func New(w *world.World, b *bot.Bot) *Interpreter {
	return &Interpreter{world: w, bot: b}
}

// SetTrace installs a step observer called after each executed action.
func (i *Interpreter) SetTrace(fn StepFunc) { i.trace = fn }

// Run tokenizes, parses and executes source. The bool reports whether the
// bot reached the exit; the error reports tokenizer, parser or execution
// faults (a program that merely fails to reach the exit is (false, nil)).
func (i *Interpreter) Run(source string) (bool, error) {
	program, err := ParseSource(source)
	if err != nil {
		return false, err
	}
	return NewExecutor(i.bot, i.trace).Execute(program)
}
