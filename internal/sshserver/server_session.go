// SPDX-License-Identifier: MPL-2.0

package sshserver

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"vaultrun-cli/internal/bot"
	"vaultrun-cli/internal/examples"
	"vaultrun-cli/internal/interp"
	"vaultrun-cli/internal/world"
	"vaultrun-cli/pkg/types"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
)

// maxProgramBytes caps how much program text a session may stream in. The
// interpreter rejects anything oversized long before this; the cap guards
// the server against clients that never stop sending.
const maxProgramBytes = 64 * 1024

// clearScreen moves the cursor home and wipes the client terminal between
// animation frames.
const clearScreen = "\x1b[2J\x1b[H"

// sessionMiddleware routes every session to a bundled example, a named
// world, or the usage screen. Session exit codes mirror the CLI contract.
func (s *Server) sessionMiddleware() wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(sess ssh.Session) {
			start := s.clock.Now()
			code := s.handleSession(sess)
			s.logger.Info("session finished",
				"user", sess.User(),
				"remote", sess.RemoteAddr().String(),
				"command", strings.Join(sess.Command(), " "),
				"exit", code,
				"duration", s.clock.Since(start),
			)
			_ = sess.Exit(code) //nolint:errcheck // Terminal operation; error non-critical
		}
	}
}

// handleSession interprets the session command line:
//
//	(nothing)      usage screen on a terminal, or stdin program on the
//	               default world when piped
//	NAME           bundled example, or a world fed from stdin
//
// Anything longer is a usage error.
func (s *Server) handleSession(sess ssh.Session) int {
	args := sess.Command()

	switch len(args) {
	case 0:
		if _, _, isPty := sess.Pty(); isPty {
			s.writeUsage(sess)
			return int(types.ExitSuccess)
		}
		return s.runStreamed(sess, s.cfg.DefaultWorld)

	case 1:
		if ex, ok := examples.Get(args[0]); ok {
			return s.runProgram(sess, ex.World, ex.Program)
		}
		return s.runStreamed(sess, args[0])

	default:
		fmt.Fprintln(sess.Stderr(), "vaultrun: expected at most one argument (an example or world name)")
		return int(types.ExitUsage)
	}
}

// runStreamed reads a program from the session's stdin and runs it on the
// named world.
func (s *Server) runStreamed(sess ssh.Session, worldName string) int {
	if _, ok := world.PresetByName(worldName); !ok {
		s.writeUnknownName(sess, worldName)
		return int(types.ExitUsage)
	}

	source, err := readProgram(sess)
	if err != nil {
		fmt.Fprintf(sess.Stderr(), "vaultrun: %v\n", err)
		return int(types.ExitUsage)
	}

	return s.runProgram(sess, worldName, source)
}

// runProgram executes source on the named preset world. On a terminal the
// world is redrawn after every step; otherwise only the final render is
// written.
func (s *Server) runProgram(sess ssh.Session, worldName, source string) int {
	preset, ok := world.PresetByName(worldName)
	if !ok {
		s.writeUnknownName(sess, worldName)
		return int(types.ExitUsage)
	}

	w, err := preset.Build()
	if err != nil {
		fmt.Fprintf(sess.Stderr(), "vaultrun: building world %q: %v\n", worldName, err)
		return int(types.ExitInternal)
	}

	x, y := w.BotPosition()
	b := bot.New(w, x, y, w.BotDirection())
	itp := interp.New(w, b)

	_, winCh, isPty := sess.Pty()
	if isPty {
		// Drain resize events so the session's request loop never blocks.
		go func() {
			for range winCh {
			}
		}()
		itp.SetTrace(func(interp.Token, bot.Status) {
			_, _ = io.WriteString(sess, clearScreen)
			writeFrame(sess, w.Render(), isPty)
			time.Sleep(s.cfg.FrameDelay)
		})
	}

	reached, runErr := itp.Run(source)
	if runErr != nil {
		fmt.Fprintf(sess.Stderr(), "vaultrun: program failed: %v\n", runErr)
		return int(types.ExitRunFailure)
	}

	if isPty {
		_, _ = io.WriteString(sess, clearScreen)
	}
	writeFrame(sess, w.Render(), isPty)

	if !reached {
		fmt.Fprintf(sess.Stderr(), "vaultrun: bot did not reach the exit (steps used: %d)\n", b.Steps())
		return int(types.ExitRunFailure)
	}

	writeFrame(sess, fmt.Sprintf("Bot reached the exit in %d steps.\n", b.Steps()), isPty)
	return int(types.ExitSuccess)
}

// writeUsage prints the session grammar together with the bundled examples
// and worlds.
func (s *Server) writeUsage(sess ssh.Session) {
	var sb strings.Builder

	sb.WriteString("Vault Runner over SSH\n")
	sb.WriteString("\n")
	sb.WriteString("Run a bundled example:\n")
	sb.WriteString("  ssh -p PORT HOST corridor-walk\n")
	sb.WriteString("\n")
	sb.WriteString("Pipe a program of your own at a world:\n")
	sb.WriteString("  ssh -p PORT HOST corridor < program.bot\n")
	fmt.Fprintf(&sb, "  ssh -p PORT HOST < program.bot        (runs on the %s world)\n", s.cfg.DefaultWorld)
	sb.WriteString("\n")

	sb.WriteString("Examples:\n")
	for _, ex := range examples.All() {
		fmt.Fprintf(&sb, "  %-15s %s (world: %s)\n", ex.Name, ex.Description, ex.World)
	}
	sb.WriteString("\n")

	sb.WriteString("Worlds:\n")
	fmt.Fprintf(&sb, "  %s\n", strings.Join(presetNames(), ", "))

	writeFrame(sess, sb.String(), true)
}

// writeUnknownName reports a name that is neither an example nor a world.
func (s *Server) writeUnknownName(sess ssh.Session, name string) {
	fmt.Fprintf(sess.Stderr(), "vaultrun: unknown name %q\n", name)
	fmt.Fprintf(sess.Stderr(), "examples: %s\n", strings.Join(examples.Names(), ", "))
	fmt.Fprintf(sess.Stderr(), "worlds: %s\n", strings.Join(presetNames(), ", "))
}

// readProgram drains the session's stdin up to the size cap.
func readProgram(sess ssh.Session) (string, error) {
	data, err := io.ReadAll(io.LimitReader(sess, maxProgramBytes+1))
	if err != nil {
		return "", fmt.Errorf("reading program from stdin: %w", err)
	}
	if len(data) > maxProgramBytes {
		return "", fmt.Errorf("program exceeds %d bytes", maxProgramBytes)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.New("empty program on stdin (pipe a program file or name an example)")
	}
	return string(data), nil
}

// writeFrame writes text to the session. A client terminal in raw mode
// needs CRLF line endings, so bare newlines are converted on PTY sessions.
func writeFrame(w io.Writer, text string, isPty bool) {
	if isPty {
		text = strings.ReplaceAll(text, "\n", "\r\n")
	}
	_, _ = io.WriteString(w, text)
}

func presetNames() []string {
	presets := world.Presets()
	names := make([]string, 0, len(presets))
	for _, p := range presets {
		names = append(names, p.Name)
	}
	return names
}
