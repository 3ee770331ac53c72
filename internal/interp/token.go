// SPDX-License-Identifier: MPL-2.0

// Package interp implements the Vault Runner language: a tokenizer, a
// recursive-descent parser with hard structural limits, and an executor
// driving a bot through a world. The language has exactly twenty keywords;
// programs are sequences of actions, IF conditionals over sensor readings
// and bounded LOOP repetitions.
package interp

import "fmt"

// TokenType identifies a lexical token kind.
type TokenType int

// Token kinds. The keyword kinds mirror the language inventory; COLON,
// NUMBER and IDENT cover the remaining lexemes.
const (
	// Actions.
	MOVE TokenType = iota
	LEFT
	RIGHT
	PICK
	OPEN

	// Control structure.
	IF
	ELSE
	ENDIF
	LOOP
	ENDLOOP
	TIMES
	END

	// Sensors.
	FRONT_CLEAR
	ON_KEY
	AT_DOOR
	AT_EXIT
	HAVE_KEY

	// Logical operators.
	AND
	OR
	NOT

	COLON
	NUMBER
	IDENT
	EOF
)

var tokenNames = map[TokenType]string{
	MOVE: "MOVE", LEFT: "LEFT", RIGHT: "RIGHT", PICK: "PICK", OPEN: "OPEN",
	IF: "IF", ELSE: "ELSE", ENDIF: "ENDIF", LOOP: "LOOP", ENDLOOP: "ENDLOOP",
	TIMES: "TIMES", END: "END",
	FRONT_CLEAR: "FRONT_CLEAR", ON_KEY: "ON_KEY", AT_DOOR: "AT_DOOR",
	AT_EXIT: "AT_EXIT", HAVE_KEY: "HAVE_KEY",
	AND: "AND", OR: "OR", NOT: "NOT",
	COLON: ":", NUMBER: "NUMBER", IDENT: "IDENT", EOF: "EOF",
}

// String returns the token kind name.
func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// maxKeywords caps the language inventory. The keyword table is checked
// against it at init time so the language cannot silently grow.
const maxKeywords = 20

// keywords maps upper-cased source words to keyword token kinds.
var keywords = map[string]TokenType{
	"MOVE": MOVE, "LEFT": LEFT, "RIGHT": RIGHT, "PICK": PICK, "OPEN": OPEN,
	"IF": IF, "ELSE": ELSE, "ENDIF": ENDIF, "LOOP": LOOP, "ENDLOOP": ENDLOOP,
	"TIMES": TIMES, "END": END,
	"FRONT_CLEAR": FRONT_CLEAR, "ON_KEY": ON_KEY, "AT_DOOR": AT_DOOR,
	"AT_EXIT": AT_EXIT, "HAVE_KEY": HAVE_KEY,
	"AND": AND, "OR": OR, "NOT": NOT,
}

// sensors is the subset of keywords usable as condition primaries.
var sensors = map[TokenType]bool{
	FRONT_CLEAR: true, ON_KEY: true, AT_DOOR: true, AT_EXIT: true, HAVE_KEY: true,
}

func init() {
	if len(keywords) > maxKeywords {
		panic(fmt.Sprintf("keyword count (%d) exceeds %d limit", len(keywords), maxKeywords))
	}
}

// Token is a lexeme with its source position (1-based line and column).
type Token struct {
	Type   TokenType
	Value  string
	Line   int
	Column int
}

// String formats the token for error messages.
func (t Token) String() string {
	return fmt.Sprintf("%s %q at line %d, column %d", t.Type, t.Value, t.Line, t.Column)
}

// IsSensor reports whether the token kind is a sensor primary.
func (t Token) IsSensor() bool { return sensors[t.Type] }
