// SPDX-License-Identifier: MPL-2.0

package interp

// Node is a parsed statement: an Action, an If or a Loop.
type Node interface {
	node()
}

type (
	// Action is a leaf statement: MOVE, LEFT, RIGHT, PICK, OPEN or END.
	Action struct {
		Tok Token
	}

	// If is a conditional with an optional else branch.
	If struct {
		Tok  Token
		Cond *Cond
		Then []Node
		Else []Node
	}

	// Loop repeats its body a fixed number of times.
	Loop struct {
		Tok   Token
		Times int
		Body  []Node
	}
)

func (*Action) node() {}
func (*If) node()     {}
func (*Loop) node()   {}

// CondOp is a logical connective in a condition tree.
type CondOp string

// Condition connectives; the empty op marks a sensor leaf.
const (
	OpNone CondOp = ""
	OpNot  CondOp = "NOT"
	OpAnd  CondOp = "AND"
	OpOr   CondOp = "OR"
)

// Cond is a condition tree node. Leaves (OpNone) carry a sensor token; NOT
// uses only Left; AND and OR use both children.
type Cond struct {
	Tok   Token
	Op    CondOp
	Left  *Cond
	Right *Cond
}
