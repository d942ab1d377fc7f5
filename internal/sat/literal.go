package sat

import "fmt"

// Literal represents a literal, which either represent a boolean variable or
// its negation. The low bit carries the sign; the remaining bits carry the
// variable index.
type Literal int32

// LitUndef is the reserved sentinel for "no literal".
const LitUndef Literal = -1

// LitError is the reserved sentinel for a malformed literal.
const LitError Literal = -2

// PositiveLiteral returns the positive literal of variable v.
func PositiveLiteral(v int) Literal {
	return Literal(v * 2)
}

// NegativeLiteral returns the negative literal of variable v.
func NegativeLiteral(v int) Literal {
	return Literal(v*2 + 1)
}

// FromDIMACS converts a nonzero signed DIMACS integer into a Literal. The
// caller must not pass 0.
func FromDIMACS(x int) Literal {
	if x < 0 {
		return NegativeLiteral(-x - 1)
	}
	return PositiveLiteral(x - 1)
}

// VarID returns the ID of the literal's variable.
func (l Literal) VarID() int {
	return int(l) / 2
}

// IsPositive returns true if and only if the literal represent the value of
// its boolean variable (i.e. not its negation)
func (l Literal) IsPositive() bool {
	return l&1 == 0
}

// Opposite returns the opposite literal.
func (l Literal) Opposite() Literal {
	return l ^ 1
}

func (l Literal) String() string {
	if l == LitUndef {
		return "undef"
	}
	if l.IsPositive() {
		return fmt.Sprintf("%d", l.VarID())
	}
	return fmt.Sprintf("!%d", l.VarID())
}
