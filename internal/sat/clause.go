package sat

import "strings"

// ClauseRef is a non-owning reference to a clause stored in an Allocator. It
// is a handle, never a pointer: the allocator is free to move the backing
// Clause around during Reorganize without invalidating any ClauseRef held
// elsewhere, as long as that reference is rewritten from the compaction map.
type ClauseRef int32

// RefNone is the reserved "no clause" reference, used where a reason is
// absent (decisions and top-level units).
const RefNone ClauseRef = -1

// Clause is an ordered sequence of literals plus the header metadata needed
// by the watcher scheme, conflict analysis and learned-clause reduction.
type Clause struct {
	literals []Literal

	activity float64 // secondary ranking key for learned-clause reduction
	lbd      int32    // literal-block distance, always <= len(literals)

	// prevPos remembers where the last search for a replacement watch left
	// off, so that Propagate does not always re-scan a long clause from the
	// start. Always in [2, len(literals)] (len == "no previous position").
	prevPos int

	learnt    bool
	deleted   bool // tombstone; memory reclaimed only by Allocator.Reorganize
	protected bool // not eligible for removal by the next Database.Reduce
}

// Size returns the clause's literal count.
func (c *Clause) Size() int {
	return len(c.literals)
}

// Lit returns the i-th literal of the clause.
func (c *Clause) Lit(i int) Literal {
	return c.literals[i]
}

// Literals returns the clause's literals. Callers must not retain the slice
// across a call that might mutate or delete the clause.
func (c *Clause) Literals() []Literal {
	return c.literals
}

// Learnt reports whether the clause was produced by conflict analysis.
func (c *Clause) Learnt() bool {
	return c.learnt
}

// LBD returns the clause's literal-block distance.
func (c *Clause) LBD() int {
	return int(c.lbd)
}

// SetLBD updates the clause's literal-block distance. It does not clamp:
// callers keep the value at or below Size().
func (c *Clause) SetLBD(lbd int) {
	c.lbd = int32(lbd)
}

// Activity returns the clause's ranking score.
func (c *Clause) Activity() float64 {
	return c.activity
}

// IsProtected reports whether the clause survives the next reduction pass
// regardless of its LBD.
func (c *Clause) IsProtected() bool {
	return c.protected
}

// SetProtected marks or unmarks the clause as protected.
func (c *Clause) SetProtected(p bool) {
	c.protected = p
}

// swap exchanges the clause's i-th and j-th literals.
func (c *Clause) swap(i, j int) {
	c.literals[i], c.literals[j] = c.literals[j], c.literals[i]
}

func (c *Clause) String() string {
	if len(c.literals) == 0 {
		return "Clause[]"
	}
	sb := strings.Builder{}
	sb.WriteString("Clause[")
	sb.WriteString(c.literals[0].String())
	for _, l := range c.literals[1:] {
		sb.WriteByte(' ')
		sb.WriteString(l.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
