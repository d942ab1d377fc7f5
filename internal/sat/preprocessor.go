package sat

// Preprocessor is the seam for formula simplification applied between
// clause loading and search. It is given the full clause set before any
// variable is ever assigned and returns the (possibly rewritten) set to
// load instead.
type Preprocessor interface {
	Preprocess(numVars int, clauses [][]Literal) (int, [][]Literal)
}

// NopPreprocessor returns its input unchanged. It is the default when the
// caller configures no preprocessing stage.
type NopPreprocessor struct{}

func (NopPreprocessor) Preprocess(numVars int, clauses [][]Literal) (int, [][]Literal) {
	return numVars, clauses
}
