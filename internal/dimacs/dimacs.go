// Package dimacs implements a minimal hand-rolled DIMACS CNF reader with no
// dependency beyond the standard library. It exists alongside the
// github.com/rhartert/dimacs-backed loader in the parsers package; the CLI
// loads instances through the parsers package, not through this one.
package dimacs

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/satlab-go/cadence/internal/sat"
)

// Writer is the subset of *sat.Solver that LoadDIMACS needs, so that callers
// (and tests) can substitute a recording stub.
type Writer interface {
	AddVariable() int
	AddClause(lits []sat.Literal) bool
}

func reader(filename string, gzipped bool) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	rc := io.ReadCloser(file)
	if gzipped {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			return nil, err
		}
	}
	return rc, nil
}

// LoadDIMACS parses filename as a DIMACS CNF instance and loads its
// variables and clauses into w in order.
func LoadDIMACS(filename string, gzipped bool, w Writer) error {
	rc, err := reader(filename, gzipped)
	if err != nil {
		return fmt.Errorf("error reading file %q: %s", filename, err)
	}
	defer rc.Close()

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	nVars := 0
	nClauses := 0

	for {
		if !scanner.Scan() {
			return fmt.Errorf("header line not found")
		}
		line := scanner.Text()
		if line == "" || line[0] == 'c' {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) < 4 || parts[0] != "p" || parts[1] != "cnf" {
			return fmt.Errorf("instance of type %q is not supported", line)
		}
		nVars, err = strconv.Atoi(parts[2])
		if err != nil {
			return fmt.Errorf("could not parse header: %w", err)
		}
		nClauses, err = strconv.Atoi(parts[3])
		if err != nil {
			return fmt.Errorf("could not parse header: %w", err)
		}
		break
	}

	for i := 0; i < nVars; i++ {
		w.AddVariable()
	}

	litBuffer := make([]sat.Literal, 0, 32)
	for nClauses > 0 && scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == 'c' {
			continue
		}

		litBuffer = litBuffer[:0]
		for _, p := range strings.Fields(line) {
			x, err := strconv.Atoi(p)
			if err != nil {
				return fmt.Errorf("could not parse literal %q: %w", p, err)
			}
			switch {
			case x < 0:
				litBuffer = append(litBuffer, sat.NegativeLiteral(-x-1))
			case x > 0:
				litBuffer = append(litBuffer, sat.PositiveLiteral(x-1))
			default:
				// terminating 0, drop it
			}
		}

		if !w.AddClause(litBuffer) {
			return nil // problem proved UNSAT while loading; nothing more to read
		}
		nClauses--
	}

	return nil
}
