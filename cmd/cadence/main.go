// Command cadence is a CDCL SAT solver CLI: it loads a DIMACS CNF instance,
// searches for a satisfying assignment (optionally under assumptions), and
// reports the result on stdout in the conventional "c "/"s "/"v " comment,
// status, and value-line format.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/satlab-go/cadence/internal/config"
	"github.com/satlab-go/cadence/internal/sat"
	"github.com/satlab-go/cadence/parsers"
)

// Exit codes follow the SAT competition convention.
const (
	exitSatisfiable   = 10
	exitUnsatisfiable = 20
	exitUnknown       = 0
	exitError         = 1
)

var (
	flagAssume      []string
	flagDrat        string
	flagConfigFile  string
	flagMaxConflict int64
	flagTimeout     time.Duration
	flagMetricsAddr string
	flagGzip        bool
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cadence [instance file]",
		Short: "Solve a DIMACS CNF instance with a CDCL SAT solver",
		Args:  cobra.ExactArgs(1),
		RunE:  runSolve,
	}

	root.Flags().StringSliceVar(&flagAssume, "assume", nil, "assumption literals in DIMACS signed-integer form, e.g. --assume=1,-3")
	root.Flags().StringVar(&flagDrat, "drat", "", "write a DRAT proof certificate to this path")
	root.Flags().StringVar(&flagConfigFile, "config", "", "YAML file overriding solver tuning parameters")
	root.Flags().Int64Var(&flagMaxConflict, "max-conflicts", 0, "abort the search after this many conflicts (0 = unbounded)")
	root.Flags().DurationVar(&flagTimeout, "timeout", 0, "abort the search after this long (0 = unbounded)")
	root.Flags().StringVar(&flagMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while solving")
	root.Flags().BoolVar(&flagGzip, "gzip", false, "the instance file is gzip-compressed")

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.WithError(err).Error("cadence: fatal error")
		os.Exit(exitError)
	}
	os.Exit(exitCode)
}

// exitCode is set by runSolve right before it returns, since os.Exit cannot
// be called there directly without skipping the deferred DRAT/metrics
// cleanup.
var exitCode int

func parseAssumptions(raw []string) ([]sat.Literal, error) {
	lits := make([]sat.Literal, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		x, err := strconv.Atoi(s)
		if err != nil || x == 0 {
			return nil, fmt.Errorf("invalid assumption literal %q", s)
		}
		lits = append(lits, sat.FromDIMACS(x))
	}
	return lits, nil
}

func runSolve(cmd *cobra.Command, args []string) error {
	opts := sat.DefaultOptions()
	if flagConfigFile != "" {
		var err error
		opts, err = config.Load(flagConfigFile)
		if err != nil {
			return err
		}
	}
	if flagMaxConflict > 0 {
		opts.MaxConflicts = flagMaxConflict
	}
	if flagTimeout > 0 {
		opts.Timeout = flagTimeout
	}
	if flagDrat != "" {
		opts.DratPath = flagDrat
	}

	var reg prometheus.Registerer
	if flagMetricsAddr != "" {
		r := newMetricsServer(flagMetricsAddr)
		reg = r
		defer r.Close()
	}

	solver := sat.NewSolver(opts, log.StandardLogger(), reg)

	if opts.DratPath != "" {
		f, err := os.Create(opts.DratPath)
		if err != nil {
			return fmt.Errorf("could not create DRAT output %q: %w", opts.DratPath, err)
		}
		sink := sat.NewFileSink(f)
		defer sink.Close() // flushes the buffered proof, then closes f
		solver.SetCertificateSink(sink)
	}

	instanceFile := args[0]
	if err := parsers.LoadDIMACS(instanceFile, flagGzip, solver); err != nil {
		return fmt.Errorf("could not load instance: %w", err)
	}

	assumptions, err := parseAssumptions(flagAssume)
	if err != nil {
		return err
	}

	fmt.Printf("c variables: %d\n", solver.NumVars())

	t0 := time.Now()
	result := solver.Solve(assumptions)
	elapsed := time.Since(t0)

	fmt.Printf("c time (sec): %f\n", elapsed.Seconds())
	fmt.Printf("s %s\n", result.Status)

	switch result.Status {
	case sat.StatusSatisfiable:
		printModel(result.Model)
		exitCode = exitSatisfiable
	case sat.StatusUnsatisfiable:
		if len(result.Core) > 0 {
			printCore(result.Core)
		}
		exitCode = exitUnsatisfiable
	default:
		if result.Err != nil {
			fmt.Printf("c reason: %s\n", result.Err)
		}
		exitCode = exitUnknown
	}
	return nil
}

func printModel(model []bool) {
	sb := strings.Builder{}
	sb.WriteString("v")
	for v, val := range model {
		if val {
			fmt.Fprintf(&sb, " %d", v+1)
		} else {
			fmt.Fprintf(&sb, " -%d", v+1)
		}
	}
	sb.WriteString(" 0")
	fmt.Println(sb.String())
}

func printCore(core []sat.Literal) {
	sb := strings.Builder{}
	sb.WriteString("c core")
	for _, l := range core {
		if l.IsPositive() {
			fmt.Fprintf(&sb, " %d", l.VarID()+1)
		} else {
			fmt.Fprintf(&sb, " -%d", l.VarID()+1)
		}
	}
	fmt.Println(sb.String())
}
