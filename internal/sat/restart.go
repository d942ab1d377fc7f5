package sat

// EMA is an exponential moving average, used to track both the short-term
// and long-term trend of learned-clause LBD for the Glucose restart policy.
type EMA struct {
	decay float64
	value float64
	init  bool
}

// NewEMA returns an EMA with the given decay factor in (0, 1].
func NewEMA(decay float64) *EMA {
	return &EMA{decay: decay}
}

// Add folds x into the average. The first call seeds the average with x
// directly rather than blending it against zero.
func (e *EMA) Add(x float64) {
	if !e.init {
		e.value = x
		e.init = true
		return
	}
	e.value = e.decay*e.value + (1-e.decay)*x
}

// Val returns the current average.
func (e *EMA) Val() float64 {
	return e.value
}

// RestartPolicy implements Glucose-style restarts: a fast (short-window) LBD
// average is compared against a slow (long-window) one, and a restart is
// triggered whenever the fast average exceeds k times the slow one (with the
// default k = 0.8, that includes recent glue slightly better than the
// long-term trend). A blocking mechanism suppresses restarts while
// the trail is unusually large relative to its historical size, since
// restarting then would discard a lot of useful propagation work.
type RestartPolicy struct {
	fast *EMA
	slow *EMA

	trailFast *EMA

	k         float64 // restart trigger: fast/slow > k
	blockR    float64 // blocking trigger: trail size / trailFast > blockR
	minConfl  int     // conflicts required since last restart before one can trigger again
	sinceLast int
}

// NewRestartPolicy returns a policy with the Glucose-paper window sizes for
// the fast (32), slow (1e5), and trail (5000) averages; k and blockR are
// caller-supplied (defaults 0.8 and 1.4).
func NewRestartPolicy(k, blockR float64, minConfl int) *RestartPolicy {
	return &RestartPolicy{
		fast:      NewEMA(1 - 1.0/32),
		slow:      NewEMA(1 - 1.0/1e5),
		trailFast: NewEMA(1 - 1.0/5000),
		k:         k,
		blockR:    blockR,
		minConfl:  minConfl,
	}
}

// OnConflict records one conflict's LBD and current trail size. Call this
// exactly once per conflict, before consulting ShouldRestart.
func (rp *RestartPolicy) OnConflict(lbd int, trailSize int) {
	rp.fast.Add(float64(lbd))
	rp.slow.Add(float64(lbd))
	rp.trailFast.Add(float64(trailSize))
	rp.sinceLast++
}

// ShouldRestart reports whether the search should restart now. currentTrail
// is the trail size at the point of the decision (used for blocking).
func (rp *RestartPolicy) ShouldRestart(currentTrail int) bool {
	if rp.sinceLast < rp.minConfl {
		return false
	}
	if rp.blockR > 0 && rp.trailFast.Val() > 0 && float64(currentTrail) > rp.blockR*rp.trailFast.Val() {
		return false // blocked: trail unusually large, keep searching
	}
	return rp.fast.Val() > rp.k*rp.slow.Val()
}

// Reset clears the since-last-restart conflict counter. Call after an actual
// restart.
func (rp *RestartPolicy) Reset() {
	rp.sinceLast = 0
}
