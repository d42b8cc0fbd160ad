package volatility

// Snapshot maps each computable method to its estimate for one series and
// one quoted IV. Methods that cannot be computed from the series are absent;
// callers display those as N/A via the Methods enumeration.
type Snapshot map[Method]Estimate

// BuildSnapshot runs every default estimator over the series and records
// the quoted implied volatility (when positive) under MethodImplied.
func BuildSnapshot(series Series, quotedIV float64) Snapshot {
	snap := make(Snapshot, len(methodOrder))
	if quotedIV > 0 {
		snap[MethodImplied] = Estimate{Method: MethodImplied, Value: quotedIV}
	}
	for _, est := range DefaultEstimators() {
		e, err := est.Calculate(series)
		if err != nil {
			continue
		}
		snap[est.Method()] = e
	}
	return snap
}

// Deltas returns, for each computed estimate, its difference from the
// quoted IV (estimate minus IV, percent points). The implied entry itself
// is skipped.
func (s Snapshot) Deltas() map[Method]float64 {
	iv, ok := s[MethodImplied]
	if !ok {
		return nil
	}
	deltas := make(map[Method]float64, len(s))
	for m, e := range s {
		if m == MethodImplied {
			continue
		}
		deltas[m] = e.Value - iv.Value
	}
	return deltas
}
