// Package analysis provides diagnostics that look beyond a single run's
// statistics:
//
//   - [PowerSpectrum], [DominantPeriod]: pulsation of a sampled statistic
//   - [Separation]: divergence of a run from a perturbed twin
//   - [RadialPhase], [ScatterToASCII]: the r–v_r phase diagram of a cloud
//   - [Sweep], [Best]: one parameter varied across runs
//
// A positive separation rate indicates chaotic dynamics:
//
//	s, err := analysis.Separation(ctx, cfg, 1e-6, 200)
//	if err == nil && s.Rate > 0 {
//	    // nearby initial clouds diverge
//	}
package analysis
