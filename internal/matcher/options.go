package matcher

// Options holds the decision thresholds, in percent
type Options struct {
	// First-attempt scores below this are rejected outright
	RejectBelow float64
	// Scores at or above this are accepted
	AcceptAtOrAbove float64
}

// DefaultOptions returns the standard thresholds
func DefaultOptions() Options {
	return Options{
		RejectBelow:     30.0,
		AcceptAtOrAbove: 75.0,
	}
}

// WithThresholds overrides both thresholds
func (opts Options) WithThresholds(rejectBelow, acceptAtOrAbove float64) Options {
	opts.RejectBelow = rejectBelow
	opts.AcceptAtOrAbove = acceptAtOrAbove
	return opts
}
