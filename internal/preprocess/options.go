package preprocess

import "go-iris-match/internal/vision"

// Options controls how an iris image is reduced to a histogram
type Options struct {
	// Canonical size every image is resized to
	Width  int
	Height int

	// Per-channel band, inclusive, that counts as pupil-dark
	PupilLower vision.Scalar
	PupilUpper vision.Scalar

	// A contour must enclose strictly more than this to be the pupil
	MinPupilArea float64

	// Histogram layout, uniform over [HistogramMin, HistogramMax)
	HistogramBins int
	HistogramMin  float64
	HistogramMax  float64
}

// DefaultOptions returns the standard normalization settings
func DefaultOptions() Options {
	return Options{
		Width:         320,
		Height:        280,
		PupilLower:    vision.Scalar{30, 30, 30},
		PupilUpper:    vision.Scalar{80, 80, 80},
		MinPupilArea:  50,
		HistogramBins: 10,
		HistogramMin:  0,
		HistogramMax:  255,
	}
}

// WithSize sets the canonical image size
func (opts Options) WithSize(width, height int) Options {
	opts.Width = width
	opts.Height = height
	return opts
}

// WithPupilBand sets the same dark band on every channel
func (opts Options) WithPupilBand(lower, upper float64) Options {
	opts.PupilLower = vision.Scalar{lower, lower, lower}
	opts.PupilUpper = vision.Scalar{upper, upper, upper}
	return opts
}

// WithMinPupilArea sets the area a pupil contour must exceed
func (opts Options) WithMinPupilArea(area float64) Options {
	opts.MinPupilArea = area
	return opts
}

// WithHistogram sets the histogram layout
func (opts Options) WithHistogram(bins int, lo, hi float64) Options {
	opts.HistogramBins = bins
	opts.HistogramMin = lo
	opts.HistogramMax = hi
	return opts
}
