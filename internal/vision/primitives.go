// Package vision defines the image-processing capabilities the iris pipeline
// relies on and provides the backends that supply them.
package vision

import (
	"errors"
	"image"
	"image/color"
)

// ErrOpenCVUnavailable is returned by NewOpenCV when the binary was built
// without the gocv tag.
var ErrOpenCVUnavailable = errors.New("opencv backend not compiled in (rebuild with -tags gocv)")

// Mat is an image buffer owned by the backend that created it. Callers must
// Close every Mat they receive.
type Mat interface {
	Size() (width, height int)
	Channels() int
	// ToImage copies the buffer into a Go image.
	ToImage() (image.Image, error)
	Close() error
}

// Contour is an ordered boundary of one connected region.
type Contour []image.Point

// Histogram holds bin counts in bin order.
type Histogram []float64

// Sum returns the total count across bins.
func (h Histogram) Sum() float64 {
	var total float64
	for _, v := range h {
		total += v
	}
	return total
}

// Scalar is a per-channel value in B, G, R order.
type Scalar [3]float64

// Primitives is the vision collaborator. Any image library that can provide
// these operations can back the pipeline.
type Primitives interface {
	// Decode turns encoded image bytes into a 3-channel 8-bit buffer.
	Decode(data []byte) (Mat, error)
	// Resize scales src to exactly width x height.
	Resize(src Mat, width, height int) (Mat, error)
	// Clone returns an independent copy of src.
	Clone(src Mat) (Mat, error)
	// InRange returns a single-channel mask that is set where every channel
	// of src lies within [lower, upper] inclusive.
	InRange(src Mat, lower, upper Scalar) (Mat, error)
	// ExternalContours returns the outermost borders of the connected
	// regions of mask, ignoring holes and anything nested inside them.
	ExternalContours(mask Mat) ([]Contour, error)
	// ContourArea returns the zeroth-order moment of the contour polygon.
	ContourArea(c Contour) float64
	// FillContour paints the contour and its interior onto dst.
	FillContour(dst Mat, c Contour, fill color.RGBA) error
	// Grayscale converts src to a single channel.
	Grayscale(src Mat) (Mat, error)
	// Histogram counts gray values into bins uniform over [lo, hi).
	Histogram(gray Mat, bins int, lo, hi float64) (Histogram, error)
	// CompareHist returns the correlation coefficient of a and b.
	CompareHist(a, b Histogram) float64
	// Name identifies the backend in logs.
	Name() string
}
