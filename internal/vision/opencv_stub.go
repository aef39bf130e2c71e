//go:build !gocv

package vision

// NewOpenCV reports that the OpenCV backend is unavailable in this build.
func NewOpenCV() (Primitives, error) {
	return nil, ErrOpenCVUnavailable
}
