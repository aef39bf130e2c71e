// Package preprocess turns an iris photograph into a pupil-masked grayscale
// intensity histogram.
package preprocess

import (
	"context"
	"fmt"
	"image/color"
	"time"

	apperrors "go-iris-match/internal/errors"
	"go-iris-match/internal/logger"
	"go-iris-match/internal/vision"

	"github.com/sirupsen/logrus"
)

// ImageSource supplies encoded image bytes for a location
type ImageSource interface {
	FetchImage(ctx context.Context, location string) ([]byte, error)
}

// PupilCandidate is a contour considered for masking, with its index in
// enumeration order.
type PupilCandidate struct {
	Index   int
	Contour vision.Contour
	Area    float64
}

var pupilFill = color.RGBA{A: 255}

// Preprocessor normalizes images through a vision backend
type Preprocessor struct {
	vision vision.Primitives
	source ImageSource
	opts   Options
}

// NewPreprocessor creates a preprocessor
func NewPreprocessor(primitives vision.Primitives, source ImageSource, opts Options) *Preprocessor {
	return &Preprocessor{
		vision: primitives,
		source: source,
		opts:   opts,
	}
}

// Normalize loads the image at location, resizes it, masks the pupil,
// converts it to grayscale and returns its intensity histogram. Failing to
// fetch or decode the image yields an image_load AppError.
func (p *Preprocessor) Normalize(ctx context.Context, location string) (vision.Histogram, error) {
	start := time.Now()

	data, err := p.source.FetchImage(ctx, location)
	if err != nil {
		return nil, apperrors.NewImageLoadError(fmt.Sprintf("cannot load image %q", location), err)
	}

	raw, err := p.vision.Decode(data)
	if err != nil {
		return nil, apperrors.NewImageLoadError(fmt.Sprintf("cannot decode image %q", location), err)
	}
	defer raw.Close()

	resized, err := p.vision.Resize(raw, p.opts.Width, p.opts.Height)
	if err != nil {
		return nil, apperrors.NewInternalError("resize failed", err)
	}
	defer resized.Close()

	masked, candidate, err := p.MaskPupil(resized)
	if err != nil {
		return nil, err
	}
	defer masked.Close()

	gray, err := p.vision.Grayscale(masked)
	if err != nil {
		return nil, apperrors.NewInternalError("grayscale conversion failed", err)
	}
	defer gray.Close()

	hist, err := p.vision.Histogram(gray, p.opts.HistogramBins, p.opts.HistogramMin, p.opts.HistogramMax)
	if err != nil {
		return nil, apperrors.NewInternalError("histogram computation failed", err)
	}

	fields := logrus.Fields{
		"location":        location,
		"backend":         p.vision.Name(),
		"pupil_found":     candidate != nil,
		"processing_time": time.Since(start),
	}
	if candidate != nil {
		fields["pupil_index"] = candidate.Index
		fields["pupil_area"] = candidate.Area
	}
	logger.WithFields(fields).Debug("Image normalized")

	return hist, nil
}

// MaskPupil returns a copy of img with the pupil filled black, and the
// candidate that was filled. When no contour is large enough the copy is
// unmodified and the candidate is nil. img itself is never changed.
func (p *Preprocessor) MaskPupil(img vision.Mat) (vision.Mat, *PupilCandidate, error) {
	mask, err := p.vision.InRange(img, p.opts.PupilLower, p.opts.PupilUpper)
	if err != nil {
		return nil, nil, apperrors.NewInternalError("pupil band threshold failed", err)
	}
	defer mask.Close()

	contours, err := p.vision.ExternalContours(mask)
	if err != nil {
		return nil, nil, apperrors.NewInternalError("contour extraction failed", err)
	}

	out, err := p.vision.Clone(img)
	if err != nil {
		return nil, nil, apperrors.NewInternalError("image copy failed", err)
	}

	candidate := p.SelectPupil(contours)
	logger.WithFields(logrus.Fields{
		"contours":    len(contours),
		"pupil_found": candidate != nil,
	}).Debug("Pupil search finished")

	if candidate == nil {
		return out, nil, nil
	}
	if err := p.vision.FillContour(out, candidate.Contour, pupilFill); err != nil {
		out.Close()
		return nil, nil, apperrors.NewInternalError("pupil fill failed", err)
	}
	return out, candidate, nil
}

// SelectPupil returns the first contour, in enumeration order, whose area
// exceeds the minimum. Later and larger contours are not considered.
func (p *Preprocessor) SelectPupil(contours []vision.Contour) *PupilCandidate {
	for i, c := range contours {
		area := p.vision.ContourArea(c)
		if area > p.opts.MinPupilArea {
			return &PupilCandidate{Index: i, Contour: c, Area: area}
		}
	}
	return nil
}
