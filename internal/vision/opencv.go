//go:build gocv

package vision

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

type cvMat struct {
	mat gocv.Mat
}

func (m *cvMat) Size() (int, int) {
	return m.mat.Cols(), m.mat.Rows()
}

func (m *cvMat) Channels() int {
	return m.mat.Channels()
}

func (m *cvMat) ToImage() (image.Image, error) {
	return m.mat.ToImage()
}

func (m *cvMat) Close() error {
	return m.mat.Close()
}

type opencvPrimitives struct{}

// NewOpenCV creates the OpenCV-backed Primitives.
func NewOpenCV() (Primitives, error) {
	return &opencvPrimitives{}, nil
}

func (op *opencvPrimitives) Name() string {
	return "opencv"
}

func (op *opencvPrimitives) Decode(data []byte) (Mat, error) {
	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if mat.Empty() {
		mat.Close()
		return nil, errors.New("failed to decode image: empty image")
	}
	return &cvMat{mat: mat}, nil
}

func (op *opencvPrimitives) Resize(src Mat, width, height int) (Mat, error) {
	m, err := op.mat(src)
	if err != nil {
		return nil, err
	}
	dst := gocv.NewMat()
	gocv.Resize(m, &dst, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)
	return &cvMat{mat: dst}, nil
}

func (op *opencvPrimitives) Clone(src Mat) (Mat, error) {
	m, err := op.mat(src)
	if err != nil {
		return nil, err
	}
	return &cvMat{mat: m.Clone()}, nil
}

func (op *opencvPrimitives) InRange(src Mat, lower, upper Scalar) (Mat, error) {
	m, err := op.mat(src)
	if err != nil {
		return nil, err
	}
	mask := gocv.NewMat()
	gocv.InRangeWithScalar(m,
		gocv.NewScalar(lower[0], lower[1], lower[2], 0),
		gocv.NewScalar(upper[0], upper[1], upper[2], 0),
		&mask)
	return &cvMat{mat: mask}, nil
}

func (op *opencvPrimitives) ExternalContours(mask Mat) ([]Contour, error) {
	m, err := op.mat(mask)
	if err != nil {
		return nil, err
	}
	contours := gocv.FindContours(m, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer contours.Close()

	out := make([]Contour, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		out = append(out, Contour(contours.At(i).ToPoints()))
	}
	// FindContours lists external borders bottom-up
	sortRaster(out)
	return out, nil
}

func (op *opencvPrimitives) ContourArea(c Contour) float64 {
	if len(c) == 0 {
		return 0
	}
	pv := gocv.NewPointVectorFromPoints(c)
	defer pv.Close()
	return gocv.ContourArea(pv)
}

func (op *opencvPrimitives) FillContour(dst Mat, c Contour, fill color.RGBA) error {
	cm, ok := dst.(*cvMat)
	if !ok {
		return fmt.Errorf("opencv backend cannot use %T", dst)
	}
	pts := gocv.NewPointsVectorFromPoints([][]image.Point{c})
	defer pts.Close()
	// negative thickness fills the interior
	gocv.DrawContours(&cm.mat, pts, 0, fill, -1)
	return nil
}

func (op *opencvPrimitives) Grayscale(src Mat) (Mat, error) {
	m, err := op.mat(src)
	if err != nil {
		return nil, err
	}
	gray := gocv.NewMat()
	if m.Channels() == 1 {
		m.CopyTo(&gray)
	} else {
		gocv.CvtColor(m, &gray, gocv.ColorBGRToGray)
	}
	return &cvMat{mat: gray}, nil
}

func (op *opencvPrimitives) Histogram(gray Mat, bins int, lo, hi float64) (Histogram, error) {
	m, err := op.mat(gray)
	if err != nil {
		return nil, err
	}
	if bins <= 0 || hi <= lo {
		return nil, fmt.Errorf("invalid histogram layout: bins=%d range=[%g,%g)", bins, lo, hi)
	}

	hist := gocv.NewMat()
	defer hist.Close()
	noMask := gocv.NewMat()
	defer noMask.Close()
	gocv.CalcHist([]gocv.Mat{m}, []int{0}, noMask, &hist, []int{bins}, []float64{lo, hi}, false)
	if hist.Empty() {
		return nil, errors.New("histogram computation returned no bins")
	}

	out := make(Histogram, bins)
	for i := range out {
		out[i] = float64(hist.GetFloatAt(i, 0))
	}
	return out, nil
}

func (op *opencvPrimitives) CompareHist(a, b Histogram) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	ha := histMat(a)
	defer ha.Close()
	hb := histMat(b)
	defer hb.Close()
	return float64(gocv.CompareHist(ha, hb, gocv.HistCmpCorrel))
}

func (op *opencvPrimitives) mat(m Mat) (gocv.Mat, error) {
	cm, ok := m.(*cvMat)
	if !ok {
		return gocv.Mat{}, fmt.Errorf("opencv backend cannot use %T", m)
	}
	if cm.mat.Empty() {
		return gocv.Mat{}, errors.New("vision: empty mat")
	}
	return cm.mat, nil
}

func histMat(h Histogram) gocv.Mat {
	mat := gocv.NewMatWithSize(len(h), 1, gocv.MatTypeCV32F)
	for i, v := range h {
		mat.SetFloatAt(i, 0, float32(v))
	}
	return mat
}
