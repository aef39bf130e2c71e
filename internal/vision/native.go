package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"gonum.org/v1/gonum/stat"
)

// ErrClosedMat is returned when a Mat is used after Close.
var ErrClosedMat = errors.New("vision: mat is closed")

// nativeMat holds either a colour or a single-channel buffer.
type nativeMat struct {
	rgba *image.RGBA
	gray *image.Gray
}

func (m *nativeMat) Size() (int, int) {
	switch {
	case m.rgba != nil:
		return m.rgba.Rect.Dx(), m.rgba.Rect.Dy()
	case m.gray != nil:
		return m.gray.Rect.Dx(), m.gray.Rect.Dy()
	}
	return 0, 0
}

func (m *nativeMat) Channels() int {
	switch {
	case m.rgba != nil:
		return 3
	case m.gray != nil:
		return 1
	}
	return 0
}

func (m *nativeMat) ToImage() (image.Image, error) {
	switch {
	case m.rgba != nil:
		return cloneRGBA(m.rgba), nil
	case m.gray != nil:
		return cloneGray(m.gray), nil
	}
	return nil, ErrClosedMat
}

func (m *nativeMat) Close() error {
	m.rgba = nil
	m.gray = nil
	return nil
}

// nativePrimitives implements Primitives in pure Go
type nativePrimitives struct{}

// NewNative creates the pure-Go backend. It needs no system libraries.
func NewNative() Primitives {
	return &nativePrimitives{}
}

func (np *nativePrimitives) Name() string {
	return "native"
}

func (np *nativePrimitives) Decode(data []byte) (Mat, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("failed to decode image: empty bounds %v", bounds)
	}
	return &nativeMat{rgba: toRGBA(img)}, nil
}

func (np *nativePrimitives) Resize(src Mat, width, height int) (Mat, error) {
	m, err := np.mat(src)
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid target size %dx%d", width, height)
	}
	if w, h := m.Size(); w == width && h == height {
		return np.Clone(src)
	}
	if m.gray != nil {
		scaled := resize.Resize(uint(width), uint(height), m.gray, resize.Bilinear)
		return &nativeMat{gray: toGray(scaled)}, nil
	}
	scaled := resize.Resize(uint(width), uint(height), m.rgba, resize.Bilinear)
	return &nativeMat{rgba: toRGBA(scaled)}, nil
}

func (np *nativePrimitives) Clone(src Mat) (Mat, error) {
	m, err := np.mat(src)
	if err != nil {
		return nil, err
	}
	if m.gray != nil {
		return &nativeMat{gray: cloneGray(m.gray)}, nil
	}
	return &nativeMat{rgba: cloneRGBA(m.rgba)}, nil
}

func (np *nativePrimitives) InRange(src Mat, lower, upper Scalar) (Mat, error) {
	m, err := np.mat(src)
	if err != nil {
		return nil, err
	}
	width, height := m.Size()
	mask := image.NewGray(image.Rect(0, 0, width, height))

	inBand := func(v uint8, ch int) bool {
		f := float64(v)
		return f >= lower[ch] && f <= upper[ch]
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var hit bool
			if m.gray != nil {
				hit = inBand(m.gray.Pix[y*m.gray.Stride+x], 0)
			} else {
				i := y*m.rgba.Stride + x*4
				r, g, b := m.rgba.Pix[i], m.rgba.Pix[i+1], m.rgba.Pix[i+2]
				hit = inBand(b, 0) && inBand(g, 1) && inBand(r, 2)
			}
			if hit {
				mask.Pix[y*mask.Stride+x] = 255
			}
		}
	}
	return &nativeMat{gray: mask}, nil
}

func (np *nativePrimitives) ExternalContours(mask Mat) ([]Contour, error) {
	m, err := np.mat(mask)
	if err != nil {
		return nil, err
	}
	if m.gray == nil {
		return nil, errors.New("contour extraction needs a single-channel mask")
	}
	return externalContours(m.gray), nil
}

func (np *nativePrimitives) ContourArea(c Contour) float64 {
	return polygonArea(c)
}

func (np *nativePrimitives) FillContour(dst Mat, c Contour, fill color.RGBA) error {
	m, err := np.mat(dst)
	if err != nil {
		return err
	}
	if m.gray != nil {
		g := color.GrayModel.Convert(fill).(color.Gray)
		fillPolygon(c, m.gray.Rect, func(x, y int) {
			m.gray.SetGray(x, y, g)
		})
		return nil
	}
	fill.A = 255
	fillPolygon(c, m.rgba.Rect, func(x, y int) {
		m.rgba.SetRGBA(x, y, fill)
	})
	return nil
}

func (np *nativePrimitives) Grayscale(src Mat) (Mat, error) {
	m, err := np.mat(src)
	if err != nil {
		return nil, err
	}
	if m.gray != nil {
		return &nativeMat{gray: cloneGray(m.gray)}, nil
	}
	return &nativeMat{gray: toGray(m.rgba)}, nil
}

func (np *nativePrimitives) Histogram(gray Mat, bins int, lo, hi float64) (Histogram, error) {
	m, err := np.mat(gray)
	if err != nil {
		return nil, err
	}
	if m.gray == nil {
		return nil, errors.New("histogram needs a single-channel image")
	}
	if bins <= 0 || hi <= lo {
		return nil, fmt.Errorf("invalid histogram layout: bins=%d range=[%g,%g)", bins, lo, hi)
	}

	hist := make(Histogram, bins)
	scale := float64(bins) / (hi - lo)
	width, height := m.Size()
	for y := 0; y < height; y++ {
		row := m.gray.Pix[y*m.gray.Stride : y*m.gray.Stride+width]
		for _, v := range row {
			f := float64(v)
			// upper bound is exclusive, as in OpenCV's uniform histograms
			if f < lo || f >= hi {
				continue
			}
			idx := int((f - lo) * scale)
			if idx >= bins {
				idx = bins - 1
			}
			hist[idx]++
		}
	}
	return hist, nil
}

// CompareHist returns the Pearson correlation of the bin counts. When either
// histogram is flat the result is 1, matching OpenCV's HISTCMP_CORREL.
func (np *nativePrimitives) CompareHist(a, b Histogram) float64 {
	if len(a) != len(b) || len(a) < 2 {
		return 0
	}
	if stat.Variance(a, nil)*stat.Variance(b, nil) <= 0 {
		return 1
	}
	return stat.Correlation(a, b, nil)
}

func (np *nativePrimitives) mat(m Mat) (*nativeMat, error) {
	nm, ok := m.(*nativeMat)
	if !ok {
		return nil, fmt.Errorf("native backend cannot use %T", m)
	}
	if nm.rgba == nil && nm.gray == nil {
		return nil, ErrClosedMat
	}
	return nm, nil
}

func toRGBA(img image.Image) *image.RGBA {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Rect, img, bounds.Min, draw.Src)
	// decoded images are treated as 3-channel; drop alpha
	for i := 3; i < len(rgba.Pix); i += 4 {
		rgba.Pix[i] = 255
	}
	return rgba
}

func toGray(img image.Image) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(gray, gray.Rect, img, bounds.Min, draw.Src)
	return gray
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := &image.RGBA{
		Pix:    make([]uint8, len(src.Pix)),
		Stride: src.Stride,
		Rect:   src.Rect,
	}
	copy(dst.Pix, src.Pix)
	return dst
}

func cloneGray(src *image.Gray) *image.Gray {
	dst := &image.Gray{
		Pix:    make([]uint8, len(src.Pix)),
		Stride: src.Stride,
		Rect:   src.Rect,
	}
	copy(dst.Pix, src.Pix)
	return dst
}
