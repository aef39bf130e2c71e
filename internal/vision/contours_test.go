package vision

import (
	"image"
	"testing"
)

func createTestMask(w, h int, on func(x, y int) bool) *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if on(x, y) {
				mask.Pix[y*mask.Stride+x] = 255
			}
		}
	}
	return mask
}

func inRect(r image.Rectangle) func(x, y int) bool {
	return func(x, y int) bool { return image.Pt(x, y).In(r) }
}

func TestExternalContours_Rectangle(t *testing.T) {
	r := image.Rect(5, 5, 14, 14) // 9x9
	mask := createTestMask(30, 30, inRect(r))

	contours := externalContours(mask)
	if len(contours) != 1 {
		t.Fatalf("Expected 1 contour, got %d", len(contours))
	}
	c := contours[0]
	if len(c) != 32 {
		t.Errorf("Expected 32 border points, got %d", len(c))
	}
	if c[0] != image.Pt(5, 5) {
		t.Errorf("Expected contour to start at the top-left pixel, got %v", c[0])
	}
	for _, p := range c {
		onBorder := p.X == 5 || p.X == 13 || p.Y == 5 || p.Y == 13
		if !p.In(r) || !onBorder {
			t.Errorf("Point %v is not on the rectangle border", p)
		}
	}
	if area := polygonArea(c); area != 64 {
		t.Errorf("Expected area 64, got %.1f", area)
	}
}

func TestExternalContours_Empty(t *testing.T) {
	mask := createTestMask(10, 10, func(x, y int) bool { return false })
	if contours := externalContours(mask); len(contours) != 0 {
		t.Errorf("Expected no contours, got %d", len(contours))
	}
}

func TestExternalContours_SinglePixelAndLine(t *testing.T) {
	mask := createTestMask(10, 10, func(x, y int) bool {
		return (x == 2 && y == 2) || (y == 6 && (x == 4 || x == 5))
	})
	contours := externalContours(mask)
	if len(contours) != 2 {
		t.Fatalf("Expected 2 contours, got %d", len(contours))
	}
	if len(contours[0]) != 1 || contours[0][0] != image.Pt(2, 2) {
		t.Errorf("Expected single-point contour at (2,2), got %v", contours[0])
	}
	if len(contours[1]) != 2 {
		t.Errorf("Expected 2-point contour for the line, got %v", contours[1])
	}
	for i, c := range contours {
		if area := polygonArea(c); area != 0 {
			t.Errorf("Contour %d: expected zero area, got %.1f", i, area)
		}
	}
}

func TestExternalContours_RasterOrder(t *testing.T) {
	low := image.Rect(2, 10, 6, 14)
	high := image.Rect(20, 2, 24, 6)
	mask := createTestMask(30, 20, func(x, y int) bool {
		return image.Pt(x, y).In(low) || image.Pt(x, y).In(high)
	})

	contours := externalContours(mask)
	if len(contours) != 2 {
		t.Fatalf("Expected 2 contours, got %d", len(contours))
	}
	if contours[0][0] != high.Min {
		t.Errorf("Expected upper region first, got start %v", contours[0][0])
	}
	if contours[1][0] != low.Min {
		t.Errorf("Expected lower region second, got start %v", contours[1][0])
	}
}

func TestSortRaster(t *testing.T) {
	regions := []image.Rectangle{
		image.Rect(2, 10, 6, 14),
		image.Rect(20, 2, 24, 6),
		image.Rect(10, 2, 14, 6),
		image.Rect(25, 15, 28, 18),
	}
	mask := createTestMask(30, 20, func(x, y int) bool {
		for _, r := range regions {
			if image.Pt(x, y).In(r) {
				return true
			}
		}
		return false
	})
	want := externalContours(mask)

	// bottom-up, the way OpenCV enumerates external borders
	got := make([]Contour, len(want))
	for i, c := range want {
		got[len(want)-1-i] = c
	}
	// start a contour mid-boundary so the key is not just its first point
	got[0] = append(Contour{}, got[0][3:]...)
	got[0] = append(got[0], want[len(want)-1][:3]...)

	sortRaster(got)
	for i := range want {
		if topLeft(got[i]) != topLeft(want[i]) {
			t.Errorf("Position %d: expected region at %v, got %v", i, topLeft(want[i]), topLeft(got[i]))
		}
	}
	if topLeft(got[0]) != image.Pt(10, 2) {
		t.Errorf("Expected the upper-left region first, got %v", topLeft(got[0]))
	}
}

func TestExternalContours_SkipsNestedRegions(t *testing.T) {
	outer := image.Rect(2, 2, 22, 22)
	hole := image.Rect(4, 4, 20, 20)
	island := image.Rect(10, 10, 13, 13)
	mask := createTestMask(25, 25, func(x, y int) bool {
		p := image.Pt(x, y)
		return (p.In(outer) && !p.In(hole)) || p.In(island)
	})

	contours := externalContours(mask)
	if len(contours) != 1 {
		t.Fatalf("Expected only the outer ring, got %d contours", len(contours))
	}
	if area := polygonArea(contours[0]); area != 19*19 {
		t.Errorf("Expected outer area %d, got %.1f", 19*19, area)
	}
}

func TestExternalContours_TouchesFrame(t *testing.T) {
	mask := createTestMask(12, 8, func(x, y int) bool { return true })
	contours := externalContours(mask)
	if len(contours) != 1 {
		t.Fatalf("Expected 1 contour, got %d", len(contours))
	}
	if area := polygonArea(contours[0]); area != 11*7 {
		t.Errorf("Expected area %d, got %.1f", 11*7, area)
	}
}

func TestExternalContours_Offset(t *testing.T) {
	base := createTestMask(20, 20, inRect(image.Rect(8, 8, 12, 12)))
	sub := base.SubImage(image.Rect(5, 5, 20, 20)).(*image.Gray)

	contours := externalContours(sub)
	if len(contours) != 1 {
		t.Fatalf("Expected 1 contour, got %d", len(contours))
	}
	if contours[0][0] != image.Pt(8, 8) {
		t.Errorf("Expected coordinates in the mask's own space, got %v", contours[0][0])
	}
}

func TestPolygonArea(t *testing.T) {
	tests := []struct {
		name string
		c    Contour
		want float64
	}{
		{"empty", nil, 0},
		{"two points", Contour{{0, 0}, {4, 0}}, 0},
		{"triangle", Contour{{0, 0}, {4, 0}, {0, 3}}, 6},
		{"counter-clockwise square", Contour{{0, 0}, {0, 5}, {5, 5}, {5, 0}}, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := polygonArea(tt.c); got != tt.want {
				t.Errorf("Expected %.1f, got %.1f", tt.want, got)
			}
		})
	}
}

func TestFillPolygon_RectangleExact(t *testing.T) {
	r := image.Rect(5, 5, 14, 14)
	mask := createTestMask(30, 30, inRect(r))
	c := externalContours(mask)[0]

	filled := make(map[image.Point]bool)
	fillPolygon(c, mask.Bounds(), func(x, y int) { filled[image.Pt(x, y)] = true })

	if len(filled) != 81 {
		t.Errorf("Expected 81 filled pixels, got %d", len(filled))
	}
	for p := range filled {
		if !p.In(r) {
			t.Errorf("Filled pixel %v outside the region", p)
		}
	}
}

func TestFillPolygon_CoversDisk(t *testing.T) {
	disk := func(x, y int) bool {
		dx, dy := x-15, y-15
		return dx*dx+dy*dy <= 36
	}
	mask := createTestMask(30, 30, disk)
	contours := externalContours(mask)
	if len(contours) != 1 {
		t.Fatalf("Expected 1 contour, got %d", len(contours))
	}

	filled := make(map[image.Point]bool)
	fillPolygon(contours[0], mask.Bounds(), func(x, y int) { filled[image.Pt(x, y)] = true })

	for y := 0; y < 30; y++ {
		for x := 0; x < 30; x++ {
			if disk(x, y) && !filled[image.Pt(x, y)] {
				t.Errorf("Disk pixel (%d,%d) not filled", x, y)
			}
		}
	}
}

func TestFillPolygon_ClipsToBounds(t *testing.T) {
	c := Contour{{-5, -5}, {4, -5}, {4, 4}, {-5, 4}}
	bounds := image.Rect(0, 0, 3, 3)
	count := 0
	fillPolygon(c, bounds, func(x, y int) {
		if !image.Pt(x, y).In(bounds) {
			t.Errorf("Plotted (%d,%d) outside bounds", x, y)
		}
		count++
	})
	if count == 0 {
		t.Error("Expected in-bounds pixels to be plotted")
	}
}
