package vision

import (
	"image"
	"math"
	"sort"
)

// ring lists the 8-neighbourhood clockwise (y grows downward), starting west.
var ring = [8]image.Point{
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

func ringIndex(d image.Point) int {
	for i, r := range ring {
		if r == d {
			return i
		}
	}
	return 0
}

// externalContours finds the outer borders of the 8-connected foreground
// regions of mask (any non-zero pixel). Regions lying inside a hole of
// another region are skipped. Contours come out in raster order of each
// region's first pixel.
func externalContours(mask *image.Gray) []Contour {
	b := mask.Bounds()
	w, h := b.Dx()+2, b.Dy()+2

	// one pixel of background padding keeps every lookup in range
	fg := make([]bool, w*h)
	for y := 0; y < b.Dy(); y++ {
		row := mask.Pix[y*mask.Stride : y*mask.Stride+b.Dx()]
		for x, v := range row {
			if v != 0 {
				fg[(y+1)*w+x+1] = true
			}
		}
	}

	outside := floodBackground(fg, w, h)
	labels := make([]int32, w*h)
	var next int32
	var contours []Contour
	queue := make([]int, 0, 64)

	for i := range fg {
		if !fg[i] || labels[i] != 0 {
			continue
		}
		next++
		labels[i] = next
		queue = append(queue[:0], i)
		for len(queue) > 0 {
			cur := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			cx, cy := cur%w, cur/w
			for _, d := range ring {
				nx, ny := cx+d.X, cy+d.Y
				if nx < 0 || ny < 0 || nx >= w || ny >= h {
					continue
				}
				j := ny*w + nx
				if fg[j] && labels[j] == 0 {
					labels[j] = next
					queue = append(queue, j)
				}
			}
		}

		// i is the region's first pixel in raster order, so its west
		// neighbour is background; a hole there means the region is nested.
		if !outside[i-1] {
			continue
		}
		contours = append(contours, traceBorder(fg, w, h, i, b.Min))
	}
	return contours
}

// floodBackground marks background reachable from the padded frame through
// 4-connected steps.
// topLeft returns the first point of c in raster order (smallest y, then x).
func topLeft(c Contour) image.Point {
	if len(c) == 0 {
		return image.Point{}
	}
	best := c[0]
	for _, p := range c[1:] {
		if p.Y < best.Y || (p.Y == best.Y && p.X < best.X) {
			best = p
		}
	}
	return best
}

// sortRaster orders contours by their top-left point so that every backend
// enumerates regions the same way.
func sortRaster(cs []Contour) {
	keys := make([]image.Point, len(cs))
	idx := make([]int, len(cs))
	for i, c := range cs {
		idx[i] = i
		keys[i] = topLeft(c)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		return ka.Y < kb.Y || (ka.Y == kb.Y && ka.X < kb.X)
	})
	sorted := make([]Contour, len(cs))
	for i, j := range idx {
		sorted[i] = cs[j]
	}
	copy(cs, sorted)
}

func floodBackground(fg []bool, w, h int) []bool {
	outside := make([]bool, w*h)
	stack := []int{0}
	outside[0] = true
	steps := [4]image.Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		cx, cy := cur%w, cur/w
		for _, d := range steps {
			nx, ny := cx+d.X, cy+d.Y
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			j := ny*w + nx
			if !fg[j] && !outside[j] {
				outside[j] = true
				stack = append(stack, j)
			}
		}
	}
	return outside
}

// traceBorder follows the outer border clockwise from start using Moore
// neighbour tracing. It stops when it is back at start about to take the
// first step again.
func traceBorder(fg []bool, w, h, start int, origin image.Point) Contour {
	s := image.Pt(start%w, start/w)
	offset := origin.Sub(image.Pt(1, 1))

	pts := []image.Point{s}
	p := s
	back := 0
	var first image.Point
	started := false
	limit := 4 * w * h

	for len(pts) <= limit {
		found := -1
		for i := 1; i <= 8; i++ {
			d := (back + i) % 8
			q := p.Add(ring[d])
			if fg[q.Y*w+q.X] {
				found = d
				break
			}
		}
		if found < 0 {
			// isolated pixel
			break
		}

		q := p.Add(ring[found])
		if started && p == s && q == first {
			pts = pts[:len(pts)-1]
			break
		}
		if !started {
			first = q
			started = true
		}

		prev := p.Add(ring[(found+7)%8])
		back = ringIndex(prev.Sub(q))
		p = q
		pts = append(pts, p)
	}

	out := make(Contour, len(pts))
	for i, pt := range pts {
		out[i] = pt.Add(offset)
	}
	return out
}

// polygonArea returns the absolute shoelace area of the closed polygon.
func polygonArea(c Contour) float64 {
	if len(c) < 3 {
		return 0
	}
	var sum float64
	for i := range c {
		a := c[i]
		b := c[(i+1)%len(c)]
		sum += float64(a.X)*float64(b.Y) - float64(b.X)*float64(a.Y)
	}
	return math.Abs(sum) / 2
}

// fillPolygon calls set for every pixel on the outline of c and inside it
// (even-odd rule), clipped to bounds.
func fillPolygon(c Contour, bounds image.Rectangle, set func(x, y int)) {
	n := len(c)
	if n == 0 {
		return
	}
	plot := func(x, y int) {
		if image.Pt(x, y).In(bounds) {
			set(x, y)
		}
	}

	for i := range c {
		drawLine(c[i], c[(i+1)%n], plot)
	}
	if n < 3 {
		return
	}

	minY, maxY := c[0].Y, c[0].Y
	for _, pt := range c[1:] {
		if pt.Y < minY {
			minY = pt.Y
		}
		if pt.Y > maxY {
			maxY = pt.Y
		}
	}

	xs := make([]float64, 0, 8)
	for y := minY; y <= maxY; y++ {
		xs = xs[:0]
		fy := float64(y)
		for i := 0; i < n; i++ {
			a, b := c[i], c[(i+1)%n]
			if a.Y == b.Y {
				continue
			}
			if (a.Y <= y && y < b.Y) || (b.Y <= y && y < a.Y) {
				x := float64(a.X) + (fy-float64(a.Y))*float64(b.X-a.X)/float64(b.Y-a.Y)
				xs = append(xs, x)
			}
		}
		sort.Float64s(xs)
		for k := 0; k+1 < len(xs); k += 2 {
			x0 := int(math.Ceil(xs[k]))
			x1 := int(math.Floor(xs[k+1]))
			for x := x0; x <= x1; x++ {
				plot(x, y)
			}
		}
	}
}

// drawLine plots a Bresenham segment from a to b inclusive.
func drawLine(a, b image.Point, plot func(x, y int)) {
	dx := abs(b.X - a.X)
	dy := -abs(b.Y - a.Y)
	sx, sy := 1, 1
	if a.X > b.X {
		sx = -1
	}
	if a.Y > b.Y {
		sy = -1
	}
	err := dx + dy
	x, y := a.X, a.Y
	for {
		plot(x, y)
		if x == b.X && y == b.Y {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
