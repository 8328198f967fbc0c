package arena

import "math"

// Point is a 2D coordinate
type Point struct {
	X float64
	Y float64
}

// Round snaps the point to the integer pixel grid
func (p Point) Round() Point {
	return Point{X: math.Round(p.X), Y: math.Round(p.Y)}
}

// Line is one tick worth of trail: the pixels between two positions,
// tagged with the girth the curve had when it was drawn.
type Line struct {
	Points []Point
	Girth  Girth
}

// Interpolate walks from origin towards target in unit steps along the dominant
// axis, rounding every sample. The target itself is not included, it becomes the
// origin of the next line. A zero-length move yields a single point.
func Interpolate(origin, target Point, girth Girth) Line {
	dx := target.X - origin.X
	dy := target.Y - origin.Y
	steps := math.Max(math.Max(math.Abs(dx), math.Abs(dy)), 1)

	stepX := dx / steps
	stepY := dy / steps
	points := make([]Point, 0, int(math.Ceil(steps)))
	for i := 0.0; i < steps; i++ {
		points = append(points, Point{
			X: math.Round(origin.X + i*stepX),
			Y: math.Round(origin.Y + i*stepY),
		})
	}
	return Line{Points: points, Girth: girth}
}

// BoundingBox is a discretised square hull: the center followed by the 8 ring
// points starting top-left and going clockwise. Every coordinate is rounded.
type BoundingBox [9]Point

// NewBoundingBox samples the box around p at the given distance
func NewBoundingBox(p Point, distance float64) BoundingBox {
	x, y := p.X, p.Y
	return BoundingBox{
		{math.Round(x), math.Round(y)},
		{math.Round(x - distance), math.Round(y - distance)},
		{math.Round(x), math.Round(y - distance)},
		{math.Round(x + distance), math.Round(y - distance)},
		{math.Round(x + distance), math.Round(y)},
		{math.Round(x + distance), math.Round(y + distance)},
		{math.Round(x), math.Round(y + distance)},
		{math.Round(x - distance), math.Round(y + distance)},
		{math.Round(x - distance), math.Round(y)},
	}
}

// Polygon returns the ring without the center, for drawing
func (b BoundingBox) Polygon() []Point {
	return b[1:]
}

// Xs projects the box onto the x axis
func (b BoundingBox) Xs() [9]float64 {
	var xs [9]float64
	for i, p := range b {
		xs[i] = p.X
	}
	return xs
}

// Ys projects the box onto the y axis
func (b BoundingBox) Ys() [9]float64 {
	var ys [9]float64
	for i, p := range b {
		ys[i] = p.Y
	}
	return ys
}

// Contains reports whether any box point equals p exactly
func (b BoundingBox) Contains(p Point) bool {
	for _, bp := range b {
		if bp == p {
			return true
		}
	}
	return false
}
