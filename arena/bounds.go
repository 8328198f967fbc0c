package arena

// ArenaBounds is the playable rectangle in viewport coordinates
type ArenaBounds struct {
	XMin, XMax float64
	YMin, YMax float64
}

// NewBounds builds bounds of size viewport*mul around center
func NewBounds(center Point, w, h float64, mul [2]float64) ArenaBounds {
	sw, sh := w*mul[0], h*mul[1]
	return ArenaBounds{
		XMin: center.X - sw*0.5,
		XMax: center.X + sw*0.5,
		YMin: center.Y - sh*0.5,
		YMax: center.Y + sh*0.5,
	}
}

// NewCenteredBounds builds bounds centered in the viewport
func NewCenteredBounds(w, h float64, mul [2]float64) ArenaBounds {
	return NewBounds(Point{X: w * 0.5, Y: h * 0.5}, w, h, mul)
}

// StagingBounds is the small preview rectangle shown next to the setup menu
func StagingBounds(w, h float64) ArenaBounds {
	return NewBounds(Point{X: w * StagingCenter[0], Y: h * StagingCenter[1]}, w, h, StagingSize)
}

// PlayBounds is the round rectangle, larger for bigger rosters
func PlayBounds(w, h float64, players int) ArenaBounds {
	mul := PlaySizeSmall
	if players >= 4 {
		mul = PlaySizeLarge
	}
	return NewCenteredBounds(w, h, mul)
}

// Width of the arena
func (b ArenaBounds) Width() float64 {
	return b.XMax - b.XMin
}

// Height of the arena
func (b ArenaBounds) Height() float64 {
	return b.YMax - b.YMin
}

// Contains reports whether p lies inside or exactly on the border
func (b ArenaBounds) Contains(p Point) bool {
	return p.X >= b.XMin && p.X <= b.XMax && p.Y >= b.YMin && p.Y <= b.YMax
}

// RandomPos returns a uniform random point within the bounds
func (b ArenaBounds) RandomPos(r Rand) Point {
	return Point{
		X: randRange(r, b.XMin, b.XMax),
		Y: randRange(r, b.YMin, b.YMax),
	}
}
