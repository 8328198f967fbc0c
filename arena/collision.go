package arena

import "time"

// collisionSet is a per-tick bit set of eliminated curve indices
type collisionSet uint64

// maxCurves is the largest roster a collisionSet can describe
const maxCurves = 64

func (s *collisionSet) add(i int) {
	*s |= 1 << uint(i)
}

func (s collisionSet) has(i int) bool {
	return s&(1<<uint(i)) != 0
}

// CheckBorderCollision reports whether any box point lies outside the bounds.
// Points exactly on the border are inside.
func CheckBorderCollision(b ArenaBounds, box BoundingBox) bool {
	for _, p := range box {
		if p.X < b.XMin || p.X > b.XMax || p.Y < b.YMin || p.Y > b.YMax {
			return true
		}
	}
	return false
}

// AxisCollision tells which side of an axis a box crossed
type AxisCollision int

const (
	AxisNone AxisCollision = iota
	AxisMin
	AxisMax
)

// CheckBorderAxisCollision checks one axis projection of a box against [lo, hi]
func CheckBorderAxisCollision(lo, hi float64, values [9]float64) AxisCollision {
	for _, v := range values {
		if v < lo {
			return AxisMin
		}
		if v > hi {
			return AxisMax
		}
	}
	return AxisNone
}

// CheckLineCollision reports whether the box touches the line. Every line
// pixel is grown by the line's own girth, so thick trails are hit at their
// edge and not only at their center. Matching is exact on the pixel grid.
func CheckLineCollision(box BoundingBox, line Line) bool {
	spread := line.Girth.Radius() - 1
	for _, p := range line.Points {
		for _, lp := range NewBoundingBox(p, spread) {
			if box.Contains(lp) {
				return true
			}
		}
	}
	return false
}

// checkTrailCollision scans curve j's trail for a hit with curve i's box.
// When i == j the most recent lines are skipped, see Girth.selfGrace.
func checkTrailCollision(box BoundingBox, self bool, girth Girth, lines []Line) bool {
	count := len(lines)
	if self {
		count = max(count-girth.selfGrace(), 0)
	}
	for _, line := range lines[:count] {
		if CheckLineCollision(box, line) {
			return true
		}
	}
	return false
}

// detectCollisions is the read-only scan over all curves for one tick.
// Nothing is mutated here, so the result does not depend on the order
// the curves are visited in.
func detectCollisions(curves []*Curve, bounds ArenaBounds, dt time.Duration) collisionSet {
	var hits collisionSet
	for i, c := range curves {
		if !c.Alive || !c.TrailActive {
			continue
		}
		box := c.BoundingBox(dt)

		if CheckBorderCollision(bounds, box) {
			hits.add(i)
			continue
		}

		for j, other := range curves {
			if checkTrailCollision(box, i == j, c.Girth, other.Lines) {
				hits.add(i)
				break
			}
		}
	}
	return hits
}
