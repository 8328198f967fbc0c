package arena

// Girth is the thickness class of a curve and its trail
type Girth int

// Girth levels, smallest to largest
const (
	GirthTiny Girth = iota
	GirthSmall
	GirthNormal
	GirthLarge
	GirthLarger
	GirthChungus
)

// GirthLevels is the number of girth levels
const GirthLevels = int(GirthChungus) + 1

var girthRadius = [GirthLevels]float64{1.0, 1.5, 2.0, 4.0, 6.0, 8.0}

var girthNames = [GirthLevels]string{"tiny", "small", "normal", "large", "larger", "chungus"}

// Radius is the bounding radius used for collision and trail boxes
func (g Girth) Radius() float64 {
	return girthRadius[g.clamp()]
}

// Increment returns the next larger girth, saturating at the maximum
func (g Girth) Increment() Girth {
	if g >= GirthChungus {
		return GirthChungus
	}
	return g + 1
}

// Decrement returns the next smaller girth, saturating at the minimum
func (g Girth) Decrement() Girth {
	if g <= GirthTiny {
		return GirthTiny
	}
	return g - 1
}

func (g Girth) String() string {
	return girthNames[g.clamp()]
}

func (g Girth) clamp() Girth {
	switch {
	case g < GirthTiny:
		return GirthTiny
	case g > GirthChungus:
		return GirthChungus
	}
	return g
}

// selfGrace is how many of a curve's own most recent lines are skipped in the
// self collision scan. Thicker curves need more, their box reaches further back.
// Scaled by the integer radius rather than the level index on purpose.
func (g Girth) selfGrace() int {
	return SelfGraceLines * max(int(g.Radius())-1, 0)
}
