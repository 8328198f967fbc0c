package arena

import (
	"math"
	"testing"
)

func TestInterpolateExcludesTarget(t *testing.T) {
	l := Interpolate(Point{0, 0}, Point{3, 0}, GirthNormal)
	want := []Point{{0, 0}, {1, 0}, {2, 0}}
	if len(l.Points) != len(want) {
		t.Fatalf("len = %d, want %d (%v)", len(l.Points), len(want), l.Points)
	}
	for i := range want {
		if l.Points[i] != want[i] {
			t.Fatalf("point %d = %v, want %v", i, l.Points[i], want[i])
		}
	}
	if l.Girth != GirthNormal {
		t.Fatalf("girth = %s, want normal", l.Girth)
	}
}

func TestInterpolateZeroLength(t *testing.T) {
	l := Interpolate(Point{4.4, 5.6}, Point{4.4, 5.6}, GirthTiny)
	if len(l.Points) != 1 {
		t.Fatalf("len = %d, want 1", len(l.Points))
	}
	if l.Points[0] != (Point{4, 6}) {
		t.Fatalf("point = %v, want {4 6}", l.Points[0])
	}
}

func TestInterpolateSubPixelMove(t *testing.T) {
	l := Interpolate(Point{10, 10}, Point{10.5, 10.2}, GirthNormal)
	if len(l.Points) != 1 || l.Points[0] != (Point{10, 10}) {
		t.Fatalf("points = %v, want [{10 10}]", l.Points)
	}
}

func TestBoundingBoxLayout(t *testing.T) {
	b := NewBoundingBox(Point{10, 10}, 2)
	want := BoundingBox{
		{10, 10},
		{8, 8}, {10, 8}, {12, 8},
		{12, 10},
		{12, 12}, {10, 12}, {8, 12},
		{8, 10},
	}
	if b != want {
		t.Fatalf("box = %v, want %v", b, want)
	}
	if len(b.Polygon()) != 8 {
		t.Fatalf("polygon has %d points, want 8", len(b.Polygon()))
	}
}

func TestBoundingBoxRounds(t *testing.T) {
	b := NewBoundingBox(Point{10.4, 10.6}, 1.5)
	if b[0] != (Point{10, 11}) {
		t.Fatalf("center = %v, want {10 11}", b[0])
	}
	if b[1] != (Point{9, 9}) {
		t.Fatalf("top-left = %v, want {9 9}", b[1])
	}
	if b[5] != (Point{12, 12}) {
		t.Fatalf("bottom-right = %v, want {12 12}", b[5])
	}
}

func TestGirthSaturates(t *testing.T) {
	if g := GirthChungus.Increment(); g != GirthChungus {
		t.Fatalf("chungus.Increment() = %s", g)
	}
	if g := GirthTiny.Decrement(); g != GirthTiny {
		t.Fatalf("tiny.Decrement() = %s", g)
	}
	g := GirthTiny
	for i := 0; i < GirthLevels; i++ {
		g = g.Increment()
	}
	if g != GirthChungus {
		t.Fatalf("after %d increments = %s, want chungus", GirthLevels, g)
	}
}

func TestSelfGraceGrowsWithGirth(t *testing.T) {
	cases := []struct {
		g    Girth
		want int
	}{
		{GirthTiny, 0},
		{GirthSmall, 0},
		{GirthNormal, 15},
		{GirthLarge, 45},
		{GirthChungus, 105},
	}
	for _, c := range cases {
		if got := c.g.selfGrace(); got != c.want {
			t.Errorf("%s.selfGrace() = %d, want %d", c.g, got, c.want)
		}
	}
}

func TestBoundsContainsBorder(t *testing.T) {
	b := ArenaBounds{XMin: 0, XMax: 100, YMin: 0, YMax: 50}
	for _, p := range []Point{{0, 0}, {100, 50}, {50, 25}} {
		if !b.Contains(p) {
			t.Fatalf("%v should be inside %v", p, b)
		}
	}
	if b.Contains(Point{100.01, 25}) {
		t.Fatal("point past XMax reported inside")
	}
}

func TestStagingAndPlayBounds(t *testing.T) {
	s := StagingBounds(1000, 800)
	if !near(s.XMin, 525) || !near(s.XMax, 875) || !near(s.YMin, 180) || !near(s.YMax, 620) {
		t.Fatalf("staging bounds = %+v", s)
	}
	small := PlayBounds(1000, 800, 2)
	large := PlayBounds(1000, 800, 4)
	if large.Width() <= small.Width() || large.Height() <= small.Height() {
		t.Fatalf("4 player bounds %+v not larger than 2 player bounds %+v", large, small)
	}
	if !near(small.XMin+small.XMax, 1000) || !near(small.YMin+small.YMax, 800) {
		t.Fatalf("play bounds %+v not centered", small)
	}
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
