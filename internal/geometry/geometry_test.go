package geometry

import "testing"

func TestSideOpposite(t *testing.T) {
	cases := map[Side]Side{
		Top:    Bottom,
		Right:  Left,
		Bottom: Top,
		Left:   Right,
	}
	for side, want := range cases {
		if got := side.Opposite(); got != want {
			t.Errorf("Opposite(%s) = %s, want %s", side, got, want)
		}
	}
}

func TestFieldPlaceSiblings(t *testing.T) {
	p := FieldPlace{X: 2, Y: -3}

	if got := p.Sibling(Top); got != (FieldPlace{X: 2, Y: -4}) {
		t.Errorf("Top sibling = %v", got)
	}
	if got := p.Sibling(Right); got != (FieldPlace{X: 3, Y: -3}) {
		t.Errorf("Right sibling = %v", got)
	}
	if got := p.Sibling(Bottom); got != (FieldPlace{X: 2, Y: -2}) {
		t.Errorf("Bottom sibling = %v", got)
	}
	if got := p.Sibling(Left); got != (FieldPlace{X: 1, Y: -3}) {
		t.Errorf("Left sibling = %v", got)
	}
}

func TestFieldPlaceStringRoundTrip(t *testing.T) {
	p := FieldPlace{X: -4, Y: 7}
	s := p.String()
	if s != "-4,7" {
		t.Fatalf("String() = %q, want \"-4,7\"", s)
	}

	parsed, err := ParseFieldPlace(s)
	if err != nil {
		t.Fatalf("ParseFieldPlace failed: %v", err)
	}
	if parsed != p {
		t.Errorf("round trip mismatch: %v != %v", parsed, p)
	}

	if _, err := ParseFieldPlace("1,2,3"); err == nil {
		t.Error("expected error for malformed place")
	}
}

func TestSideTowards(t *testing.T) {
	p := FieldPlace{X: 0, Y: 0}

	side, ok := p.SideTowards(FieldPlace{X: 0, Y: -1})
	if !ok || side != Top {
		t.Errorf("SideTowards (0,-1) = %s, %t", side, ok)
	}

	if _, ok := p.SideTowards(FieldPlace{X: 2, Y: 2}); ok {
		t.Error("SideTowards should fail for non-adjacent place")
	}
}

// Four consecutive rotations by TOP, RIGHT, BOTTOM, LEFT return the original
// orientation regardless of shape.
func TestRotationIdempotence(t *testing.T) {
	shapes := []TileOrientation{FourSide, ThreeSide, TwoSideStraight, TwoSideCorner}

	for _, shape := range shapes {
		rotated := shape
		for _, s := range Sides() {
			rotated = rotated.Rotated(s)
		}
		if rotated != shape {
			t.Errorf("rotation cycle changed %s into %s", shape, rotated)
		}
	}
}

func TestRotatedShiftsOpenings(t *testing.T) {
	// Left shift by 1 turns the corner [t,r,b,l]=[T,T,F,F] into [T,F,F,T].
	rotated := TwoSideCorner.Rotated(Right)
	want := NewTileOrientation(true, false, false, true)
	if rotated != want {
		t.Errorf("Rotated(Right) = %s, want %s", rotated, want)
	}
}

func TestRotatedToOpen(t *testing.T) {
	o := NewTileOrientation(false, false, true, false)

	rotated, ok := o.RotatedToOpen(Top)
	if !ok {
		t.Fatal("expected a rotation that opens top")
	}
	if !rotated.IsOpen(Top) {
		t.Errorf("rotation %s does not open top", rotated)
	}

	if _, ok := (TileOrientation{}).RotatedToOpen(Top); ok {
		t.Error("fully closed orientation cannot open any side")
	}
}

func TestOrientationMatches(t *testing.T) {
	mask := NewTileOrientation(true, false, false, false)

	if !FourSide.Matches(mask) {
		t.Error("fourSide should satisfy a top-only mask")
	}
	if TwoSideStraight.Rotated(Right).Matches(mask) {
		t.Error("horizontal straight should not satisfy a top-only mask")
	}
}

func TestOrientationWireRoundTrip(t *testing.T) {
	s := ThreeSide.String()
	if s != "true,true,false,true" {
		t.Fatalf("String() = %q", s)
	}

	parsed, err := ParseTileOrientation(s)
	if err != nil {
		t.Fatalf("ParseTileOrientation failed: %v", err)
	}
	if parsed != ThreeSide {
		t.Errorf("round trip mismatch: %s != %s", parsed, ThreeSide)
	}

	if _, err := ParseTileOrientation("true,false"); err == nil {
		t.Error("expected error for short encoding")
	}
}
