package common

import (
	"math"
	"testing"
)

func TestLerpClampsT(t *testing.T) {
	cases := []struct {
		name    string
		a, b, t float64
		want    float64
	}{
		{"start", 0, 2, 0, 0},
		{"mid", 0, 2, 0.5, 1},
		{"end", 0, 2, 1, 2},
		{"past_end", 0, 2, 3, 2},
		{"negative_t", 4, 2, -1, 4},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Lerp(c.a, c.b, c.t); got != c.want {
				t.Fatalf("Lerp(%v, %v, %v) = %v, want %v", c.a, c.b, c.t, got, c.want)
			}
		})
	}
}

func TestRoundToHalvesToEven(t *testing.T) {
	cases := []struct {
		v      float64
		places int
		want   float64
	}{
		{2.0, 3, 2.0},
		{1.23449, 3, 1.234},
		{0.5, 0, 0},
		{1.5, 0, 2},
		{2.5, 0, 2},
	}
	for _, c := range cases {
		if got := RoundTo(c.v, c.places); got != c.want {
			t.Fatalf("RoundTo(%v, %d) = %v, want %v", c.v, c.places, got, c.want)
		}
	}
}

func TestDeltaAngle(t *testing.T) {
	cases := []struct {
		name            string
		current, target float64
		want            float64
	}{
		{"same", 10, 10, 0},
		{"forward", 10, 40, 30},
		{"wrap_forward", 350, 10, 20},
		{"wrap_backward", 10, 350, -20},
		{"half_turn", 0, 180, 180},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := DeltaAngle(c.current, c.target); math.Abs(got-c.want) > 1e-9 {
				t.Fatalf("DeltaAngle(%v, %v) = %v, want %v", c.current, c.target, got, c.want)
			}
		})
	}
}

func TestWrapDegrees(t *testing.T) {
	for _, c := range []struct{ in, want float64 }{
		{0, 0}, {360, 0}, {370, 10}, {-10, 350}, {-720, 0},
	} {
		if got := WrapDegrees(c.in); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("WrapDegrees(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSmoothDampConverges(t *testing.T) {
	var vel float64
	x := 0.0
	for i := 0; i < 300; i++ {
		x = SmoothDamp(x, 10, &vel, 0.12, 1.0/60)
		if x > 10+1e-9 {
			t.Fatalf("overshoot at step %d: %v", i, x)
		}
	}
	if math.Abs(x-10) > 1e-3 {
		t.Fatalf("expected convergence to 10, got %v", x)
	}
}

func TestSmoothDampZeroDtIsNoop(t *testing.T) {
	vel := 3.0
	got := SmoothDamp(5, 10, &vel, 0.12, 0)
	if got != 5 || vel != 3 {
		t.Fatalf("expected untouched (5, 3), got (%v, %v)", got, vel)
	}
}

func TestSmoothDampAngleTakesShortWay(t *testing.T) {
	var vel float64
	got := SmoothDampAngle(350, 10, &vel, 0.12, 1.0/60)
	if got <= 350 {
		t.Fatalf("expected to move up through 360, got %v", got)
	}
	if vel <= 0 {
		t.Fatalf("expected positive angular velocity, got %v", vel)
	}
}
