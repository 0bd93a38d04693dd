package common

import "math"

// Clamp01 limits t to [0, 1].
func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// Lerp interpolates from a to b. t is clamped to [0, 1].
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*Clamp01(t)
}

// RoundTo rounds v to the given number of decimal places, halves to even.
func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(v*p) / p
}

// Repeat wraps t into [0, length).
func Repeat(t, length float64) float64 {
	if length <= 0 {
		return 0
	}
	r := t - math.Floor(t/length)*length
	if r < 0 {
		return 0
	}
	if r >= length {
		return 0
	}
	return r
}

// WrapDegrees normalizes an angle to [0, 360).
func WrapDegrees(angle float64) float64 {
	return Repeat(angle, 360)
}

// DeltaAngle returns the shortest signed difference from current to target
// in degrees, in (-180, 180].
func DeltaAngle(current, target float64) float64 {
	delta := Repeat(target-current, 360)
	if delta > 180 {
		delta -= 360
	}
	return delta
}

// SmoothDamp moves current toward target with a critically damped spring.
// velocity carries the spring state between calls. A non-positive dt leaves
// both current and velocity untouched.
func SmoothDamp(current, target float64, velocity *float64, smoothTime, dt float64) float64 {
	if dt <= 0 || velocity == nil {
		return current
	}
	smoothTime = math.Max(0.0001, smoothTime)
	omega := 2 / smoothTime

	x := omega * dt
	decay := 1 / (1 + x + 0.48*x*x + 0.235*x*x*x)
	change := current - target
	originalTo := target
	target = current - change

	temp := (*velocity + omega*change) * dt
	*velocity = (*velocity - omega*temp) * decay
	output := target + (change+temp)*decay

	// no overshoot
	if (originalTo-current > 0) == (output > originalTo) {
		output = originalTo
		*velocity = (output - originalTo) / dt
	}
	return output
}

// SmoothDampAngle is SmoothDamp for angles in degrees; it always turns the
// short way around.
func SmoothDampAngle(current, target float64, velocity *float64, smoothTime, dt float64) float64 {
	target = current + DeltaAngle(current, target)
	return SmoothDamp(current, target, velocity, smoothTime, dt)
}
