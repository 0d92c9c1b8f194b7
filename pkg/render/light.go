package render

import "github.com/taigrr/palrast/pkg/math3d"

// Light is a point light with a linear falloff band: full intensity inside
// StartRadius and none beyond EndRadius.
type Light struct {
	Point       math3d.Vec3
	StartRadius float64
	EndRadius   float64
	radiusRecip float64
}

func (l *Light) init(point math3d.Vec3, startRadius, endRadius float64) {
	l.Point = point
	l.setRadius(startRadius, endRadius)
}

func (l *Light) setRadius(startRadius, endRadius float64) {
	l.StartRadius = startRadius
	l.EndRadius = endRadius
	if endRadius > startRadius {
		l.radiusRecip = 1.0 / (endRadius - startRadius)
	} else {
		l.radiusRecip = 0
	}
}

// Contribution returns the light's intensity at distance from its point, in
// [0, 1].
func (l *Light) Contribution(distance float64) float64 {
	switch {
	case distance <= l.StartRadius:
		return 1
	case distance >= l.EndRadius:
		return 0
	}
	return clamp01(1 - (distance-l.StartRadius)*l.radiusRecip)
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
