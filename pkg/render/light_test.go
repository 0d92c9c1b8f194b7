package render

import (
	"math"
	"testing"

	"github.com/taigrr/palrast/pkg/math3d"
)

func TestLightContribution(t *testing.T) {
	var l Light
	l.init(math3d.Vec3{}, 2, 6)

	tests := []struct {
		distance float64
		want     float64
	}{
		{0, 1},
		{2, 1},
		{3, 0.75},
		{4, 0.5},
		{6, 0},
		{10, 0},
	}
	for _, tc := range tests {
		if got := l.Contribution(tc.distance); math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("Contribution(%v) = %v, want %v", tc.distance, got, tc.want)
		}
	}
}

func TestLightContributionZeroWidthBand(t *testing.T) {
	var l Light
	l.init(math3d.Vec3{}, 3, 3)
	if got := l.Contribution(3); got != 1 {
		t.Errorf("Contribution at radius = %v, want 1", got)
	}
	if got := l.Contribution(3.0001); got != 0 {
		t.Errorf("Contribution past radius = %v, want 0", got)
	}
}

func TestLightIntensitySaturates(t *testing.T) {
	lights := make([]*Light, 3)
	for i := range lights {
		lights[i] = &Light{}
		lights[i].init(math3d.V3(float64(i), 0, 0), 0, 4)
	}
	point := math3d.V3(1, 0, 0)

	tests := []struct {
		name    string
		ambient float64
		lights  []*Light
		want    float64
	}{
		{"ambient only", 0.25, nil, 0.25},
		{"one light", 0, lights[1:2], 1},
		{"partial", 0.1, lights[:1], 0.85},
		{"saturated", 0.5, lights, 1},
		{"ambient above one", 1.5, nil, 1},
		{"ambient above one with light", 1.2, lights[:1], 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := lightIntensity(tc.ambient, tc.lights, point); math.Abs(got-tc.want) > 1e-12 {
				t.Errorf("lightIntensity = %v, want %v", got, tc.want)
			}
		})
	}
}
