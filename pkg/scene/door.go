package scene

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/palrast/pkg/math3d"
	"github.com/taigrr/palrast/pkg/render"
)

const (
	doorFrequency = 3.0
	doorDamping   = 1.0 // critically damped, the door never overshoots its frame

	// doorMinScale keeps a fully raised door a sliver instead of a
	// degenerate strip.
	doorMinScale = 0.02

	doorHoldSeconds = 2.0
	doorSettle      = 1e-3
)

// Door animates the raised percent of a raising door with a spring. A
// percent of 0 is closed and 1 is fully raised.
type Door struct {
	spring   harmonica.Spring
	percent  float64
	velocity float64
	target   float64

	auto       bool
	hold       int
	holdFrames int
}

// NewDoor creates a closed door stepped fps times per second. An automatic
// door toggles by itself after resting for a couple of seconds.
func NewDoor(fps int, auto bool) *Door {
	return &Door{
		spring:     harmonica.NewSpring(harmonica.FPS(fps), doorFrequency, doorDamping),
		auto:       auto,
		holdFrames: int(doorHoldSeconds * float64(fps)),
	}
}

// Toggle flips the door between closed and raised.
func (d *Door) Toggle() {
	d.target = 1 - d.target
	d.hold = 0
}

// Open reports whether the door is heading toward raised.
func (d *Door) Open() bool {
	return d.target == 1
}

// Update advances the spring by one frame.
func (d *Door) Update() {
	d.percent, d.velocity = d.spring.Update(d.percent, d.velocity, d.target)
	if !d.auto || !d.settled() {
		return
	}
	d.hold++
	if d.hold >= d.holdFrames {
		d.Toggle()
	}
}

func (d *Door) settled() bool {
	return math.Abs(d.percent-d.target) < doorSettle && math.Abs(d.velocity) < doorSettle
}

// Percent returns the raised fraction in [0, 1].
func (d *Door) Percent() float64 {
	return math.Max(0, math.Min(1, d.percent))
}

// Transform returns the door's render transform at position. Only the
// vertical scale animates; the pre-scale translation keeps the top edge
// fixed.
func (d *Door) Transform(position math3d.Vec3) render.RenderTransform {
	t := render.IdentityTransform()
	t.Translation = math3d.Translate(position)
	t.Scale = math3d.Scale(math3d.V3(1, math.Max(doorMinScale, 1-d.Percent()), 1))
	return t
}
