package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/taigrr/palrast/pkg/render"
)

const (
	sgrReset  = "\x1b[0m"
	sgrBold   = "\x1b[1m"
	sgrDim    = "\x1b[2m"
	sgrPanel  = "\x1b[40;97m"
	sgrGreen  = "\x1b[40;92m"
	sgrYellow = "\x1b[40;93m"
	sgrCyan   = "\x1b[40;96m"
	eraseLine = "\x1b[2K"
)

// HUD draws two status rows over the frame: renderer counters on top and
// viewer modes at the bottom.
type HUD struct {
	triangles int
	out       io.Writer

	fps        float64
	frames     int
	windowFrom time.Time
}

// NewHUD creates a HUD for a scene with the given triangle count.
func NewHUD(triangles int) *HUD {
	return &HUD{triangles: triangles, out: os.Stdout, windowFrom: time.Now()}
}

// UpdateFPS counts a frame and refreshes the rate once per second.
func (h *HUD) UpdateFPS() {
	h.frames++
	if elapsed := time.Since(h.windowFrom); elapsed >= time.Second {
		h.fps = float64(h.frames) / elapsed.Seconds()
		h.frames = 0
		h.windowFrom = time.Now()
	}
}

// Render writes the overlay in one call. The rows are erased even when the
// HUD is hidden so toggling it off leaves no residue.
func (h *HUD) Render(v *viewer) {
	var b strings.Builder
	at := func(row, col int, style, text string) {
		fmt.Fprintf(&b, "\x1b[%d;%dH%s%s%s", row, max(col, 1), style, text, sgrReset)
	}

	at(1, 1, eraseLine, "")
	at(v.height, 1, eraseLine, "")
	if v.showHUD {
		pd := v.sr.ProfilerData()
		h.top(at, v.width, pd)
		h.bottom(at, v, pd)
	}
	io.WriteString(h.out, b.String())
}

func (h *HUD) top(at func(row, col int, style, text string), width int, pd render.ProfilerData) {
	at(1, 1, sgrGreen, fmt.Sprintf(" %.0f FPS ", h.fps))

	res := fmt.Sprintf(" %dx%d ", pd.Width, pd.Height)
	at(1, (width-len(res))/2, sgrBold+sgrPanel, res)

	tris := fmt.Sprintf(" %d/%d tris ", pd.PresentedTriangles, h.triangles)
	at(1, width-len(tris), sgrBold+sgrCyan, tris)
}

func (h *HUD) bottom(at func(row, col int, style, text string), v *viewer, pd render.ProfilerData) {
	wire := "[ ]"
	if v.wireframe {
		wire = "[x]"
	}
	door := "closed"
	if v.scene.Door().Open() {
		door = "open"
	}
	at(v.height, 1, sgrPanel, fmt.Sprintf(" dither: %s  %s wireframe  door: %s  culled: %d ",
		v.dithering, wire, door, pd.CulledDrawCalls))

	const hint = " O: door  M: dither "
	at(v.height, v.width-len(hint), sgrDim+sgrYellow, hint)
}
