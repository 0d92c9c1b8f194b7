package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/taigrr/palrast/pkg/config"
	"github.com/taigrr/palrast/pkg/render"
	"github.com/taigrr/palrast/pkg/scene"
)

// offscreen renders the demo scene without a terminal.
type offscreen struct {
	sr       *render.SoftwareRenderer
	scene    *scene.Scene
	rc       render.RenderCamera
	settings render.FrameSettings
	out      []uint32
}

func newOffscreen(settings config.Settings) (*offscreen, error) {
	sr, s, err := newRenderer(settings, settings.Width, settings.Height, true)
	if err != nil {
		return nil, err
	}
	cam := s.Camera(float64(settings.Width) / float64(settings.Height))
	return &offscreen{
		sr:       sr,
		scene:    s,
		rc:       cam.RenderCamera(),
		settings: s.FrameSettings(settings.DitheringMode(), settings.Wireframe),
		out:      make([]uint32, settings.Width*settings.Height),
	}, nil
}

func (o *offscreen) frame() {
	o.scene.Update()
	o.sr.SubmitFrame(&o.rc, o.scene.DrawCalls(), o.settings, o.out)
}

func (o *offscreen) close() {
	o.scene.Close()
	o.sr.Shutdown()
}

// runSnapshot simulates the configured number of frames and writes the last
// one as a PNG.
func runSnapshot(settings config.Settings) error {
	o, err := newOffscreen(settings)
	if err != nil {
		return err
	}
	defer o.close()

	for range settings.Snapshot.Frames {
		o.frame()
	}

	fb := render.NewFramebuffer(settings.Width, settings.Height)
	fb.LoadARGB(o.out)
	if err := fb.SavePNG(settings.Snapshot.Path, settings.Snapshot.Scale); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	pd := o.sr.ProfilerData()
	slog.Info("snapshot written",
		"path", settings.Snapshot.Path,
		"width", settings.Width*settings.Snapshot.Scale,
		"height", settings.Height*settings.Snapshot.Scale,
		"triangles", pd.PresentedTriangles,
		"culled", pd.CulledDrawCalls)
	fmt.Printf("Wrote %s (%d triangles)\n", settings.Snapshot.Path, pd.PresentedTriangles)
	return nil
}

// runBench renders n frames and reports the average frame time.
func runBench(settings config.Settings, n int) error {
	o, err := newOffscreen(settings)
	if err != nil {
		return err
	}
	defer o.close()

	bar := progressbar.Default(int64(n), "rendering")
	defer bar.Close()

	var total time.Duration
	var triangles, depthTests, colorWrites int
	for range n {
		start := time.Now()
		o.frame()
		total += time.Since(start)

		pd := o.sr.ProfilerData()
		triangles += pd.PresentedTriangles
		depthTests += pd.TotalDepthTests
		colorWrites += pd.TotalColorWrites
		bar.Add(1)
	}
	bar.Finish()

	avg := total / time.Duration(n)
	fps := 0.0
	if avg > 0 {
		fps = float64(time.Second) / float64(avg)
	}
	fmt.Printf("\n%dx%d %s dithering, %d frames\n", settings.Width, settings.Height, settings.Dithering, n)
	fmt.Printf("  avg frame:     %v (%.1f FPS)\n", avg, fps)
	fmt.Printf("  triangles:     %d/frame\n", triangles/n)
	fmt.Printf("  depth tests:   %d/frame\n", depthTests/n)
	fmt.Printf("  color writes:  %d/frame\n", colorWrites/n)
	slog.Debug("benchmark finished", "frames", n, "total", total, "avg", avg)
	return nil
}
