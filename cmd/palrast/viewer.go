package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/palrast/pkg/config"
	"github.com/taigrr/palrast/pkg/math3d"
	"github.com/taigrr/palrast/pkg/render"
	"github.com/taigrr/palrast/pkg/scene"
)

const (
	moveSpeed   = 3.0 // units per second at full input
	lookSpeed   = 1.5 // radians per second at full input
	dragLook    = 0.02
	inputDecay  = 0.85
	wallMargin  = 0.3
	minFOV      = math.Pi / 8
	maxFOV      = math.Pi / 2
	fovStep     = math.Pi / 36
	mouseEnable = "\x1b[?1003h\x1b[?1006h"
	mouseReset  = "\x1b[?1003l\x1b[?1006l"
)

// LookAxis eases one camera angle toward its target with a spring.
type LookAxis struct {
	Position float64
	Target   float64
	velocity float64
	spring   harmonica.Spring
}

// NewLookAxis creates an axis stepped fps times per second.
func NewLookAxis(fps int, position float64) LookAxis {
	return LookAxis{
		Position: position,
		Target:   position,
		// Frequency 8.0 follows quickly, damping 1.0 never overshoots.
		spring: harmonica.NewSpring(harmonica.FPS(fps), 8.0, 1.0),
	}
}

// Update moves Position one frame closer to Target.
func (a *LookAxis) Update() {
	a.Position, a.velocity = a.spring.Update(a.Position, a.velocity, a.Target)
}

// viewer holds the interactive session. It is only touched by the render
// loop; the input goroutine sends it commands.
type viewer struct {
	term     *uv.Terminal
	settings config.Settings
	sr       *render.SoftwareRenderer
	scene    *scene.Scene
	camera   *render.Camera
	home     render.Camera
	fb       *render.Framebuffer
	out      []uint32

	pitch, yaw LookAxis
	move       struct{ forward, right, look, tilt float64 }

	dithering render.DitheringMode
	wireframe bool
	showHUD   bool
	hud       *HUD

	width, height int // terminal cells
	quit          bool
}

// command is a unit of input handed from the event goroutine to the render
// loop.
type command func(v *viewer)

func runViewer(settings config.Settings) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}

	// Framebuffer rows are twice the cell rows.
	sr, s, err := newRenderer(settings, width, height*2, false)
	if err != nil {
		return err
	}
	defer sr.Shutdown()
	defer s.Close()

	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)
	fmt.Fprint(os.Stdout, mouseEnable)

	cleanup := func() {
		fmt.Fprint(os.Stdout, mouseReset)
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}
	defer cleanup()

	v := &viewer{
		term:      term,
		settings:  settings,
		sr:        sr,
		scene:     s,
		dithering: settings.DitheringMode(),
		wireframe: settings.Wireframe,
		hud:       NewHUD(s.TriangleCount()),
	}
	v.camera = s.Camera(1)
	v.home = *v.camera
	v.resize(width, height)
	v.resetLook()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	commands := make(chan command, 64)
	go readInput(ctx, term, commands)

	targetDuration := time.Second / time.Duration(settings.FPS)
	for {
		now := time.Now()
	drain:
		for {
			select {
			case <-ctx.Done():
				return nil
			case cmd := <-commands:
				cmd(v)
			default:
				break drain
			}
		}
		if v.quit {
			return nil
		}

		v.update()
		v.render()
		v.fb.Draw(term, uv.Rect(0, 0, v.width, v.height))
		if err := term.Display(); err != nil {
			return fmt.Errorf("display: %w", err)
		}
		v.hud.UpdateFPS()
		v.hud.Render(v)

		if elapsed := time.Since(now); elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

// readInput turns terminal events into commands until ctx is done.
func readInput(ctx context.Context, term *uv.Terminal, commands chan<- command) {
	var dragging bool
	var lastX, lastY int
	send := func(cmd command) {
		select {
		case commands <- cmd:
		case <-ctx.Done():
		}
	}

	for {
		var ev uv.Event
		select {
		case <-ctx.Done():
			return
		case ev = <-term.Events():
		}

		switch ev := ev.(type) {
		case uv.WindowSizeEvent:
			w, h := ev.Width, ev.Height
			send(func(v *viewer) { v.resize(w, h) })

		case uv.KeyPressEvent:
			switch {
			case ev.MatchString("escape", "ctrl+c"):
				send(func(v *viewer) { v.quit = true })
				return
			case ev.MatchString("w"):
				send(func(v *viewer) { v.move.forward = 1 })
			case ev.MatchString("s"):
				send(func(v *viewer) { v.move.forward = -1 })
			case ev.MatchString("a"):
				send(func(v *viewer) { v.move.right = -1 })
			case ev.MatchString("d"):
				send(func(v *viewer) { v.move.right = 1 })
			case ev.MatchString("left"):
				send(func(v *viewer) { v.move.look = 1 })
			case ev.MatchString("right"):
				send(func(v *viewer) { v.move.look = -1 })
			case ev.MatchString("up"):
				send(func(v *viewer) { v.move.tilt = 1 })
			case ev.MatchString("down"):
				send(func(v *viewer) { v.move.tilt = -1 })
			case ev.MatchString("o"):
				send(func(v *viewer) { v.scene.Door().Toggle() })
			case ev.MatchString("m"):
				send(func(v *viewer) { v.dithering = (v.dithering + 1) % (render.DitheringModern + 1) })
			case ev.MatchString("x"):
				send(func(v *viewer) { v.wireframe = !v.wireframe })
			case ev.MatchString("r"):
				send(func(v *viewer) { v.resetLook() })
			case ev.MatchString("?", "shift+/"):
				send(func(v *viewer) { v.showHUD = !v.showHUD })
			}

		case uv.KeyReleaseEvent:
			switch {
			case ev.MatchString("w", "s"):
				send(func(v *viewer) { v.move.forward = 0 })
			case ev.MatchString("a", "d"):
				send(func(v *viewer) { v.move.right = 0 })
			case ev.MatchString("left", "right"):
				send(func(v *viewer) { v.move.look = 0 })
			case ev.MatchString("up", "down"):
				send(func(v *viewer) { v.move.tilt = 0 })
			}

		case uv.MouseClickEvent:
			dragging = true
			lastX, lastY = ev.X, ev.Y

		case uv.MouseReleaseEvent:
			dragging = false

		case uv.MouseMotionEvent:
			if dragging {
				dx, dy := float64(ev.X-lastX), float64(ev.Y-lastY)
				lastX, lastY = ev.X, ev.Y
				send(func(v *viewer) {
					v.yaw.Target -= dx * dragLook
					v.pitch.Target = clampPitch(v.pitch.Target - dy*dragLook)
				})
			}

		case uv.MouseWheelEvent:
			step := fovStep
			if ev.Button == uv.MouseWheelUp {
				step = -fovStep
			}
			send(func(v *viewer) {
				v.camera.FOV = math.Max(minFOV, math.Min(maxFOV, v.camera.FOV+step))
			})
		}
	}
}

func clampPitch(p float64) float64 {
	const limit = math.Pi/2 - 0.05
	return math.Max(-limit, math.Min(limit, p))
}

// resize records a new terminal size and resizes the frame to match.
func (v *viewer) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if v.width != 0 {
		v.term.Erase()
		v.term.Resize(width, height)
	}
	v.width, v.height = width, height
	fbW, fbH := width, height*2
	if v.fb == nil {
		v.fb = render.NewFramebuffer(fbW, fbH)
	} else {
		v.fb.Resize(fbW, fbH)
	}
	if v.sr.Width() != fbW || v.sr.Height() != fbH {
		v.sr.Resize(fbW, fbH)
	}
	v.out = make([]uint32, fbW*fbH)
	v.camera.AspectRatio = float64(fbW) / float64(fbH)
}

func (v *viewer) resetLook() {
	aspect := v.camera.AspectRatio
	*v.camera = v.home
	v.camera.AspectRatio = aspect
	v.pitch = NewLookAxis(v.settings.FPS, v.camera.Pitch)
	v.yaw = NewLookAxis(v.settings.FPS, v.camera.Yaw)
}

// update applies input and advances the scene by one frame.
func (v *viewer) update() {
	dt := 1 / float64(v.settings.FPS)

	v.yaw.Target += v.move.look * lookSpeed * dt
	v.pitch.Target = clampPitch(v.pitch.Target + v.move.tilt*lookSpeed*dt)
	v.yaw.Update()
	v.pitch.Update()
	v.camera.Rotate(v.pitch.Position-v.camera.Pitch, v.yaw.Position-v.camera.Yaw)

	v.camera.MoveForward(v.move.forward * moveSpeed * dt)
	v.camera.MoveRight(v.move.right * moveSpeed * dt)
	limit := scene.RoomSize/2 - wallMargin
	v.camera.Position = math3d.V3(
		math.Max(-limit, math.Min(limit, v.camera.Position.X)),
		v.camera.Position.Y,
		math.Max(-limit, math.Min(limit, v.camera.Position.Z)),
	)

	// Key release events are unreliable in many terminals.
	v.move.forward *= inputDecay
	v.move.right *= inputDecay
	v.move.look *= inputDecay
	v.move.tilt *= inputDecay

	v.scene.Update()
}

func (v *viewer) render() {
	rc := v.camera.RenderCamera()
	v.sr.SubmitFrame(&rc, v.scene.DrawCalls(), v.scene.FrameSettings(v.dithering, v.wireframe), v.out)
	v.fb.LoadARGB(v.out)
}
