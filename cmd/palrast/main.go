// palrast - palette software rasterizer demo
// Renders a lit demo room in the terminal, or headless to PNG.
//
// Controls:
//
//	W/S         - Move forward/back
//	A/D         - Strafe left/right
//	Arrows      - Look around
//	Mouse drag  - Look around
//	Scroll      - Zoom (field of view)
//	O           - Raise/lower the door
//	M           - Cycle dithering mode
//	X           - Toggle wireframe overlay
//	R           - Reset view
//	?           - Toggle HUD overlay
//	Esc         - Quit
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	xterm "golang.org/x/term"

	"github.com/taigrr/palrast/pkg/config"
	"github.com/taigrr/palrast/pkg/render"
	"github.com/taigrr/palrast/pkg/scene"
)

var (
	configPath   = flag.String("config", "", "Path to a YAML settings file")
	width        = flag.Int("width", 0, "Render width for headless output")
	height       = flag.Int("height", 0, "Render height for headless output")
	dithering    = flag.String("dither", "", "Dithering mode (none, classic, modern)")
	ambient      = flag.Float64("ambient", 0, "Ambient light percent in [0, 1]")
	targetFPS    = flag.Int("fps", 0, "Target FPS")
	texturePath  = flag.String("texture", "", "Path to a wall texture image (PNG/JPG)")
	wireframe    = flag.Bool("wireframe", false, "Start with the wireframe overlay")
	snapshotPath = flag.String("snapshot", "", "Render headless and write a PNG to this path")
	scale        = flag.Int("scale", 0, "Snapshot upscale factor")
	frames       = flag.Int("frames", 0, "Frames to simulate before the snapshot")
	benchFrames  = flag.Int("bench", 0, "Render this many frames headless and report timings")
	verbose      = flag.Bool("v", false, "Verbose logging")
	logPath      = flag.String("log", "", "Log file for interactive mode (default: palrast.log in the temp dir)")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "palrast - palette software rasterizer\n\n")
		fmt.Fprintf(os.Stderr, "Usage: palrast [options] [model.glb]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nControls:\n")
		fmt.Fprintf(os.Stderr, "  W/S/A/D     - Move\n")
		fmt.Fprintf(os.Stderr, "  Arrows/drag - Look around\n")
		fmt.Fprintf(os.Stderr, "  Scroll      - Zoom\n")
		fmt.Fprintf(os.Stderr, "  O           - Raise/lower the door\n")
		fmt.Fprintf(os.Stderr, "  M           - Cycle dithering mode\n")
		fmt.Fprintf(os.Stderr, "  X           - Toggle wireframe\n")
		fmt.Fprintf(os.Stderr, "  R           - Reset view\n")
		fmt.Fprintf(os.Stderr, "  ?           - Toggle HUD overlay\n")
		fmt.Fprintf(os.Stderr, "  Esc         - Quit\n")
	}
	flag.Parse()

	settings, err := loadSettings()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	interactive := settings.Snapshot.Path == "" && *benchFrames == 0
	closeLog, err := setupLogger(*verbose, interactive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	switch {
	case *benchFrames > 0:
		err = runBench(settings, *benchFrames)
	case settings.Snapshot.Path != "":
		err = runSnapshot(settings)
	case !xterm.IsTerminal(int(os.Stdout.Fd())):
		err = fmt.Errorf("stdout is not a terminal; use -snapshot or -bench")
	default:
		err = runViewer(settings)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadSettings reads the settings file, if any, and applies the flags that
// were set on the command line over it.
func loadSettings() (config.Settings, error) {
	settings := config.Default()
	if *configPath != "" {
		var err error
		if settings, err = config.Load(*configPath); err != nil {
			return settings, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			settings.Width = *width
		case "height":
			settings.Height = *height
		case "dither":
			settings.Dithering = *dithering
		case "ambient":
			settings.Ambient = *ambient
		case "fps":
			settings.FPS = *targetFPS
		case "texture":
			settings.Texture = *texturePath
		case "wireframe":
			settings.Wireframe = *wireframe
		case "snapshot":
			settings.Snapshot.Path = *snapshotPath
		case "scale":
			settings.Snapshot.Scale = *scale
		case "frames":
			settings.Snapshot.Frames = *frames
		}
	})
	if flag.NArg() > 0 {
		settings.Model = flag.Arg(0)
	}
	return settings, settings.Validate()
}

// setupLogger installs the slog logger shared by the renderer and the CLI.
// Interactive sessions log to a file so the terminal stays clean.
func setupLogger(verbose, interactive bool) (func(), error) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	if interactive {
		if !verbose {
			w = io.Discard
		} else {
			path := *logPath
			if path == "" {
				path = filepath.Join(os.TempDir(), "palrast.log")
			}
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return nil, fmt.Errorf("open log file: %w", err)
			}
			w = f
			closeFn = func() { f.Close() }
		}
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	render.SetLogger(logger)
	return closeFn, nil
}

// sceneOptions maps settings onto the demo scene.
func sceneOptions(settings config.Settings, autoDoor bool) scene.Options {
	return scene.Options{
		FPS:         settings.FPS,
		Ambient:     settings.Ambient,
		Model:       settings.Model,
		WallTexture: settings.Texture,
		AutoDoor:    autoDoor,
	}
}

// newRenderer creates an initialized renderer and the demo scene.
func newRenderer(settings config.Settings, w, h int, autoDoor bool) (*render.SoftwareRenderer, *scene.Scene, error) {
	sr := render.NewSoftwareRenderer()
	if err := sr.Init(render.InitSettings{
		Width:         w,
		Height:        h,
		DitheringMode: settings.DitheringMode(),
		PoolCapacity:  settings.PoolCapacity,
	}); err != nil {
		return nil, nil, fmt.Errorf("init renderer: %w", err)
	}
	s, err := scene.New(sr, sceneOptions(settings, autoDoor))
	if err != nil {
		sr.Shutdown()
		return nil, nil, fmt.Errorf("build scene: %w", err)
	}
	return sr, s, nil
}
