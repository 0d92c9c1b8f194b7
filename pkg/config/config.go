// Package config loads palrast settings from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/taigrr/palrast/pkg/render"
)

// ErrUnknownDitheringMode is returned for a dithering name other than
// none, classic or modern.
var ErrUnknownDitheringMode = errors.New("config: unknown dithering mode")

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid settings")

const maxConfigSize = 1024 * 1024 // 1MB

// Settings holds every option the CLI accepts. Flags override file values.
type Settings struct {
	Width        int     `yaml:"width"`
	Height       int     `yaml:"height"`
	Dithering    string  `yaml:"dithering"`
	Ambient      float64 `yaml:"ambient"`
	FPS          int     `yaml:"fps"`
	PoolCapacity int     `yaml:"pool_capacity"`
	Wireframe    bool    `yaml:"wireframe"`

	// Model is an optional glTF/GLB file placed in the scene as an entity.
	Model string `yaml:"model"`
	// Texture is an optional image quantized onto the room walls.
	Texture string `yaml:"texture"`

	Snapshot Snapshot `yaml:"snapshot"`
}

// Snapshot configures headless rendering.
type Snapshot struct {
	Path   string `yaml:"path"`
	Scale  int    `yaml:"scale"`
	Frames int    `yaml:"frames"`
}

// Default returns the built-in settings.
func Default() Settings {
	return Settings{
		Width:     320,
		Height:    200,
		Dithering: render.DitheringClassic.String(),
		Ambient:   0.2,
		FPS:       30,
		Snapshot: Snapshot{
			Scale:  2,
			Frames: 1,
		},
	}
}

// Load reads settings from path on top of the defaults.
func Load(path string) (Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return Settings{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxConfigSize+1))
	if err != nil {
		return Settings{}, fmt.Errorf("read config: %w", err)
	}
	if len(data) > maxConfigSize {
		return Settings{}, fmt.Errorf("config %s exceeds %d bytes: %w", path, maxConfigSize, ErrInvalid)
	}

	s, err := Parse(data)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes YAML settings on top of the defaults. Unknown keys are
// rejected.
func Parse(data []byte) (Settings, error) {
	s := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("parse config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks ranges and the dithering name.
func (s Settings) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("resolution %dx%d: %w", s.Width, s.Height, ErrInvalid)
	}
	if s.Ambient < 0 || s.Ambient > 1 {
		return fmt.Errorf("ambient %v outside [0, 1]: %w", s.Ambient, ErrInvalid)
	}
	if s.FPS <= 0 {
		return fmt.Errorf("fps %d: %w", s.FPS, ErrInvalid)
	}
	if s.PoolCapacity < 0 {
		return fmt.Errorf("pool_capacity %d: %w", s.PoolCapacity, ErrInvalid)
	}
	if s.Snapshot.Scale < 1 || s.Snapshot.Frames < 1 {
		return fmt.Errorf("snapshot scale %d frames %d: %w", s.Snapshot.Scale, s.Snapshot.Frames, ErrInvalid)
	}
	_, err := ParseDitheringMode(s.Dithering)
	return err
}

// DitheringMode returns the parsed dithering mode.
func (s Settings) DitheringMode() render.DitheringMode {
	mode, _ := ParseDitheringMode(s.Dithering)
	return mode
}

// ParseDitheringMode maps a case-insensitive name to a render.DitheringMode.
func ParseDitheringMode(name string) (render.DitheringMode, error) {
	for _, mode := range []render.DitheringMode{render.DitheringNone, render.DitheringClassic, render.DitheringModern} {
		if strings.EqualFold(name, mode.String()) {
			return mode, nil
		}
	}
	return render.DitheringNone, fmt.Errorf("%q: %w", name, ErrUnknownDitheringMode)
}

// Marshal encodes the settings as YAML.
func (s Settings) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}
