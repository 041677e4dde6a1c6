// Package config holds the booth settings: camera, preview and output
// geometry, sticker assets and capture effects.
package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"photobooth/pkg/colorutil"
	"photobooth/pkg/geometry"

	"gopkg.in/yaml.v3"
)

// FileName is the optional config file looked up in the user config directory.
const FileName = "booth.yaml"

// AppDir is the per-user directory name for config and preferences.
const AppDir = "photo-booth"

// ErrInvalid is returned by Validate for unusable settings.
var ErrInvalid = errors.New("invalid config")

// FailurePolicy decides what a capture does when a sticker asset fails to load.
type FailurePolicy string

const (
	// FailSkip leaves the failed sticker out of the composite.
	FailSkip FailurePolicy = "skip"
	// FailAbort drops the whole capture.
	FailAbort FailurePolicy = "abort"
)

// Camera holds capture device settings.
type Camera struct {
	Device      int           `yaml:"device"`
	Width       int           `yaml:"width"`
	Height      int           `yaml:"height"`
	FPS         int           `yaml:"fps"`
	OpenTimeout time.Duration `yaml:"open_timeout"`
}

// Stickers describes the decorative asset set.
type Stickers struct {
	Dir         string           `yaml:"dir"`
	Items       []string         `yaml:"items"`
	Background  string           `yaml:"background"`
	Floaters    []string         `yaml:"floaters"`
	Size        float64          `yaml:"size"`    // side length in preview units
	Default     geometry.Point2D `yaml:"default"` // position of a new sticker
	LoadTimeout time.Duration    `yaml:"load_timeout"`
	OnFailure   FailurePolicy    `yaml:"on_failure"`
}

// Config is the complete booth configuration.
type Config struct {
	Camera   Camera        `yaml:"camera"`
	Preview  geometry.Size `yaml:"preview"`
	Output   geometry.Size `yaml:"output"`
	Stickers Stickers      `yaml:"stickers"`
	Flash    time.Duration `yaml:"flash"`
	Palette  []string      `yaml:"palette"`
}

// Default returns the stock booth configuration.
func Default() Config {
	return Config{
		Camera: Camera{
			Device:      0,
			Width:       640,
			Height:      480,
			FPS:         30,
			OpenTimeout: 10 * time.Second,
		},
		Preview: geometry.NewSize(300, 400),
		Output:  geometry.NewSize(600, 800),
		Stickers: Stickers{
			Dir: "assets",
			Items: []string{
				"/stickers/blossom.png",
				"/stickers/bubbles.png",
				"/stickers/buttercup.png",
				"/stickers/blueheart.png",
				"/stickers/greenheart.png",
				"/stickers/pinkheart.png",
				"/stickers/bluestar.png",
				"/stickers/greenstar.png",
				"/stickers/pinkstar.png",
			},
			Background: "/stickers/city3.png",
			Floaters: []string{
				"/stickers/bubbles.png",
				"/stickers/blossom.png",
				"/stickers/buttercup.png",
			},
			Size:        80,
			Default:     geometry.NewPoint2D(80, 120),
			LoadTimeout: 5 * time.Second,
			OnFailure:   FailSkip,
		},
		Flash: 150 * time.Millisecond,
		Palette: []string{
			colorutil.Hex(colorutil.Pink400),
			colorutil.Hex(colorutil.Blue400),
			colorutil.Hex(colorutil.Green400),
		},
	}
}

// Scale returns the factor mapping preview coordinates to output coordinates.
func (c Config) Scale() float64 {
	return c.Output.Width / c.Preview.Width
}

// PaletteColors parses the border palette.
func (c Config) PaletteColors() ([]color.RGBA, error) {
	colors := make([]color.RGBA, 0, len(c.Palette))
	for _, h := range c.Palette {
		col, err := colorutil.ParseHex(h)
		if err != nil {
			return nil, err
		}
		colors = append(colors, col)
	}
	return colors, nil
}

// Validate checks that the configuration can drive the booth.
func (c Config) Validate() error {
	if c.Preview.Width <= 0 || c.Preview.Height <= 0 {
		return fmt.Errorf("%w: preview size %vx%v", ErrInvalid, c.Preview.Width, c.Preview.Height)
	}
	if c.Output.Width <= 0 || c.Output.Height <= 0 {
		return fmt.Errorf("%w: output size %vx%v", ErrInvalid, c.Output.Width, c.Output.Height)
	}
	// Overlays are scaled by a single factor, so both axes must agree.
	sx := c.Output.Width / c.Preview.Width
	sy := c.Output.Height / c.Preview.Height
	if sx != sy {
		return fmt.Errorf("%w: output/preview ratio differs per axis (%v vs %v)", ErrInvalid, sx, sy)
	}
	if c.Stickers.Size <= 0 {
		return fmt.Errorf("%w: sticker size %v", ErrInvalid, c.Stickers.Size)
	}
	if len(c.Stickers.Items) == 0 {
		return fmt.Errorf("%w: no stickers", ErrInvalid)
	}
	switch c.Stickers.OnFailure {
	case FailSkip, FailAbort:
	default:
		return fmt.Errorf("%w: unknown failure policy %q", ErrInvalid, c.Stickers.OnFailure)
	}
	if c.Stickers.LoadTimeout <= 0 {
		return fmt.Errorf("%w: sticker load timeout %v", ErrInvalid, c.Stickers.LoadTimeout)
	}
	if c.Camera.OpenTimeout <= 0 {
		return fmt.Errorf("%w: camera open timeout %v", ErrInvalid, c.Camera.OpenTimeout)
	}
	if len(c.Palette) == 0 {
		return fmt.Errorf("%w: empty border palette", ErrInvalid)
	}
	if _, err := c.PaletteColors(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Parse decodes YAML over the defaults, so a file only needs the keys it changes.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads the config file at path. A missing file yields the defaults.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// DefaultPath returns <UserConfigDir>/photo-booth/booth.yaml.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, AppDir, FileName)
}
