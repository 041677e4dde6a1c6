// Command snapcompose composites a still frame and a sticker layout into a
// booth snap without opening a window or a camera.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"photobooth/internal/compositor"
	"photobooth/internal/config"
	boothimage "photobooth/internal/image"
	"photobooth/internal/overlay"
	"photobooth/internal/sticker"
	"photobooth/pkg/geometry"
)

// placement is one -sticker flag: a reference at a preview position.
type placement struct {
	Ref string
	Pos geometry.Point2D
}

// placements collects repeated -sticker flags.
type placements []placement

func (p *placements) String() string {
	parts := make([]string, len(*p))
	for i, pl := range *p {
		parts[i] = fmt.Sprintf("%s@%g,%g", pl.Ref, pl.Pos.X, pl.Pos.Y)
	}
	return strings.Join(parts, " ")
}

func (p *placements) Set(value string) error {
	pl, err := parsePlacement(value)
	if err != nil {
		return err
	}
	*p = append(*p, pl)
	return nil
}

// parsePlacement parses "ref@x,y".
func parsePlacement(value string) (placement, error) {
	ref, at, found := strings.Cut(value, "@")
	if ref == "" {
		return placement{}, fmt.Errorf("sticker %q: missing reference", value)
	}
	if !found {
		return placement{}, fmt.Errorf("sticker %q: want ref@x,y", value)
	}
	xs, ys, ok := strings.Cut(at, ",")
	if !ok {
		return placement{}, fmt.Errorf("sticker %q: want ref@x,y", value)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return placement{}, fmt.Errorf("sticker %q: bad x: %w", value, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return placement{}, fmt.Errorf("sticker %q: bad y: %w", value, err)
	}
	return placement{Ref: ref, Pos: geometry.NewPoint2D(x, y)}, nil
}

func main() {
	var stickers placements
	framePath := flag.String("frame", "", "Path to the frame image")
	out := flag.String("o", "snap.png", "Output PNG path")
	assets := flag.String("assets", "", "Asset directory (overrides the config)")
	configPath := flag.String("config", config.DefaultPath(), "Path to booth.yaml")
	abort := flag.Bool("abort", false, "Fail when a sticker cannot be loaded")
	flag.Var(&stickers, "sticker", "Sticker as ref@x,y in preview coordinates (repeatable)")
	flag.Parse()

	if *framePath == "" {
		fmt.Println("Usage: snapcompose -frame <image> [-sticker /stickers/blossom.png@210,160 ...] [-o snap.png]")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *assets != "" {
		cfg.Stickers.Dir = *assets
	}
	if *abort {
		cfg.Stickers.OnFailure = config.FailAbort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := run(ctx, cfg, *framePath, stickers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, res.PNG, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", *out, err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s (%dx%d)\n", *out, res.Image.Bounds().Dx(), res.Image.Bounds().Dy())
	for _, d := range res.Draws[1:] {
		dev := d.Device()
		fmt.Printf("  sticker at user (%.0f,%.0f) device (%.0f,%.0f) %.0fx%.0f\n",
			d.Rect.X, d.Rect.Y, dev.X, dev.Y, dev.Width, dev.Height)
	}
	for _, o := range res.Skipped {
		fmt.Printf("  skipped %s\n", o.Ref)
	}
}

// run validates the layout against the catalog and composes the snap.
func run(ctx context.Context, cfg config.Config, framePath string, layout placements) (*compositor.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	frame, err := boothimage.Load(framePath)
	if err != nil {
		return nil, err
	}

	catalog := sticker.NewCatalog(cfg.Stickers)
	overlays := overlay.NewManager(cfg.Stickers.Size, cfg.Stickers.Default)
	var errs []error
	for _, pl := range layout {
		if err := catalog.Validate(pl.Ref); err != nil {
			errs = append(errs, err)
			continue
		}
		overlays.Place(pl.Ref, pl.Pos)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	loader := sticker.NewLoader(os.DirFS(cfg.Stickers.Dir), cfg.Stickers.LoadTimeout)
	return compositor.New(cfg, loader).Compose(ctx, frame, overlays.Overlays())
}
