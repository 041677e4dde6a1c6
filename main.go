// Package main provides the entry point for the photo booth.
package main

import (
	"flag"
	"log"
	"os"

	"photobooth/internal/app"
	"photobooth/internal/camera"
	"photobooth/internal/config"
	"photobooth/internal/sticker"
	"photobooth/internal/version"
	"photobooth/ui/mainwindow"
	"photobooth/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
)

const (
	appID    = "io.github.photobooth"
	appTitle = "Powerpuff Booth"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.String())

	configPath := flag.String("config", config.DefaultPath(), "Path to booth.yaml")
	assets := flag.String("assets", "", "Asset directory (overrides the config)")
	device := flag.Int("camera", -1, "Camera device index (overrides preferences)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", *configPath, err)
	}
	if *assets != "" {
		cfg.Stickers.Dir = *assets
	}

	appPrefs := prefs.Load()
	cfg.Camera.Device = appPrefs.Int(prefs.KeyCameraDevice, cfg.Camera.Device)
	if *device >= 0 {
		cfg.Camera.Device = *device
		appPrefs.SetFloat(prefs.KeyCameraDevice, float64(*device))
	}

	loader := sticker.NewLoader(os.DirFS(cfg.Stickers.Dir), cfg.Stickers.LoadTimeout)
	catalog := sticker.NewCatalog(cfg.Stickers)
	appState := app.NewState(cfg, loader)
	cam := camera.New(cfg.Camera)

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.BoothTheme{})

	win := mainwindow.New(fyneApp, appState, cam, catalog, loader, appPrefs)
	win.SetMaster()

	watcher := setupAssetWatch(cfg.Stickers.Dir, loader, win)
	if watcher != nil {
		defer watcher.Stop()
	}

	win.StartCamera()
	win.ShowAndRun()
}

// setupAssetWatch reloads sticker artwork when files in the asset directory change.
func setupAssetWatch(dir string, loader *sticker.Loader, win *mainwindow.MainWindow) *sticker.Watcher {
	watcher, err := sticker.NewWatcher(dir, loader)
	if err != nil {
		log.Printf("Asset watch: %v", err)
		return nil
	}

	log.Printf("Asset watch: watching %s", dir)
	watcher.OnChange(func(ref string) {
		log.Printf("Asset watch: %s changed", ref)
		win.StickerChanged(ref)
	})
	watcher.Start()
	return watcher
}
