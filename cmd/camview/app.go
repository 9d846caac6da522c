package main

import (
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dialup-inc/camkit/camera"
	"github.com/dialup-inc/camkit/internal/config"
)

var errCaptureBusy = errors.New("capture already in progress")

// app saves still captures to dir and returns to preview afterwards.
type app struct {
	cam     *camera.Camera
	dir     string
	quality int
	format  string
	logger  *log.Logger

	mu      sync.Mutex
	pending string
	saved   chan string
}

func newApp(cam *camera.Camera, dir string, logger *log.Logger) *app {
	a := &app{
		cam:     cam,
		dir:     dir,
		quality: 90,
		format:  "jpeg",
		logger:  logger,
		saved:   make(chan string, 1),
	}
	cam.OnCapturing(a.onCapturing)
	cam.OnCaptureCompleted(a.onCaptureCompleted)
	return a
}

// configure applies cfg. Settings the driver lacks are skipped.
func (a *app) configure(cfg *config.Config) error {
	s := a.cam.Settings()
	if _, ok := extensions[cfg.Capture.Format]; !ok {
		return fmt.Errorf("unknown capture format %q", cfg.Capture.Format)
	}
	a.quality = cfg.Capture.Quality
	a.format = cfg.Capture.Format

	size := image.Pt(cfg.Camera.Width, cfg.Camera.Height)
	steps := []func() error{
		func() error { return s.SetPreviewResolution(size) },
		func() error { return s.SetCaptureResolution(size) },
		func() error { return s.SetPreviewFPS(cfg.Camera.FPS) },
		func() error { return s.SetImageQuality(cfg.Capture.Quality) },
	}
	for _, step := range steps {
		if err := step(); err != nil && !errors.Is(err, camera.ErrNotSupported) {
			return err
		}
	}
	return os.MkdirAll(a.dir, 0o755)
}

// capture starts a still capture and returns the file it will be saved to.
func (a *app) capture() (string, error) {
	a.mu.Lock()
	if a.pending != "" {
		a.mu.Unlock()
		return "", errCaptureBusy
	}
	name := "capture-" + time.Now().Format("20060102-150405.000") + extensions[a.format]
	path := filepath.Join(a.dir, name)
	a.pending = path
	a.mu.Unlock()

	if err := a.cam.StartCapture(); err != nil {
		a.mu.Lock()
		a.pending = ""
		a.mu.Unlock()
		return "", err
	}
	return path, nil
}

func (a *app) onCapturing(e camera.CapturingEvent) {
	a.mu.Lock()
	path := a.pending
	a.mu.Unlock()
	if path == "" {
		return
	}

	data, err := a.encode(e.Main)
	if err != nil {
		a.logger.Printf("[error] capture: %v", err)
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		a.logger.Printf("[error] capture: %v", err)
		return
	}

	select {
	case a.saved <- path:
	default:
	}
}

func (a *app) encode(img camera.StillImage) ([]byte, error) {
	if img.Format == camera.PixelFormatJPEG && a.format == "jpeg" {
		return img.Data, nil
	}
	decoded, err := camera.PreviewFrame{
		Format: img.Format,
		Width:  img.Width,
		Height: img.Height,
		Data:   img.Data,
	}.Image()
	if err != nil {
		return nil, err
	}
	return encodeImage(decoded, a.format, a.quality)
}

func (a *app) onCaptureCompleted(camera.CaptureCompletedEvent) {
	a.mu.Lock()
	a.pending = ""
	a.mu.Unlock()

	if err := a.cam.StartPreview(); err != nil {
		a.logger.Printf("[error] resume preview: %v", err)
	}
}
