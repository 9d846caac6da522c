// Command camview previews a camera in the browser or the terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dialup-inc/camkit/camera"
	"github.com/dialup-inc/camkit/camera/mock"
	"github.com/dialup-inc/camkit/internal/config"
	"github.com/dialup-inc/camkit/preview"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		useMock    = flag.Bool("mock", false, "use the simulated camera instead of a real device")
		ascii      = flag.Bool("ascii", false, "render the preview in the terminal instead of serving it")
		device     = flag.String("device", "", "camera to open (rear, front, camera2..camera9)")
		addr       = flag.String("addr", "", "preview server address, overrides the config")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *device != "" {
		cfg.Camera.Device = *device
	}
	dev, err := cfg.Device()
	if err != nil {
		log.Fatal(err)
	}

	logger := log.New(os.Stderr, "[camkit] ", log.LstdFlags)
	if *ascii {
		// The terminal belongs to the renderer.
		logger.SetOutput(io.Discard)
		log.SetOutput(io.Discard)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var drv camera.Driver
	var sim *mock.Driver
	if *useMock {
		sim = mock.New(2)
		sim.AutoCapture = true
		drv = sim
	} else if drv, err = nativeDriver(logger); err != nil {
		log.Fatal(err)
	}

	cam, err := camera.New(drv, dev, camera.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}
	defer cam.Close()

	a := newApp(cam, cfg.Capture.Dir, logger)
	if err := a.configure(cfg); err != nil {
		log.Fatal(err)
	}
	if err := cam.StartPreview(); err != nil {
		log.Fatal(err)
	}
	if sim != nil {
		go sim.Run(ctx, sim.Handle(dev), cfg.Camera.FPS)
	}

	if *ascii {
		if err := runASCII(ctx, a); err != nil {
			log.Fatal(err)
		}
		return
	}

	if err := serve(ctx, cam, a, cfg, *addr, logger); err != nil {
		log.Fatal(err)
	}
}

func serve(ctx context.Context, cam *camera.Camera, a *app, cfg *config.Config, addr string, logger *log.Logger) error {
	ps := preview.NewServer(cam, preview.Options{
		MaxWidth:  cfg.Preview.MaxWidth,
		FrameRate: cfg.Preview.FrameRate,
		Quality:   cfg.Capture.Quality,
		Capture:   a.capture,
		Logger:    logger,
	})
	defer ps.Close()

	if addr == "" {
		addr = cfg.Addr()
	}
	srv := &http.Server{Addr: addr, Handler: ps}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Printf("serving preview on http://%s/ws", addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
