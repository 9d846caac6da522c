package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dialup-inc/camkit/camera"
)

type Config struct {
	Camera  CameraConfig  `yaml:"camera"`
	Capture CaptureConfig `yaml:"capture"`
	Preview PreviewConfig `yaml:"preview"`
}

type CameraConfig struct {
	Device string `yaml:"device"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	FPS    int    `yaml:"fps"`
}

type CaptureConfig struct {
	Dir     string `yaml:"dir"`
	Quality int    `yaml:"quality"`
	// Format is one of jpeg, png, bmp or tiff.
	Format string `yaml:"format"`
}

type PreviewConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	MaxWidth  int    `yaml:"max_width"`
	FrameRate int    `yaml:"frame_rate"`
}

func defaultConfig() *Config {
	return &Config{
		Camera: CameraConfig{
			Device: "rear",
			Width:  640,
			Height: 480,
			FPS:    30,
		},
		Capture: CaptureConfig{
			Dir:     ".",
			Quality: 90,
			Format:  "jpeg",
		},
		Preview: PreviewConfig{
			Host:      "127.0.0.1",
			Port:      8080,
			MaxWidth:  640,
			FrameRate: 15,
		},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := c.Device(); err != nil {
		return err
	}
	switch {
	case c.Camera.Width <= 0 || c.Camera.Height <= 0:
		return fmt.Errorf("camera size %dx%d must be positive", c.Camera.Width, c.Camera.Height)
	case c.Camera.FPS < 0:
		return fmt.Errorf("camera fps %d is negative", c.Camera.FPS)
	case c.Capture.Quality < 1 || c.Capture.Quality > 100:
		return fmt.Errorf("capture quality %d outside 1..100", c.Capture.Quality)
	case !validFormat(c.Capture.Format):
		return fmt.Errorf("capture format %q is not one of jpeg, png, bmp, tiff", c.Capture.Format)
	case c.Preview.Port < 0 || c.Preview.Port > 65535:
		return fmt.Errorf("preview port %d out of range", c.Preview.Port)
	case c.Preview.MaxWidth < 0:
		return fmt.Errorf("preview max_width %d is negative", c.Preview.MaxWidth)
	case c.Preview.FrameRate <= 0:
		return fmt.Errorf("preview frame_rate %d must be positive", c.Preview.FrameRate)
	}
	return nil
}

func validFormat(f string) bool {
	switch f {
	case "jpeg", "png", "bmp", "tiff":
		return true
	}
	return false
}

func (c *Config) Device() (camera.Device, error) {
	return camera.ParseDevice(c.Camera.Device)
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Preview.Host, c.Preview.Port)
}
