// Package config loads the slideshow configuration from a YAML file,
// falling back to built-in defaults for anything unset.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/bodgit/slideshow/palette"
)

// Config is the application configuration. Durations are expressed in the
// unit named by the field to keep the file format plain.
type Config struct {
	Display struct {
		Width  int `yaml:"width"`  // Panel width in pixels
		Height int `yaml:"height"` // Panel height in pixels
	} `yaml:"display"`
	Storage struct {
		MountPoint string   `yaml:"mount_point"` // Where the card is mounted
		ImageDir   string   `yaml:"image_dir"`   // Directory scanned for images, relative to the mount point
		Extensions []string `yaml:"extensions"`  // Accepted filename suffixes, matched case-insensitively
		MaxFiles   int      `yaml:"max_files"`   // Catalog size cap
	} `yaml:"storage"`
	Slideshow struct {
		AutoAdvanceDelay  int `yaml:"auto_advance_delay"` // Seconds between automatic advances
		InactivityTimeout int `yaml:"inactivity_timeout"` // Seconds of inactivity before sleep
		IndicatorHold     int `yaml:"indicator_hold"`     // Milliseconds the AUTO/MANUAL indicator stays up
		PollTimeout       int `yaml:"poll_timeout"`       // Milliseconds each cycle waits for a button event
	} `yaml:"slideshow"`
	Buttons struct {
		Debounce  int `yaml:"debounce"`   // Milliseconds a press must be separated from the last
		QueueSize int `yaml:"queue_size"` // Bounded event queue capacity
		Pins      struct {
			Previous   string `yaml:"previous"`
			Next       string `yaml:"next"`
			ToggleAuto string `yaml:"toggle_auto"`
		} `yaml:"pins"`
	} `yaml:"buttons"`
	Palette struct {
		RedDominance uint8 `yaml:"red_dominance"`
		BlackLuma    uint8 `yaml:"black_luma"`
		Gray         uint8 `yaml:"gray"`
	} `yaml:"palette"`
}

// Default returns the configuration matching the reference hardware: a
// 2.9" tricolor panel in portrait, card images under images/, three
// buttons on the Raspberry Pi header.
func Default() *Config {
	c := &Config{}

	c.Display.Width = 128
	c.Display.Height = 296

	c.Storage.MountPoint = "/media/card"
	c.Storage.ImageDir = "images"
	c.Storage.Extensions = []string{".bmp"}
	c.Storage.MaxFiles = 100

	c.Slideshow.AutoAdvanceDelay = 10
	c.Slideshow.InactivityTimeout = 300
	c.Slideshow.IndicatorHold = 1000
	c.Slideshow.PollTimeout = 100

	c.Buttons.Debounce = 50
	c.Buttons.QueueSize = 10
	c.Buttons.Pins.Previous = "GPIO5"
	c.Buttons.Pins.Next = "GPIO6"
	c.Buttons.Pins.ToggleAuto = "GPIO13"

	c.Palette.RedDominance = palette.DefaultThresholds.RedDominance
	c.Palette.BlackLuma = palette.DefaultThresholds.BlackLuma
	c.Palette.Gray = palette.DefaultThresholds.Gray

	return c
}

// Load reads the configuration at path over the defaults. A missing file is
// not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	// Unmarshalling into the prefilled struct preserves defaults for any
	// field the file leaves out.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return cfg, nil
}

// Thresholds returns the configured quantizer cut-offs.
func (c *Config) Thresholds() palette.Thresholds {
	return palette.Thresholds{
		RedDominance: c.Palette.RedDominance,
		BlackLuma:    c.Palette.BlackLuma,
		Gray:         c.Palette.Gray,
	}
}

// AutoAdvanceInterval returns the delay between automatic advances.
func (c *Config) AutoAdvanceInterval() time.Duration {
	return time.Duration(c.Slideshow.AutoAdvanceDelay) * time.Second
}

// InactivityInterval returns how long without activity before sleeping.
func (c *Config) InactivityInterval() time.Duration {
	return time.Duration(c.Slideshow.InactivityTimeout) * time.Second
}

// IndicatorInterval returns how long the mode indicator stays visible.
func (c *Config) IndicatorInterval() time.Duration {
	return time.Duration(c.Slideshow.IndicatorHold) * time.Millisecond
}

// PollInterval returns the per-cycle event wait.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Slideshow.PollTimeout) * time.Millisecond
}

// DebounceInterval returns the button debounce window.
func (c *Config) DebounceInterval() time.Duration {
	return time.Duration(c.Buttons.Debounce) * time.Millisecond
}
