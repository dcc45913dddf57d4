/*
Package slideshow is the engine of a battery-powered picture frame: it
cycles through bitmap files found on removable media, drives them onto an
e-paper display, and drops the device into its lowest power state when
nobody is pressing buttons.

The engine owns the image catalog, the navigation cursor and all timing
policy. Storage, display, button input and the sleep transition are
collaborators passed in behind small interfaces, so the same engine runs
against real hardware, the preview tooling and the tests.
*/
package slideshow

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bodgit/slideshow/bmp"
	"github.com/bodgit/slideshow/button"
	"github.com/bodgit/slideshow/config"
	"github.com/bodgit/slideshow/palette"
)

// ErrNoImages is returned by Initialize when the scan finds nothing to
// display.
var ErrNoImages = errors.New("slideshow: no images found")

// Storage is the removable-media collaborator.
type Storage interface {
	Mount() error
	List(dir string) ([]string, error)
	Size(path string) (int64, error)
	Read(path string, p []byte) (int, error)
}

// Display is the output collaborator: a renderable surface plus the text
// primitive used for the loading, error and status overlays.
type Display interface {
	bmp.Surface
	DrawText(x, y int, s string)
}

// Events delivers debounced button presses.
type Events interface {
	Receive(timeout time.Duration) (button.Event, bool)
}

// Power is the irreversible sleep transition. It is expected not to return
// on success; if it does, the engine stays in the Sleeping state.
type Power interface {
	EnterLowPower(wake []string) error
}

// Slideshow holds all mutable session state. It is not safe for concurrent
// use: everything runs on the single goroutine calling Run or RunCycle,
// which is also the only consumer of the event queue.
type Slideshow struct {
	config  *config.Config
	storage Storage
	display Display
	events  Events
	power   Power
	logger  logrus.FieldLogger

	state State
	files []string
	index int
	auto  bool

	lastActivity time.Time
	lastAdvance  time.Time

	thresholds palette.Thresholds

	// Injected for tests; production uses the real clock.
	now   func() time.Time
	pause func(time.Duration)
}

// New wires up an engine. A nil logger falls back to the standard logrus
// logger.
func New(cfg *config.Config, st Storage, d Display, ev Events, p Power, logger logrus.FieldLogger) *Slideshow {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &Slideshow{
		config:     cfg,
		storage:    st,
		display:    d,
		events:     ev,
		power:      p,
		logger:     logger,
		state:      Init,
		thresholds: cfg.Thresholds(),
		now:        time.Now,
		pause:      time.Sleep,
	}
}

// State returns the current state.
func (s *Slideshow) State() State {
	return s.state
}

// ImageIndex returns the catalog index of the image on display.
func (s *Slideshow) ImageIndex() int {
	return s.index
}

// ImageCount returns the catalog size.
func (s *Slideshow) ImageCount() int {
	return len(s.files)
}

// AutoAdvance reports whether auto-advance mode is on.
func (s *Slideshow) AutoAdvance() bool {
	return s.auto
}

func (s *Slideshow) wakePins() []string {
	pins := s.config.Buttons.Pins
	return []string{pins.Previous, pins.Next, pins.ToggleAuto}
}
