package slideshow

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/bodgit/slideshow/bmp"
	"github.com/bodgit/slideshow/button"
)

// Initialize brings up the collaborators, scans the card and renders the
// first image. On failure the engine ends in the Error state with a
// diagnostic on the display; the only way out is a restart.
func (s *Slideshow) Initialize() error {
	s.logger.Info("initializing slideshow")
	s.drawMessage("Initializing...")

	if err := s.storage.Mount(); err != nil {
		s.logger.WithError(err).Error("storage mount failed")
		s.fail("Storage error")
		return err
	}

	s.state = Scanning
	s.drawMessage("Scanning images...")

	files, err := s.scan()
	if err != nil {
		s.logger.WithError(err).Error("image scan failed")
		s.fail("Storage error")
		return err
	}
	if len(files) == 0 {
		s.logger.Error("no images found")
		s.fail("No images found")
		return ErrNoImages
	}

	s.logger.WithField("count", len(files)).Info("catalog built")

	s.files = files
	s.index = 0
	now := s.now()
	s.lastActivity = now
	s.lastAdvance = now
	s.state = Displaying

	s.render()
	return nil
}

// RunCycle performs one non-blocking iteration of the engine: wait briefly
// for a button event, advance if auto-advance is due, and sleep if the
// inactivity timeout has passed. It is meant to be called repeatedly.
func (s *Slideshow) RunCycle() {
	if e, ok := s.events.Receive(s.config.PollInterval()); ok && e.Pressed {
		s.lastActivity = s.now()
		s.dispatch(e)
	}

	if s.state == Displaying && s.auto {
		if now := s.now(); now.Sub(s.lastAdvance) >= s.config.AutoAdvanceInterval() {
			s.index = (s.index + 1) % len(s.files)
			s.render()
			s.lastAdvance = now
		}
	}

	if s.state != Sleeping && s.now().Sub(s.lastActivity) >= s.config.InactivityInterval() {
		s.enterSleep()
	}
}

// Run cycles the engine until the context is cancelled or the device goes
// to sleep.
func (s *Slideshow) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s.RunCycle()

		if s.state == Sleeping {
			return nil
		}
	}
}

// dispatch handles one press. Presses are only honored while displaying;
// in any other state they still count as activity but do nothing.
func (s *Slideshow) dispatch(e button.Event) {
	if s.state != Displaying || len(s.files) == 0 {
		return
	}

	s.logger.WithField("button", e.ID).Debug("button press")

	switch e.ID {
	case button.Previous:
		s.index = (s.index - 1 + len(s.files)) % len(s.files)
		s.render()
		s.lastAdvance = s.now()
	case button.Next:
		s.index = (s.index + 1) % len(s.files)
		s.render()
		s.lastAdvance = s.now()
	case button.ToggleAuto:
		s.auto = !s.auto
		s.lastAdvance = s.now()
		s.logger.WithField("auto", s.auto).Info("auto-advance toggled")
		s.showModeIndicator()
		s.render()
	}
}

// render draws the image under the cursor. A file that fails to decode is
// skipped and the cursor moves forward; after one full traversal with no
// displayable image the engine gives up into the Error state rather than
// looping forever.
func (s *Slideshow) render() {
	for attempts := 0; attempts < len(s.files); attempts++ {
		file := s.files[s.index]
		err := s.renderFile(file)
		if err == nil {
			s.logger.WithFields(logrus.Fields{
				"file":  file,
				"index": s.index,
				"total": len(s.files),
			}).Info("image displayed")
			return
		}
		s.logger.WithError(err).WithField("file", file).Warn("skipping undisplayable image")
		s.index = (s.index + 1) % len(s.files)
	}

	s.state = Error
	s.drawError("No displayable images")
}

// renderFile reads one file fully and renders it. The buffer is transient;
// nothing is cached between images.
func (s *Slideshow) renderFile(file string) error {
	size, err := s.storage.Size(file)
	if err != nil {
		return err
	}

	buf := make([]byte, size)
	n, err := s.storage.Read(file, buf)
	if err != nil {
		return err
	}
	if int64(n) != size {
		// A short read is indistinguishable from a corrupt file and is
		// handled the same way: skip, never retry in place.
		return bmp.ErrTruncated
	}

	return bmp.Render(buf, s.display, s.thresholds)
}

func (s *Slideshow) enterSleep() {
	s.logger.Info("inactivity timeout, entering sleep")
	s.drawMessage("Sleeping...")
	s.state = Sleeping

	if err := s.power.EnterLowPower(s.wakePins()); err != nil {
		// Still terminal: the loop stops, the failure is in the log.
		s.logger.WithError(err).Error("low power transition failed")
	}
}

func (s *Slideshow) fail(message string) {
	s.state = Error
	s.drawError(message)
}

func (s *Slideshow) showModeIndicator() {
	label := "MANUAL"
	if s.auto {
		label = "AUTO"
	}
	s.display.DrawText(10, 16, label)
	if err := s.display.Present(); err != nil {
		s.logger.WithError(err).Warn("present failed")
	}
	s.pause(s.config.IndicatorInterval())
}

func (s *Slideshow) drawMessage(message string) {
	s.display.Clear()
	_, h := s.display.Size()
	s.display.DrawText(10, h/2, message)
	if err := s.display.Present(); err != nil {
		s.logger.WithError(err).Warn("present failed")
	}
}

func (s *Slideshow) drawError(message string) {
	s.display.Clear()
	_, h := s.display.Size()
	s.display.DrawText(10, h/2-20, "ERROR")
	s.display.DrawText(10, h/2, message)
	if err := s.display.Present(); err != nil {
		s.logger.WithError(err).Warn("present failed")
	}
}
