/*
Package power is the one-way door into the platform's lowest power state.

Entering low power does not return control to the process: the configured
wake pins trigger a cold restart and the slideshow rebuilds its state from
scratch. Nothing is preserved across the boundary.
*/
package power

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

const defaultStatePath = "/sys/power/state"

// Sysfs suspends the machine through the kernel's sysfs power interface.
type Sysfs struct {
	logger logrus.FieldLogger
	path   string
}

func NewSysfs(logger logrus.FieldLogger) *Sysfs {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Sysfs{
		logger: logger,
		path:   defaultStatePath,
	}
}

// EnterLowPower requests suspend-to-mem. The wake pins are configured at the
// board level; they are logged here so the operator can see what will bring
// the device back.
func (s *Sysfs) EnterLowPower(wake []string) error {
	s.logger.WithField("wake", wake).Info("entering low power state")

	if err := os.WriteFile(s.path, []byte("mem"), 0o200); err != nil {
		return fmt.Errorf("power: %w", err)
	}
	return nil
}
