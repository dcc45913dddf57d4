/*
Package prepare converts ordinary photos into bitmaps the device can
display.

The slideshow only decodes plain uncompressed BMP files, so anything coming
off a phone or camera has to be prepared on a host machine first: decoded,
scaled down to the panel, optionally converted to grayscale and reduced to a
small palette, then written back out as a 24-bit BMP. A whole directory tree
is processed by a small worker pipeline.
*/
package prepare

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Converter holds the conversion settings.
type Converter struct {
	width     int
	height    int
	colors    int
	grayscale bool
	logger    logrus.FieldLogger
}

// New returns a Converter producing bitmaps fitting a width by height
// panel. A colors value above zero reduces each image to that many colors;
// grayscale drops the color information entirely.
func New(width, height, colors int, grayscale bool, logger logrus.FieldLogger) *Converter {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Converter{
		width:     width,
		height:    height,
		colors:    colors,
		grayscale: grayscale,
		logger:    logger,
	}
}

func isSource(file string) bool {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	}
	return false
}

func (c *Converter) findImages(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories, otherwise we end up fighting with things like Spotlight, etc.
			if info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !info.Mode().IsRegular() || !isSource(file) {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (c *Converter) worker(ctx context.Context, base, target string, in <-chan string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			rel, err := filepath.Rel(base, file)
			if err != nil {
				errc <- err
				return
			}

			out := filepath.Join(target, strings.TrimSuffix(rel, filepath.Ext(rel))+".bmp")
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				errc <- err
				return
			}

			if err := c.Convert(file, out); err != nil {
				errc <- err
				return
			}

			c.logger.WithFields(logrus.Fields{
				"source": file,
				"output": out,
			}).Info("converted")

			select {
			case <-ctx.Done():
				return
			default:
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Run converts every source image under src into a BMP under dst,
// preserving the directory layout.
func (c *Converter) Run(ctx context.Context, src, dst string, workers int) error {
	base, err := filepath.Abs(src)
	if err != nil {
		return err
	}

	if workers < 1 {
		workers = 1
	}

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := c.findImages(ctx, base)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < workers; i++ {
		errc, err := c.worker(ctx, base, dst, files)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
