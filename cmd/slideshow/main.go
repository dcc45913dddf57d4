package main

import (
	"context"
	"image/png"
	"log"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"periph.io/x/host/v3"

	"github.com/bodgit/slideshow"
	"github.com/bodgit/slideshow/bmp"
	"github.com/bodgit/slideshow/button"
	"github.com/bodgit/slideshow/config"
	"github.com/bodgit/slideshow/display"
	"github.com/bodgit/slideshow/power"
	"github.com/bodgit/slideshow/prepare"
	"github.com/bodgit/slideshow/storage"
)

const defaultConfig = "/etc/slideshow.yaml"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version, V",
		Usage: "print the version",
	}
}

func newLogger(c *cli.Context) *logrus.Logger {
	logger := logrus.StandardLogger()
	if c.Bool("verbose") {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

func run(c *cli.Context) error {
	logger := newLogger(c)

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	if _, err := host.Init(); err != nil {
		return cli.NewExitError(err, 1)
	}

	var disp slideshow.Display
	if c.Bool("fake") {
		disp = display.NewFrameBuffer(cfg.Display.Width, cfg.Display.Height)
	} else {
		panel, err := display.OpenWaveshare()
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		defer panel.Close()
		disp = panel
	}

	queue := button.NewQueue(cfg.Buttons.QueueSize)

	if !c.Bool("fake") {
		debouncer := button.NewDebouncer(queue, cfg.DebounceInterval())
		pins, err := button.Attach(map[button.ID]string{
			button.Previous:   cfg.Buttons.Pins.Previous,
			button.Next:       cfg.Buttons.Pins.Next,
			button.ToggleAuto: cfg.Buttons.Pins.ToggleAuto,
		}, debouncer)
		if err != nil {
			return cli.NewExitError(err, 1)
		}
		defer pins.Close()
	}

	show := slideshow.New(cfg, storage.New(cfg.Storage.MountPoint), disp, queue, power.NewSysfs(logger), logger)

	if err := show.Initialize(); err != nil {
		return cli.NewExitError(err, 1)
	}

	if err := show.Run(context.Background()); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func convert(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	logger := newLogger(c)

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	p := prepare.New(cfg.Display.Width, cfg.Display.Height, c.Int("colors"), c.Bool("grayscale"), logger)

	if err := p.Run(context.Background(), c.Args().Get(0), c.Args().Get(1), c.Int("workers")); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func preview(c *cli.Context) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	data, err := os.ReadFile(c.Args().Get(0))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	surface := display.NewFrameBuffer(cfg.Display.Width, cfg.Display.Height)
	if err := bmp.Render(data, surface, cfg.Thresholds()); err != nil {
		return cli.NewExitError(err, 1)
	}

	f, err := os.Create(c.Args().Get(1))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer f.Close()

	if err := png.Encode(f, surface); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "slideshow"
	app.Usage = "e-paper picture frame"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			EnvVars: []string{"SLIDESHOW_CONFIG"},
			Value:   defaultConfig,
			Usage:   "path to configuration file",
		},
		&cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "run",
			Usage:       "Run the slideshow",
			Description: "Drives the panel from the images on the card until the inactivity timeout puts the device to sleep.",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "fake",
					Usage: "render to an in-memory surface instead of the panel",
				},
			},
			Action: run,
		},
		{
			Name:        "convert",
			Usage:       "Convert photos into device-ready bitmaps",
			ArgsUsage:   "SOURCE TARGET",
			Description: "Walks SOURCE for PNG/JPEG/GIF images and writes 24-bit BMP files under TARGET, scaled to the panel.",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:  "colors",
					Usage: "reduce each image to this many colors (0 leaves them alone)",
				},
				&cli.BoolFlag{
					Name:  "grayscale",
					Usage: "convert images to grayscale",
				},
				&cli.IntFlag{
					Name:  "workers",
					Value: 4,
					Usage: "number of conversion workers",
				},
			},
			Action: convert,
		},
		{
			Name:        "preview",
			Usage:       "Render a bitmap the way the panel will show it",
			ArgsUsage:   "FILE OUTPUT.png",
			Description: "Runs FILE through the device decode path and writes the quantized result as a PNG.",
			Action:      preview,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
