package button

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
)

// GPIO feeds a Debouncer from real pins. Each button pin is configured with
// a pull-up and a falling-edge interrupt, one watcher goroutine per pin.
type GPIO struct {
	pins map[ID]gpio.PinIO
	stop chan struct{}
}

// Attach looks up and configures the named pins and starts watching them.
func Attach(pins map[ID]string, d *Debouncer) (*GPIO, error) {
	g := &GPIO{
		pins: make(map[ID]gpio.PinIO, len(pins)),
		stop: make(chan struct{}),
	}

	for id, name := range pins {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("button: no such pin %q", name)
		}
		if err := p.In(gpio.PullUp, gpio.FallingEdge); err != nil {
			return nil, fmt.Errorf("button: configuring %q: %w", name, err)
		}
		g.pins[id] = p
	}

	for id, p := range g.pins {
		go g.watch(p, d, id)
	}

	return g, nil
}

func (g *GPIO) watch(p gpio.PinIO, d *Debouncer, id ID) {
	for {
		// The timeout bounds how long shutdown can lag behind Close.
		if p.WaitForEdge(time.Second) {
			d.Edge(id)
		}
		select {
		case <-g.stop:
			return
		default:
		}
	}
}

// WakePins returns the names of the button pins, usable as a wake mask for
// the power controller.
func (g *GPIO) WakePins() []string {
	names := make([]string, 0, len(g.pins))
	for _, p := range g.pins {
		names = append(names, p.Name())
	}
	return names
}

// Close stops the watcher goroutines and releases the pins.
func (g *GPIO) Close() error {
	close(g.stop)
	var err error
	for _, p := range g.pins {
		if e := p.Halt(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
