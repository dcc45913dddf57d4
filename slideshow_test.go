package slideshow

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodgit/slideshow/button"
	"github.com/bodgit/slideshow/config"
	"github.com/bodgit/slideshow/palette"
)

type fakeStorage struct {
	mountErr error
	listErr  error
	names    []string
	files    map[string][]byte

	reads int
}

func (f *fakeStorage) Mount() error { return f.mountErr }

func (f *fakeStorage) List(string) ([]string, error) {
	return f.names, f.listErr
}

func (f *fakeStorage) Size(path string) (int64, error) {
	data, ok := f.files[path]
	if !ok {
		return 0, errors.New("no such file")
	}
	return int64(len(data)), nil
}

func (f *fakeStorage) Read(path string, p []byte) (int, error) {
	f.reads++
	data, ok := f.files[path]
	if !ok {
		return 0, errors.New("no such file")
	}
	return copy(p, data), nil
}

type fakeDisplay struct {
	w, h      int
	pixels    int
	texts     []string
	cleared   int
	presented int
}

func (f *fakeDisplay) Size() (int, int) { return f.w, f.h }

func (f *fakeDisplay) Clear() { f.cleared++ }

func (f *fakeDisplay) SetPixel(int, int, palette.Color) { f.pixels++ }

func (f *fakeDisplay) DrawText(_, _ int, s string) { f.texts = append(f.texts, s) }

func (f *fakeDisplay) Present() error {
	f.presented++
	return nil
}

type fakePower struct {
	calls int
	wake  []string
}

func (f *fakePower) EnterLowPower(wake []string) error {
	f.calls++
	f.wake = wake
	return nil
}

// validBMP is a 1x1 24-bit dark bitmap.
func validBMP() []byte {
	data := make([]byte, 58)
	data[0], data[1] = 'B', 'M'
	binary.LittleEndian.PutUint32(data[2:], uint32(len(data)))
	binary.LittleEndian.PutUint32(data[10:], 54)
	binary.LittleEndian.PutUint32(data[14:], 40)
	binary.LittleEndian.PutUint32(data[18:], 1)
	binary.LittleEndian.PutUint32(data[22:], 1)
	binary.LittleEndian.PutUint16(data[26:], 1)
	binary.LittleEndian.PutUint16(data[28:], 24)
	copy(data[54:], []byte{10, 10, 10, 0})
	return data
}

type fixture struct {
	show    *Slideshow
	storage *fakeStorage
	display *fakeDisplay
	queue   *button.Queue
	power   *fakePower
	now     time.Time
}

func newFixture(names []string, files map[string][]byte) *fixture {
	cfg := config.Default()
	cfg.Slideshow.PollTimeout = 1

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	fx := &fixture{
		storage: &fakeStorage{names: names, files: files},
		display: &fakeDisplay{w: 10, h: 10},
		queue:   button.NewQueue(cfg.Buttons.QueueSize),
		power:   &fakePower{},
		now:     time.Unix(1000, 0),
	}

	fx.show = New(cfg, fx.storage, fx.display, fx.queue, fx.power, logger)
	fx.show.now = func() time.Time { return fx.now }
	fx.show.pause = func(time.Duration) {}

	return fx
}

func threeImages() *fixture {
	return newFixture(
		[]string{"a.bmp", "b.bmp", "c.bmp"},
		map[string][]byte{
			"images/a.bmp": validBMP(),
			"images/b.bmp": validBMP(),
			"images/c.bmp": validBMP(),
		},
	)
}

func (fx *fixture) press(id button.ID) {
	fx.queue.Offer(button.Event{ID: id, Pressed: true})
	fx.show.RunCycle()
}

func TestInitializeMountFailure(t *testing.T) {
	fx := threeImages()
	fx.storage.mountErr = errors.New("no card")

	err := fx.show.Initialize()

	assert.Error(t, err)
	assert.Equal(t, Error, fx.show.State())
	assert.Contains(t, fx.display.texts, "ERROR")
	assert.Contains(t, fx.display.texts, "Storage error")
}

func TestInitializeNoImages(t *testing.T) {
	fx := newFixture([]string{"notes.txt"}, nil)

	err := fx.show.Initialize()

	assert.ErrorIs(t, err, ErrNoImages)
	assert.Equal(t, Error, fx.show.State())
	assert.Contains(t, fx.display.texts, "No images found")
}

func TestInitializeListFailure(t *testing.T) {
	fx := threeImages()
	fx.storage.listErr = errors.New("I/O error")

	assert.Error(t, fx.show.Initialize())
	assert.Equal(t, Error, fx.show.State())
}

func TestInitializeSuccess(t *testing.T) {
	fx := threeImages()

	require.NoError(t, fx.show.Initialize())

	assert.Equal(t, Displaying, fx.show.State())
	assert.Equal(t, 0, fx.show.ImageIndex())
	assert.Equal(t, 3, fx.show.ImageCount())
	assert.NotZero(t, fx.display.pixels)
	// Loading screen, scanning screen, first image.
	assert.Equal(t, 3, fx.display.presented)
}

func TestCatalogFiltersAndCaps(t *testing.T) {
	fx := newFixture(
		[]string{"a.bmp", "b.BMP", "notes.txt", "c.bmp"},
		map[string][]byte{
			"images/a.bmp": validBMP(),
			"images/b.BMP": validBMP(),
			"images/c.bmp": validBMP(),
		},
	)
	fx.show.config.Storage.MaxFiles = 2

	require.NoError(t, fx.show.Initialize())

	assert.Equal(t, []string{"images/a.bmp", "images/b.BMP"}, fx.show.files)
}

func TestNavigationWraps(t *testing.T) {
	fx := threeImages()
	require.NoError(t, fx.show.Initialize())

	fx.press(button.Previous)
	assert.Equal(t, 2, fx.show.ImageIndex())

	fx.press(button.Next)
	assert.Equal(t, 0, fx.show.ImageIndex())

	fx.press(button.Next)
	fx.press(button.Next)
	assert.Equal(t, 2, fx.show.ImageIndex())

	fx.press(button.Next)
	assert.Equal(t, 0, fx.show.ImageIndex())
}

func TestToggleAutoTwiceRestores(t *testing.T) {
	fx := threeImages()
	require.NoError(t, fx.show.Initialize())

	fx.press(button.ToggleAuto)
	assert.True(t, fx.show.AutoAdvance())
	assert.Equal(t, 0, fx.show.ImageIndex())
	assert.Contains(t, fx.display.texts, "AUTO")

	fx.press(button.ToggleAuto)
	assert.False(t, fx.show.AutoAdvance())
	assert.Equal(t, 0, fx.show.ImageIndex())
	assert.Contains(t, fx.display.texts, "MANUAL")
}

func TestAutoAdvanceAfterDelay(t *testing.T) {
	fx := threeImages()
	require.NoError(t, fx.show.Initialize())

	fx.press(button.ToggleAuto)
	presented := fx.display.presented

	// Just short of the delay: nothing happens.
	fx.now = fx.now.Add(9 * time.Second)
	fx.show.RunCycle()
	assert.Equal(t, 0, fx.show.ImageIndex())
	assert.Equal(t, presented, fx.display.presented)

	// At the delay: one advance, one redraw.
	fx.now = fx.now.Add(time.Second)
	fx.show.RunCycle()
	assert.Equal(t, 1, fx.show.ImageIndex())
	assert.Equal(t, presented+1, fx.display.presented)

	// The advance timer restarts from the advance itself.
	fx.show.RunCycle()
	assert.Equal(t, 1, fx.show.ImageIndex())
}

func TestManualNavigationResetsAutoTimer(t *testing.T) {
	fx := threeImages()
	require.NoError(t, fx.show.Initialize())

	fx.press(button.ToggleAuto)

	fx.now = fx.now.Add(9 * time.Second)
	fx.press(button.Next)
	assert.Equal(t, 1, fx.show.ImageIndex())

	// Nine seconds after the press the timer has not expired.
	fx.now = fx.now.Add(9 * time.Second)
	fx.show.RunCycle()
	assert.Equal(t, 1, fx.show.ImageIndex())

	fx.now = fx.now.Add(time.Second)
	fx.show.RunCycle()
	assert.Equal(t, 2, fx.show.ImageIndex())
}

func TestInactivityEntersSleep(t *testing.T) {
	fx := threeImages()
	require.NoError(t, fx.show.Initialize())

	fx.now = fx.now.Add(5 * time.Minute)
	fx.show.RunCycle()

	assert.Equal(t, Sleeping, fx.show.State())
	assert.Equal(t, 1, fx.power.calls)
	assert.Equal(t, []string{"GPIO5", "GPIO6", "GPIO13"}, fx.power.wake)
	assert.Contains(t, fx.display.texts, "Sleeping...")
}

func TestButtonPressDefersSleep(t *testing.T) {
	fx := threeImages()
	require.NoError(t, fx.show.Initialize())

	fx.now = fx.now.Add(4 * time.Minute)
	fx.press(button.Next)

	fx.now = fx.now.Add(4 * time.Minute)
	fx.show.RunCycle()
	assert.NotEqual(t, Sleeping, fx.show.State())

	fx.now = fx.now.Add(time.Minute)
	fx.show.RunCycle()
	assert.Equal(t, Sleeping, fx.show.State())
}

func TestAllFilesInvalidBoundedRetry(t *testing.T) {
	garbage := []byte("not a bitmap at all, definitely not")
	fx := newFixture(
		[]string{"a.bmp", "b.bmp", "c.bmp"},
		map[string][]byte{
			"images/a.bmp": garbage,
			"images/b.bmp": garbage,
			"images/c.bmp": garbage,
		},
	)

	require.NoError(t, fx.show.Initialize())

	assert.Equal(t, Error, fx.show.State())
	// One attempt per catalog entry, then stop.
	assert.Equal(t, 3, fx.storage.reads)
	assert.Contains(t, fx.display.texts, "No displayable images")
}

func TestBrokenFileIsSkipped(t *testing.T) {
	fx := newFixture(
		[]string{"a.bmp", "b.bmp"},
		map[string][]byte{
			"images/a.bmp": []byte("garbage garbage garbage garbage garbage"),
			"images/b.bmp": validBMP(),
		},
	)

	require.NoError(t, fx.show.Initialize())

	assert.Equal(t, Displaying, fx.show.State())
	assert.Equal(t, 1, fx.show.ImageIndex())
}

func TestEventsIgnoredOutsideDisplaying(t *testing.T) {
	fx := newFixture([]string{"notes.txt"}, nil)
	require.Error(t, fx.show.Initialize())

	presented := fx.display.presented
	fx.press(button.Next)

	assert.Equal(t, Error, fx.show.State())
	assert.Equal(t, 0, fx.show.ImageIndex())
	assert.Equal(t, presented, fx.display.presented)
}

func TestRunStopsWhenCancelled(t *testing.T) {
	fx := threeImages()
	require.NoError(t, fx.show.Initialize())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, fx.show.Run(ctx), context.Canceled)
}

func TestRunStopsOnSleep(t *testing.T) {
	fx := threeImages()
	require.NoError(t, fx.show.Initialize())

	fx.now = fx.now.Add(5 * time.Minute)

	assert.NoError(t, fx.show.Run(context.Background()))
	assert.Equal(t, Sleeping, fx.show.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "init", Init.String())
	assert.Equal(t, "displaying", Displaying.String())
	assert.Equal(t, "sleeping", Sleeping.String())
}
