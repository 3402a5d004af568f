package export

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"os"
)

// DefaultMaxFrames bounds a GIF recording to about 20 seconds at 30 fps.
const DefaultMaxFrames = 600

// ErrFrameLimit is returned by AddFrame once a recorder holds MaxFrames.
var ErrFrameLimit = errors.New("frame limit reached")

// GIFRecorder buffers paletted frames and encodes them on Close. Frames stay
// in memory until then, so AddFrame refuses frames past MaxFrames.
type GIFRecorder struct {
	MaxFrames int // zero or negative disables the limit

	path   string
	delay  int
	frames []*image.Paletted
}

// NewGIFRecorder writes to path with fps frames per second, rounded to the
// GIF delay resolution of 10ms.
func NewGIFRecorder(path string, fps int) *GIFRecorder {
	delay := 2
	if fps > 0 {
		delay = max(1, 100/fps)
	}
	return &GIFRecorder{MaxFrames: DefaultMaxFrames, path: path, delay: delay}
}

func (r *GIFRecorder) AddFrame(img *image.Paletted) error {
	if r.MaxFrames > 0 && len(r.frames) >= r.MaxFrames {
		return fmt.Errorf("%w: %d frames in %s", ErrFrameLimit, r.MaxFrames, r.path)
	}
	r.frames = append(r.frames, img)
	return nil
}

func (r *GIFRecorder) Frames() int { return len(r.frames) }

func (r *GIFRecorder) Close() error {
	if len(r.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, r.delay)
	}
	f, err := os.Create(r.path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	r.frames = nil
	return f.Close()
}
