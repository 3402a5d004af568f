package export

import (
	"bytes"
	"image"
	"image/jpeg"

	"github.com/icza/mjpeg"
)

// MJPEGRecorder streams frames into a Motion-JPEG AVI file.
type MJPEGRecorder struct {
	aw      mjpeg.AviWriter
	w, h    int
	quality int
	buf     bytes.Buffer
	frames  int
}

// NewMJPEGRecorder opens path for frames of exactly width x height pixels.
func NewMJPEGRecorder(path string, width, height, fps int) (*MJPEGRecorder, error) {
	aw, err := mjpeg.New(path, int32(width), int32(height), int32(fps))
	if err != nil {
		return nil, err
	}
	return &MJPEGRecorder{aw: aw, w: width, h: height, quality: 90}, nil
}

func (r *MJPEGRecorder) AddFrame(img *image.Paletted) error {
	r.buf.Reset()
	if err := jpeg.Encode(&r.buf, img, &jpeg.Options{Quality: r.quality}); err != nil {
		return err
	}
	if err := r.aw.AddFrame(r.buf.Bytes()); err != nil {
		return err
	}
	r.frames++
	return nil
}

func (r *MJPEGRecorder) Frames() int { return r.frames }

func (r *MJPEGRecorder) Close() error {
	return r.aw.Close()
}
