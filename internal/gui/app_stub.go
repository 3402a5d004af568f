//go:build !raylib

package gui

import (
	"errors"

	"github.com/san-kum/rdsim/internal/physics"
	"github.com/san-kum/rdsim/internal/viz"
)

var ErrUnavailable = errors.New("gui: built without raylib (rebuild with -tags raylib)")

func Run(g *physics.GrayScott, d *viz.Display, p viz.Palette, name string, strength float64) error {
	return ErrUnavailable
}
