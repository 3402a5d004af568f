package viz

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/colorgrad"
)

const paletteSize = 256

// DefaultColormap is the closest preset to the classic jet rainbow.
const DefaultColormap = "turbo"

var gradients = map[string]func() colorgrad.Gradient{
	"turbo":   colorgrad.Turbo,
	"viridis": colorgrad.Viridis,
	"inferno": colorgrad.Inferno,
	"magma":   colorgrad.Magma,
	"plasma":  colorgrad.Plasma,
	"greys":   colorgrad.Greys,
}

// Palette maps levels in [0, 1] to one of 256 colors.
type Palette struct {
	Name   string
	Colors color.Palette
	hex    []string
}

func NewPalette(name string) (Palette, error) {
	mk, ok := gradients[name]
	if !ok {
		return Palette{}, fmt.Errorf("unknown colormap %q", name)
	}
	p := Palette{Name: name, Colors: make(color.Palette, 0, paletteSize), hex: make([]string, 0, paletteSize)}
	for _, c := range mk().Colors(paletteSize) {
		p.Colors = append(p.Colors, c)
		cf, _ := colorful.MakeColor(c)
		p.hex = append(p.hex, cf.Hex())
	}
	return p, nil
}

func PaletteNames() []string {
	names := make([]string, 0, len(gradients))
	for name := range gradients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Index returns the palette slot for a level, clipping to [0, 1].
func (p Palette) Index(level float64) uint8 {
	return uint8(Level(level)*(paletteSize-1) + 0.5)
}

func (p Palette) Hex(level float64) string {
	return p.hex[p.Index(level)]
}
