// Package analysis measures the patterns a Gray-Scott run settles into.
//
//   - [Spectrum]: radially averaged power spectrum of a field
//   - [DominantWavelength]: characteristic pattern size in cells
//   - [Coverage]: fraction of the grid occupied by v
//   - [ScanParameter]: steady-state response to one swept parameter
//
// # Pattern size
//
// Spots and stripes show up as a ring in the 2D power spectrum. The ring
// radius gives the wavelength:
//
//	lambda, err := analysis.DominantWavelength(g.V())
package analysis
