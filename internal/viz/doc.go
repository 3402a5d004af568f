// Package viz renders Gray-Scott fields and drives the interactive terminal
// view.
//
// Rendering always goes through the display contrast transform
// tanh(contrast*v) and a fixed [0, 1] colormap range:
//
//   - [Renderer.Image]: paletted image, one pixel per cell
//   - [Renderer.Terminal]: half-block characters with 24-bit colors
//   - [Model]: Bubble Tea program with live sliders for F, k, Du, Dv,
//     draw skip and contrast
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reseed (applied on the next tick)
//	Tab   - Select next slider
//	Up/K  - Increase selected slider by its resolution
//	Down/J- Decrease selected slider by its resolution
//	C     - Cycle colormaps
//	T     - Cycle panel themes
//	X     - Toggle clamping of u and v
//	G     - Toggle GIF recording
//	?     - Show help overlay
package viz
