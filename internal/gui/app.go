//go:build raylib

package gui

import (
	"errors"
	"fmt"
	"image/color"
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/rdsim/internal/dynamo"
	"github.com/san-kum/rdsim/internal/physics"
	"github.com/san-kum/rdsim/internal/viz"
)

const (
	winW, winH = 1280, 720
	fieldSize  = 640
	maxHistory = 400
)

var (
	ColBg      = rl.NewColor(10, 10, 10, 255)
	ColAccent  = rl.NewColor(180, 180, 180, 255)
	ColSelect  = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(140, 140, 140, 255)
	ColTextDim = rl.NewColor(60, 60, 60, 255)
	ColError   = rl.NewColor(230, 80, 80, 255)
)

// App is a raylib window around a GrayScott engine. Resets requested from
// the keyboard are applied before the next update.
type App struct {
	Engine   *physics.GrayScott
	Display  *viz.Display
	Renderer *viz.Renderer
	Name     string
	Strength float64

	Running      bool
	ResetPending bool
	ParamSel     int
	Err          error
	Telemetry    []float64
	Font         rl.Font

	tex    rl.Texture2D
	pixels []color.RGBA
	lut    []color.RGBA
}

func initWindow(title string) {
	rl.InitWindow(winW, winH, title)
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

func NewApp(g *physics.GrayScott, d *viz.Display, p viz.Palette, name string, strength float64) *App {
	a := &App{
		Engine:    g,
		Display:   d,
		Renderer:  viz.NewRenderer(d, p),
		Name:      name,
		Strength:  strength,
		Running:   true,
		Telemetry: make([]float64, 0, maxHistory),
		Font:      rl.GetFontDefault(),
		pixels:    make([]color.RGBA, g.Height()*g.Width()),
	}
	a.setPalette(p)

	img := rl.GenImageColor(g.Width(), g.Height(), rl.Black)
	a.tex = rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	rl.SetTextureFilter(a.tex, rl.FilterPoint)
	return a
}

// Run opens a window and drives g until it is closed.
func Run(g *physics.GrayScott, d *viz.Display, p viz.Palette, name string, strength float64) error {
	initWindow("rdsim :: " + name)
	defer rl.CloseWindow()

	app := NewApp(g, d, p, name, strength)
	defer rl.UnloadTexture(app.tex)
	app.RunLoop()
	return nil
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyQ) {
			return
		}
		a.Update()
		a.Draw()
	}
}

func (a *App) setPalette(p viz.Palette) {
	a.Renderer.Palette = p
	a.lut = make([]color.RGBA, len(p.Colors))
	for i, c := range p.Colors {
		a.lut[i] = color.RGBAModel.Convert(c).(color.RGBA)
	}
}

func (a *App) Update() {
	if rl.IsKeyPressed(rl.KeySpace) {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.ResetPending = true
	}
	if rl.IsKeyPressed(rl.KeyC) {
		a.cyclePalette()
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		a.ParamSel = (a.ParamSel + 1) % len(viz.Sliders)
	}
	if rl.IsKeyPressed(rl.KeyUp) || rl.IsKeyPressedRepeat(rl.KeyUp) {
		a.adjust(1)
	}
	if rl.IsKeyPressed(rl.KeyDown) || rl.IsKeyPressedRepeat(rl.KeyDown) {
		a.adjust(-1)
	}

	if a.ResetPending {
		a.ResetPending = false
		if err := a.Engine.Reset(a.Strength); err != nil {
			a.Err = err
			return
		}
		a.Err = nil
		a.Telemetry = a.Telemetry[:0]
	}
	if !a.Running {
		return
	}

	for {
		if err := a.Engine.Update(); err != nil {
			a.Err = err
			return
		}
		if a.Display.ShouldDraw(a.Engine.Steps()) {
			break
		}
	}
	a.Err = nil

	a.Telemetry = append(a.Telemetry, a.Engine.Stats().VMean)
	if len(a.Telemetry) > maxHistory {
		a.Telemetry = a.Telemetry[1:]
	}
	a.upload()
}

func (a *App) value(key string) float64 {
	switch key {
	case "draw_skip":
		return float64(a.Display.DrawSkip)
	case "contrast":
		return a.Display.Contrast
	}
	return a.Engine.GetParams()[key]
}

func (a *App) adjust(dir int) {
	s := viz.Sliders[a.ParamSel]
	v := s.Move(a.value(s.Key), dir)
	switch s.Key {
	case "draw_skip":
		a.Display.DrawSkip = int(v + 0.5)
	case "contrast":
		a.Display.Contrast = v
		a.upload()
	default:
		if err := a.Engine.SetParam(s.Key, v); err != nil {
			a.Err = err
		}
	}
}

func (a *App) cyclePalette() {
	names := viz.PaletteNames()
	next := names[0]
	for i, n := range names {
		if n == a.Renderer.Palette.Name {
			next = names[(i+1)%len(names)]
			break
		}
	}
	p, err := viz.NewPalette(next)
	if err != nil {
		log.Printf("palette %s: %v", next, err)
		return
	}
	a.setPalette(p)
	a.upload()
}

// upload pushes the current v field into the texture.
func (a *App) upload() {
	img := a.Renderer.Image(a.Engine.V(), 1)
	for i, idx := range img.Pix {
		a.pixels[i] = a.lut[idx]
	}
	rl.UpdateTexture(a.tex, a.pixels)
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)

	a.drawField()
	a.DrawHUD()

	rl.EndDrawing()
}

func (a *App) drawField() {
	h, w := a.Engine.Height(), a.Engine.Width()
	scale := float32(fieldSize) / float32(max(h, w))
	x := float32(40) + (fieldSize-float32(w)*scale)/2
	y := float32(40) + (fieldSize-float32(h)*scale)/2
	rl.DrawTextureEx(a.tex, rl.NewVector2(x, y), 0, scale, rl.White)
	rl.DrawRectangleLines(39, 39, fieldSize+2, fieldSize+2, ColTextDim)
}

func (a *App) status() (string, rl.Color) {
	switch {
	case errors.Is(a.Err, dynamo.ErrDegenerateTimestep):
		return "DEGENERATE (Du, Dv <= 0)", ColError
	case a.Err != nil:
		return "ERROR " + a.Err.Error(), ColError
	case !a.Running:
		return "PAUSED", ColTextDim
	}
	return "RUNNING", ColSelect
}

func (a *App) DrawHUD() {
	px := 720
	a.drawText("rdsim", px, 40, 32, ColSelect)
	a.drawText(fmt.Sprintf(":: %s", a.Name), px+110, 50, 16, ColText)

	status, col := a.status()
	a.drawText(status, px, 90, 16, col)

	a.drawText(fmt.Sprintf("step  %d", a.Engine.Steps()), px, 130, 16, ColText)
	a.drawText(fmt.Sprintf("time  %.1f", a.Engine.Time()), px, 152, 16, ColText)
	a.drawText(fmt.Sprintf("dt    %.4f", a.Engine.Dt()), px, 174, 16, ColText)
	a.drawText(fmt.Sprintf("cmap  %s", a.Renderer.Palette.Name), px, 196, 16, ColText)

	y := 240
	for i, s := range viz.Sliders {
		line := fmt.Sprintf("%-10s %8.3f", s.Key, a.value(s.Key))
		if i == a.ParamSel {
			a.drawText("> "+line, px, y, 20, ColSelect)
		} else {
			a.drawText("  "+line, px, y, 20, ColText)
		}
		bar := int32(200 * s.Fraction(a.value(s.Key)))
		rl.DrawRectangle(int32(px+320), int32(y+6), 200, 6, ColTextDim)
		rl.DrawRectangle(int32(px+320), int32(y+6), bar, 6, ColAccent)
		y += 28
	}

	a.DrawTelemetry(px, 480, 480, 100)

	a.drawText("[SPACE] PAUSE  [R] RESET  [TAB] SELECT  [UP/DOWN] TUNE  [C] COLORMAP  [Q] QUIT", 40, 690, 14, ColTextDim)
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), 1180, 690, 14, ColTextDim)
}

func (a *App) drawText(text string, x, y int, size int, color rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, color)
}

// DrawTelemetry plots the mean of v over recent frames.
func (a *App) DrawTelemetry(rectX, rectY, width, height int) {
	if len(a.Telemetry) < 2 {
		return
	}

	minVal, maxVal := a.Telemetry[0], a.Telemetry[0]
	for _, v := range a.Telemetry {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}
	if maxVal == minVal {
		maxVal = minVal + 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(rectX) + (float32(i)/float32(len(a.Telemetry)))*float32(width)
		norm := (val - minVal) / (maxVal - minVal)
		py := float32(rectY+height) - float32(norm)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, ColAccent)
	a.drawText(fmt.Sprintf("mean v %.4f", a.Telemetry[len(a.Telemetry)-1]), rectX, rectY+height+8, 14, ColText)
}
