package viz

import (
	"errors"
	"fmt"
	"image"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/rdsim/internal/dynamo"
	"github.com/san-kum/rdsim/internal/physics"
)

const (
	historyCapacity = 300
	panelWidth      = 48
	defaultCols     = 64
	defaultRows     = 32
)

// FrameSink receives rendered frames while recording.
type FrameSink interface {
	AddFrame(img *image.Paletted) error
	Close() error
}

type TickMsg time.Time

// Model drives a GrayScott engine from the terminal. Parameter changes take
// effect on the next step; a reset request is applied at the start of the
// next tick.
type Model struct {
	engine   *physics.GrayScott
	display  *Display
	renderer *Renderer
	theme    Theme

	name         string
	strength     float64
	fps          int
	cols, rows   int
	running      bool
	resetPending bool
	selected     int
	err          error
	vmean        []float64

	// NewRecorder opens a sink when recording starts. Recording is disabled
	// when nil.
	NewRecorder func() (FrameSink, error)
	recorder    FrameSink
	frames      int

	showHelp bool
}

func NewModel(g *physics.GrayScott, d *Display, p Palette, name string, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	return Model{
		engine:   g,
		display:  d,
		renderer: NewRenderer(d, p),
		theme:    ThemeCyberpunk,
		name:     name,
		strength: physics.DefaultRandomStrength,
		fps:      fps,
		cols:     defaultCols,
		rows:     defaultRows,
		running:  true,
		vmean:    make([]float64, 0, historyCapacity),
	}
}

// WithTheme selects the panel theme by name.
func (m Model) WithTheme(name string) Model {
	m.theme = GetTheme(name)
	return m
}

// WithStrength sets the noise amplitude used when resetting.
func (m Model) WithStrength(s float64) Model {
	m.strength = s
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.cols = max(8, msg.Width-panelWidth-4)
		m.rows = max(4, msg.Height-2)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.stopRecording()
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.resetPending = true
		case "tab":
			m.selected = (m.selected + 1) % len(Sliders)
		case "shift+tab":
			m.selected = (m.selected + len(Sliders) - 1) % len(Sliders)
		case "up", "k":
			m.adjustParam(1)
		case "down", "j":
			m.adjustParam(-1)
		case "c":
			m.cyclePalette()
		case "t":
			m.theme = m.theme.Next()
		case "x":
			m.engine.SetClamp(!m.engine.Clamp())
		case "g":
			m.toggleRecording()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		m.step()
		return m, m.tick()
	}
	return m, nil
}

// step applies a pending reset, then advances until the next drawable
// step or an error.
func (m *Model) step() {
	if m.resetPending {
		m.resetPending = false
		if err := m.engine.Reset(m.strength); err != nil {
			m.err = err
			return
		}
		m.err = nil
		m.vmean = m.vmean[:0]
	}
	if !m.running {
		return
	}

	for {
		if err := m.engine.Update(); err != nil {
			m.err = err
			return
		}
		if m.display.ShouldDraw(m.engine.Steps()) {
			break
		}
	}
	m.err = nil

	m.vmean = append(m.vmean, m.engine.Stats().VMean)
	if len(m.vmean) > historyCapacity {
		m.vmean = m.vmean[1:]
	}

	if m.recorder != nil {
		if err := m.recorder.AddFrame(m.renderer.Image(m.engine.V(), 1)); err != nil {
			log.Printf("recording: %v", err)
			m.stopRecording()
			return
		}
		m.frames++
	}
}

func (m *Model) value(key string) float64 {
	switch key {
	case "draw_skip":
		return float64(m.display.DrawSkip)
	case "contrast":
		return m.display.Contrast
	}
	return m.engine.GetParams()[key]
}

func (m *Model) adjustParam(dir int) {
	s := Sliders[m.selected]
	v := s.Move(m.value(s.Key), dir)
	switch s.Key {
	case "draw_skip":
		m.display.DrawSkip = int(v + 0.5)
	case "contrast":
		m.display.Contrast = v
	default:
		if err := m.engine.SetParam(s.Key, v); err != nil {
			m.err = err
		}
	}
}

func (m *Model) cyclePalette() {
	names := PaletteNames()
	next := names[0]
	for i, n := range names {
		if n == m.renderer.Palette.Name {
			next = names[(i+1)%len(names)]
			break
		}
	}
	p, err := NewPalette(next)
	if err != nil {
		m.err = err
		return
	}
	m.renderer.Palette = p
}

func (m *Model) toggleRecording() {
	if m.recorder != nil {
		m.stopRecording()
		return
	}
	if m.NewRecorder == nil {
		return
	}
	rec, err := m.NewRecorder()
	if err != nil {
		m.err = err
		return
	}
	m.recorder = rec
	m.frames = 0
}

func (m *Model) stopRecording() {
	if m.recorder == nil {
		return
	}
	if err := m.recorder.Close(); err != nil {
		log.Printf("closing recording: %v", err)
	}
	log.Printf("recorded %d frames", m.frames)
	m.recorder = nil
}

func (m Model) status() string {
	switch {
	case errors.Is(m.err, dynamo.ErrDegenerateTimestep):
		return StatusError.Render("DEGENERATE (Du, Dv <= 0)")
	case m.err != nil:
		return StatusError.Render("ERROR " + m.err.Error())
	case m.resetPending:
		return StatusPaused.Render("RESETTING")
	case !m.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render("RUNNING")
}

func (m Model) View() string {
	field := m.renderer.Terminal(m.engine.V(), m.cols, m.rows)

	var s strings.Builder
	s.WriteString(GradientText(strings.ToUpper(m.name), string(m.theme.Primary), string(m.theme.Secondary)) + "\n")
	s.WriteString(m.status())
	if m.recorder != nil {
		s.WriteString("  " + StatusRecording.Render(fmt.Sprintf("● REC %d", m.frames)))
	}
	s.WriteString("\n\n")

	s.WriteString(MetricLabel.Render("step") + MetricValue.Render(fmt.Sprintf("%d", m.engine.Steps())) + "\n")
	s.WriteString(MetricLabel.Render("time") + MetricValue.Render(fmt.Sprintf("%.1f", m.engine.Time())) + "\n")
	s.WriteString(MetricLabel.Render("dt") + MetricValue.Render(fmt.Sprintf("%.4f", m.engine.Dt())) + "\n")
	s.WriteString(MetricLabel.Render("colormap") + MetricValue.Render(m.renderer.Palette.Name) + "\n")
	s.WriteString(MetricLabel.Render("clamp") + MetricValue.Render(fmt.Sprintf("%t", m.engine.Clamp())) + "\n\n")

	for i, sl := range Sliders {
		v := m.value(sl.Key)
		line := fmt.Sprintf("%-9s %s %7.3f", sl.Key, ProgressBar(sl.Fraction(v), 14), v)
		if i == m.selected {
			s.WriteString(lipgloss.NewStyle().Foreground(m.theme.Primary).Bold(true).Render("> ") + line + "\n")
		} else {
			s.WriteString("  " + line + "\n")
		}
	}

	if len(m.vmean) > 1 {
		chart := asciigraph.Plot(m.vmean, asciigraph.Height(5), asciigraph.Width(panelWidth-20), asciigraph.Caption("mean v"))
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(m.theme.Secondary).Render(chart) + "\n")
	}

	s.WriteString("\n" + KeyHint.Render("SP:Pause R:Reset Tab:Select ↑↓:Tune\nC:Colormap T:Theme X:Clamp G:Record\n?:Help Q:Quit"))

	panel := panelStyle.BorderForeground(m.theme.Muted).Width(panelWidth).Render(s.String())
	main := lipgloss.JoinHorizontal(lipgloss.Top, field, " ", panel)
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space      Pause/resume             ║
║  R          Reseed the field         ║
║  Tab        Next control             ║
║  Up/K       Increase by one step     ║
║  Down/J     Decrease by one step     ║
║  C          Cycle colormap           ║
║  T          Cycle theme              ║
║  X          Toggle clamping to [0,1] ║
║  G          Toggle GIF recording     ║
║  ?          Toggle this help         ║
║  Q          Quit                     ║
╚══════════════════════════════════════╝`
