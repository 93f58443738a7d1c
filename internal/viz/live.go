package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/rotorsim/internal/sim"
	"github.com/san-kum/rotorsim/internal/units"
)

const (
	canvasWidth     = 40
	canvasHeight    = 10
	historyCapacity = 600
	frameRate       = 30
	maxStepsPerTick = 64
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Live steps a simulation run on every frame and draws it.
type Live struct {
	run    *sim.Run
	title  string
	wind   float64
	blades int

	stepsPerTick int
	running      bool
	showHelp     bool
	err          error

	last    sim.Sample
	speeds  []float64
	windMph []float64
	angle   float64
	canvas  *Canvas
}

// NewLive wraps a started run. wind is in the run's speed units.
func NewLive(run *sim.Run, title string, wind float64, blades int) *Live {
	l := &Live{
		run:          run,
		title:        title,
		wind:         wind,
		blades:       max(blades, 1),
		stepsPerTick: 1,
		running:      true,
		canvas:       NewCanvas(canvasWidth, canvasHeight),
	}
	if s, ok := run.Result().Final(); ok {
		l.record(s)
	}
	return l
}

func (l *Live) Init() tea.Cmd { return tick() }

func (l *Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return l, tea.Quit
		case " ":
			l.running = !l.running
		case "+", "=":
			l.stepsPerTick = min(2*l.stepsPerTick, maxStepsPerTick)
		case "-", "_":
			l.stepsPerTick = max(l.stepsPerTick/2, 1)
		case "t":
			NextTheme()
		case "?":
			l.showHelp = !l.showHelp
		}
	case TickMsg:
		if l.running && !l.Done() {
			l.advance()
		}
		l.spin()
		return l, tick()
	}
	return l, nil
}

func (l *Live) advance() {
	for i := 0; i < l.stepsPerTick; i++ {
		smp, done, err := l.run.Next()
		if err != nil {
			l.err = err
			return
		}
		l.record(smp)
		if done {
			return
		}
	}
}

func (l *Live) record(s sim.Sample) {
	l.last = s
	l.speeds = append(l.speeds, units.FpsToMph(s.Speed))
	l.windMph = append(l.windMph, units.FpsToMph(l.wind))
	if len(l.speeds) > historyCapacity {
		l.speeds = l.speeds[1:]
		l.windMph = l.windMph[1:]
	}
}

// spin turns the drawn rotor at its real speed relative to wall time.
func (l *Live) spin() {
	omega := l.last.RotorRPM * 2 * math.Pi / 60
	l.angle = math.Mod(l.angle+omega/frameRate, 2*math.Pi)
}

// Done reports whether the run finished or failed.
func (l *Live) Done() bool { return l.err != nil || l.run.Done() }

func (l *Live) Err() error { return l.err }

// Result is the run's result so far.
func (l *Live) Result() *sim.Result { return l.run.Result() }

func (l *Live) draw() {
	c := l.canvas
	c.Clear()
	w, h := c.Dots()
	ground := h - 2
	c.Line(0, ground, w-1, ground)

	// Cart wraps around the track; 1 dot per unit of distance.
	x := int(math.Mod(l.last.Position, float64(w)))
	if x < 0 {
		x += w
	}
	wheel := 3
	c.Circle(x-6, ground-wheel, wheel)
	c.Circle(x+6, ground-wheel, wheel)
	body := ground - 2*wheel - 1
	c.Line(x-10, body, x+10, body)

	hub := body - 16
	c.Line(x, body, x, hub)
	c.Rotor(x, hub, 12, l.blades, l.angle)
}

func (l *Live) status() string {
	switch {
	case l.err != nil:
		return StatusError.Render("ERROR: " + l.err.Error())
	case l.run.Done():
		res := l.run.Result()
		if res.MaxSpeedStep >= 0 {
			return StatusDone.Render(fmt.Sprintf("MAX SPEED at step %d", res.MaxSpeedStep))
		}
		return StatusDone.Render("STEP LIMIT")
	case !l.running:
		return StatusPaused.Render("PAUSED")
	}
	return StatusRunning.Render(fmt.Sprintf("RUNNING x%d", l.stepsPerTick))
}

func (l *Live) View() string {
	if l.showHelp {
		return Panel.Render(strings.Join([]string{
			Title.Render("KEYS"),
			"space  pause / resume",
			"+ / -  steps per frame",
			"t      next theme",
			"?      toggle help",
			"q      quit",
		}, "\n"))
	}

	l.draw()
	s := l.last
	f := s.Forces

	var b strings.Builder
	b.WriteString(Title.Render(strings.ToUpper(l.title)) + "\n")
	b.WriteString(l.status() + "\n\n")
	b.WriteString(Metric("Time", "%.1f s", s.Time) + "\n")
	b.WriteString(Metric("Speed", "%.2f mph", units.FpsToMph(s.Speed)) + "\n")
	b.WriteString(Metric("Wind", "%.2f mph", units.FpsToMph(l.wind)) + "\n")
	b.WriteString(Metric("Pitch", "%.2f deg", s.Pitch) + "\n")
	b.WriteString(Metric("Rotor", "%.1f rpm", s.RotorRPM) + "\n")
	b.WriteString(Metric("CT / CP", "%.5f / %.6f", s.CT, s.CP) + "\n\n")
	b.WriteString(Metric("Thrust", "%+.2f", f.RotorThrust) + "\n")
	b.WriteString(Metric("Aero drag", "%+.2f", f.AeroDrag) + "\n")
	b.WriteString(Metric("Rotor drag", "%+.2f", f.RotorDrag) + "\n")
	b.WriteString(Metric("Rolling", "%+.2f", f.Rolling) + "\n")
	b.WriteString(Metric("Net", "%+.2f", f.Net()) + "\n")
	stats := Panel.Render(b.String())

	left := Panel.Render(l.canvas.String())
	if len(l.speeds) > 1 {
		left = lipgloss.JoinVertical(lipgloss.Left, left, speedPlot(l.speeds, l.windMph, 2*canvasWidth, 8))
	}
	hint := KeyHint.Render("space:pause  +/-:speed  t:theme  ?:help  q:quit")
	return lipgloss.JoinVertical(lipgloss.Left, lipgloss.JoinHorizontal(lipgloss.Top, left, stats), hint)
}
