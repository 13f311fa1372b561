// Package tui shows a propagation live in the terminal: one recurrence
// step per frame, with the bound width history charted as it grows.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/pitmonticone/reach/internal/discretize"
	"github.com/pitmonticone/reach/internal/flowpipe"
	"github.com/pitmonticone/reach/internal/geo"
)

const historyCapacity = 600

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model steps the discrete recurrence frame by frame.
type Model struct {
	name     string
	div      *discretize.DiscreteIVP
	maxOrder float64
	steps    int

	z  *geo.Zonotope
	vz *geo.Zonotope

	step    int
	t       float64
	running bool
	done    bool

	widths []float64
}

// NewModel prepares a live view of the given discretized problem.
func NewModel(name string, div *discretize.DiscreteIVP, steps int, maxOrder float64) Model {
	m := Model{
		name:     name,
		div:      div,
		maxOrder: maxOrder,
		steps:    steps,
		running:  true,
		widths:   make([]float64, 0, historyCapacity),
	}
	m.reset()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		}
	case TickMsg:
		if m.running && !m.done {
			m.advance()
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func (m *Model) reset() {
	m.z = geo.ToZonotope(m.div.Omega0).Reduce(m.maxOrder)
	m.vz = nil
	if m.div.Controlled() {
		m.vz = geo.ToZonotope(m.div.V)
	}
	m.step = 0
	m.t = 0
	m.done = false
	m.widths = m.widths[:0]
	m.record()
}

func (m *Model) advance() {
	if m.step >= m.steps {
		m.done = true
		return
	}
	m.z = flowpipe.Step(m.div, m.z, m.vz).Reduce(m.maxOrder)
	m.step++
	m.t += m.div.Delta
	m.record()
}

func (m *Model) record() {
	b := m.z.Box()
	w := 0.0
	for _, r := range b.Radius {
		w += 2 * r
	}
	m.widths = append(m.widths, w)
	if len(m.widths) > historyCapacity {
		m.widths = m.widths[1:]
	}
}

func (m Model) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")

	status := "RUNNING"
	if m.done {
		status = "DONE"
	} else if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n")

	if len(m.widths) > 1 {
		chart := asciigraph.Plot(m.widths,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Caption("total bound width"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(labelStyle.Render("Step") + valueStyle.Render(fmt.Sprintf("%d / %d", m.step, m.steps)) + "\n")
	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.3fs", m.t)) + "\n")
	s.WriteString(labelStyle.Render("Order") + valueStyle.Render(fmt.Sprintf("%.1f", m.z.Order())) + "\n")

	b := m.z.Box()
	lo, hi := b.Lo(), b.Hi()
	for i := range lo {
		if i >= 4 {
			s.WriteString(labelStyle.Render("...") + "\n")
			break
		}
		s.WriteString(labelStyle.Render(fmt.Sprintf("x%d", i)) +
			valueStyle.Render(fmt.Sprintf("[%.4f, %.4f]", lo[i], hi[i])) + "\n")
	}

	s.WriteString(helpStyle.Render("SP:Pause  R:Restart  Q:Quit"))
	return s.String()
}
