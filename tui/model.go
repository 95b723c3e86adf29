package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joctavio287/Dichotic/engine"
)

type sceneMsg struct{ scene engine.Scene }

type doneMsg struct{}

type model struct {
	b      *Backend
	width  int
	height int
	scene  engine.Scene

	page  lipgloss.Style
	text  lipgloss.Style
	cross lipgloss.Style
}

func newModel(cfg engine.DisplayConfig, b *Backend) model {
	return model{
		b:     b,
		page:  lipgloss.NewStyle().Background(termColor(cfg.BGColor)),
		text:  lipgloss.NewStyle().Foreground(termColor(cfg.TextColor)).Align(lipgloss.Center),
		cross: lipgloss.NewStyle().Foreground(termColor(cfg.FixationColor)).Bold(true),
	}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case sceneMsg:
		m.scene = msg.scene
	case doneMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.b.closed.Store(true)
			return m, nil
		}
		m.b.press(KeyName(msg.String()))
	}
	return m, nil
}

func (m model) View() string {
	var parts []string
	for _, item := range m.scene.Items {
		switch it := item.(type) {
		case *engine.Text:
			style := m.text
			if m.width > 0 {
				style = style.Width(m.width * 8 / 10)
			}
			parts = append(parts, style.Render(it.Text))
		case *engine.Shape:
			parts = append(parts, m.cross.Render(glyph(it.Form)))
		}
	}
	body := strings.Join(parts, "\n\n")
	if m.width == 0 || m.height == 0 {
		return body
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body,
		lipgloss.WithWhitespaceBackground(m.page.GetBackground()))
}

func glyph(f engine.ShapeForm) string {
	switch f {
	case engine.Cross:
		return "  │  \n──┼──\n  │  "
	case engine.Rect:
		return "┌───┐\n│   │\n└───┘"
	}
	return ""
}

// KeyName maps bubbletea key strings to engine key names.
func KeyName(s string) string {
	switch s {
	case " ", "space":
		return engine.KeySpace
	case "esc":
		return engine.KeyEscape
	case "enter":
		return "return"
	}
	return strings.ToLower(s)
}

func termColor(c engine.Color) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
