package main

import (
	"fmt"
	"slices"
	"strings"

	"gopetro/domain/sample"
	"gopetro/domain/view"
	viewctl "gopetro/internal/view"
	"gopetro/ui/services"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type keyMap struct {
	Switch key.Binding
	Prev   key.Binding
	Next   key.Binding
	Pick   key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Switch, k.Prev, k.Next, k.Pick, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Switch: key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch axis")),
	Prev:   key.NewBinding(key.WithKeys("left", "h", "up", "k"), key.WithHelp("←", "prev")),
	Next:   key.NewBinding(key.WithKeys("right", "l", "down", "j"), key.WithHelp("→", "next")),
	Pick:   key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "pick")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

// tuiModel shows two axis selectors over an ASCII scatter. Every key that
// changes an axis is sent to the controller as a selection event.
type tuiModel struct {
	controller *viewctl.Controller
	plot       *services.RenderService
	help       help.Model
	focus      view.Axis
	render     view.RenderDescription
	err        error
}

func newTUIModel(provider viewctl.DatasetProvider) (tuiModel, error) {
	ctl := viewctl.NewController(nil)
	rd, err := ctl.Initialize(provider)
	if err != nil {
		return tuiModel{}, err
	}
	return tuiModel{
		controller: ctl,
		plot:       services.NewRenderService(60, 18),
		help:       help.New(),
		focus:      view.AxisX,
		render:     rd,
	}, nil
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.plot = services.NewRenderService(msg.Width-14, msg.Height-10)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Switch):
			if m.focus == view.AxisX {
				m.focus = view.AxisY
			} else {
				m.focus = view.AxisX
			}
		case key.Matches(msg, keys.Next):
			m = m.selectVariable(m.step(1))
		case key.Matches(msg, keys.Prev):
			m = m.selectVariable(m.step(-1))
		case key.Matches(msg, keys.Pick):
			vars := sample.Variables()
			m = m.selectVariable(string(vars[int(msg.String()[0]-'1')]))
		}
	}
	return m, nil
}

// step returns the variable delta places from the focused axis' current one
func (m tuiModel) step(delta int) string {
	vars := sample.Variables()
	current := m.render.XAxis
	if m.focus == view.AxisY {
		current = m.render.YAxis
	}
	i := slices.Index(vars, current)
	return string(vars[((i+delta)%len(vars)+len(vars))%len(vars)])
}

func (m tuiModel) selectVariable(variable string) tuiModel {
	rd, err := m.controller.HandleSelectionChanged(view.SelectionChanged{Axis: m.focus, Variable: variable})
	m.err = err
	if err == nil {
		m.render = rd
	}
	return m
}

func (m tuiModel) View() string {
	var b strings.Builder

	selector := func(axis view.Axis, v sample.Variable) string {
		label := fmt.Sprintf("%s: %s", strings.ToUpper(string(axis)), v)
		if axis == m.focus {
			return "[" + label + "]"
		}
		return " " + label + " "
	}
	fmt.Fprintf(&b, "%s  %s\n\n", selector(view.AxisX, m.render.XAxis), selector(view.AxisY, m.render.YAxis))
	b.WriteString(m.plot.Scatter(m.render))
	if m.err != nil {
		fmt.Fprintf(&b, "\nerror: %v\n", m.err)
	}
	b.WriteString("\n" + m.help.View(keys) + "\n")
	return b.String()
}
