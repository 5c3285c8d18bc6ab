package main

import (
	"strings"
	"testing"

	"gopetro/domain/core"
	"gopetro/domain/sample"
	"gopetro/internal/dataset"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tuiFixture(t *testing.T) tuiModel {
	t.Helper()
	ds, err := dataset.Build("tui", []sample.Sample{
		{ID: core.SampleID("1"), Measurements: sample.Measurements{CV: 0.1, HI: 0.3, RQI: 15, FZI: 3.5}},
		{ID: core.SampleID("2"), Measurements: sample.Measurements{CV: 1.2, HI: 1.5, RQI: 8, FZI: 1.0}},
	})
	require.NoError(t, err)
	m, err := newTUIModel(dataset.NewStaticStore(ds))
	require.NoError(t, err)
	return m
}

func press(t *testing.T, m tuiModel, msg tea.KeyMsg) tuiModel {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(tuiModel)
}

func TestTUIChangesFocusedAxis(t *testing.T) {
	m := tuiFixture(t)
	assert.Contains(t, m.View(), "[X: CV]")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, sample.VariableHI, m.render.XAxis)
	assert.Equal(t, "Scatter Plot of HI vs HI", m.render.Title)

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Contains(t, m.View(), "[Y: HI]")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("4")})
	assert.Equal(t, sample.VariableFZI, m.render.YAxis)
	assert.Equal(t, sample.VariableHI, m.controller.Selection().X)
	assert.Equal(t, sample.VariableFZI, m.controller.Selection().Y)
}

func TestTUIWrapsAround(t *testing.T) {
	m := tuiFixture(t)
	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, sample.VariableFZI, m.render.XAxis)
}

func TestTUIQuit(t *testing.T) {
	m := tuiFixture(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestTUIView(t *testing.T) {
	m := tuiFixture(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	view := next.(tuiModel).View()
	assert.True(t, strings.HasPrefix(view, "[X: CV]   Y: HI "))
	assert.Contains(t, view, "o Suitable (1)")
	assert.Contains(t, view, "q quit")
}
