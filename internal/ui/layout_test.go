package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestContentHeight(t *testing.T) {
	assert.Equal(t, 22, NewLayout(80, 24).ContentHeight())
	assert.Equal(t, 0, NewLayout(80, 1).ContentHeight())
}

func TestRenderHeaderFillsWidth(t *testing.T) {
	l := NewLayout(60, 24)
	header := l.RenderHeader("Guidance", "owner: local")
	assert.Equal(t, 60, lipgloss.Width(header))
	assert.Contains(t, header, "Guidance")
	assert.Contains(t, header, "owner: local")
}

func TestRenderStatusBarShowsErrorInsteadOfHints(t *testing.T) {
	l := NewLayout(60, 24)

	bar := l.RenderStatusBar("q quit", nil)
	assert.Contains(t, bar, "q quit")

	bar = l.RenderStatusBar("q quit", errors.New("steps incomplete"))
	assert.Contains(t, bar, "steps incomplete")
	assert.False(t, strings.Contains(bar, "q quit"))
}
