package tui

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/audio-info-updater/internal/config"
	"github.com/handiism/audio-info-updater/internal/download"
)

func testSettings() *config.Settings {
	s := config.DefaultSettings()
	s.UseTagMatch = false
	s.ModifyTags = false
	s.SaveCoverArtInTags = false
	return s
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func TestModel_Toggles(t *testing.T) {
	m := NewModel(testSettings())

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	assert.True(t, m.discography)
	assert.True(t, m.dryRun)

	s := m.options()
	assert.True(t, s.DownloadArtistDiscography)
	assert.True(t, s.DryRun)
	assert.False(t, m.settings.DryRun)
	assert.Contains(t, m.View(), "[x] Dry run")
}

func TestModel_InitError(t *testing.T) {
	m := NewModel(testSettings())
	m.state = StateInitializing

	m = update(t, m, InitDoneMsg{Err: errors.New("no album URL given")})
	assert.Equal(t, StateError, m.state)
	assert.Contains(t, m.View(), "no album URL given")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	assert.Equal(t, StateInput, m.state)
	assert.Nil(t, m.err)
}

func TestModel_LocalDirectory(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"01 alpha.mp3": "a",
		"02 beta.mp3":  "b",
		"info.csv":     "track,title\n1,alpha\n2,beta\n",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	m := NewModel(testSettings())
	m.textInput.SetValue(dir)
	m.runID = "run"

	ready, ok := m.initialize()().(InitDoneMsg)
	require.True(t, ok)
	require.NoError(t, ready.Err)
	require.Len(t, ready.Collections, 1)
	assert.Nil(t, ready.Manager)

	m = update(t, m, ready)
	require.Equal(t, StateProcessing, m.state)
	assert.Contains(t, m.View(), "(2 files)")

	done, ok := m.process()().(ProcessDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.Err)

	m = update(t, m, done)
	require.Equal(t, StateComplete, m.state)
	view := m.View()
	assert.Contains(t, view, "complete")
	assert.Contains(t, view, "Beta")
}

func TestModel_VerboseEventsHidden(t *testing.T) {
	m := NewModel(testSettings())

	m = update(t, m, ProgressMsg{Event: download.ProgressEvent{Message: "detail", Level: download.LevelVerbose}})
	m = update(t, m, ProgressMsg{Event: download.ProgressEvent{Message: "Found album", Level: download.LevelInfo}})
	require.Len(t, m.logs, 1)
	assert.Equal(t, "Found album", m.logs[0].Message)
}

func TestEventWriter(t *testing.T) {
	var got []download.ProgressEvent
	w := eventWriter{send: func(e download.ProgressEvent) { got = append(got, e) }}

	n, err := w.Write([]byte("first line\nsecond line\n"))
	require.NoError(t, err)
	assert.Equal(t, 23, n)
	require.Len(t, got, 2)
	assert.Equal(t, "second line", got[1].Message)
	assert.Equal(t, download.LevelVerbose, got[1].Level)
}
