// Package tui provides a Bubble Tea terminal user interface for aiu.
//
// The input is either Bandcamp URLs, fetched before their metadata is
// applied, or a local album directory.
package tui

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/handiism/audio-info-updater/internal/config"
	"github.com/handiism/audio-info-updater/internal/download"
	"github.com/handiism/audio-info-updater/internal/logging"
	"github.com/handiism/audio-info-updater/internal/model"
	"github.com/handiism/audio-info-updater/internal/report"
	"github.com/handiism/audio-info-updater/internal/updater"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	collectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))
)

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateProcessing
	StateComplete
	StateError
)

// maxLogs is the number of log lines kept on screen.
const maxLogs = 10

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   download.ProgressLevel
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	logs      []LogEntry
	names     []string
	err       error

	ctx    context.Context
	cancel context.CancelFunc
	events chan download.ProgressEvent

	manager     *download.Manager
	pipeline    *updater.Pipeline
	collections []*model.Collection
	outcomes    []updater.Outcome
	runID       string

	totalFiles      int32
	downloadedFiles int32
	receivedBytes   int64

	// Options
	discography bool
	playlist    bool
	rename      bool
	dryRun      bool
	verbose     bool

	width  int
	height int
}

// NewModel creates a new TUI model starting from settings.
func NewModel(settings *config.Settings) Model {
	if settings == nil {
		settings = config.DefaultSettings()
	}

	ti := textinput.New()
	ti.Placeholder = "https://artist.bandcamp.com/album/name or /path/to/album"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:       StateInput,
		textInput:   ti,
		spinner:     sp,
		progress:    prog,
		settings:    settings,
		ctx:         ctx,
		cancel:      cancel,
		events:      make(chan download.ProgressEvent, 64),
		discography: settings.DownloadArtistDiscography,
		playlist:    settings.CreatePlaylist,
		rename:      settings.Rename,
		dryRun:      settings.DryRun,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.waitForEvent())
}

// Message types
type (
	// ProgressMsg carries a progress event or log line.
	ProgressMsg struct {
		Event download.ProgressEvent
	}

	// InitDoneMsg is sent when the collections are known.
	InitDoneMsg struct {
		Collections []*model.Collection
		Manager     *download.Manager
		Pipeline    *updater.Pipeline
		Err         error
	}

	// ProcessDoneMsg is sent when every collection has been processed.
	ProcessDoneMsg struct {
		Outcomes []updater.Outcome
		Err      error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = min(max(msg.Width-20, 20), 80)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.cancel()
			return m, tea.Quit

		case "esc":
			if m.state == StateInput {
				return m, tea.Quit
			}
			if m.state == StateProcessing || m.state == StateInitializing {
				m.cancel()
				m.state = StateError
				m.err = fmt.Errorf("cancelled by user")
			}

		case "enter":
			if m.state == StateInput && strings.TrimSpace(m.textInput.Value()) != "" {
				m.state = StateInitializing
				m.runID = uuid.NewString()
				return m, tea.Batch(m.initialize(), m.spinner.Tick)
			}

		case "ctrl+d":
			if m.state == StateInput {
				m.discography = !m.discography
			}

		case "ctrl+p":
			if m.state == StateInput {
				m.playlist = !m.playlist
			}

		case "ctrl+r":
			if m.state == StateInput {
				m.rename = !m.rename
			}

		case "ctrl+n":
			if m.state == StateInput {
				m.dryRun = !m.dryRun
			}

		case "ctrl+o":
			if m.state == StateInput {
				m.verbose = !m.verbose
			}

		case "q":
			if m.state == StateComplete || m.state == StateError {
				return m, tea.Quit
			}

		case "r":
			if m.state == StateComplete || m.state == StateError {
				m.reset()
				return m, textinput.Blink
			}
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, m.waitForEvent())
		if msg.Event.Level == download.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{Message: msg.Event.Message, Level: msg.Event.Level})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case InitDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
			break
		}
		m.collections = msg.Collections
		m.manager = msg.Manager
		m.pipeline = msg.Pipeline
		if msg.Manager != nil {
			m.names = msg.Manager.GetCollectionNames()
		} else {
			m.names = make([]string, len(msg.Collections))
			for i, c := range msg.Collections {
				m.names[i] = fmt.Sprintf("%s (%d files)", c.Name, len(c.Files))
			}
		}
		m.state = StateProcessing
		cmds = append(cmds, m.process(), m.tickProgress())

	case ProcessDoneMsg:
		m.outcomes = msg.Outcomes
		m.syncProgress()
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case len(msg.Outcomes) == 0 && msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			// Per-collection errors are shown in the summary.
			m.state = StateComplete
		}

	case TickMsg:
		if m.state == StateProcessing {
			m.syncProgress()
			var percent float64
			if m.totalFiles > 0 {
				percent = float64(m.downloadedFiles) / float64(m.totalFiles)
			}
			cmds = append(cmds, m.progress.SetPercent(percent), m.tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) reset() {
	m.state = StateInput
	m.logs = nil
	m.names = nil
	m.err = nil
	m.downloadedFiles = 0
	m.totalFiles = 0
	m.receivedBytes = 0
	m.manager = nil
	m.pipeline = nil
	m.collections = nil
	m.outcomes = nil
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.SetValue("")
	m.textInput.Focus()
}

func (m *Model) syncProgress() {
	if m.manager == nil {
		return
	}
	received, _, files, totalFiles := m.manager.GetProgress()
	m.receivedBytes = received
	m.downloadedFiles = files
	m.totalFiles = totalFiles
}

// tickProgress returns a command to tick progress updates.
func (m Model) tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent delivers the next progress event as a ProgressMsg.
func (m Model) waitForEvent() tea.Cmd {
	events := m.events
	return func() tea.Msg {
		return ProgressMsg{Event: <-events}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("♪ Audio Info Updater"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Match metadata to audio files and tag them"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateProcessing:
		b.WriteString(m.viewProcessing())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func check(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter Bandcamp URL or album directory:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s Fetch whole discography (ctrl+d)\n", check(m.discography))
	fmt.Fprintf(&b, "  %s Create playlist (ctrl+p)\n", check(m.playlist))
	fmt.Fprintf(&b, "  %s Rename files (ctrl+r)\n", check(m.rename))
	fmt.Fprintf(&b, "  %s Dry run (ctrl+n)\n", check(m.dryRun))
	fmt.Fprintf(&b, "  %s Verbose output (ctrl+o)\n", check(m.verbose))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Download path: %s", m.settings.DownloadsPath)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Reading metadata..."))
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewProcessing() string {
	var b strings.Builder

	if len(m.names) > 0 {
		b.WriteString(successStyle.Render(fmt.Sprintf("Found %d collection(s):", len(m.names))))
		b.WriteString("\n")
		for _, name := range m.names {
			b.WriteString(collectionStyle.Render("  ♪ " + name))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.manager != nil {
		var percent float64
		if m.totalFiles > 0 {
			percent = float64(m.downloadedFiles) / float64(m.totalFiles)
		}
		b.WriteString(m.progress.ViewAs(percent))
		b.WriteString("\n")
		b.WriteString(infoStyle.Render(fmt.Sprintf(
			"Files: %d/%d | Downloaded: %.2f MB",
			m.downloadedFiles,
			m.totalFiles,
			float64(m.receivedBytes)/1024/1024,
		)))
		b.WriteString("\n\n")
	} else {
		b.WriteString(m.spinner.View())
		b.WriteString(" ")
		b.WriteString(subtitleStyle.Render("Matching files..."))
		b.WriteString("\n\n")
	}

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	title := "Done"
	if m.dryRun {
		title = "Done (dry run, nothing written)"
	}
	b.WriteString(successStyle.Render(title))
	b.WriteString("\n\n")
	b.WriteString(report.Summary(report.FromOutcomes(m.runID, m.outcomes)...))
	b.WriteString("\n")

	if len(m.outcomes) == 1 && m.outcomes[0].Result != nil {
		b.WriteString("\n")
		b.WriteString(report.Details(m.outcomes[0].Result))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case download.LevelError:
			style = errorStyle
			prefix = "✗"
		case download.LevelWarning:
			style = warningStyle
			prefix = "!"
		case download.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case download.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • ctrl+d: discography • ctrl+p: playlist • ctrl+r: rename • ctrl+n: dry run • ctrl+o: verbose • esc: quit"
	case StateInitializing, StateProcessing:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: start over • q: quit"
	}
	return ""
}

// options returns a copy of the settings with the toggles applied.
func (m Model) options() *config.Settings {
	s := *m.settings
	s.DownloadArtistDiscography = m.discography
	s.CreatePlaylist = m.playlist
	s.Rename = m.rename
	s.DryRun = m.dryRun
	return &s
}

// send forwards an event without blocking the caller.
func (m Model) send(event download.ProgressEvent) {
	select {
	case m.events <- event:
	default:
	}
}

// eventWriter turns log lines into progress events.
type eventWriter struct {
	send func(download.ProgressEvent)
}

func (w eventWriter) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(bytes.TrimSpace(p), []byte("\n")) {
		if len(line) > 0 {
			w.send(download.ProgressEvent{Message: string(line), Level: download.LevelVerbose})
		}
	}
	return len(p), nil
}

// runContext carries a logger that writes into the UI instead of stderr.
func (m Model) runContext() context.Context {
	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:          eventWriter{send: m.send},
		NoColor:      true,
		PartsExclude: []string{zerolog.TimestampFieldName},
	}).Level(zerolog.InfoLevel)
	if m.verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}
	ctx := logging.WithLogger(m.ctx, &logger)
	return logging.WithRunID(ctx, m.runID)
}

// initialize builds the pipeline and the collections from the input.
func (m *Model) initialize() tea.Cmd {
	input := strings.TrimSpace(m.textInput.Value())
	settings := m.options()
	ctx := m.runContext()
	send := m.send

	return func() tea.Msg {
		wordlists, err := config.LoadWordlists(settings)
		if err != nil {
			return InitDoneMsg{Err: err}
		}
		pipeline, err := updater.NewPipeline(settings, wordlists, model.RawRecord{})
		if err != nil {
			return InitDoneMsg{Err: err}
		}

		if len(download.ParseInputURLs(input)) > 0 {
			manager := download.NewManager(settings, send)
			collections, err := manager.Initialize(ctx, input)
			if err != nil {
				return InitDoneMsg{Err: err}
			}
			return InitDoneMsg{Collections: collections, Manager: manager, Pipeline: pipeline}
		}

		c, err := updater.Discover(input, updater.Sources{})
		if err != nil {
			return InitDoneMsg{Err: err}
		}
		return InitDoneMsg{Collections: []*model.Collection{c}, Pipeline: pipeline}
	}
}

// process fetches, resolves and applies every collection in background.
func (m *Model) process() tea.Cmd {
	ctx := m.runContext()
	var fetcher updater.Fetcher
	if m.manager != nil {
		fetcher = m.manager
	}
	runner := updater.NewRunner(m.pipeline, fetcher, m.settings.MaxConcurrentCollections)
	collections := m.collections

	return func() tea.Msg {
		outcomes, err := runner.Run(ctx, collections)
		return ProcessDoneMsg{Outcomes: outcomes, Err: err}
	}
}

// Run starts the TUI application.
func Run(settings *config.Settings) error {
	p := tea.NewProgram(NewModel(settings), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
