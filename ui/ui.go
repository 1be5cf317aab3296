// Package ui provides the read-aloud pager: the article in a scrollable
// viewport with the primary player above or below it, and a sticky
// mini-player once the primary player has scrolled out of view.
package ui

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	te "github.com/muesli/termenv"

	"github.com/wptts/readaloud/internal/config"
	"github.com/wptts/readaloud/tts"
	"github.com/wptts/readaloud/tts/sentence"
	"github.com/wptts/readaloud/tts/sticky"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied!"
	ellipsis             = "…"
)

// Player is the playback controller as seen by the pager.
type Player interface {
	sticky.Player
	SetRate(rate float64)
}

// SettingsMsg delivers reloaded settings to a running program.
type SettingsMsg config.Settings

type (
	errMsg                  struct{ err error }
	stateMsg                tts.State
	contentRenderedMsg      string
	statusMessageTimeoutMsg struct{}
)

func (e errMsg) Error() string { return e.err.Error() }

// NewProgram returns a new Tea program. player may be nil when speech is
// unsupported; cfg.Unsupported should be set in that case.
func NewProgram(cfg Config, player Player) *tea.Program {
	log.Debug(
		"Starting listener",
		"glamour", cfg.GlamourEnabled,
		"unsupported", cfg.Unsupported,
	)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(cfg, player), opts...)
}

type model struct {
	cfg      Config
	settings config.Settings

	player   Player
	presence *sticky.Presence
	bridge   *bridge
	unsub    func()
	speed    *tts.SpeedSelector
	state    tts.State

	meta string

	keys     keyMap
	help     help.Model
	showHelp bool

	pager    pagerModel
	width    int
	height   int
	fatalErr error
}

func newModel(cfg Config, player Player) model {
	if cfg.GlamourStyle == "" || cfg.GlamourStyle == styles.AutoStyle {
		if te.HasDarkBackground() {
			cfg.GlamourStyle = styles.DarkStyle
		} else {
			cfg.GlamourStyle = styles.LightStyle
		}
	}

	words := sentence.CountWords(cfg.PlainText)
	m := model{
		cfg:      cfg,
		settings: cfg.Settings,
		meta:     metaLine(words, sentence.EstimateDuration(cfg.PlainText, cfg.Settings.SpeechRate)),
		keys:     newKeyMap(),
		help:     help.New(),
		pager:    newPagerModel(),
	}
	if cfg.Unsupported {
		player = nil
	}
	if player != nil {
		m.player = player
		m.state = player.State()
		m.bridge = newBridge()
		m.unsub = player.Subscribe(m.bridge.push)
		m.presence = sticky.New(player, cfg.Settings.StickyPlayer, cfg.Settings.Labels())
		m.presence.OnChange(logStickyVisibility())
	}

	// the speed label shows the rate the controller actually uses
	rate := cfg.Settings.SpeechRate
	if m.player != nil {
		rate = m.state.Rate
	}
	m.speed = tts.NewSpeedSelector(rate)
	return m
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{renderWithGlamour(m.cfg, m.pager.viewport.Width, m.cfg.Markdown)}
	if m.bridge != nil {
		cmds = append(cmds, m.bridge.wait)
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// If there's been an error, any key exits
	if m.fatalErr != nil {
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, tea.Quit
		}
	}

	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.shutdown()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			m.toggle()
		case key.Matches(msg, m.keys.Stop):
			m.stop()
		case key.Matches(msg, m.keys.Faster):
			m.changeSpeed(m.speed.Next)
		case key.Matches(msg, m.keys.Slower):
			m.changeSpeed(m.speed.Previous)
		case key.Matches(msg, m.keys.Copy):
			// Copy using OSC 52
			te.Copy(m.cfg.PlainText)
			// Copy using native system clipboard
			_ = clipboard.WriteAll(m.cfg.PlainText)
			cmds = append(cmds, m.pager.showStatusMessage("Copied text"))
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			m.setSize(m.width, m.height)
		default:
			m.pager.scroll(msg, m.keys)
		}
		m.syncPresence()

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.pager.viewport, cmd = m.pager.viewport.Update(msg)
		cmds = append(cmds, cmd)
		m.syncPresence()

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.setSize(msg.Width, msg.Height)
		cmds = append(cmds, renderWithGlamour(m.cfg, m.pager.viewport.Width, m.cfg.Markdown))

	case contentRenderedMsg:
		m.pager.rendered = string(msg)
		m.refresh()

	case stateMsg:
		s := tts.State(msg)
		if s.Seq >= m.state.Seq {
			m.state = s
			m.refresh()
		}
		cmds = append(cmds, m.bridge.wait)

	case SettingsMsg:
		m.applySettings(config.Settings(msg))

	case statusMessageTimeoutMsg:
		m.pager.clearStatusMessage()

	case errMsg:
		log.Error("listener error", "error", msg.err)
		m.fatalErr = msg.err
	}

	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if m.fatalErr != nil {
		return errorView(m.fatalErr.Error(), m.width)
	}
	line, hasSticky := m.stickyLine()
	return m.pager.View(line, hasSticky, m.statusNote(), m.helpView(), m.width)
}

func (m *model) toggle() {
	if m.player == nil {
		return
	}
	if m.presence != nil && m.presence.Visible() {
		m.presence.Toggle()
		return
	}
	m.player.TogglePlayPause()
}

func (m *model) stop() {
	if m.player == nil {
		return
	}
	if m.presence != nil && m.presence.Visible() {
		m.presence.Stop()
		return
	}
	m.player.Stop()
}

func (m *model) changeSpeed(step func() (float64, bool)) {
	if m.player == nil || !m.settings.ShowSpeedControl {
		return
	}
	if rate, ok := step(); ok {
		m.player.SetRate(rate)
	}
}

func (m *model) applySettings(s config.Settings) {
	m.settings = s
	if m.presence != nil {
		m.presence.SetLabels(s.Labels())
	}
	m.setSize(m.width, m.height)
	m.refresh()
}

func (m *model) shutdown() {
	if m.player == nil {
		return
	}
	m.player.Stop()
	if m.unsub != nil {
		m.unsub()
	}
	m.presence.Close()
}

func (m *model) setSize(w, h int) {
	reserved := statusBarHeight
	if m.stickyEnabled() {
		reserved += stickyBarHeight
	}
	if m.showHelp {
		reserved += lineCount(m.helpView())
	}
	m.help.Width = w
	m.pager.setSize(w, h-reserved)
}

// refresh rebuilds the pager content around the current player view.
func (m *model) refresh() {
	m.pager.setContent(m.playerView(), m.settings.ButtonPosition)
	m.syncPresence()
}

func (m *model) playerView() string {
	if m.player == nil {
		return unsupportedView(m.settings, m.width)
	}
	v := sticky.Present(m.state, m.settings.Labels())
	return primaryView(v, m.settings, m.speed.Speed(), m.meta, m.width)
}

// logStickyVisibility reports mini-player appearances in the debug log.
func logStickyVisibility() func(sticky.View) {
	var visible atomic.Bool
	return func(v sticky.View) {
		if visible.Swap(v.Visible) != v.Visible {
			log.Debug("Mini-player", "visible", v.Visible, "status", v.Status)
		}
	}
}

func (m *model) syncPresence() {
	if m.presence != nil {
		m.presence.SetPrimaryVisible(m.pager.headerVisible())
	}
}

func (m model) stickyEnabled() bool {
	return m.player != nil && m.settings.StickyPlayer
}

func (m model) stickyLine() (string, bool) {
	if !m.stickyEnabled() {
		return "", false
	}
	v := m.presence.View()
	if !v.Visible {
		return "", true
	}
	return stickyView(v, m.width), true
}

func (m model) statusNote() string {
	if m.player == nil {
		return m.cfg.Note
	}
	return m.cfg.Note + " · " + m.state.Status.String()
}

func (m model) helpView() string {
	if !m.showHelp {
		return ""
	}
	return helpViewStyle(padLines(indent(m.help.FullHelpView(m.keys.FullHelp()), 2), m.width))
}

func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}

// COMMANDS

func waitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg{}
	}
}
