package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/wptts/readaloud/internal/config"
)

const (
	statusBarHeight = 1
	stickyBarHeight = 1
)

var (
	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	statusBarScrollPosStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).
				Background(statusBarBg).
				Render

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	logoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ECFD65")).
			Background(lipgloss.Color("#D60017")).
			Bold(true).
			Render

	helpViewStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Background(lipgloss.AdaptiveColor{Light: "#f2f2f2", Dark: "#1B1B1B"}).
			Render

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#D60017", Dark: "#FF5F87"}).
			Padding(1, 2).
			Render
)

type pagerModel struct {
	viewport viewport.Model

	// Glamour output of the article, re-rendered on resize.
	rendered string

	// Lines of the primary player inside the viewport content.
	headerStart  int
	headerHeight int

	statusMessage      string
	statusMessageTimer *time.Timer
}

func newPagerModel() pagerModel {
	vp := viewport.New(0, 0)
	vp.YPosition = 0
	return pagerModel{viewport: vp}
}

func (m *pagerModel) setSize(w, h int) {
	m.viewport.Width = w
	m.viewport.Height = max(0, h)
}

// setContent places the player before or after the article.
func (m *pagerModel) setContent(player, position string) {
	header := player + "\n"
	m.headerHeight = lineCount(header)

	if position == config.PositionAfter {
		body := strings.TrimRight(m.rendered, "\n")
		m.headerStart = lineCount(body) + 1
		m.viewport.SetContent(body + "\n\n" + header)
		return
	}
	m.headerStart = 0
	m.viewport.SetContent(header + m.rendered)
}

// headerVisible reports whether any line of the primary player is inside
// the viewport.
func (m pagerModel) headerVisible() bool {
	top := m.viewport.YOffset
	bottom := top + m.viewport.Height
	return m.headerStart < bottom && m.headerStart+m.headerHeight > top
}

func (m *pagerModel) scroll(msg tea.KeyMsg, keys keyMap) {
	switch {
	case key.Matches(msg, keys.Up):
		m.viewport.LineUp(1)
	case key.Matches(msg, keys.Down):
		m.viewport.LineDown(1)
	case key.Matches(msg, keys.PageUp):
		m.viewport.ViewUp()
	case key.Matches(msg, keys.PageDown):
		m.viewport.ViewDown()
	case key.Matches(msg, keys.Top):
		m.viewport.GotoTop()
	case key.Matches(msg, keys.Bottom):
		m.viewport.GotoBottom()
	}
}

func (m *pagerModel) showStatusMessage(msg string) tea.Cmd {
	m.statusMessage = msg
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)
	return waitForStatusMessageTimeout(m.statusMessageTimer)
}

func (m *pagerModel) clearStatusMessage() {
	m.statusMessage = ""
}

func (m pagerModel) View(sticky string, hasSticky bool, note, help string, width int) string {
	var b strings.Builder
	fmt.Fprint(&b, m.viewport.View()+"\n")

	if hasSticky {
		if sticky == "" {
			sticky = strings.Repeat(" ", max(0, width))
		}
		fmt.Fprint(&b, sticky+"\n")
	}

	m.statusBarView(&b, note, width)

	if help != "" {
		fmt.Fprint(&b, "\n"+help)
	}
	return b.String()
}

func (m pagerModel) statusBarView(b *strings.Builder, note string, width int) {
	const (
		minPercent               float64 = 0.0
		maxPercent               float64 = 1.0
		percentToStringMagnitude float64 = 100.0
	)

	showStatusMessage := m.statusMessage != ""

	logo := logoStyle(" readaloud ")

	// Scroll percent
	percent := math.Max(minPercent, math.Min(maxPercent, m.viewport.ScrollPercent()))
	scrollPercent := statusBarScrollPosStyle(fmt.Sprintf(" %3.f%% ", percent*percentToStringMagnitude))

	helpNote := statusBarHelpStyle(" ? Help ")

	if showStatusMessage {
		note = m.statusMessage
	}
	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)
	if showStatusMessage {
		note = statusBarMessageStyle(note)
	} else {
		note = statusBarNoteStyle(note)
	}

	// Empty space
	padding := max(0,
		width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(scrollPercent)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := strings.Repeat(" ", padding)
	if showStatusMessage {
		emptySpace = statusBarMessageStyle(emptySpace)
	} else {
		emptySpace = statusBarNoteStyle(emptySpace)
	}

	fmt.Fprintf(b, "%s%s%s%s%s",
		logo,
		note,
		emptySpace,
		scrollPercent,
		helpNote,
	)
}

func errorView(err string, width int) string {
	s := "Error: " + err + "\n\nPress any key to exit."
	if width > 4 {
		s = wordwrap.String(s, width-4)
	}
	return errorStyle(s)
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(strings.TrimSuffix(s, "\n"), "\n") + 1
}

// padLines fills lines up to width for background coloring.
func padLines(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i := range lines {
		n := max(width-runewidth.StringWidth(lines[i]), 0)
		lines[i] += strings.Repeat(" ", n)
	}
	return strings.Join(lines, "\n")
}

// COMMANDS

func renderWithGlamour(cfg Config, width int, md string) tea.Cmd {
	return func() tea.Msg {
		s, err := glamourRender(cfg, width, md)
		if err != nil {
			log.Error("error rendering with Glamour", "error", err)
			return errMsg{err}
		}
		return contentRenderedMsg(s)
	}
}

func glamourRender(cfg Config, viewportWidth int, markdown string) (string, error) {
	if !cfg.GlamourEnabled {
		return markdown, nil
	}

	width := viewportWidth
	if cfg.GlamourMaxWidth > 0 {
		width = min(int(cfg.GlamourMaxWidth), viewportWidth) //nolint:gosec
	}

	style := glamour.WithStylePath(cfg.GlamourStyle)
	if styles.DefaultStyles[cfg.GlamourStyle] != nil {
		style = glamour.WithStandardStyle(cfg.GlamourStyle)
	}

	r, err := glamour.NewTermRenderer(
		style,
		glamour.WithWordWrap(max(0, width)),
	)
	if err != nil {
		return "", fmt.Errorf("error creating glamour renderer: %w", err)
	}

	out, err := r.Render(markdown)
	if err != nil {
		return "", fmt.Errorf("error rendering markdown: %w", err)
	}
	return out, nil
}
