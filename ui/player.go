package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"

	"github.com/wptts/readaloud/internal/config"
	"github.com/wptts/readaloud/tts"
	"github.com/wptts/readaloud/tts/sticky"
)

const (
	progressWidth = 24
	waveGlyph     = "▁▃▅▇▅▃"
)

var (
	faintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"})

	stopStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#1B1B1B", Dark: "#DDDDDD"}).
			Bold(true)

	stickyBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#1B1B1B", Dark: "#DDDDDD"}).
			Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"})
)

func buttonStyle(color string) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color(color)).
		Bold(true).
		Padding(0, 1)
}

// stopControl renders the stop button, dimmed while there is nothing to stop.
func stopControl(enabled bool) string {
	if !enabled {
		return faintStyle.Render("□ Stop")
	}
	return stopStyle.Render("■ Stop")
}

func iconGlyph(i sticky.Icon) string {
	if i == sticky.IconPause {
		return "⏸"
	}
	return "▶"
}

// progressBar renders percent as a fixed width bar.
func progressBar(percent, width int) string {
	filled := width * max(0, min(100, percent)) / 100
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// listenTime describes an estimated reading time in words.
func listenTime(seconds int) string {
	if seconds < 60 {
		return "under a minute"
	}
	now := time.Now()
	return strings.TrimSpace(humanize.RelTime(now, now.Add(time.Duration(seconds)*time.Second), "", ""))
}

// metaLine summarises the article length.
func metaLine(words int, seconds int) string {
	unit := "words"
	if words == 1 {
		unit = "word"
	}
	return fmt.Sprintf("%s %s · %s", humanize.Comma(int64(words)), unit, listenTime(seconds))
}

// primaryView renders the in-article player: the play and stop buttons with
// optional speed, then an optional progress line.
func primaryView(v sticky.View, s config.Settings, rate float64, meta string, width int) string {
	button := buttonStyle(s.ButtonColor).Render(iconGlyph(v.Icon) + " " + v.Title)

	parts := []string{button, stopControl(v.Stoppable)}
	if s.ShowSpeedControl {
		parts = append(parts, tts.FormatSpeed(rate))
	}
	if meta != "" {
		parts = append(parts, faintStyle.Render(meta))
	}
	lines := []string{strings.Join(parts, "  ")}

	if s.ShowProgressBar {
		progress := fmt.Sprintf("%s %3d%%", progressBar(v.Percent, progressWidth), v.Percent)
		if v.Counter != "" {
			progress += "  " + v.Counter
		}
		lines = append(lines, progress)
	}
	return fitLines(lines, width)
}

// unsupportedView replaces the player when speech is unavailable.
func unsupportedView(s config.Settings, width int) string {
	return fitLines([]string{faintStyle.Render(s.I18n.Unsupported)}, width)
}

// stickyView renders the one line mini-player.
func stickyView(v sticky.View, width int) string {
	if width <= 0 {
		return ""
	}

	left := " " + iconGlyph(v.Icon) + " " + v.Title
	if v.Wave {
		left += " " + waveGlyph
	}
	right := fmt.Sprintf("%s %3d%%", progressBar(v.Percent, progressWidth/2), v.Percent)
	if v.Counter != "" {
		right += "  " + v.Counter
	}
	right += "  s stop "

	avail := max(0, width-runewidth.StringWidth(right))
	left = truncate.StringWithTail(left, uint(avail), ellipsis) //nolint:gosec
	padding := max(0, width-runewidth.StringWidth(left)-runewidth.StringWidth(right))

	line := left + strings.Repeat(" ", padding) + right
	if runewidth.StringWidth(line) > width {
		line = truncate.String(line, uint(width)) //nolint:gosec
	}
	return stickyBarStyle.Render(line)
}

func fitLines(lines []string, width int) string {
	if width > 0 {
		for i := range lines {
			lines[i] = truncate.StringWithTail(lines[i], uint(width), ellipsis) //nolint:gosec
		}
	}
	return strings.Join(lines, "\n")
}
