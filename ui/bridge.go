package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wptts/readaloud/tts"
)

// bridge hands controller snapshots to the Bubble Tea event loop. The
// controller may publish from inside Update, so pushing never blocks: an
// unread snapshot is replaced by the newer one.
type bridge struct {
	ch chan tts.State
}

func newBridge() *bridge {
	return &bridge{ch: make(chan tts.State, 1)}
}

func (b *bridge) push(s tts.State) {
	for {
		select {
		case b.ch <- s:
			return
		default:
		}
		select {
		case old := <-b.ch:
			if old.Seq > s.Seq {
				s = old
			}
		default:
		}
	}
}

// wait is a tea.Cmd delivering the next snapshot.
func (b *bridge) wait() tea.Msg {
	return stateMsg(<-b.ch)
}
