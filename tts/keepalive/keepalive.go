// Package keepalive works around mobile speech engines that silently stop
// long utterances after a few seconds. It periodically pauses and resumes
// the engine while it is speaking.
package keepalive

import (
	"context"
	"regexp"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultInterval is the time between two pause/resume pokes.
const DefaultInterval = 10 * time.Second

var mobileAgent = regexp.MustCompile(`(?i)Android|iPhone|iPad|iPod`)

// IsMobile reports whether the user agent names a mobile platform.
func IsMobile(userAgent string) bool {
	return mobileAgent.MatchString(userAgent)
}

// Engine is the part of a speech engine the guard pokes.
type Engine interface {
	Speaking() bool
	Paused() bool
	Pause()
	Resume()
}

// Guard pokes an engine on a fixed interval.
type Guard struct {
	engine   Engine
	mobile   bool
	interval time.Duration
	logger   *log.Logger
}

// Option configures a Guard.
type Option func(*Guard)

// WithInterval overrides DefaultInterval.
func WithInterval(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.interval = d
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(g *Guard) {
		g.logger = l
	}
}

// New creates a guard for the platform identified by userAgent.
func New(engine Engine, userAgent string, opts ...Option) *Guard {
	g := &Guard{
		engine:   engine,
		mobile:   IsMobile(userAgent),
		interval: DefaultInterval,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Active reports whether the guard does anything on this platform.
func (g *Guard) Active() bool {
	return g.mobile
}

// Run pokes the engine until ctx is done. It returns immediately on
// platforms that do not need the workaround.
func (g *Guard) Run(ctx context.Context) {
	if !g.mobile {
		return
	}

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.poke()
		}
	}
}

// poke is best effort; a misbehaving engine must not take the guard down.
func (g *Guard) poke() {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Debug("Keep-alive poke failed", "panic", r)
		}
	}()

	if !g.engine.Speaking() || g.engine.Paused() {
		return
	}
	g.engine.Pause()
	g.engine.Resume()
	g.logger.Debug("Keep-alive poke")
}
