// Package announce posts one fixed embed to a channel at the same wall-clock
// time every day.
package announce

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

// ColorOrange is the embed accent color
const ColorOrange = 0xe67e22

// Sender is the subset of *discordgo.Session used to post the announcement
type Sender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Config describes when and where to announce
type Config struct {
	ChannelID string
	Hour      int
	Minute    int
	Location  *time.Location
	Title     string
}

// Announcer fires once per calendar day. Missed fires are not replayed.
type Announcer struct {
	sender Sender
	cfg    Config
	logger *slog.Logger

	now      func() time.Time
	after    func(time.Duration) <-chan time.Time
	onResult func(error)

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Option configures an Announcer
type Option func(*Announcer)

// WithClock replaces time.Now and time.After
func WithClock(now func() time.Time, after func(time.Duration) <-chan time.Time) Option {
	return func(a *Announcer) {
		a.now = now
		a.after = after
	}
}

// WithResultHook is called after every send attempt with its error
func WithResultHook(fn func(error)) Option {
	return func(a *Announcer) {
		a.onResult = fn
	}
}

// New creates a new Announcer
func New(sender Sender, cfg Config, logger *slog.Logger, opts ...Option) *Announcer {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	a := &Announcer{
		sender:   sender,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		after:    time.After,
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NextFire returns the first instant strictly after now at hour:minute in loc
func NextFire(now time.Time, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Start runs the schedule until ctx is cancelled or Stop is called
func (a *Announcer) Start(ctx context.Context) {
	a.wg.Add(1)
	defer a.wg.Done()

	for {
		next := NextFire(a.now(), a.cfg.Hour, a.cfg.Minute, a.cfg.Location)
		a.logger.Info("Next announcement scheduled", "at", next, "channel", a.cfg.ChannelID)

		select {
		case <-ctx.Done():
			a.logger.Info("Announcer stopped (context cancelled)")
			return
		case <-a.stopChan:
			a.logger.Info("Announcer stopped")
			return
		case <-a.after(next.Sub(a.now())):
			a.Announce(ctx)
		}
	}
}

// Stop signals the announcer to stop and waits for Start to return
func (a *Announcer) Stop() {
	a.stopOnce.Do(func() { close(a.stopChan) })
	a.wg.Wait()
}

// Announce posts the embed immediately
func (a *Announcer) Announce(_ context.Context) {
	_, err := a.sender.ChannelMessageSendEmbed(a.cfg.ChannelID, a.Embed(a.now()))
	if err != nil {
		a.logger.Error("Failed to send announcement", "channel", a.cfg.ChannelID, "error", err)
	} else {
		a.logger.Info("Sent announcement", "channel", a.cfg.ChannelID)
	}
	if a.onResult != nil {
		a.onResult(err)
	}
}

// Embed builds the announcement for the given instant
func (a *Announcer) Embed(at time.Time) *discordgo.MessageEmbed {
	local := at.In(a.cfg.Location)
	return &discordgo.MessageEmbed{
		Title:       a.cfg.Title,
		Description: fmt.Sprintf("Current time %s %02d:%02d", local.Format("2006-01-02"), local.Hour(), local.Minute()),
		Color:       ColorOrange,
	}
}
