package storage

import (
	"time"

	"github.com/flor3z/mlb-stats-bot/internal/activity"
)

// CommandLog is one stored command invocation
type CommandLog struct {
	CommandID string
	Command   string
	User      string
	Guild     string
	Channel   string
	Content   string
	Timestamp time.Time
}

func fromEntry(e activity.Entry) CommandLog {
	return CommandLog{
		CommandID: e.CommandID,
		Command:   e.Command,
		User:      e.User,
		Guild:     e.Guild,
		Channel:   e.Channel,
		Content:   e.Content,
		Timestamp: e.Timestamp.UTC(),
	}
}

// Entry converts the row back into an activity entry
func (l CommandLog) Entry() activity.Entry {
	return activity.Entry{
		CommandID: l.CommandID,
		Command:   l.Command,
		User:      l.User,
		Guild:     l.Guild,
		Channel:   l.Channel,
		Content:   l.Content,
		Timestamp: l.Timestamp,
	}
}
