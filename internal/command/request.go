package command

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/flor3z/mlb-stats-bot/internal/activity"
)

// DefaultPrefix starts every text command
const DefaultPrefix = "!"

// Request is one inbound command
type Request struct {
	Name       string
	Args       []string
	UserID     string
	UserName   string
	GuildID    string
	ChannelID  string
	Content    string
	ReceivedAt time.Time
}

// Arg returns the i-th argument or "" when absent
func (r *Request) Arg(i int) string {
	if i < 0 || i >= len(r.Args) {
		return ""
	}
	return r.Args[i]
}

// Entry converts the request into an activity log entry
func (r *Request) Entry() activity.Entry {
	user := r.UserName
	if user == "" {
		user = r.UserID
	}
	// CommandID is left to the logger so every write gets its own id
	return activity.Entry{
		Command:   r.Name,
		User:      user,
		Guild:     r.GuildID,
		Channel:   r.ChannelID,
		Content:   r.Content,
		Timestamp: r.ReceivedAt,
	}
}

// Parse splits a prefixed message into a command name and whitespace
// separated arguments. It reports false for messages that are not commands.
func Parse(prefix, content string) (Request, bool) {
	if prefix == "" {
		prefix = DefaultPrefix
	}

	text := strings.TrimSpace(content)
	if !strings.HasPrefix(text, prefix) {
		return Request{}, false
	}

	rest := text[len(prefix):]
	if first, _ := utf8.DecodeRuneInString(rest); rest == "" || unicode.IsSpace(first) {
		return Request{}, false
	}

	fields := strings.Fields(rest)
	return Request{
		Name:    strings.ToLower(fields[0]),
		Args:    fields[1:],
		Content: content,
	}, true
}
