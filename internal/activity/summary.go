package activity

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
)

// Reader lists entries written at or after a point in time
type Reader interface {
	ListSince(ctx context.Context, since time.Time) ([]Entry, error)
}

// Summary aggregates a set of entries
type Summary struct {
	TotalCommands int
	ByCommand     map[string]int
	ActiveUsers   int
	ActiveGuilds  int
}

// Summarize counts commands by name and distinct users and guilds
func Summarize(entries []Entry) Summary {
	s := Summary{ByCommand: make(map[string]int)}
	users := make(map[string]struct{})
	guilds := make(map[string]struct{})

	for _, e := range entries {
		s.TotalCommands++
		s.ByCommand[e.Command]++
		users[e.User] = struct{}{}
		guilds[e.Guild] = struct{}{}
	}

	s.ActiveUsers = len(users)
	s.ActiveGuilds = len(guilds)
	return s
}

// WriteReport prints entries newest first followed by their summary
func WriteReport(w io.Writer, entries []Entry) error {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	var sb strings.Builder
	sb.WriteString("=== Recent commands ===\n")
	for _, e := range sorted {
		sb.WriteString(fmt.Sprintf("\nTime: %s\n", e.Timestamp.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("Command: %s\n", e.Command))
		sb.WriteString(fmt.Sprintf("User: %s\n", e.User))
		sb.WriteString(fmt.Sprintf("Guild: %s\n", e.Guild))
		if e.Content != "" {
			sb.WriteString(fmt.Sprintf("Content: %s\n", e.Content))
		}
		if e.Channel != "" {
			sb.WriteString(fmt.Sprintf("Channel: %s\n", e.Channel))
		}
		sb.WriteString(strings.Repeat("-", 50) + "\n")
	}

	s := Summarize(entries)
	names := make([]string, 0, len(s.ByCommand))
	for name := range s.ByCommand {
		names = append(names, name)
	}
	sort.Strings(names)

	sb.WriteString("\n=== Statistics ===\n")
	sb.WriteString(fmt.Sprintf("Total commands: %d\n", s.TotalCommands))
	sb.WriteString("\nCommands by type:\n")
	for _, name := range names {
		sb.WriteString(fmt.Sprintf("- %s: %d\n", name, s.ByCommand[name]))
	}
	sb.WriteString(fmt.Sprintf("\nActive users: %d\n", s.ActiveUsers))
	sb.WriteString(fmt.Sprintf("Active guilds: %d\n", s.ActiveGuilds))

	_, err := io.WriteString(w, sb.String())
	return err
}
