// Package format renders Stats API payloads as chat text. Every function is
// pure and returns a readable placeholder instead of an empty string.
package format

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/flor3z/mlb-stats-bot/internal/statsapi"
)

// Placeholders for empty payloads
const (
	NoTeams      = "No teams available"
	NoGamesToday = "No games scheduled today"
)

// Result tags for recent games
const (
	ResultWin  = "win"
	ResultLoss = "loss"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Teams lists every team with its abbreviation
func Teams(teams []statsapi.Team) string {
	if len(teams) == 0 {
		return NoTeams
	}

	var sb strings.Builder
	sb.WriteString("**MLB Teams**\n")
	for _, t := range teams {
		sb.WriteString(fmt.Sprintf("%s (%s)\n", t.Name, t.Abbreviation))
	}
	return sb.String()
}

// Schedule lists the games of one day with their start time in loc
func Schedule(date string, sched *statsapi.Schedule, loc *time.Location) string {
	games := sched.Games()
	if len(games) == 0 {
		return NoGamesToday
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**%s Schedule**\n", date))
	for _, g := range games {
		sb.WriteString(fmt.Sprintf("%s @ %s - %s\n",
			g.Teams.Away.Team.Name, g.Teams.Home.Team.Name, g.GameDate.In(loc).Format(timeLayout)))
	}
	return sb.String()
}

// History lists a team's games on a given date with scores
func History(teamName, date string, sched *statsapi.Schedule) string {
	games := sched.Games()
	if len(games) == 0 {
		return fmt.Sprintf("No game records on %s", date)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**%s games on %s**\n", teamName, date))
	for _, g := range games {
		sb.WriteString(fmt.Sprintf("%s %s @ %s %s\n",
			g.Teams.Away.Team.Name, score(g.Teams.Away.Score),
			g.Teams.Home.Team.Name, score(g.Teams.Home.Score)))
	}
	return sb.String()
}

// Recent lists completed games in the order given, tagging each with the
// queried team's result
func Recent(team statsapi.Team, games []statsapi.Game) string {
	if len(games) == 0 {
		return fmt.Sprintf("No recent game records for %s", team.Name)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**%s last %d games**\n", team.Name, len(games)))
	for _, g := range games {
		sb.WriteString(fmt.Sprintf("%s: %s %s @ %s %s [%s]\n",
			g.GameDate.UTC().Format(dateLayout),
			g.Teams.Away.Team.Name, score(g.Teams.Away.Score),
			g.Teams.Home.Team.Name, score(g.Teams.Home.Score),
			ResultTag(team.ID, g)))
	}
	return sb.String()
}

// ResultTag returns "win" when the queried team outscored its opponent on
// its own side of the game record; anything else, ties and missing scores
// included, is a "loss".
func ResultTag(teamID int, g statsapi.Game) string {
	away, home := g.Teams.Away.Score, g.Teams.Home.Score
	if away == nil || home == nil {
		return ResultLoss
	}

	if g.Teams.Away.Team.ID == teamID {
		if *away > *home {
			return ResultWin
		}
		return ResultLoss
	}
	if *home > *away {
		return ResultWin
	}
	return ResultLoss
}

// ProbablePitchers lists the announced starters for a team's games
func ProbablePitchers(team statsapi.Team, sched *statsapi.Schedule, loc *time.Location) string {
	games := sched.Games()
	if len(games) == 0 {
		return fmt.Sprintf("No probable pitcher info for %s yet", team.Name)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**%s Probable Pitchers**\n", team.Name))
	for _, g := range games {
		sb.WriteString(fmt.Sprintf("%s (%s) @ %s (%s) - %s\n",
			g.Teams.Away.Team.Name, pitcher(g.Teams.Away.ProbablePitcher),
			g.Teams.Home.Team.Name, pitcher(g.Teams.Home.ProbablePitcher),
			g.GameDate.In(loc).Format(timeLayout)))
	}
	return sb.String()
}

// PlayerStats renders the allow-listed fields of every split in allow-list
// order. Field names are compared case-insensitively. With more than one
// split each block is headed by its team, or "Total" for the combined split.
func PlayerStats(playerName string, group statsapi.StatGroup, season int, splits []statsapi.StatSplit, allow []string) string {
	var sb strings.Builder
	for _, split := range splits {
		byLower := make(map[string]string, len(split.Stat))
		for k := range split.Stat {
			byLower[strings.ToLower(k)] = k
		}

		var block strings.Builder
		for _, field := range allow {
			key, ok := byLower[field]
			if !ok {
				continue
			}
			block.WriteString(fmt.Sprintf("%s: %s\n", key, statValue(split.Stat[key])))
		}
		if block.Len() == 0 {
			continue
		}
		if len(splits) > 1 {
			sb.WriteString(fmt.Sprintf("__%s__\n", splitLabel(split)))
		}
		sb.WriteString(block.String())
	}

	if sb.Len() == 0 {
		return fmt.Sprintf("No %d %s stats for %s", season, group, playerName)
	}
	return fmt.Sprintf("**%s %d %s**\n", playerName, season, group) + sb.String()
}

func splitLabel(split statsapi.StatSplit) string {
	if split.Team == nil || split.Team.Name == "" {
		return "Total"
	}
	return split.Team.Name
}

func score(s *int) string {
	if s == nil {
		return "N/A"
	}
	return strconv.Itoa(*s)
}

func pitcher(p *statsapi.Person) string {
	if p == nil || p.FullName == "" {
		return "TBD"
	}
	return p.FullName
}

func statValue(v any) string {
	switch val := v.(type) {
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return val
	case nil:
		return "-"
	default:
		return fmt.Sprint(val)
	}
}
