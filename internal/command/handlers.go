package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/flor3z/mlb-stats-bot/internal/format"
	"github.com/flor3z/mlb-stats-bot/internal/statsapi"
)

const (
	dateLayout = "2006-01-02"

	// DefaultRecentGames is used when recent is called without a count
	DefaultRecentGames = 3
	maxRecentGames     = 25

	// NoQuote is the reply for an empty quote body
	NoQuote = "No quote available right now"
)

func (d *Dispatcher) registerBuiltins() {
	d.registry.Register(&Command{
		Name:        "pitcher",
		Usage:       "pitcher TEAM",
		Example:     "pitcher NYY",
		Description: "Probable starting pitchers for a team's games today",
		Topic:       "pitcher info",
		Run:         d.handlePitcher,
	})
	d.registry.Register(&Command{
		Name:        "schedule",
		Usage:       "schedule",
		Example:     "schedule",
		Description: "Every game scheduled today",
		Topic:       "the schedule",
		Run:         d.handleSchedule,
	})
	d.registry.Register(&Command{
		Name:        "teams",
		Usage:       "teams",
		Example:     "teams",
		Description: "All MLB teams and their abbreviations",
		Topic:       "the team list",
		Run:         d.handleTeams,
	})
	d.registry.Register(&Command{
		Name:        "history",
		Usage:       "history TEAM [DATE]",
		Example:     "history NYY 2024-09-28",
		Description: "A team's games on a date (YYYY-MM-DD, default today)",
		Topic:       "game history",
		Run:         d.handleHistory,
	})
	d.registry.Register(&Command{
		Name:        "recent",
		Usage:       "recent TEAM [N]",
		Example:     "recent NYY 5",
		Description: fmt.Sprintf("A team's last N completed games (default %d)", DefaultRecentGames),
		Topic:       "recent games",
		Run:         d.handleRecent,
	})
	d.registry.Register(&Command{
		Name:        "hstat",
		Usage:       "hstat FIRST LAST",
		Example:     "hstat Aaron Judge",
		Description: "A hitter's season stats",
		Topic:       "hitter stats",
		Run:         d.playerStatsHandler(statsapi.GroupHitting, format.HittingFields),
	})
	d.registry.Register(&Command{
		Name:        "pstat",
		Usage:       "pstat FIRST LAST",
		Example:     "pstat Luis Gil",
		Description: "A pitcher's season stats",
		Topic:       "pitcher stats",
		Run:         d.playerStatsHandler(statsapi.GroupPitching, format.PitchingFields),
	})
	if d.quotes != nil {
		d.registry.Register(&Command{
			Name:        "quote",
			Usage:       "quote",
			Example:     "quote",
			Description: "A random quote",
			Topic:       "a quote",
			Run:         d.handleQuote,
		})
	}
	d.registry.Register(&Command{
		Name:        "help",
		Usage:       "help",
		Example:     "help",
		Description: "This message",
		Topic:       "help",
		Run:         d.handleHelp,
	})
}

func (d *Dispatcher) requireTeam(req *Request, cmd string) (string, error) {
	team := req.Arg(0)
	if team == "" {
		return "", userInput("Please provide a team abbreviation! e.g. %s%s NYY", d.prefix, cmd)
	}
	return team, nil
}

func (d *Dispatcher) handlePitcher(ctx context.Context, req *Request) (string, error) {
	query, err := d.requireTeam(req, "pitcher")
	if err != nil {
		return "", err
	}

	team, err := d.stats.ResolveTeam(ctx, query)
	if err != nil {
		return "", err
	}

	sched, err := d.stats.Schedule(ctx, statsapi.ScheduleQuery{
		Date:    d.today(),
		TeamID:  team.ID,
		Hydrate: "probablePitcher",
	})
	if err != nil {
		return "", err
	}

	return format.ProbablePitchers(team, sched, d.loc), nil
}

func (d *Dispatcher) handleSchedule(ctx context.Context, _ *Request) (string, error) {
	today := d.today()
	sched, err := d.stats.Schedule(ctx, statsapi.ScheduleQuery{Date: today})
	if err != nil {
		return "", err
	}
	return format.Schedule(today, sched, d.loc), nil
}

func (d *Dispatcher) handleTeams(ctx context.Context, _ *Request) (string, error) {
	teams, err := d.stats.Teams(ctx)
	if err != nil {
		return "", err
	}
	return format.Teams(teams), nil
}

func (d *Dispatcher) handleHistory(ctx context.Context, req *Request) (string, error) {
	query, err := d.requireTeam(req, "history")
	if err != nil {
		return "", err
	}

	date := req.Arg(1)
	if date == "" {
		date = d.today()
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		return "", userInput("Invalid date %q, please use YYYY-MM-DD. e.g. %shistory NYY 2024-09-28", date, d.prefix)
	}

	team, err := d.stats.ResolveTeam(ctx, query)
	if err != nil {
		return "", err
	}

	sched, err := d.stats.Schedule(ctx, statsapi.ScheduleQuery{Date: date, TeamID: team.ID})
	if err != nil {
		return "", err
	}

	return format.History(team.Name, date, sched), nil
}

func (d *Dispatcher) handleRecent(ctx context.Context, req *Request) (string, error) {
	query, err := d.requireTeam(req, "recent")
	if err != nil {
		return "", err
	}

	count := DefaultRecentGames
	if raw := req.Arg(1); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxRecentGames {
			return "", userInput("The number of games must be between 1 and %d. e.g. %srecent NYY 5", maxRecentGames, d.prefix)
		}
		count = n
	}

	team, err := d.stats.ResolveTeam(ctx, query)
	if err != nil {
		return "", err
	}

	season, auto := d.currentSeason()
	games, err := d.completedGames(ctx, team.ID, season, count)
	if err != nil {
		return "", err
	}
	// before opening day the current year has no finals yet
	if len(games) == 0 && auto {
		if games, err = d.completedGames(ctx, team.ID, season-1, count); err != nil {
			return "", err
		}
	}

	return format.Recent(team, games), nil
}

func (d *Dispatcher) completedGames(ctx context.Context, teamID, season, count int) ([]statsapi.Game, error) {
	sched, err := d.stats.Schedule(ctx, statsapi.ScheduleQuery{
		TeamID:    teamID,
		Season:    season,
		GameType:  "R",
		StartDate: fmt.Sprintf("%d-01-01", season),
		EndDate:   fmt.Sprintf("%d-12-31", season),
	})
	if err != nil {
		return nil, err
	}
	return statsapi.LastCompleted(sched.Games(), count), nil
}

func (d *Dispatcher) playerStatsHandler(group statsapi.StatGroup, allow []string) RunFunc {
	return func(ctx context.Context, req *Request) (string, error) {
		if len(req.Args) < 2 {
			return "", userInput("Please provide the player's first and last name! e.g. %s%s", d.prefix, examplePlayer(group))
		}

		person, err := d.stats.SearchPlayer(ctx, strings.Join(req.Args, " "))
		if err != nil {
			return "", err
		}

		season, auto := d.currentSeason()
		splits, err := d.stats.PlayerSeasonStats(ctx, person.ID, group, season)
		if err != nil {
			return "", err
		}
		if len(splits) == 0 && auto {
			season--
			if splits, err = d.stats.PlayerSeasonStats(ctx, person.ID, group, season); err != nil {
				return "", err
			}
		}

		return format.PlayerStats(person.FullName, group, season, splits, allow), nil
	}
}

func examplePlayer(group statsapi.StatGroup) string {
	if group == statsapi.GroupPitching {
		return "pstat Luis Gil"
	}
	return "hstat Aaron Judge"
}

func (d *Dispatcher) handleQuote(ctx context.Context, _ *Request) (string, error) {
	quote, err := d.quotes.Random(ctx)
	if err != nil {
		return "", err
	}
	if quote = strings.TrimSpace(quote); quote == "" {
		return NoQuote, nil
	}
	return quote, nil
}

func (d *Dispatcher) handleHelp(_ context.Context, _ *Request) (string, error) {
	var sb strings.Builder
	sb.WriteString("**MLB Stats Bot**\n")
	sb.WriteString(fmt.Sprintf("All commands use the `%s` prefix\n\n", d.prefix))

	sb.WriteString("**Commands:**\n")
	for _, cmd := range d.registry.List() {
		sb.WriteString(fmt.Sprintf("`%s%s` - %s (e.g. `%s%s`)\n", d.prefix, cmd.Usage, cmd.Description, d.prefix, cmd.Example))
	}

	sb.WriteString("\n**Tips:**\n")
	sb.WriteString("- Teams accept abbreviations (NYY, LAD, BOS) or names\n")
	sb.WriteString("- Dates use the YYYY-MM-DD format\n")
	sb.WriteString(fmt.Sprintf("- recent shows the last %d games by default\n", DefaultRecentGames))
	return sb.String(), nil
}
