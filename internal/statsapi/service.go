package statsapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/flor3z/mlb-stats-bot/internal/gateway"
)

const (
	// DefaultBaseURL is the public MLB Stats API host
	DefaultBaseURL = "https://statsapi.mlb.com"

	// sportMLB is the sportId of Major League Baseball
	sportMLB = "1"
)

// Service is the MLB Stats API client
type Service struct {
	client *gateway.Client
}

// NewService creates a Stats API service on top of a gateway client
func NewService(client *gateway.Client) *Service {
	return &Service{client: client}
}

// Teams retrieves every MLB team
func (s *Service) Teams(ctx context.Context) ([]Team, error) {
	var resp teamsResponse
	query := url.Values{"sportId": {sportMLB}}
	if err := s.client.GetJSON(ctx, "/api/v1/teams", query, &resp); err != nil {
		return nil, fmt.Errorf("failed to get teams: %w", err)
	}
	return resp.Teams, nil
}

// ResolveTeam fetches the team list and matches the query against it.
// The list is fetched fresh on every call.
func (s *Service) ResolveTeam(ctx context.Context, query string) (Team, error) {
	teams, err := s.Teams(ctx)
	if err != nil {
		return Team{}, err
	}

	team, ok := MatchTeam(teams, query)
	if !ok {
		return Team{}, &NotFoundError{Kind: "team", Query: query}
	}
	return team, nil
}

// MatchTeam picks a team for a user query. Exact abbreviation and exact name
// matches win over substring matches; within a tier the first team in list
// order wins.
func MatchTeam(teams []Team, query string) (Team, bool) {
	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" {
		return Team{}, false
	}

	for _, t := range teams {
		if strings.ToUpper(t.Abbreviation) == q {
			return t, true
		}
	}
	for _, t := range teams {
		if strings.ToUpper(t.TeamName) == q || strings.ToUpper(t.Name) == q {
			return t, true
		}
	}
	for _, t := range teams {
		if strings.Contains(strings.ToUpper(t.Abbreviation), q) || strings.Contains(strings.ToUpper(t.TeamName), q) {
			return t, true
		}
	}
	return Team{}, false
}

// ScheduleQuery selects games from /api/v1/schedule. Zero values are omitted.
type ScheduleQuery struct {
	Date      string // YYYY-MM-DD
	TeamID    int
	Season    int
	GameType  string // "R" for regular season
	StartDate string
	EndDate   string
	Hydrate   string
}

func (q ScheduleQuery) values() url.Values {
	v := url.Values{"sportId": {sportMLB}}
	if q.Date != "" {
		v.Set("date", q.Date)
	}
	if q.TeamID != 0 {
		v.Set("teamId", strconv.Itoa(q.TeamID))
	}
	if q.Season != 0 {
		v.Set("season", strconv.Itoa(q.Season))
	}
	if q.GameType != "" {
		v.Set("gameType", q.GameType)
	}
	if q.StartDate != "" {
		v.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		v.Set("endDate", q.EndDate)
	}
	if q.Hydrate != "" {
		v.Set("hydrate", q.Hydrate)
	}
	return v
}

// Schedule retrieves the games matching the query
func (s *Service) Schedule(ctx context.Context, q ScheduleQuery) (*Schedule, error) {
	var sched Schedule
	if err := s.client.GetJSON(ctx, "/api/v1/schedule", q.values(), &sched); err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return &sched, nil
}

// SearchPlayer looks a player up by full name. An exact (case-insensitive)
// name match is preferred over the first search result.
func (s *Service) SearchPlayer(ctx context.Context, fullName string) (Person, error) {
	name := strings.Join(strings.Fields(fullName), " ")
	if name == "" {
		return Person{}, &NotFoundError{Kind: "player", Query: fullName}
	}

	var resp peopleResponse
	query := url.Values{"names": {name}, "sportIds": {sportMLB}}
	if err := s.client.GetJSON(ctx, "/api/v1/people/search", query, &resp); err != nil {
		return Person{}, fmt.Errorf("failed to search player: %w", err)
	}

	if len(resp.People) == 0 {
		return Person{}, &NotFoundError{Kind: "player", Query: name}
	}
	for _, p := range resp.People {
		if strings.EqualFold(p.FullName, name) {
			return p, nil
		}
	}
	return resp.People[0], nil
}

// PlayerSeasonStats retrieves the season splits of one stat group for a player
func (s *Service) PlayerSeasonStats(ctx context.Context, playerID int, group StatGroup, season int) ([]StatSplit, error) {
	route := fmt.Sprintf("/api/v1/people/%d/stats", playerID)
	query := url.Values{
		"stats":  {"season"},
		"group":  {string(group)},
		"season": {strconv.Itoa(season)},
	}

	var resp statsResponse
	if err := s.client.GetJSON(ctx, route, query, &resp); err != nil {
		return nil, fmt.Errorf("failed to get player stats: %w", err)
	}

	var splits []StatSplit
	for _, st := range resp.Stats {
		splits = append(splits, st.Splits...)
	}
	return splits, nil
}
