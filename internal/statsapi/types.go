package statsapi

import "time"

// Team represents a club from the /api/v1/teams endpoint
type Team struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`     // e.g. "New York Yankees"
	TeamName     string `json:"teamName"` // e.g. "Yankees"
	Abbreviation string `json:"abbreviation"`
}

type teamsResponse struct {
	Teams []Team `json:"teams"`
}

// TeamRef is the compact team object embedded in schedule games
type TeamRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Person is a player reference
type Person struct {
	ID       int    `json:"id"`
	FullName string `json:"fullName"`
}

// Schedule is the response of /api/v1/schedule
type Schedule struct {
	TotalGames int            `json:"totalGames"`
	Dates      []ScheduleDate `json:"dates"`
}

// ScheduleDate groups the games played on one calendar date
type ScheduleDate struct {
	Date  string `json:"date"`
	Games []Game `json:"games"`
}

// Game is a single scheduled or played game
type Game struct {
	GamePk   int        `json:"gamePk"`
	GameDate time.Time  `json:"gameDate"` // UTC
	Status   GameStatus `json:"status"`
	Teams    GameTeams  `json:"teams"`
}

// GameStatus carries the upstream status code ("F" is final)
type GameStatus struct {
	StatusCode    string `json:"statusCode"`
	DetailedState string `json:"detailedState"`
}

// GameTeams holds both sides of a game
type GameTeams struct {
	Away GameSide `json:"away"`
	Home GameSide `json:"home"`
}

// GameSide is one team's participation in a game. Score is nil for unplayed games.
type GameSide struct {
	Team            TeamRef `json:"team"`
	Score           *int    `json:"score"`
	ProbablePitcher *Person `json:"probablePitcher"`
}

// StatusFinal marks a completed game
const StatusFinal = "F"

// Completed reports whether the game has finished
func (g Game) Completed() bool {
	return g.Status.StatusCode == StatusFinal
}

// Games flattens every date of the schedule into a single slice, preserving order
func (s *Schedule) Games() []Game {
	if s == nil {
		return nil
	}
	var games []Game
	for _, d := range s.Dates {
		games = append(games, d.Games...)
	}
	return games
}

type peopleResponse struct {
	People []Person `json:"people"`
}

// StatSplit is one season split for a player; Stat is left opaque. A player
// who changed teams has one split per team, and Team is nil on the combined one.
type StatSplit struct {
	Season string         `json:"season"`
	Team   *TeamRef       `json:"team,omitempty"`
	Stat   map[string]any `json:"stat"`
}

type statsResponse struct {
	Stats []struct {
		Splits []StatSplit `json:"splits"`
	} `json:"stats"`
}

// StatGroup selects hitting or pitching stats
type StatGroup string

const (
	GroupHitting  StatGroup = "hitting"
	GroupPitching StatGroup = "pitching"
)

// LastCompleted returns the final n completed games, oldest first
func LastCompleted(games []Game, n int) []Game {
	var completed []Game
	for _, g := range games {
		if g.Completed() {
			completed = append(completed, g)
		}
	}
	if n >= 0 && len(completed) > n {
		completed = completed[len(completed)-n:]
	}
	return completed
}
