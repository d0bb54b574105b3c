package statsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/flor3z/mlb-stats-bot/internal/gateway"
)

const teamsFixture = `{"teams":[
	{"id":147,"name":"New York Yankees","teamName":"Yankees","abbreviation":"NYY"},
	{"id":121,"name":"New York Mets","teamName":"Mets","abbreviation":"NYM"},
	{"id":119,"name":"Los Angeles Dodgers","teamName":"Dodgers","abbreviation":"LAD"},
	{"id":111,"name":"Boston Red Sox","teamName":"Red Sox","abbreviation":"BOS"},
	{"id":145,"name":"Chicago White Sox","teamName":"White Sox","abbreviation":"CWS"}
]}`

func newTestService(t *testing.T, handler http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewService(gateway.NewClient(gateway.Config{BaseURL: srv.URL}))
}

func fixtureTeams() []Team {
	return []Team{
		{ID: 147, Name: "New York Yankees", TeamName: "Yankees", Abbreviation: "NYY"},
		{ID: 121, Name: "New York Mets", TeamName: "Mets", Abbreviation: "NYM"},
		{ID: 119, Name: "Los Angeles Dodgers", TeamName: "Dodgers", Abbreviation: "LAD"},
		{ID: 111, Name: "Boston Red Sox", TeamName: "Red Sox", Abbreviation: "BOS"},
		{ID: 145, Name: "Chicago White Sox", TeamName: "White Sox", Abbreviation: "CWS"},
	}
}

func TestMatchTeam(t *testing.T) {
	teams := fixtureTeams()
	cases := []struct {
		query  string
		wantID int
		wantOK bool
	}{
		{"NYY", 147, true},
		{"nyy", 147, true},
		{"LAD", 119, true},
		{"bos", 111, true},
		{"yankees", 147, true},
		{"Boston Red Sox", 111, true},
		{"dodg", 119, true},
		{"NY", 147, true}, // substring tier, first in list order
		{"SOX", 111, true},
		{"XYZ", 0, false},
		{"  ", 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			team, ok := MatchTeam(teams, tc.query)
			if ok != tc.wantOK {
				t.Fatalf("expected ok=%v, got %v", tc.wantOK, ok)
			}
			if ok && team.ID != tc.wantID {
				t.Fatalf("expected team %d, got %d (%s)", tc.wantID, team.ID, team.Name)
			}
		})
	}
}

func TestMatchTeamExactBeatsSubstring(t *testing.T) {
	teams := []Team{
		{ID: 1, Name: "Alpha Mets", TeamName: "Mets", Abbreviation: "AMETS"},
		{ID: 2, Name: "New York Mets", TeamName: "Mets", Abbreviation: "NYM"},
		{ID: 3, Name: "Somewhere", TeamName: "Nymphs", Abbreviation: "SNY"},
	}
	team, ok := MatchTeam(teams, "NYM")
	if !ok || team.ID != 2 {
		t.Fatalf("expected exact abbreviation match, got %+v", team)
	}
}

func TestResolveTeamFetchesEveryCall(t *testing.T) {
	calls := 0
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/teams" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("sportId") != "1" {
			t.Fatalf("expected sportId=1, got %s", r.URL.RawQuery)
		}
		calls++
		w.Write([]byte(teamsFixture))
	})

	for i := 0; i < 2; i++ {
		team, err := svc.ResolveTeam(context.Background(), "nyy")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if team.Abbreviation != "NYY" {
			t.Fatalf("expected NYY, got %s", team.Abbreviation)
		}
	}
	if calls != 2 {
		t.Fatalf("expected team list fetched twice, got %d", calls)
	}
}

func TestResolveTeamNotFound(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(teamsFixture))
	})

	_, err := svc.ResolveTeam(context.Background(), "QQQ")
	if !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestScheduleQueryAndDecode(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("teamId") != "147" || q.Get("date") != "2024-09-28" || q.Get("hydrate") != "probablePitcher" {
			t.Fatalf("unexpected query %s", r.URL.RawQuery)
		}
		if q.Has("season") {
			t.Fatalf("zero season should be omitted: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"totalGames":1,"dates":[{"date":"2024-09-28","games":[
			{"gamePk":1,"gameDate":"2024-09-28T17:05:00Z","status":{"statusCode":"F"},
			 "teams":{"away":{"team":{"id":147,"name":"New York Yankees"},"score":5,
			                  "probablePitcher":{"id":9,"fullName":"Gerrit Cole"}},
			          "home":{"team":{"id":134,"name":"Pittsburgh Pirates"},"score":3}}}]}]}`))
	})

	sched, err := svc.Schedule(context.Background(), ScheduleQuery{Date: "2024-09-28", TeamID: 147, Hydrate: "probablePitcher"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	games := sched.Games()
	if len(games) != 1 {
		t.Fatalf("expected 1 game, got %d", len(games))
	}
	g := games[0]
	if !g.Completed() {
		t.Fatal("expected completed game")
	}
	if g.Teams.Away.Score == nil || *g.Teams.Away.Score != 5 {
		t.Fatalf("unexpected away score %+v", g.Teams.Away.Score)
	}
	if g.Teams.Home.ProbablePitcher != nil {
		t.Fatal("expected no home probable pitcher")
	}
	if g.Teams.Away.ProbablePitcher.FullName != "Gerrit Cole" {
		t.Fatalf("unexpected pitcher %+v", g.Teams.Away.ProbablePitcher)
	}
	if g.GameDate.Hour() != 17 || g.GameDate.Location().String() != "UTC" {
		t.Fatalf("unexpected game date %v", g.GameDate)
	}
}

func TestSearchPlayerPrefersExactName(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("names") != "luis gil" {
			t.Fatalf("unexpected names query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"people":[{"id":1,"fullName":"Luis Gilbert"},{"id":664034,"fullName":"Luis Gil"}]}`))
	})

	p, err := svc.SearchPlayer(context.Background(), " luis   gil ")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.ID != 664034 {
		t.Fatalf("expected exact match, got %+v", p)
	}
}

func TestSearchPlayerNotFound(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"people":[]}`))
	})

	if _, err := svc.SearchPlayer(context.Background(), "Nobody Here"); !IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestPlayerSeasonStats(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/people/592450/stats" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("group") != "hitting" || q.Get("season") != "2024" || q.Get("stats") != "season" {
			t.Fatalf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"stats":[{"splits":[{"season":"2024","stat":{"homeRuns":58,"avg":".322"}}]}]}`))
	})

	splits, err := svc.PlayerSeasonStats(context.Background(), 592450, GroupHitting, 2024)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(splits) != 1 || splits[0].Stat["avg"] != ".322" {
		t.Fatalf("unexpected splits %+v", splits)
	}
	if splits[0].Team != nil {
		t.Fatalf("expected no team on a single split, got %+v", splits[0].Team)
	}
}

func TestPlayerSeasonStatsDecodesTeamSplits(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"stats":[{"splits":[
			{"season":"2024","team":{"id":141,"name":"Toronto Blue Jays"},"stat":{"homeRuns":10}},
			{"season":"2024","team":{"id":147,"name":"New York Yankees"},"stat":{"homeRuns":12}},
			{"season":"2024","stat":{"homeRuns":22}}
		]}]}`))
	})

	splits, err := svc.PlayerSeasonStats(context.Background(), 643396, GroupHitting, 2024)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(splits) != 3 || splits[1].Team == nil || splits[1].Team.ID != 147 || splits[2].Team != nil {
		t.Fatalf("unexpected splits %+v", splits)
	}
}
