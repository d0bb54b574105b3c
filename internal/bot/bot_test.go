package bot

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/flor3z/mlb-stats-bot/internal/activity"
	"github.com/flor3z/mlb-stats-bot/internal/command"
	"github.com/flor3z/mlb-stats-bot/internal/intent"
	"github.com/flor3z/mlb-stats-bot/internal/metrics"
	"github.com/flor3z/mlb-stats-bot/internal/statsapi"
)

type teamsOnly struct{}

func (teamsOnly) Teams(context.Context) ([]statsapi.Team, error) {
	return []statsapi.Team{{ID: 147, Name: "New York Yankees", TeamName: "Yankees", Abbreviation: "NYY"}}, nil
}

func (teamsOnly) ResolveTeam(context.Context, string) (statsapi.Team, error) {
	return statsapi.Team{}, errors.New("not used")
}

func (teamsOnly) Schedule(context.Context, statsapi.ScheduleQuery) (*statsapi.Schedule, error) {
	return &statsapi.Schedule{}, nil
}

func (teamsOnly) SearchPlayer(context.Context, string) (statsapi.Person, error) {
	return statsapi.Person{}, errors.New("not used")
}

func (teamsOnly) PlayerSeasonStats(context.Context, int, statsapi.StatGroup, int) ([]statsapi.StatSplit, error) {
	return nil, nil
}

type fakeMessenger struct {
	mu       sync.Mutex
	sent     []string
	messages []*discordgo.MessageSend
}

func (f *fakeMessenger) ChannelMessageSendComplex(_ string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, data.Content)
	f.messages = append(f.messages, data)
	return &discordgo.Message{}, nil
}

type memorySink struct {
	mu      sync.Mutex
	entries []activity.Entry
}

func (m *memorySink) Append(_ context.Context, e activity.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memorySink) snapshot() []activity.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]activity.Entry(nil), m.entries...)
}

type entryRecorder struct {
	mu      sync.Mutex
	entries []activity.Entry
}

func (r *entryRecorder) RecordAsync(_ context.Context, e activity.Entry) <-chan activity.Result {
	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()
	out := make(chan activity.Result, 1)
	out <- activity.Result{Entry: e}
	return out
}

func (r *entryRecorder) commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for _, e := range r.entries {
		names = append(names, e.Command)
	}
	return names
}

type fakeRecognizer struct {
	in   intent.Intent
	ok   bool
	text string
}

func (f *fakeRecognizer) Recognize(_ context.Context, text string, _ []intent.Command) (intent.Intent, bool, error) {
	f.text = text
	return f.in, f.ok, nil
}

func newTestBot(rec *entryRecorder) *Bot {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Bot{
		logger:   logger,
		activity: rec,
		metrics:  metrics.New(),
		dispatcher: command.NewDispatcher(command.Deps{
			Stats:    teamsOnly{},
			Activity: rec,
			Logger:   logger,
			Prefix:   "!",
		}),
	}
}

func message(content string) *discordgo.Message {
	return &discordgo.Message{
		ChannelID: "chan",
		GuildID:   "guild",
		Content:   content,
		Author:    &discordgo.User{ID: "u1", Username: "fan"},
		Timestamp: time.Date(2024, 9, 28, 12, 0, 0, 0, time.UTC),
	}
}

func TestHandleMessageRepliesAndLogsTwice(t *testing.T) {
	rec := &entryRecorder{}
	b := newTestBot(rec)
	out := &fakeMessenger{}

	b.handleMessage(context.Background(), out, "self", message("!teams"))

	if len(out.sent) != 1 || !strings.Contains(out.sent[0], "New York Yankees (NYY)") {
		t.Fatalf("unexpected replies %q", out.sent)
	}
	// once on receipt, once after a successful dispatch
	if got := rec.commands(); len(got) != 2 || got[0] != "teams" || got[1] != "teams" {
		t.Fatalf("unexpected log entries %v", got)
	}
	e := rec.entries[0]
	if e.User != "fan" || e.Guild != "guild" || e.Channel != "chan" || e.Content != "!teams" {
		t.Fatalf("unexpected entry %+v", e)
	}
}

func TestHandleMessageLogsEachWriteWithItsOwnID(t *testing.T) {
	sink := &memorySink{}
	b := newTestBot(&entryRecorder{})
	logger := activity.NewLogger(sink, b.logger)
	b.activity = logger
	b.dispatcher = command.NewDispatcher(command.Deps{
		Stats:    teamsOnly{},
		Activity: logger,
		Logger:   b.logger,
		Prefix:   "!",
	})

	b.handleMessage(context.Background(), &fakeMessenger{}, "self", message("!teams"))

	deadline := time.Now().Add(2 * time.Second)
	var entries []activity.Entry
	for time.Now().Before(deadline) {
		if entries = sink.snapshot(); len(entries) == 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 log writes, got %d", len(entries))
	}
	if entries[0].CommandID == "" || entries[0].CommandID == entries[1].CommandID {
		t.Fatalf("log writes share id %q", entries[0].CommandID)
	}
	if !entries[0].Timestamp.Equal(entries[1].Timestamp) {
		t.Fatal("both writes should carry the receipt time")
	}
}

func TestRepliesNeverPing(t *testing.T) {
	b := newTestBot(&entryRecorder{})
	out := &fakeMessenger{}

	b.handleMessage(context.Background(), out, "self", message("!@everyone"))
	b.handleMessage(context.Background(), out, "self", message("!pitcher @here"))

	if len(out.messages) != 2 {
		t.Fatalf("expected 2 replies, got %d", len(out.messages))
	}
	if !strings.Contains(out.sent[0], "@everyone") {
		t.Fatalf("expected the name to be echoed, got %q", out.sent[0])
	}
	for _, m := range out.messages {
		am := m.AllowedMentions
		if am == nil || am.Parse == nil || len(am.Parse) != 0 || len(am.Users) != 0 || len(am.Roles) != 0 {
			t.Fatalf("reply %q may ping: %+v", m.Content, am)
		}
	}
}

func TestHandleMessageUnknownCommandLogsOnce(t *testing.T) {
	rec := &entryRecorder{}
	b := newTestBot(rec)
	out := &fakeMessenger{}

	b.handleMessage(context.Background(), out, "self", message("!foo"))

	if len(out.sent) != 1 || out.sent[0] != `Command "foo" not found. Use !help to list commands.` {
		t.Fatalf("unexpected replies %q", out.sent)
	}
	if got := rec.commands(); len(got) != 1 {
		t.Fatalf("expected only the inbound entry, got %v", got)
	}
}

func TestHandleMessageIgnoresBotsAndChatter(t *testing.T) {
	rec := &entryRecorder{}
	b := newTestBot(rec)
	out := &fakeMessenger{}

	fromBot := message("!teams")
	fromBot.Author.Bot = true
	b.handleMessage(context.Background(), out, "self", fromBot)
	b.handleMessage(context.Background(), out, "self", message("nice game yesterday"))
	b.handleMessage(context.Background(), out, "self", message("! teams"))

	if len(out.sent) != 0 || len(rec.commands()) != 0 {
		t.Fatalf("expected no activity, got replies %q entries %v", out.sent, rec.commands())
	}
}

func TestHandleMentionUsesRecognizer(t *testing.T) {
	rec := &entryRecorder{}
	b := newTestBot(rec)
	recognizer := &fakeRecognizer{in: intent.Intent{Command: "teams"}, ok: true}
	b.recognizer = recognizer
	out := &fakeMessenger{}

	m := message("<@self> which teams are there?")
	m.Mentions = []*discordgo.User{{ID: "self"}}
	b.handleMessage(context.Background(), out, "self", m)

	if recognizer.text != "which teams are there?" {
		t.Fatalf("mention not stripped: %q", recognizer.text)
	}
	if len(out.sent) != 1 || !strings.Contains(out.sent[0], "NYY") {
		t.Fatalf("unexpected replies %q", out.sent)
	}
}

func TestHandleMentionWithoutIntentStaysQuiet(t *testing.T) {
	b := newTestBot(&entryRecorder{})
	b.recognizer = &fakeRecognizer{}
	out := &fakeMessenger{}

	m := message("<@self> hello!")
	m.Mentions = []*discordgo.User{{ID: "self"}}
	b.handleMessage(context.Background(), out, "self", m)

	if len(out.sent) != 0 {
		t.Fatalf("expected no reply, got %q", out.sent)
	}
}

func TestSplitMessage(t *testing.T) {
	if got := splitMessage("short", 10); len(got) != 1 || got[0] != "short" {
		t.Fatalf("unexpected %q", got)
	}
	if got := splitMessage("", 10); got != nil {
		t.Fatalf("expected nil, got %q", got)
	}

	got := splitMessage("aaaa\nbbbb\ncccc\n", 10)
	if len(got) != 2 || got[0] != "aaaa\nbbbb\n" || got[1] != "cccc\n" {
		t.Fatalf("unexpected line split %q", got)
	}

	long := strings.Repeat("é", 7) // 14 bytes
	for _, chunk := range splitMessage(long, 5) {
		if len(chunk) > 5 || !utf8.ValidString(chunk) {
			t.Fatalf("bad chunk %q", chunk)
		}
	}
	if strings.Join(splitMessage(long, 5), "") != long {
		t.Fatal("chunks do not reassemble")
	}
}

func TestRequestFromInteraction(t *testing.T) {
	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "guild",
		ChannelID: "chan",
		Member:    &discordgo.Member{User: &discordgo.User{ID: "u1", Username: "fan"}},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "recent",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "count", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(5)},
				{Name: "team", Type: discordgo.ApplicationCommandOptionString, Value: "NYY"},
			},
		},
	}}

	req := requestFromInteraction(i)
	if req.Name != "recent" || strings.Join(req.Args, " ") != "NYY 5" {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.UserName != "fan" || req.GuildID != "guild" || req.Content != "/recent NYY 5" {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestRequestFromInteractionSplitsPlayerName(t *testing.T) {
	i := &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		User: &discordgo.User{ID: "u2", Username: "dm-fan"},
		Data: discordgo.ApplicationCommandInteractionData{
			Name: "hstat",
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{Name: "player", Type: discordgo.ApplicationCommandOptionString, Value: " Aaron  Judge "},
			},
		},
	}}

	req := requestFromInteraction(i)
	if len(req.Args) != 2 || req.Args[0] != "Aaron" || req.Args[1] != "Judge" || req.UserName != "dm-fan" {
		t.Fatalf("unexpected request %+v", req)
	}
}

func TestCommandDefinitionsMirrorRegistry(t *testing.T) {
	b := newTestBot(&entryRecorder{})

	defs := b.getCommandDefinitions()
	names := make(map[string]*discordgo.ApplicationCommand)
	for _, d := range defs {
		names[d.Name] = d
	}
	for _, want := range []string{"pitcher", "schedule", "teams", "history", "recent", "hstat", "pstat", "help"} {
		if _, ok := names[want]; !ok {
			t.Fatalf("missing slash command %s", want)
		}
	}
	if _, ok := names["quote"]; ok {
		t.Fatal("quote should not be registered without a source")
	}
	if opts := names["recent"].Options; len(opts) != 2 || !opts[0].Required {
		t.Fatalf("unexpected recent options %+v", opts)
	}
}
