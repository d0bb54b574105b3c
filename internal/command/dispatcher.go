package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/flor3z/mlb-stats-bot/internal/activity"
	"github.com/flor3z/mlb-stats-bot/internal/gateway"
	"github.com/flor3z/mlb-stats-bot/internal/statsapi"
	"github.com/google/uuid"
)

// StatsService is the subset of the Stats API used by the handlers
type StatsService interface {
	Teams(ctx context.Context) ([]statsapi.Team, error)
	ResolveTeam(ctx context.Context, query string) (statsapi.Team, error)
	Schedule(ctx context.Context, q statsapi.ScheduleQuery) (*statsapi.Schedule, error)
	SearchPlayer(ctx context.Context, fullName string) (statsapi.Person, error)
	PlayerSeasonStats(ctx context.Context, playerID int, group statsapi.StatGroup, season int) ([]statsapi.StatSplit, error)
}

// QuoteSource returns a quote as plain text
type QuoteSource interface {
	Random(ctx context.Context) (string, error)
}

// ActivityRecorder writes activity entries off the reply path
type ActivityRecorder interface {
	RecordAsync(ctx context.Context, e activity.Entry) <-chan activity.Result
}

// Deps are the collaborators injected into the dispatcher
type Deps struct {
	Stats    StatsService
	Quotes   QuoteSource // nil leaves the quote command unregistered
	Activity ActivityRecorder
	Logger   *slog.Logger

	Prefix   string
	Location *time.Location // display and "today" zone
	Season   int            // 0 means the current year in Location
	Now      func() time.Time
}

// Reply is the user-facing result of a dispatch
type Reply struct {
	Content string
	Outcome Outcome
	Err     error
}

// Dispatcher selects and runs one handler per request
type Dispatcher struct {
	registry *Registry
	stats    StatsService
	quotes   QuoteSource
	activity ActivityRecorder
	logger   *slog.Logger

	prefix string
	loc    *time.Location
	season int
	now    func() time.Time
}

// NewDispatcher builds a dispatcher with every built-in command registered
func NewDispatcher(deps Deps) *Dispatcher {
	d := &Dispatcher{
		registry: NewRegistry(),
		stats:    deps.Stats,
		quotes:   deps.Quotes,
		activity: deps.Activity,
		logger:   deps.Logger,
		prefix:   deps.Prefix,
		loc:      deps.Location,
		season:   deps.Season,
		now:      deps.Now,
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if d.prefix == "" {
		d.prefix = DefaultPrefix
	}
	if d.loc == nil {
		d.loc = time.UTC
	}
	if d.now == nil {
		d.now = time.Now
	}

	d.registerBuiltins()
	return d
}

// Registry exposes the registered commands
func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Prefix returns the text command prefix
func (d *Dispatcher) Prefix() string {
	return d.prefix
}

// Dispatch runs the handler registered for req.Name. It never panics and
// never returns an error: every failure is rendered into Reply.Content.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) Reply {
	requestID := uuid.NewString()
	logger := d.logger.With("request_id", requestID, "command", req.Name, "guild", req.GuildID)

	cmd, err := d.registry.Get(req.Name)
	if err != nil {
		logger.Debug("Unknown command")
		return Reply{
			Content: d.UnknownCommandMessage(req.Name),
			Outcome: OutcomeUnknown,
			Err:     &UnknownCommandError{Name: req.Name},
		}
	}

	start := time.Now()
	content, err := runSafely(ctx, cmd, req)
	if err != nil {
		outcome, msg := d.describeError(cmd, err)
		logger.Warn("Command failed", "outcome", outcome, "duration", time.Since(start), "error", err)
		return Reply{Content: msg, Outcome: outcome, Err: err}
	}

	logger.Info("Command handled", "duration", time.Since(start))

	if d.activity != nil {
		// the reply never waits on or depends on the log write
		_ = d.activity.RecordAsync(ctx, req.Entry())
	}

	return Reply{Content: content, Outcome: OutcomeOK}
}

// UnknownCommandMessage is the reply for a name with no handler
func (d *Dispatcher) UnknownCommandMessage(name string) string {
	return fmt.Sprintf("Command %q not found. Use %shelp to list commands.", name, d.prefix)
}

func (d *Dispatcher) describeError(cmd *Command, err error) (Outcome, string) {
	var inputErr *UserInputError
	if errors.As(err, &inputErr) {
		return OutcomeUserInput, inputErr.Message
	}

	var nf *statsapi.NotFoundError
	if errors.As(err, &nf) {
		return OutcomeNotFound, fmt.Sprintf("Could not find %s: %s", nf.Kind, nf.Query)
	}

	if _, ok := gateway.AsNetworkError(err); ok {
		return OutcomeNetwork, fmt.Sprintf("Error while getting %s: %v\nPlease try again later", cmd.Topic, err)
	}

	return OutcomeFailed, fmt.Sprintf("Error while getting %s: %v", cmd.Topic, err)
}

func runSafely(ctx context.Context, cmd *Command, req *Request) (content string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return cmd.Run(ctx, req)
}

func (d *Dispatcher) today() string {
	return d.now().In(d.loc).Format(dateLayout)
}

// currentSeason resolves the configured season, defaulting to this year
func (d *Dispatcher) currentSeason() (season int, auto bool) {
	if d.season > 0 {
		return d.season, false
	}
	return d.now().In(d.loc).Year(), true
}
