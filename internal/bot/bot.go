package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/flor3z/mlb-stats-bot/internal/activity"
	"github.com/flor3z/mlb-stats-bot/internal/announce"
	"github.com/flor3z/mlb-stats-bot/internal/command"
	"github.com/flor3z/mlb-stats-bot/internal/config"
	"github.com/flor3z/mlb-stats-bot/internal/gateway"
	"github.com/flor3z/mlb-stats-bot/internal/intent"
	"github.com/flor3z/mlb-stats-bot/internal/metrics"
	"github.com/flor3z/mlb-stats-bot/internal/quote"
	"github.com/flor3z/mlb-stats-bot/internal/statsapi"
	"github.com/flor3z/mlb-stats-bot/internal/storage"
)

// Recognizer maps free text onto a command
type Recognizer interface {
	Recognize(ctx context.Context, text string, commands []intent.Command) (intent.Intent, bool, error)
}

// Bot represents the Discord bot instance
type Bot struct {
	config     *config.Config
	session    *discordgo.Session
	logger     *slog.Logger
	dispatcher *command.Dispatcher
	activity   command.ActivityRecorder
	recognizer Recognizer
	metrics    *metrics.Metrics
	announcer  *announce.Announcer
	admin      *metrics.Server
	closers    []func() error
}

// New creates a new Bot instance
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Bot, error) {
	// Create Discord session
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	// Set intents
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentsMessageContent

	m := metrics.New()

	b := &Bot{
		config:  cfg,
		session: session,
		logger:  logger,
		metrics: m,
	}

	sink, err := b.openSinks(ctx)
	if err != nil {
		b.close()
		return nil, err
	}
	b.activity = activity.NewLogger(sink, logger, activity.WithFailureHook(m.ActivityLogFailed))

	stats := statsapi.NewService(gateway.NewClient(gateway.Config{
		BaseURL:  cfg.StatsAPI.BaseURL,
		Timeout:  cfg.HTTP.Timeout,
		Observer: m.GatewayObserver(),
	}))

	deps := command.Deps{
		Stats:    stats,
		Activity: b.activity,
		Logger:   logger,
		Prefix:   cfg.Discord.Prefix,
		Location: cfg.DisplayLocation(),
		Season:   cfg.Season(),
	}
	if cfg.Quote.URL != "" {
		deps.Quotes = quote.NewClient(gateway.NewClient(gateway.Config{
			BaseURL:  cfg.Quote.URL,
			Timeout:  cfg.HTTP.Timeout,
			Observer: m.GatewayObserver(),
		}))
	}
	b.dispatcher = command.NewDispatcher(deps)

	if cfg.IntentEnabled() {
		b.recognizer = intent.NewRecognizer(cfg.Intent.APIKey, cfg.Intent.Model, cfg.Intent.BaseURL)
	}

	if cfg.AnnounceEnabled() {
		hour, minute, err := cfg.AnnounceClock()
		if err != nil {
			b.close()
			return nil, err
		}
		b.announcer = announce.New(session, announce.Config{
			ChannelID: cfg.Announce.ChannelID,
			Hour:      hour,
			Minute:    minute,
			Location:  cfg.AnnounceLocation(),
			Title:     cfg.Announce.Title,
		}, logger, announce.WithResultHook(m.AnnouncementSent))
	}

	if cfg.Metrics.Addr != "" {
		b.admin = metrics.NewServer(cfg.Metrics.Addr, m)
	}

	// Register event handlers
	b.registerHandlers()

	return b, nil
}

// openSinks opens the SQLite log and, when AWS keys are set, the DynamoDB table
func (b *Bot) openSinks(ctx context.Context) (activity.Sink, error) {
	repo, err := storage.NewRepository(b.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	b.closers = append(b.closers, repo.Close)

	if !b.config.DynamoEnabled() {
		return repo, nil
	}

	dynamo, err := storage.NewDynamoSink(ctx, storage.DynamoConfig{
		Region:          b.config.AWS.Region,
		AccessKeyID:     b.config.AWS.AccessKeyID,
		SecretAccessKey: b.config.AWS.SecretAccessKey,
		Table:           b.config.AWS.LogTable,
	})
	if err != nil {
		return nil, err
	}
	return activity.MultiSink{repo, dynamo}, nil
}

// Start opens the Discord connection and starts background tasks
func (b *Bot) Start(ctx context.Context) error {
	// Open Discord connection
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	b.logger.Info("Connected to Discord", "user", b.session.State.User.Username)

	// Register slash commands
	if err := b.registerCommands(); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	if b.announcer != nil {
		go b.announcer.Start(ctx)
	}

	if b.admin != nil {
		go func() {
			if err := b.admin.Start(); err != nil {
				b.logger.Error("Metrics server failed", "error", err)
			}
		}()
	}

	return nil
}

// Stop gracefully shuts down the bot
func (b *Bot) Stop() error {
	if b.announcer != nil {
		b.announcer.Stop()
	}

	var errs []error
	if b.admin != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		errs = append(errs, b.admin.Shutdown(ctx))
		cancel()
	}

	// Close Discord session
	if b.session != nil {
		errs = append(errs, b.session.Close())
	}

	errs = append(errs, b.close())
	return errors.Join(errs...)
}

func (b *Bot) close() error {
	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c())
	}
	b.closers = nil
	return errors.Join(errs...)
}

// registerHandlers sets up Discord event handlers
func (b *Bot) registerHandlers() {
	b.session.AddHandler(b.onMessageCreate)
	b.session.AddHandler(b.handleInteraction)
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.logger.Info("Bot is ready", "user", r.User.Username, "guilds", len(r.Guilds))
		if err := s.UpdateGameStatus(0, b.config.Discord.Prefix+"help | MLB stats"); err != nil {
			b.logger.Warn("Failed to set presence", "error", err)
		}
	})
}
