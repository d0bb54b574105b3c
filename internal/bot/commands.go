package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/flor3z/mlb-stats-bot/internal/command"
)

// slashOptions lists, in argument order, the options each command takes
var slashOptions = map[string][]*discordgo.ApplicationCommandOption{
	"pitcher": {teamOption()},
	"history": {
		teamOption(),
		{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "date",
			Description: "Date in YYYY-MM-DD (default today)",
		},
	},
	"recent": {
		teamOption(),
		{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "count",
			Description: "Number of games (default 3)",
		},
	},
	"hstat": {playerOption()},
	"pstat": {playerOption()},
}

func teamOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "team",
		Description: "Team abbreviation or name (e.g., NYY)",
		Required:    true,
	}
}

func playerOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "player",
		Description: "Player first and last name (e.g., Aaron Judge)",
		Required:    true,
	}
}

// getCommandDefinitions mirrors every registered prefix command as a slash command
func (b *Bot) getCommandDefinitions() []*discordgo.ApplicationCommand {
	cmds := b.dispatcher.Registry().List()
	defs := make([]*discordgo.ApplicationCommand, 0, len(cmds))
	for _, c := range cmds {
		defs = append(defs, &discordgo.ApplicationCommand{
			Name:        c.Name,
			Description: c.Description,
			Options:     slashOptions[c.Name],
		})
	}
	return defs
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	b.logger.Info("Registering slash commands")

	commandDefinitions := b.getCommandDefinitions()

	for _, cmd := range commandDefinitions {
		_, err := b.session.ApplicationCommandCreate(
			b.session.State.User.ID,
			"", // Empty string = global command
			cmd,
		)
		if err != nil {
			return fmt.Errorf("failed to register command %s: %w", cmd.Name, err)
		}
		b.logger.Debug("Registered command", "name", cmd.Name)
	}

	b.logger.Info("Slash commands registered", "count", len(commandDefinitions))
	return nil
}

// handleInteraction processes slash command interactions
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	req := requestFromInteraction(i)
	b.logger.Debug("Received command", "command", req.Name, "guild", i.GuildID)

	// Respond immediately to avoid timeout
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		b.logger.Error("Failed to acknowledge interaction", "command", req.Name, "error", err)
		return
	}

	ctx := context.Background()
	b.recordInbound(ctx, &req)
	chunks := splitMessage(b.dispatch(ctx, &req), maxMessageLength)
	if len(chunks) == 0 {
		chunks = []string{"(empty reply)"}
	}

	b.editResponse(s, i, chunks[0])
	for _, chunk := range chunks[1:] {
		_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Content:         chunk,
			AllowedMentions: noMentions(),
		})
		if err != nil {
			b.logger.Error("Failed to send follow-up", "command", req.Name, "error", err)
			return
		}
	}
}

// requestFromInteraction turns slash options into prefix-style arguments
func requestFromInteraction(i *discordgo.InteractionCreate) command.Request {
	data := i.ApplicationCommandData()

	values := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(data.Options))
	for _, opt := range data.Options {
		values[opt.Name] = opt
	}

	var args []string
	for _, def := range slashOptions[data.Name] {
		opt, ok := values[def.Name]
		if !ok {
			break
		}
		switch opt.Type {
		case discordgo.ApplicationCommandOptionInteger:
			args = append(args, strconv.FormatInt(opt.IntValue(), 10))
		default:
			args = append(args, strings.Fields(opt.StringValue())...)
		}
	}

	req := command.Request{
		Name:       data.Name,
		Args:       args,
		GuildID:    i.GuildID,
		ChannelID:  i.ChannelID,
		Content:    "/" + strings.TrimSpace(data.Name+" "+strings.Join(args, " ")),
		ReceivedAt: time.Now(),
	}
	if user := interactionUser(i); user != nil {
		req.UserID = user.ID
		req.UserName = user.Username
	}
	return req
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

func (b *Bot) editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content:         &content,
		AllowedMentions: noMentions(),
	}); err != nil {
		b.logger.Error("Failed to edit interaction response", "error", err)
	}
}
