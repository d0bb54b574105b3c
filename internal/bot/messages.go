package bot

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/flor3z/mlb-stats-bot/internal/command"
	"github.com/flor3z/mlb-stats-bot/internal/intent"
)

// maxMessageLength is Discord's limit for one message
const maxMessageLength = 2000

// messenger is the subset of *discordgo.Session used to reply to messages
type messenger interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// noMentions keeps echoed user text such as @everyone from pinging anyone
func noMentions() *discordgo.MessageAllowedMentions {
	return &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}}
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if s.State == nil || s.State.User == nil {
		return
	}
	b.handleMessage(context.Background(), s, s.State.User.ID, m.Message)
}

// handleMessage answers prefixed commands and, when a recognizer is set,
// plain messages that mention the bot
func (b *Bot) handleMessage(ctx context.Context, s messenger, selfID string, m *discordgo.Message) {
	if m.Author == nil || m.Author.Bot || m.Author.ID == selfID {
		return
	}

	req, ok := command.Parse(b.dispatcher.Prefix(), m.Content)
	if !ok {
		if b.recognizer != nil && mentions(m, selfID) {
			b.handleMention(ctx, s, selfID, m)
		}
		return
	}

	fillRequest(&req, m)
	// every inbound command is logged before dispatch
	b.recordInbound(ctx, &req)
	b.reply(s, m.ChannelID, b.dispatch(ctx, &req))
}

func (b *Bot) handleMention(ctx context.Context, s messenger, selfID string, m *discordgo.Message) {
	text := stripMention(m.Content, selfID)
	if text == "" {
		return
	}

	in, ok, err := b.recognizer.Recognize(ctx, text, b.intentCommands())
	if err != nil {
		b.logger.Warn("Intent recognition failed", "error", err)
		return
	}
	if !ok {
		b.logger.Debug("No intent recognized", "text", text)
		return
	}

	req := command.Request{Name: in.Command, Args: in.Args, Content: m.Content}
	fillRequest(&req, m)
	b.recordInbound(ctx, &req)
	b.reply(s, m.ChannelID, b.dispatch(ctx, &req))
}

func (b *Bot) dispatch(ctx context.Context, req *command.Request) string {
	reply := b.dispatcher.Dispatch(ctx, req)
	if b.metrics != nil {
		b.metrics.CommandHandled(req.Name, string(reply.Outcome), reply.Outcome != command.OutcomeUnknown)
	}
	return reply.Content
}

func (b *Bot) recordInbound(ctx context.Context, req *command.Request) {
	if b.activity != nil {
		_ = b.activity.RecordAsync(ctx, req.Entry())
	}
}

func (b *Bot) reply(s messenger, channelID, content string) {
	for _, chunk := range splitMessage(content, maxMessageLength) {
		_, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
			Content:         chunk,
			AllowedMentions: noMentions(),
		})
		if err != nil {
			b.logger.Error("Failed to send reply", "channel", channelID, "error", err)
			return
		}
	}
}

func (b *Bot) intentCommands() []intent.Command {
	cmds := b.dispatcher.Registry().List()
	out := make([]intent.Command, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, intent.Command{Name: c.Name, Usage: c.Usage, Description: c.Description})
	}
	return out
}

func fillRequest(req *command.Request, m *discordgo.Message) {
	req.UserID = m.Author.ID
	req.UserName = m.Author.Username
	req.GuildID = m.GuildID
	req.ChannelID = m.ChannelID
	req.ReceivedAt = m.Timestamp
	if req.ReceivedAt.IsZero() {
		req.ReceivedAt = time.Now()
	}
}

func mentions(m *discordgo.Message, userID string) bool {
	for _, u := range m.Mentions {
		if u != nil && u.ID == userID {
			return true
		}
	}
	return false
}

func stripMention(content, userID string) string {
	content = strings.ReplaceAll(content, "<@"+userID+">", "")
	content = strings.ReplaceAll(content, "<@!"+userID+">", "")
	return strings.TrimSpace(content)
}

// splitMessage breaks content into chunks of at most limit bytes, preferring
// line boundaries and never splitting a rune
func splitMessage(content string, limit int) []string {
	if content == "" {
		return nil
	}
	if len(content) <= limit {
		return []string{content}
	}

	var chunks []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, line := range strings.SplitAfter(content, "\n") {
		if current.Len()+len(line) <= limit {
			current.WriteString(line)
			continue
		}
		flush()
		for len(line) > limit {
			cut := limit
			for cut > 0 && !utf8.RuneStart(line[cut]) {
				cut--
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		current.WriteString(line)
	}
	flush()
	return chunks
}
