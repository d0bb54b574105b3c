// Package intent maps free-form chat text onto one of the bot's commands
// using an OpenAI chat model in JSON mode.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured
const DefaultModel = "gpt-4o-mini"

// none is the command name the model returns when nothing matches
const none = "none"

// Command describes one command the model may choose
type Command struct {
	Name        string
	Usage       string
	Description string
}

// Intent is a recognized command invocation
type Intent struct {
	Command string   `json:"command"`
	Args    []string `json:"args"`
}

// Recognizer asks a chat model which command a message is asking for
type Recognizer struct {
	client *openai.Client
	model  string
}

// NewRecognizer creates a Recognizer. An empty baseURL uses the OpenAI API.
func NewRecognizer(apiKey, model, baseURL string) *Recognizer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Recognizer{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Recognize returns the matching intent. ok is false when the model picks
// no command or names one that is not in commands.
func (r *Recognizer) Recognize(ctx context.Context, text string, commands []Command) (Intent, bool, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt(commands)},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens:   200,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return Intent{}, false, fmt.Errorf("intent request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Intent{}, false, nil
	}

	var in Intent
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &in); err != nil {
		return Intent{}, false, fmt.Errorf("failed to decode intent: %w", err)
	}

	in.Command = strings.ToLower(strings.TrimSpace(in.Command))
	if in.Command == "" || in.Command == none {
		return Intent{}, false, nil
	}
	for _, c := range commands {
		if c.Name == in.Command {
			return in, true, nil
		}
	}
	return Intent{}, false, nil
}

func systemPrompt(commands []Command) string {
	var sb strings.Builder
	sb.WriteString("You route messages for an MLB stats chat bot. ")
	sb.WriteString("Pick the single command that answers the message and extract its arguments. ")
	sb.WriteString("Teams are MLB abbreviations such as NYY or LAD. Dates are YYYY-MM-DD. ")
	sb.WriteString(`Reply with JSON only: {"command": "<name>", "args": ["..."]}. `)
	sb.WriteString(`Use "none" as the command when nothing fits.`)
	sb.WriteString("\n\nCommands:\n")
	for _, c := range commands {
		sb.WriteString(fmt.Sprintf("- %s: %s\n", c.Usage, c.Description))
	}
	return sb.String()
}
