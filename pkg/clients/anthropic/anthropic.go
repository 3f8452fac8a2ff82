package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"
	defaultModel   = "claude-3-haiku-20240307"
	maxTokens      = 256
	noCommand      = "NONE"
)

// ErrNoCommand is returned when the text does not describe any inventory action.
var ErrNoCommand = errors.New("no command in message")

// Client turns free text into store commands.
type Client interface {
	TranslateToCommand(ctx context.Context, input string) (string, error)
}

// Options configures the Messages API endpoint.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type anthropicClient struct {
	httpClient *resty.Client
	model      string
}

// NewClient creates a configured Anthropic client.
func NewClient(opts Options) Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := opts.Model
	if model == "" {
		model = defaultModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("x-api-key", opts.APIKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(timeout)

	return &anthropicClient{httpClient: client, model: model}
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

const systemPrompt = `You translate messages from warehouse staff into exactly one command for a perishable-goods storage system.

Commands:
/create <bin> <max_capacity> <temperature> <humidity>
/add <bin> <name> <quantity> <temperature> <humidity> <YYYY-MM-DD>
/take <bin> <name> <quantity>
/remove <bin> <name>
/show <bin>
/status <bin>
/conditions <bin> <temperature> <humidity>
/recommend <name>
/safety [bin]
/bins

Rules:
- Reply with the command line only, no explanation and no code block.
- Item names with spaces are written with underscores, e.g. Bell_Pepper.
- If the message asks for none of these actions, reply NONE.`

// TranslateToCommand asks the model for the single slash command matching input.
func (c *anthropicClient) TranslateToCommand(ctx context.Context, input string) (string, error) {
	reqBody := messageRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages:  []message{{Role: "user", Content: input}},
	}

	var respBody messageResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		Post("/v1/messages")
	if err != nil {
		return "", fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("anthropic api error: status=%d body=%s", resp.StatusCode(), resp.String())
	}
	if len(respBody.Content) == 0 {
		return "", errors.New("empty response from ai")
	}

	command := strings.TrimSpace(respBody.Content[0].Text)
	command = strings.Trim(command, "`")
	command = strings.TrimSpace(command)
	if line, _, found := strings.Cut(command, "\n"); found {
		command = strings.TrimSpace(line)
	}

	if command == "" || strings.EqualFold(command, noCommand) || !strings.HasPrefix(command, "/") {
		return "", ErrNoCommand
	}
	return command, nil
}
