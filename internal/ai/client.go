// Package ai talks to an OpenAI-compatible chat completion service to turn
// free text into tasks and tasks into smaller steps. Everything the service
// returns is normalized before it reaches the rest of the app.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/julianstephens/nextup/internal/config"
	"github.com/julianstephens/nextup/internal/logger"
	"github.com/julianstephens/nextup/internal/models"
)

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("AI service is not configured: run `nextup secret set ai` or set NEXTUP_AI_API_KEY")

const parsePrompt = `Extract a single task from the user's text. Reply with a JSON object with the keys
title (string), priority (high|medium|low), energy (peak|medium|low), estimated_minutes (integer),
deadline (RFC3339 timestamp or YYYY-MM-DD, omit if none) and confidence (object mapping each of
those keys to a number between 0 and 1).`

const breakdownPrompt = `Break the user's task into small, concrete steps that can each be done in one sitting.
Reply with a JSON object {"steps": [{"title": string, "estimated_minutes": integer, "energy": "peak|medium|low"}]}
in the order they should be done.`

// Client is an authenticated client for the AI service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	loc        *time.Location
}

// NewClient builds a client that sends apiKey as a bearer token.
func NewClient(ctx context.Context, cfg config.AIConfig, apiKey string, loc *time.Location) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrNotConfigured
	}
	if loc == nil {
		loc = time.Local
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(ctx, ts)
	httpClient.Timeout = cfg.Timeout()

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		loc:        loc,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// complete sends one system+user exchange and decodes the JSON reply into out.
func (c *Client) complete(ctx context.Context, system, user string, out interface{}) error {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("AI request failed: %w", err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	logger.Debug("AI request finished", "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("AI service error %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var chat chatResponse
	if err := json.Unmarshal(data, &chat); err != nil {
		return fmt.Errorf("decoding AI response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return fmt.Errorf("AI service returned no choices")
	}
	content := stripCodeFence(chat.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("decoding AI content: %w", err)
	}
	return nil
}

// ParseTask turns free text into a normalized task draft.
func (c *Client) ParseTask(ctx context.Context, text string) (ParsedTask, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ParsedTask{}, emptyInputError()
	}
	var raw RawTask
	if err := c.complete(ctx, parsePrompt, text, &raw); err != nil {
		return ParsedTask{}, err
	}
	return NormalizeParse(raw, text, c.loc)
}

// Breakdown splits a task into ordered steps.
func (c *Client) Breakdown(ctx context.Context, task models.Task) ([]Step, error) {
	prompt := fmt.Sprintf("Task: %s\nEstimated minutes: %d\nEnergy: %s", task.Title, task.EstimatedMinutes, task.Energy.TaskLabel())
	if task.Blocker != "" {
		prompt += "\nBlocker: " + task.Blocker
	}
	var raw rawBreakdown
	if err := c.complete(ctx, breakdownPrompt, prompt, &raw); err != nil {
		return nil, err
	}
	return NormalizeSteps(raw.Steps)
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
