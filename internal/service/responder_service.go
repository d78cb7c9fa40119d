package service

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

	"impostorhunt/internal/config"
	"impostorhunt/internal/logging"
	"impostorhunt/internal/random"
	"impostorhunt/internal/resource"
)

// ErrGenerationDisabled is returned when no API key is configured; the
// caller falls back to the deterministic placeholder text.
var ErrGenerationDisabled = errors.New("answer generation is not configured")

// modelTemperatures tunes sampling per selectable model. Models missing
// from the map use defaultTemperature.
var modelTemperatures = map[string]float64{
	"gemini-2.5-pro":  0.9,
	"gpt-5":           1.0,
	"claude-opus-4.1": 0.9,
	"grok-4":          0.8,
}

const defaultTemperature = 0.9

// ResponderService generates AI player answers through an
// OpenAI-compatible chat completions endpoint. A reachable but failing
// endpoint degrades to a canned fallback answer rather than an error, so
// one flaky upstream call never stalls a round.
type ResponderService struct {
	cfg    *config.AIConfig
	client *http.Client
	rand   random.Source
}

// NewResponderService creates a new responder service
func NewResponderService(cfg *config.AIConfig, src random.Source) *ResponderService {
	return &ResponderService{
		cfg:    cfg,
		client: &http.Client{Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond},
		rand:   src,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate produces one answer for the round's question. It returns
// ErrGenerationDisabled when no API key is set; transport and protocol
// failures are logged and replaced with a fallback answer.
func (s *ResponderService) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	if !s.cfg.IsEnabled() {
		return "", ErrGenerationDisabled
	}
	logger := logging.FromContext(ctx)

	answer, err := s.callChatAPI(ctx, req)
	if err != nil {
		logger.Errorw("chat completion failed, using fallback answer",
			"game", req.GameID, "round", req.RoundNumber, "model", req.ModelID, "error", err)
		return resource.FallbackAnswer(s.rand, req.Language), nil
	}
	return answer, nil
}

func (s *ResponderService) callChatAPI(ctx context.Context, req GenerateRequest) (string, error) {
	temperature, ok := modelTemperatures[req.ModelID]
	if !ok {
		temperature = defaultTemperature
	}

	body, err := json.Marshal(chatRequest{
		Model: req.ModelID,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(req.Language)},
			{Role: "user", Content: userPrompt(req)},
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.ChatEndpoint(), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read chat response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat API status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("chat API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("chat response contained no choices")
	}

	answer := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if answer == "" {
		return "", errors.New("chat response contained an empty answer")
	}
	return answer, nil
}

func systemPrompt(lang string) string {
	language := "English"
	if lang == "ko" {
		language = "Korean"
	}
	var b strings.Builder
	b.WriteString("You are a player in a casual party game where everyone answers the same icebreaker question. ")
	b.WriteString("Answer naturally, in one or two short sentences, the way an ordinary person chatting with friends would. ")
	b.WriteString("Do not mention that you are an AI or a language model. ")
	b.WriteString("Keep the tone relaxed and a little imperfect. ")
	fmt.Fprintf(&b, "Reply in %s.", language)
	return b.String()
}

func userPrompt(req GenerateRequest) string {
	var b strings.Builder
	if len(req.History) > 0 {
		b.WriteString("Here is what was asked and answered in earlier rounds:\n")
		for _, h := range req.History {
			fmt.Fprintf(&b, "Round %d question: %s\n", h.Round, h.Question)
			for _, a := range h.Answers {
				fmt.Fprintf(&b, "- %s: %s\n", a.Player, a.Text)
			}
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Round %d question: %s\nYour answer:", req.RoundNumber, req.Question)
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
