package questions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mindduel/backend/internal/engine"
)

const generationPrompt = `Generate exactly 10 multiple-choice trivia questions of mixed difficulty.
Respond with ONLY a JSON array, no prose, where each item is:
{"q": "question text", "options": ["a", "b", "c", "d"], "answer": "the correct option verbatim"}`

// LLM generates question sets from an OpenAI-compatible chat-completions
// endpoint. Every malformed response is returned as a plain error so the
// Retrying wrapper treats it like any other transient failure.
type LLM struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

func NewLLM(baseURL, model, apiKey string, timeout time.Duration) *LLM {
	return &LLM{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (l *LLM) Generate(ctx context.Context) (engine.QuestionSet, error) {
	body, err := json.Marshal(chatRequest{
		Model:    l.model,
		Messages: []chatMessage{{Role: "user", Content: generationPrompt}},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+l.apiKey)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return nil, fmt.Errorf("bad completion envelope: %w", err)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response")
	}

	return ParseSet([]byte(stripFences(cr.Choices[0].Message.Content)))
}

// ParseSet decodes a JSON array of questions and validates it as a
// complete round.
func ParseSet(data []byte) (engine.QuestionSet, error) {
	var items []struct {
		Q       string   `json:"q"`
		Options []string `json:"options"`
		Answer  string   `json:"answer"`
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("bad question JSON: %w", err)
	}

	qs := make(engine.QuestionSet, 0, len(items))
	for _, it := range items {
		qs = append(qs, engine.Question{Prompt: it.Q, Options: it.Options, Answer: it.Answer})
	}
	if err := qs.Validate(); err != nil {
		return nil, err
	}
	return qs, nil
}

// Models like to wrap JSON in markdown code fences even when told not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
