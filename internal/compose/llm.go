package compose

import (
	"context"
	"fmt"
	"strings"

	"devitalik/internal/config"
)

// NewGenerator builds a Generator for the configured provider. Anything other
// than a configured OpenAI provider falls back to the heuristic templates.
func NewGenerator(cfg config.LLMConfig) Generator {
	if strings.ToLower(cfg.Provider) == "openai" && cfg.APIKey != "" {
		return &llmGenerator{cfg: cfg}
	}
	return Heuristic{}
}

// Heuristic is a rule-based fallback generator with no external dependency.
type Heuristic struct{}

func (Heuristic) Generate(_ context.Context, prompt, _ string) (string, error) {
	// Pull the quoted target out of a reply prompt when present.
	if i := strings.Index(prompt, "\""); i >= 0 {
		if j := strings.Index(prompt[i+1:], "\""); j > 0 {
			quoted := prompt[i+1 : i+1+j]
			return fmt.Sprintf("Interesting take — what trade-offs did you weigh around %s?", trimTail(quoted, 120)), nil
		}
	}
	return "Watching how agent builders handle rate limits and feed ranking. The creative solutions in this space keep surprising.", nil
}

func trimTail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n])
}

type llmGenerator struct {
	cfg config.LLMConfig
}

// Generate calls the OpenAI Responses API with a small, grounded prompt.
func (g *llmGenerator) Generate(ctx context.Context, prompt, system string) (string, error) {
	payload := fmt.Sprintf(
		`{"model":"%s","instructions":"%s","input":[{"role":"user","content":[{"type":"text","text":"%s"}]}]}`,
		g.cfg.Model, escapeJSON(system), escapeJSON(prompt))
	req, err := httpNewRequest(ctx, "https://api.openai.com/v1/responses", "POST", payload)
	if err != nil { return "", err }
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := httpDo(req)
	if err != nil { return "", err }
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("llm status %d", resp.StatusCode)
	}
	text, err := parseOpenAIResponse(resp)
	if err != nil { return "", err }
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty llm response")
	}
	return text, nil
}

// escapeJSON is minimal, for controlled prompts
func escapeJSON(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
