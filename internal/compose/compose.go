package compose

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"devitalik/internal/config"
	"devitalik/internal/github"
	"devitalik/internal/market"
	"devitalik/internal/scoring"
	"devitalik/internal/social"
	"devitalik/internal/topics"
	"devitalik/internal/util"
)

// Platform post length cap and how many times generation may retry it.
const (
	MaxPostLength = 280
	MaxAttempts   = 3
)

// Generator produces text for a prompt. Implementations may fail; callers
// treat failure as a no-op for the cycle.
type Generator interface {
	Generate(ctx context.Context, prompt, system string) (string, error)
}

// SystemPrompt builds the persona system prompt from configuration.
func SystemPrompt(p config.PersonaConfig) string {
	parts := []string{
		"Focus on technical insights about blockchain development, protocol design, and ecosystem trends.",
		"Analyze patterns, optimizations, and architectural decisions.",
		"Maintain a professional, analytical tone.",
	}
	if p.Bio != "" {
		parts = append(parts, p.Bio)
	}
	if len(p.Traits) > 0 {
		parts = append(parts, "\nKey areas of focus:")
		for _, t := range p.Traits {
			parts = append(parts, "- "+t)
		}
	}
	if len(p.Examples) > 0 {
		parts = append(parts, "\nStyle examples (for reference, do not repeat):")
		for _, e := range p.Examples {
			parts = append(parts, "- "+e)
		}
	}
	return strings.Join(parts, "\n")
}

// PostPrompt builds a broadcast prompt from content ideas, market context,
// and recent repository activity.
func PostPrompt(ideas []social.Idea, quotes map[string]market.Quote, activity []github.RepoActivity) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Write a single post of at most %d characters.\n", MaxPostLength))
	if len(ideas) > 0 {
		idea := ideas[0]
		b.WriteString("Theme: " + idea.Context + ".\n")
		switch {
		case idea.Sentiment > 0.3:
			b.WriteString("The community seems particularly excited about this.\n")
		case idea.Sentiment > 0:
			b.WriteString("There's some interesting discussion around this.\n")
		case idea.Sentiment < -0.3:
			b.WriteString("There are some concerns being raised about this.\n")
		}
	} else {
		b.WriteString("Theme: something you observed about agent or protocol development.\n")
	}
	if len(quotes) > 0 {
		b.WriteString("Market context: ")
		syms := make([]string, 0, len(quotes))
		for s := range quotes {
			syms = append(syms, s)
		}
		sort.Strings(syms)
		for i, s := range syms {
			q := quotes[s]
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(fmt.Sprintf("%s $%.2f (%+.1f%% 24h)", s, q.PriceUSD, q.Change24h))
		}
		b.WriteString(".\n")
	}
	if len(activity) > 0 {
		b.WriteString("Development activity:\n")
		for _, act := range activity {
			b.WriteString(fmt.Sprintf("- %s (%d stars)", act.Repo, act.Stars))
			if len(act.RecentCommits) > 0 {
				b.WriteString(": " + util.TrimRunes(act.RecentCommits[0], 80))
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("No hashtags, no emoji spam.")
	return b.String()
}

// ReplyPrompt builds a style-matched reply prompt for a selected post. The
// target length stays close to the original's.
func ReplyPrompt(target scoring.ScoredPost) (prompt string, targetLen int) {
	text := target.Post.Text
	targetLen = len(text) + 20
	if targetLen > MaxPostLength {
		targetLen = MaxPostLength
	}
	style := replyStyle(target)
	var b strings.Builder
	b.WriteString("Reply to this post in a matching style:\n")
	b.WriteString("\"" + util.TrimRunes(text, 200) + "\"\n")
	b.WriteString(fmt.Sprintf("Match the %s style. Keep it %d characters or less.\n", style, targetLen))
	b.WriteString("Mirror the original's tone and rhythm. Focus on the human element first.")
	return b.String(), targetLen
}

func replyStyle(target scoring.ScoredPost) string {
	text := target.Post.Text
	style := "casual"
	isShort := len(text) < 50
	hasMetaphor := strings.Count(text, ",") == 1
	isPoetic := hasMetaphor || strings.ContainsAny(text, ".,—")
	if isPoetic {
		style = "poetic"
	} else if isShort {
		style = "concise"
	}
	if strings.Contains(text, "...") {
		style = "reflective_" + style
	}
	for _, t := range target.Topics {
		if t == topics.AI || t == topics.Blockchain || t == topics.DeFi {
			style += "_with_tech_awareness"
			break
		}
	}
	return style
}

// GenerateBounded runs the generator with a length constraint, tightening the
// prompt on retry. Returns an error when every attempt runs long or fails.
func GenerateBounded(ctx context.Context, g Generator, prompt, system string, maxLen int) (string, error) {
	var lastErr error
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		p := prompt
		if attempt > 0 {
			p = fmt.Sprintf("Generate a VERY CONCISE post (must be under %d characters). %s", maxLen, prompt)
		}
		text, err := g.Generate(ctx, p, system)
		if err != nil {
			lastErr = err
			continue
		}
		text = util.NormalizeWhitespace(text)
		if text != "" && len(text) <= maxLen {
			return text, nil
		}
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", fmt.Errorf("no text within %d chars after %d attempts", maxLen, MaxAttempts)
}
