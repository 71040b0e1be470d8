package sentiment

import (
	"math"

	"devitalik/internal/util"
)

// normAlpha dampens the raw hit count when mapping to [-1,1].
const normAlpha = 15.0

var positive = map[string]struct{}{}
var negative = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"bullish", "moon", "pump", "pumping", "good", "great", "excited", "love",
		"amazing", "awesome", "fascinating", "impressive", "win", "winning",
		"gains", "ship", "shipped", "launch", "launched", "innovative",
		"creative", "solid", "clean", "elegant", "fast", "useful", "nice",
		"helpful", "promising", "strong", "best", "beautiful", "fun",
	} {
		positive[w] = struct{}{}
	}
	for _, w := range []string{
		"bearish", "dump", "dumping", "bad", "rekt", "crash", "scam", "rug",
		"broken", "slow", "ugly", "hate", "worst", "terrible", "awful",
		"fail", "failed", "failing", "loss", "losses", "fear", "fud",
		"worried", "worrying", "bug", "buggy", "painful", "mess",
	} {
		negative[w] = struct{}{}
	}
}

// Score maps free text to a sentiment in [-1,1]. Pure and deterministic;
// empty or unknown text yields 0.
func Score(text string) float64 {
	raw := 0.0
	for _, tok := range util.ContentTokens(text) {
		if _, ok := positive[tok]; ok {
			raw++
			continue
		}
		if _, ok := negative[tok]; ok {
			raw--
		}
	}
	if raw == 0 {
		return 0
	}
	return raw / math.Sqrt(raw*raw+normAlpha)
}
