package topics

import (
	"sort"

	"devitalik/internal/util"
)

// Topic is an enumerated content category.
type Topic string

const (
	AI           Topic = "ai"
	Blockchain   Topic = "blockchain"
	DeFi         Topic = "defi"
	Development  Topic = "development"
	Optimization Topic = "optimization"
)

// All lists every known topic in stable order.
var All = []Topic{AI, Blockchain, DeFi, Development, Optimization}

func defaultKeywords() map[Topic][]string {
	return map[Topic][]string{
		AI:           {"ai", "bot", "agent", "agents", "automation", "llm", "llms", "gpt", "claude", "ml"},
		Blockchain:   {"blockchain", "solana", "ethereum", "web3", "chain", "onchain", "wallet", "validator"},
		DeFi:         {"defi", "dex", "liquidity", "yield", "staking", "token", "tokens", "swap", "amm"},
		Development:  {"dev", "devs", "developer", "python", "golang", "api", "sdk", "framework", "library", "opensource", "shipping", "building", "launch", "project"},
		Optimization: {"optimization", "performance", "latency", "throughput", "scaling", "benchmark", "gas", "profiling"},
	}
}

// Matcher classifies text into topics by keyword-set membership over
// stopword-filtered tokens.
type Matcher struct {
	keywords map[Topic]map[string]struct{}
}

// NewMatcher builds a matcher from the default keyword sets, with optional
// per-topic overrides. An override for an unknown topic name is ignored.
func NewMatcher(overrides map[string][]string) *Matcher {
	kw := defaultKeywords()
	for name, words := range overrides {
		t := Topic(name)
		if _, known := kw[t]; known && len(words) > 0 {
			kw[t] = words
		}
	}
	m := &Matcher{keywords: make(map[Topic]map[string]struct{}, len(kw))}
	for t, words := range kw {
		set := make(map[string]struct{}, len(words))
		for _, w := range words {
			set[w] = struct{}{}
		}
		m.keywords[t] = set
	}
	return m
}

// Match returns the topics whose keywords appear among the content tokens of
// text. Multiple topics may match; result order is stable.
func (m *Matcher) Match(text string) []Topic {
	toks := util.ContentTokens(text)
	if len(toks) == 0 {
		return nil
	}
	var out []Topic
	for t, set := range m.keywords {
		for _, tok := range toks {
			if _, ok := set[tok]; ok {
				out = append(out, t)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Contains reports whether t appears in the matched set.
func Contains(set []Topic, t Topic) bool {
	for _, s := range set {
		if s == t {
			return true
		}
	}
	return false
}
