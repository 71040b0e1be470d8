package util

import (
	"regexp"
	"strings"
)

var whitespace = regexp.MustCompile(`\s+`)

// NormalizeWhitespace trims and collapses whitespace to single spaces.
func NormalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

// ContainsAnyCaseInsensitive returns true if text contains any of the needles (case-insensitive).
func ContainsAnyCaseInsensitive(text string, needles []string) bool {
	lt := strings.ToLower(text)
	for _, n := range needles {
		if strings.Contains(lt, strings.ToLower(n)) {
			return true
		}
	}
	return false
}

// Tokenize splits on spaces and punctuation.
func Tokenize(s string) []string {
	s = strings.ToLower(s)
	repl := strings.NewReplacer(
		",", " ", ".", " ", "!", " ", "?", " ", ":", " ", ";", " ",
		"\n", " ", "\t", " ", "\r", " ", "(", " ", ")", " ", "[", " ", "]", " ",
		"\"", " ", "…", " ",
	)
	s = repl.Replace(s)
	return strings.Fields(s)
}

var stopwords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "so", "of", "to",
		"in", "on", "at", "for", "with", "by", "from", "as", "is", "are",
		"was", "were", "be", "been", "being", "it", "its", "this", "that",
		"these", "those", "i", "you", "he", "she", "we", "they", "my", "your",
		"our", "their", "me", "him", "her", "us", "them", "what", "which",
		"who", "when", "where", "why", "how", "not", "no", "do", "does",
		"did", "have", "has", "had", "will", "would", "can", "could", "just",
		"about", "into", "over", "than", "too", "very", "up", "down", "out",
	} {
		stopwords[w] = struct{}{}
	}
}

// IsStopword reports whether a lowercased token is a stopword.
func IsStopword(tok string) bool {
	_, ok := stopwords[tok]
	return ok
}

// ContentTokens tokenizes text and drops stopwords.
func ContentTokens(s string) []string {
	toks := Tokenize(s)
	out := toks[:0]
	for _, t := range toks {
		if !IsStopword(t) {
			out = append(out, t)
		}
	}
	return out
}

// TrimRunes shortens s to at most n runes, appending an ellipsis when cut.
func TrimRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "…"
}
