package scoring

import (
	"math"
	"sort"
	"time"

	"devitalik/internal/model"
	"devitalik/internal/sentiment"
	"devitalik/internal/topics"
)

// Interaction weights for the base engagement score.
const (
	likeWeight    = 1.0
	retweetWeight = 2.0
	replyWeight   = 1.5
	quoteWeight   = 2.5
)

// topicBoostPerMatch is the flat multiplicative boost each matched topic adds.
const topicBoostPerMatch = 0.2

// recencyHalfLife is how long it takes the recency boost to halve.
const recencyHalfLife = 12 * time.Hour

// ScoredPost is a post annotated with derived attributes and a ranking score.
type ScoredPost struct {
	Post      model.Post
	Topics    []topics.Topic
	Sentiment float64
	Score     float64
}

// Base combines raw interaction counts into a single value.
func Base(p model.Post) float64 {
	return float64(p.LikeCount)*likeWeight +
		float64(p.RetweetCount)*retweetWeight +
		float64(p.ReplyCount)*replyWeight +
		float64(p.QuoteCount)*quoteWeight
}

// RecencyBoost returns 2^(-age/12h) in (0,1] for a valid createdAt, and 0 when
// createdAt is missing. A createdAt in the future counts as age zero.
func RecencyBoost(createdAt, now time.Time) float64 {
	if createdAt.IsZero() {
		return 0
	}
	hours := now.Sub(createdAt).Hours()
	if hours < 0 {
		hours = 0
	}
	return math.Exp2(-hours / recencyHalfLife.Hours())
}

// Score computes the engagement score for a post with its matched topics.
// All terms are non-negative, so the result never is.
func Score(p model.Post, matched []topics.Topic, now time.Time) float64 {
	base := Base(p)
	topicBoost := topicBoostPerMatch * float64(len(matched))
	recency := RecencyBoost(p.CreatedAt, now)
	return base * (1 + topicBoost) * (1 + recency)
}

// RankFeed annotates every post with topics and sentiment, scores it, and
// returns the feed sorted by score descending. Ties go to the more recent post.
func RankFeed(posts []model.Post, m *topics.Matcher, now time.Time) []ScoredPost {
	out := make([]ScoredPost, 0, len(posts))
	for _, p := range posts {
		matched := m.Match(p.Text)
		out = append(out, ScoredPost{
			Post:      p,
			Topics:    matched,
			Sentiment: sentiment.Score(p.Text),
			Score:     Score(p, matched, now),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Post.CreatedAt.After(out[j].Post.CreatedAt)
	})
	return out
}
