package social

import (
	"devitalik/internal/scoring"
	"devitalik/internal/topics"
)

// Key-discussion heuristics.
const (
	highRetweets    = 10
	highReplies     = 5
	highLikes       = 50
	strongSentiment = 0.5
)

// Context summarizes a ranked feed: what topics are trending, how each topic
// feels, and which posts look like discussions worth joining.
type Context struct {
	TrendingTopics   map[topics.Topic]int
	SentimentByTopic map[topics.Topic]float64
	KeyDiscussions   []scoring.ScoredPost
}

// AnalyzeFeed derives a social context from an already-ranked feed.
func AnalyzeFeed(feed []scoring.ScoredPost) Context {
	ctx := Context{
		TrendingTopics:   make(map[topics.Topic]int),
		SentimentByTopic: make(map[topics.Topic]float64),
	}
	sums := make(map[topics.Topic]float64)
	for _, sp := range feed {
		for _, t := range sp.Topics {
			ctx.TrendingTopics[t]++
			sums[t] += sp.Sentiment
		}
		if isKeyDiscussion(sp) {
			ctx.KeyDiscussions = append(ctx.KeyDiscussions, sp)
		}
	}
	for t, sum := range sums {
		ctx.SentimentByTopic[t] = sum / float64(ctx.TrendingTopics[t])
	}
	return ctx
}

func isKeyDiscussion(sp scoring.ScoredPost) bool {
	p := sp.Post
	highEngagement := p.RetweetCount > highRetweets ||
		p.ReplyCount > highReplies ||
		p.LikeCount > highLikes
	relevant := len(sp.Topics) > 0
	strong := sp.Sentiment > strongSentiment || sp.Sentiment < -strongSentiment
	return highEngagement || relevant || strong
}

// Idea seeds a broadcast prompt.
type Idea struct {
	Type      string
	Topic     topics.Topic
	Context   string
	Tone      string
	Sentiment float64
}

// ContentIdeas proposes broadcast content from a social context, gated on
// topic frequency and mean sentiment.
func ContentIdeas(sc Context) []Idea {
	var ideas []Idea
	add := func(t topics.Topic, minCount int, minSentiment float64, idea Idea) {
		count := sc.TrendingTopics[t]
		avg := sc.SentimentByTopic[t]
		if count > minCount || avg > minSentiment {
			idea.Topic = t
			idea.Sentiment = avg
			ideas = append(ideas, idea)
		}
	}
	add(topics.AI, 3, 0.3, Idea{
		Type:    "builder_insight",
		Context: "AI agent development and automation trends",
		Tone:    "enthusiastic_builder",
	})
	add(topics.Development, 3, 0.3, Idea{
		Type:    "builder_insight",
		Context: "development tools and frameworks",
		Tone:    "helpful_dev",
	})
	add(topics.Optimization, 2, 0.4, Idea{
		Type:    "builder_insight",
		Context: "performance work and protocol optimization",
		Tone:    "analytical",
	})
	add(topics.Blockchain, 3, 0.3, Idea{
		Type:    "ecosystem_insight",
		Context: "onchain activity and protocol design",
		Tone:    "curious_observer",
	})
	return ideas
}
