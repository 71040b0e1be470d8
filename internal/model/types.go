package model

import "time"

// Post represents a subset of social post fields used by the agent.
// Posts are immutable once fetched and identified by ID.
type Post struct {
	ID             string
	AuthorID       string
	AuthorUsername string
	Text           string
	CreatedAt      time.Time
	LikeCount      int
	ReplyCount     int
	RetweetCount   int
	QuoteCount     int
	Language       string
	// ReferencedID is the id of the post this one replies to, if any.
	ReferencedID string
}

// IsReply reports whether the post is itself a reply to another post.
func (p Post) IsReply() bool { return p.ReferencedID != "" }

// ActionEvent captures an action the agent dispatched.
type ActionEvent struct {
	Timestamp time.Time
	Type      string // post-tweet, reply-to-tweet, like-tweet, post-discord, reply-to-discord
	TargetID  string // post id if applicable
	CycleID   string
}
