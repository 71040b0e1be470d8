package xclient

import (
	"context"

	"devitalik/internal/model"
)

// Connector bundles the read and write clients behind the agent's feed-source
// and poster contracts.
type Connector struct {
	Read   *HTTPClient
	Write  *UserClient
	UserID string
}

func NewConnector(read *HTTPClient, write *UserClient, userID string) *Connector {
	return &Connector{Read: read, Write: write, UserID: userID}
}

// ReadTimeline supplies the agent's feed.
func (c *Connector) ReadTimeline(ctx context.Context, limit int) ([]model.Post, error) {
	return c.Read.GetTimeline(ctx, c.UserID, limit)
}

func (c *Connector) Post(ctx context.Context, text string) error {
	_, err := c.Write.PostTweet(ctx, text)
	return err
}

func (c *Connector) Reply(ctx context.Context, targetID, text string) error {
	_, err := c.Write.ReplyToTweet(ctx, targetID, text)
	return err
}

func (c *Connector) Like(ctx context.Context, targetID string) error {
	return c.Write.LikeTweet(ctx, targetID)
}
