package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Client is a thin Discord REST connector scoped to a single channel.
type Client struct {
	baseURL    string
	token      string
	channelID  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(token, channelID string) *Client {
	return &Client{
		baseURL:    "https://discord.com/api/v10",
		token:      token,
		channelID:  channelID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(1), 5),
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	if c.token == "" {
		return nil, errors.New("missing discord token")
	}
	var rdr *strings.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rdr = strings.NewReader(string(b))
	} else {
		rdr = strings.NewReader("")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil { return nil, err }
	req.Header.Set("Authorization", "Bot "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.limiter.Wait(ctx); err != nil { return nil, err }
	return c.httpClient.Do(req)
}

func (c *Client) send(ctx context.Context, payload map[string]any) error {
	resp, err := c.do(ctx, http.MethodPost, "/channels/"+url.PathEscape(c.channelID)+"/messages", payload)
	if err != nil { return err }
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("discord status %d", resp.StatusCode)
	}
	return nil
}

// Post sends a message to the channel.
func (c *Client) Post(ctx context.Context, text string) error {
	return c.send(ctx, map[string]any{"content": text})
}

// Reply sends a message referencing targetID.
func (c *Client) Reply(ctx context.Context, targetID, text string) error {
	return c.send(ctx, map[string]any{
		"content":           text,
		"message_reference": map[string]string{"message_id": targetID},
	})
}

// Like adds a thumbs-up reaction to targetID.
func (c *Client) Like(ctx context.Context, targetID string) error {
	path := "/channels/" + url.PathEscape(c.channelID) + "/messages/" +
		url.PathEscape(targetID) + "/reactions/" + url.PathEscape("👍") + "/@me"
	resp, err := c.do(ctx, http.MethodPut, path, nil)
	if err != nil { return err }
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("discord status %d", resp.StatusCode)
	}
	return nil
}
