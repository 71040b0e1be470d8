package xclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"devitalik/internal/model"
)

// ReadClient defines the read-side X API methods the agent uses.
type ReadClient interface {
	GetUserByUsername(ctx context.Context, username string) (string, error)
	GetTimeline(ctx context.Context, userID string, limit int) ([]model.Post, error)
	SearchRecentPosts(ctx context.Context, query string, limit int) ([]model.Post, error)
	GetMentions(ctx context.Context, userID string, limit int) ([]model.Post, error)
}

// HTTPClient is a bearer-token client for X API v2 reads.
type HTTPClient struct {
	baseURL     string
	bearerToken string
	httpClient  *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	baseBackoff time.Duration
}

func NewHTTPClient(bearerToken string) *HTTPClient {
	return &HTTPClient{
		baseURL:     "https://api.twitter.com/2",
		bearerToken: bearerToken,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		limiter:     newReadLimiter(),
		maxAttempts: getEnvInt("X_API_MAX_ATTEMPTS", 5),
		baseBackoff: time.Duration(getEnvInt("X_API_BASE_BACKOFF_MS", 500)) * time.Millisecond,
	}
}

func (c *HTTPClient) auth(req *http.Request) {
	if c.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearerToken)
	}
	req.Header.Set("Accept", "application/json")
}

// GetUserByUsername resolves a username to its user id.
func (c *HTTPClient) GetUserByUsername(ctx context.Context, username string) (string, error) {
	if username == "" {
		return "", errors.New("empty username")
	}
	u := fmt.Sprintf("%s/users/by/username/%s", c.baseURL, url.PathEscape(username))
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	c.auth(req)
	if err := c.limiter.Wait(ctx); err != nil { return "", err }
	resp, err := c.doWithRetry(ctx, req)
	if err != nil { return "", err }
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("x api status %d", resp.StatusCode)
	}
	var raw struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil { return "", err }
	return raw.Data.ID, nil
}

// postFields is the tweet.fields set every read asks for.
const postFields = "created_at,public_metrics,lang,author_id,referenced_tweets"

type rawPost struct {
	ID               string    `json:"id"`
	Text             string    `json:"text"`
	CreatedAt        time.Time `json:"created_at"`
	Lang             string    `json:"lang"`
	AuthorID         string    `json:"author_id"`
	ReferencedTweets []struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	} `json:"referenced_tweets"`
	PublicMetrics struct {
		LikeCount    int `json:"like_count"`
		ReplyCount   int `json:"reply_count"`
		RetweetCount int `json:"retweet_count"`
		QuoteCount   int `json:"quote_count"`
	} `json:"public_metrics"`
}

func (r rawPost) toModel() model.Post {
	p := model.Post{
		ID:           r.ID,
		AuthorID:     r.AuthorID,
		Text:         r.Text,
		CreatedAt:    r.CreatedAt,
		Language:     r.Lang,
		LikeCount:    r.PublicMetrics.LikeCount,
		ReplyCount:   r.PublicMetrics.ReplyCount,
		RetweetCount: r.PublicMetrics.RetweetCount,
		QuoteCount:   r.PublicMetrics.QuoteCount,
	}
	for _, ref := range r.ReferencedTweets {
		if ref.Type == "replied_to" {
			p.ReferencedID = ref.ID
			break
		}
	}
	return p
}

func (c *HTTPClient) getPosts(ctx context.Context, u string) ([]model.Post, error) {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	c.auth(req)
	if err := c.limiter.Wait(ctx); err != nil { return nil, err }
	resp, err := c.doWithRetry(ctx, req)
	if err != nil { return nil, err }
	defer resp.Body.Close()
	if resp.StatusCode >= 400 { return nil, fmt.Errorf("x api status %d", resp.StatusCode) }
	var raw struct {
		Data []rawPost `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil { return nil, err }
	out := make([]model.Post, 0, len(raw.Data))
	for _, d := range raw.Data {
		out = append(out, d.toModel())
	}
	return out, nil
}

// GetTimeline returns the user's reverse-chronological home timeline.
func (c *HTTPClient) GetTimeline(ctx context.Context, userID string, limit int) ([]model.Post, error) {
	u := fmt.Sprintf("%s/users/%s/timelines/reverse_chronological?max_results=%d&tweet.fields=%s",
		c.baseURL, url.PathEscape(userID), clamp(limit, 5, 100), postFields)
	return c.getPosts(ctx, u)
}

// SearchRecentPosts searches recent posts by query.
func (c *HTTPClient) SearchRecentPosts(ctx context.Context, query string, limit int) ([]model.Post, error) {
	u := fmt.Sprintf("%s/tweets/search/recent?max_results=%d&tweet.fields=%s&query=%s",
		c.baseURL, clamp(limit, 10, 100), postFields, url.QueryEscape(query))
	return c.getPosts(ctx, u)
}

// GetMentions returns posts that mention the user.
func (c *HTTPClient) GetMentions(ctx context.Context, userID string, limit int) ([]model.Post, error) {
	u := fmt.Sprintf("%s/users/%s/mentions?max_results=%d&tweet.fields=%s",
		c.baseURL, url.PathEscape(userID), clamp(limit, 10, 100), postFields)
	return c.getPosts(ctx, u)
}

func clamp(v, min, max int) int { if v < min { return min }; if v > max { return max }; return v }

func (c *HTTPClient) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	backoff := c.baseBackoff
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		resp, err := c.httpClient.Do(req.Clone(ctx))
		if err == nil {
			if resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode <= 599) {
				ra := resp.Header.Get("Retry-After")
				_ = resp.Body.Close()
				wait := backoff
				if ra != "" {
					if secs, err := strconv.Atoi(ra); err == nil {
						wait = time.Duration(secs) * time.Second
					} else if t, err := http.ParseTime(ra); err == nil {
						if d := time.Until(t); d > 0 { wait = d }
					}
				}
				// jitter +/-20%
				jitter := time.Duration(float64(wait) * 0.2)
				if jitter > 0 {
					wait = wait - jitter + time.Duration(time.Now().UnixNano()%int64(2*jitter))
				}
				select {
				case <-time.After(wait):
				case <-ctx.Done():
					return nil, ctx.Err()
				}
				backoff *= 2
				continue
			}
			return resp, nil
		}
		lastErr = err
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}
	return nil, fmt.Errorf("request failed after %d attempts: %v", c.maxAttempts, lastErr)
}

// newReadLimiter builds the read-path limiter, tunable via X_API_RPS and
// X_API_BURST.
func newReadLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Limit(getEnvFloat("X_API_RPS", 2)), getEnvInt("X_API_BURST", 10))
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" { return def }
	if i, err := strconv.Atoi(v); err == nil && i > 0 { return i }
	return def
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" { return def }
	if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 { return f }
	return def
}
