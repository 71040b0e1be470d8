package xclient

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// UserClient performs write actions (post/reply/like) via OAuth 1.0a
// user-context signing on X API v2.
type UserClient struct {
	Base           *HTTPClient
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
	UserID         string
	nowFn          func() time.Time
	nonceFn        func() string
}

func NewUserClient(base *HTTPClient, ck, cs, at, as, userID string) *UserClient {
	return &UserClient{
		Base:           base,
		ConsumerKey:    ck,
		ConsumerSecret: cs,
		AccessToken:    at,
		AccessSecret:   as,
		UserID:         userID,
		nowFn:          time.Now,
		nonceFn:        func() string { return strconv.FormatInt(rand.Int63(), 36) },
	}
}

// PostTweet publishes a new tweet and returns its id.
func (c *UserClient) PostTweet(ctx context.Context, text string) (string, error) {
	body := map[string]any{"text": text}
	return c.createTweet(ctx, body)
}

// ReplyToTweet publishes a reply to targetID and returns the new tweet's id.
func (c *UserClient) ReplyToTweet(ctx context.Context, targetID, text string) (string, error) {
	body := map[string]any{
		"text":  text,
		"reply": map[string]string{"in_reply_to_tweet_id": targetID},
	}
	return c.createTweet(ctx, body)
}

func (c *UserClient) createTweet(ctx context.Context, body map[string]any) (string, error) {
	b, _ := json.Marshal(body)
	u := c.Base.baseURL + "/tweets"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(string(b)))
	if err != nil { return "", err }
	req.Header.Set("Content-Type", "application/json")
	c.oauth1Sign(req, nil)
	if err := c.Base.limiter.Wait(ctx); err != nil { return "", err }
	resp, err := c.Base.doWithRetry(ctx, req)
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

// LikeTweet likes targetID on behalf of the authenticated user.
func (c *UserClient) LikeTweet(ctx context.Context, targetID string) error {
	body, _ := json.Marshal(map[string]string{"tweet_id": targetID})
	u := fmt.Sprintf("%s/users/%s/likes", c.Base.baseURL, url.PathEscape(c.UserID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(string(body)))
	if err != nil { return err }
	req.Header.Set("Content-Type", "application/json")
	c.oauth1Sign(req, nil)
	if err := c.Base.limiter.Wait(ctx); err != nil { return err }
	resp, err := c.Base.doWithRetry(ctx, req)
	if err != nil { return err }
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("x api status %d", resp.StatusCode)
	}
	return nil
}

// oauth1Sign signs req with HMAC-SHA1. JSON bodies are excluded from the
// signature base; only query and oauth params participate.
func (c *UserClient) oauth1Sign(req *http.Request, queryParams map[string]string) {
	oauth := map[string]string{
		"oauth_consumer_key":     c.ConsumerKey,
		"oauth_nonce":            c.nonceFn(),
		"oauth_signature_method": "HMAC-SHA1",
		"oauth_timestamp":        strconv.FormatInt(c.nowFn().Unix(), 10),
		"oauth_token":            c.AccessToken,
		"oauth_version":          "1.0",
	}
	all := map[string]string{}
	for k, v := range oauth {
		all[k] = v
	}
	for k, v := range queryParams {
		all[k] = v
	}
	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	paramParts := make([]string, 0, len(keys))
	for _, k := range keys {
		paramParts = append(paramParts, rfc3986(k)+"="+rfc3986(all[k]))
	}
	paramStr := strings.Join(paramParts, "&")
	baseURL := req.URL.Scheme + "://" + req.URL.Host + req.URL.Path
	base := req.Method + "&" + rfc3986(baseURL) + "&" + rfc3986(paramStr)
	signingKey := rfc3986(c.ConsumerSecret) + "&" + rfc3986(c.AccessSecret)
	mac := hmac.New(sha1.New, []byte(signingKey))
	_, _ = mac.Write([]byte(base))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	oauth["oauth_signature"] = sig
	hdrKeys := make([]string, 0, len(oauth))
	for k := range oauth {
		hdrKeys = append(hdrKeys, k)
	}
	sort.Strings(hdrKeys)
	authParts := make([]string, 0, len(hdrKeys))
	for _, k := range hdrKeys {
		authParts = append(authParts, fmt.Sprintf("%s=\"%s\"", rfc3986(k), rfc3986(oauth[k])))
	}
	req.Header.Set("Authorization", "OAuth "+strings.Join(authParts, ", "))
	req.Header.Set("Accept", "application/json")
}

// RFC 3986 percent-encoding for OAuth
func rfc3986(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(url.QueryEscape(s), "+", "%20"), "*", "%2A")
}
