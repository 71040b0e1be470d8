package xclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// helper to create client with injected http client
func newTestClient() *HTTPClient {
	c := NewHTTPClient("test")
	c.maxAttempts = 3
	c.baseBackoff = 10 * time.Millisecond
	return c
}

func TestDoWithRetryHandles429(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	c := newTestClient()
	c.httpClient = ts.Client()
	c.baseURL = ts.URL

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/test", nil)
	resp, err := c.doWithRetry(context.Background(), req)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if attempts < 2 {
		t.Fatalf("expected at least 2 attempts, got %d", attempts)
	}
}

func TestGetTimelineParsesReferencedTweets(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"id":"1","text":"a reply","author_id":"u1","created_at":"2025-06-01T12:00:00Z",
			 "referenced_tweets":[{"type":"replied_to","id":"parent"}],
			 "public_metrics":{"like_count":3,"reply_count":1,"retweet_count":0,"quote_count":0}},
			{"id":"2","text":"a post","author_id":"u2","created_at":"2025-06-01T11:00:00Z",
			 "public_metrics":{"like_count":10,"reply_count":0,"retweet_count":2,"quote_count":1}}
		]}`))
	}))
	defer ts.Close()

	c := newTestClient()
	c.httpClient = ts.Client()
	c.baseURL = ts.URL

	posts, err := c.GetTimeline(context.Background(), "me", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
	if posts[0].ReferencedID != "parent" || !posts[0].IsReply() {
		t.Fatalf("referenced tweet not mapped: %+v", posts[0])
	}
	if posts[1].ReferencedID != "" || posts[1].LikeCount != 10 {
		t.Fatalf("plain post mismapped: %+v", posts[1])
	}
}

func TestReadLimiterEnvOverride(t *testing.T) {
	t.Setenv("X_API_RPS", "0.5")
	t.Setenv("X_API_BURST", "3")
	l := newReadLimiter()
	if l.Limit() != 0.5 || l.Burst() != 3 {
		t.Fatalf("limiter not tuned from env: limit=%v burst=%d", l.Limit(), l.Burst())
	}
	t.Setenv("X_API_RPS", "not-a-number")
	if l := newReadLimiter(); l.Limit() != 2 {
		t.Fatalf("bad env value should fall back to default, got %v", l.Limit())
	}
}

func TestGetUserByUsernameEmpty(t *testing.T) {
	c := newTestClient()
	if _, err := c.GetUserByUsername(context.Background(), ""); err == nil {
		t.Fatalf("empty username should error")
	}
}
