package xclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestUserClient(ts *httptest.Server) *UserClient {
	base := newTestClient()
	base.httpClient = ts.Client()
	base.baseURL = ts.URL
	uc := NewUserClient(base, "ck", "cs", "at", "as", "u42")
	uc.nowFn = func() time.Time { return time.Unix(1700000000, 0) }
	uc.nonceFn = func() string { return "fixednonce" }
	return uc
}

func TestPostTweetSignsAndParsesID(t *testing.T) {
	var gotAuth, gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"999"}}`))
	}))
	defer ts.Close()

	uc := newTestUserClient(ts)
	id, err := uc.PostTweet(context.Background(), "hello chain")
	if err != nil {
		t.Fatal(err)
	}
	if id != "999" {
		t.Fatalf("expected id 999, got %q", id)
	}
	if !strings.HasPrefix(gotAuth, "OAuth ") {
		t.Fatalf("missing OAuth header: %q", gotAuth)
	}
	for _, want := range []string{
		`oauth_consumer_key="ck"`,
		`oauth_nonce="fixednonce"`,
		`oauth_signature_method="HMAC-SHA1"`,
		`oauth_timestamp="1700000000"`,
		`oauth_token="at"`,
		"oauth_signature=",
	} {
		if !strings.Contains(gotAuth, want) {
			t.Errorf("header missing %s: %q", want, gotAuth)
		}
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(gotBody), &payload); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if payload["text"] != "hello chain" {
		t.Fatalf("unexpected body: %q", gotBody)
	}
}

func TestReplyToTweetSetsReplyTarget(t *testing.T) {
	var gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`{"data":{"id":"1000"}}`))
	}))
	defer ts.Close()

	uc := newTestUserClient(ts)
	id, err := uc.ReplyToTweet(context.Background(), "777", "agreed")
	if err != nil {
		t.Fatal(err)
	}
	if id != "1000" {
		t.Fatalf("expected id 1000, got %q", id)
	}
	var payload struct {
		Text  string `json:"text"`
		Reply struct {
			InReplyTo string `json:"in_reply_to_tweet_id"`
		} `json:"reply"`
	}
	if err := json.Unmarshal([]byte(gotBody), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Reply.InReplyTo != "777" || payload.Text != "agreed" {
		t.Fatalf("unexpected reply body: %q", gotBody)
	}
}

func TestLikeTweetHitsUserLikesEndpoint(t *testing.T) {
	var gotPath, gotBody string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		_, _ = w.Write([]byte(`{"data":{"liked":true}}`))
	}))
	defer ts.Close()

	uc := newTestUserClient(ts)
	if err := uc.LikeTweet(context.Background(), "555"); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/users/u42/likes" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if !strings.Contains(gotBody, `"tweet_id":"555"`) {
		t.Fatalf("unexpected body %q", gotBody)
	}
}

func TestCreateTweetErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	uc := newTestUserClient(ts)
	if _, err := uc.PostTweet(context.Background(), "nope"); err == nil {
		t.Fatal("expected error on 403")
	}
}
