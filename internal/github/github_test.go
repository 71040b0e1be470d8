package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func newTestClient(ts *httptest.Server) *Client {
	c := NewClient("tok")
	c.baseURL = ts.URL
	c.httpClient = ts.Client()
	return c
}

func TestRepoStatsParsesCounts(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/repos/acme/proto" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"full_name":"acme/proto","stargazers_count":120,"forks_count":14,"open_issues_count":7}`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	act, err := c.RepoStats(context.Background(), "acme/proto")
	if err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("unexpected auth %q", gotAuth)
	}
	if act.Repo != "acme/proto" || act.Stars != 120 || act.Forks != 14 || act.OpenIssues != 7 {
		t.Fatalf("unexpected activity %+v", act)
	}
}

func TestRecentCommitsFirstLines(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("per_page"); got != "2" {
			t.Errorf("per_page=%q", got)
		}
		_, _ = w.Write([]byte(`[
			{"commit":{"message":"fix limiter\n\nlonger body"}},
			{"commit":{"message":"add retries"}}
		]`))
	}))
	defer ts.Close()

	c := newTestClient(ts)
	got, err := c.RecentCommits(context.Background(), "acme/proto", 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"fix limiter", "add retries"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestBadRepoName(t *testing.T) {
	c := NewClient("")
	if _, err := c.RepoStats(context.Background(), "no-slash"); err == nil {
		t.Fatal("expected error for repo without owner")
	}
}

func TestSnapshotFailSoft(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme/good":
			_, _ = w.Write([]byte(`{"full_name":"acme/good","stargazers_count":5}`))
		case "/repos/acme/good/commits":
			_, _ = w.Write([]byte(`[{"commit":{"message":"ship it"}}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	c := newTestClient(ts)
	acts := c.Snapshot(context.Background(), []string{"acme/good", "acme/missing"})
	if len(acts) != 1 {
		t.Fatalf("expected 1 activity, got %d", len(acts))
	}
	if acts[0].Repo != "acme/good" || len(acts[0].RecentCommits) != 1 {
		t.Fatalf("unexpected activity %+v", acts[0])
	}
}
