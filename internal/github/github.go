package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// RepoActivity summarizes one repository's recent development activity.
type RepoActivity struct {
	Repo          string
	Stars         int
	Forks         int
	OpenIssues    int
	RecentCommits []string
}

// Client is a thin GitHub REST connector for repository activity reads.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(token string) *Client {
	return &Client{
		baseURL:    "https://api.github.com",
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Limit(1), 5),
	}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil { return err }
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if err := c.limiter.Wait(ctx); err != nil { return err }
	resp, err := c.httpClient.Do(req)
	if err != nil { return err }
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("github status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func repoPath(repo string) (string, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return "", fmt.Errorf("repo %q is not owner/name", repo)
	}
	return "/repos/" + url.PathEscape(owner) + "/" + url.PathEscape(name), nil
}

// RepoStats fetches stars, forks, and open issue counts for repo ("owner/name").
func (c *Client) RepoStats(ctx context.Context, repo string) (RepoActivity, error) {
	p, err := repoPath(repo)
	if err != nil { return RepoActivity{}, err }
	var raw struct {
		FullName   string `json:"full_name"`
		Stars      int    `json:"stargazers_count"`
		Forks      int    `json:"forks_count"`
		OpenIssues int    `json:"open_issues_count"`
	}
	if err := c.get(ctx, p, &raw); err != nil {
		return RepoActivity{}, err
	}
	return RepoActivity{
		Repo:       raw.FullName,
		Stars:      raw.Stars,
		Forks:      raw.Forks,
		OpenIssues: raw.OpenIssues,
	}, nil
}

// RecentCommits returns the first lines of the latest commit messages.
func (c *Client) RecentCommits(ctx context.Context, repo string, limit int) ([]string, error) {
	p, err := repoPath(repo)
	if err != nil { return nil, err }
	if limit <= 0 {
		limit = 3
	}
	var raw []struct {
		Commit struct {
			Message string `json:"message"`
		} `json:"commit"`
	}
	if err := c.get(ctx, fmt.Sprintf("%s/commits?per_page=%d", p, limit), &raw); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		msg, _, _ := strings.Cut(r.Commit.Message, "\n")
		if msg != "" {
			out = append(out, msg)
		}
	}
	return out, nil
}

// Activity combines stats and recent commits for one repo. A commits failure
// is tolerated; stats alone still make a usable summary.
func (c *Client) Activity(ctx context.Context, repo string) (RepoActivity, error) {
	act, err := c.RepoStats(ctx, repo)
	if err != nil {
		return RepoActivity{}, err
	}
	if commits, err := c.RecentCommits(ctx, repo, 3); err == nil {
		act.RecentCommits = commits
	}
	return act, nil
}

// Snapshot fetches activity for every configured repo. Fail-soft: repos that
// error are simply absent from the result.
func (c *Client) Snapshot(ctx context.Context, repos []string) []RepoActivity {
	out := make([]RepoActivity, 0, len(repos))
	for _, r := range repos {
		act, err := c.Activity(ctx, r)
		if err != nil {
			continue
		}
		out = append(out, act)
	}
	return out
}
