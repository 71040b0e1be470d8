package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"devitalik/internal/compose"
	"devitalik/internal/config"
	"devitalik/internal/github"
	"devitalik/internal/logging"
	"devitalik/internal/market"
	"devitalik/internal/metrics"
	"devitalik/internal/model"
	"devitalik/internal/scheduler"
	"devitalik/internal/scoring"
	"devitalik/internal/selector"
	"devitalik/internal/social"
	"devitalik/internal/store/agentdb"
	"devitalik/internal/topics"
)

// FeedSource supplies the timeline the agent reacts to.
type FeedSource interface {
	ReadTimeline(ctx context.Context, limit int) ([]model.Post, error)
}

// Poster dispatches generated content to a platform.
type Poster interface {
	Post(ctx context.Context, text string) error
	Reply(ctx context.Context, targetID, text string) error
	Like(ctx context.Context, targetID string) error
}

// MarketSource supplies market context for broadcast prompts.
type MarketSource interface {
	Snapshot(ctx context.Context, tokens map[string]string) map[string]market.Quote
}

// DevSource supplies repository activity for broadcast prompts.
type DevSource interface {
	Snapshot(ctx context.Context, repos []string) []github.RepoActivity
}

// Deps bundles the agent's collaborators. Nil connectors disable the
// corresponding actions.
type Deps struct {
	Feed    FeedSource
	Twitter Poster
	Discord Poster
	Gen     compose.Generator
	Market  MarketSource
	Dev     DevSource
	DB      *agentdb.DB
}

// Agent runs the select-dispatch-sleep cycle. All state is owned by the
// single loop goroutine.
type Agent struct {
	cfg     config.Config
	sched   *scheduler.Scheduler
	state   *scheduler.State
	matcher *topics.Matcher
	deps    Deps
	system  string
	social  social.Context
	quotes  map[string]market.Quote
	dev     []github.RepoActivity
	nowFn   func() time.Time

	statusMu sync.RWMutex
	status   Status
}

// New wires an agent from configuration and collaborators. Previously
// answered post ids are warm-started from the store.
func New(cfg config.Config, deps Deps) *Agent {
	tasks := make([]scheduler.Task, 0, len(cfg.Tasks))
	for _, t := range cfg.Tasks {
		tasks = append(tasks, scheduler.Task{Name: t.Name, Weight: t.Weight, Enabled: t.Enabled})
	}
	mult := scheduler.Multipliers{
		TweetNight:    cfg.Multipliers.TweetNight,
		EngagementDay: cfg.Multipliers.EngagementDay,
	}
	a := &Agent{
		cfg:     cfg,
		sched:   scheduler.New(tasks, mult, cfg.Agent.UseTimeBasedWeights),
		state:   scheduler.NewState(),
		matcher: topics.NewMatcher(cfg.Interests.Keywords),
		deps:    deps,
		system:  compose.SystemPrompt(cfg.Persona),
		nowFn:   time.Now,
	}
	if deps.DB != nil {
		if ids, err := deps.DB.LoadResponded(context.Background()); err == nil {
			for _, id := range ids {
				a.state.MarkResponded(id)
			}
		}
	}
	a.publishStatus()
	return a
}

// Scheduler exposes the scheduler for deterministic test seeding.
func (a *Agent) Scheduler() *scheduler.Scheduler { return a.sched }

// State exposes the mutable scheduler state.
func (a *Agent) State() *scheduler.State { return a.state }

// Status is the /status snapshot.
type Status struct {
	Phase      string               `json:"phase"`
	FeedLen    int                  `json:"feed_len"`
	Responded  int                  `json:"responded"`
	LastAction map[string]time.Time `json:"last_action"`
}

// StatusSnapshot returns the last published status. Safe to call from any
// goroutine; the snapshot shares nothing mutable with the loop.
func (a *Agent) StatusSnapshot() Status {
	a.statusMu.RLock()
	defer a.statusMu.RUnlock()
	return a.status
}

// publishStatus copies the live state into the read-side snapshot. Only the
// loop goroutine calls this; each publish builds a fresh LastAction map so
// readers never share one with the loop.
func (a *Agent) publishStatus() {
	last := make(map[string]time.Time, len(a.state.LastAction))
	for k, v := range a.state.LastAction {
		last[k] = v
	}
	s := Status{
		Phase:      a.state.Phase.String(),
		FeedLen:    len(a.state.Feed),
		Responded:  len(a.state.Responded),
		LastAction: last,
	}
	a.statusMu.Lock()
	a.status = s
	a.statusMu.Unlock()
}

// RunLoop runs cycles separated by the configured delay until ctx is
// cancelled. Nothing inside a cycle is fatal to the loop.
func (a *Agent) RunLoop(ctx context.Context) error {
	delay := time.Duration(a.cfg.Agent.LoopDelaySeconds) * time.Second
	if delay <= 0 {
		delay = time.Minute
	}
	t := time.NewTicker(delay)
	defer t.Stop()
	a.runCycle(ctx)
	for {
		select {
		case <-ctx.Done():
			logging.Info("loop_stop", nil)
			return ctx.Err()
		case <-t.C:
			a.runCycle(ctx)
		}
	}
}

func (a *Agent) runCycle(ctx context.Context) {
	start := time.Now()
	metrics.Cycles.Inc()
	if err := a.Cycle(ctx); err != nil {
		var ae *Error
		kind := KindTransient
		if errors.As(err, &ae) {
			kind = ae.Kind
		}
		metrics.IncCollaboratorError(kind.String())
		logging.Error("cycle_error", map[string]any{"error": err.Error(), "kind": kind.String()})
	}
	metrics.ObserveCycleDuration(start)
}

// Cycle performs one full traversal: replenish, select, dispatch. The
// returned error is informational; the caller logs it and continues.
func (a *Agent) Cycle(ctx context.Context) error {
	now := a.nowFn()
	cycleID := uuid.NewString()
	a.state.Phase = scheduler.PhaseIdle
	defer a.publishStatus()

	if err := a.replenish(ctx, now); err != nil {
		return err
	}
	a.publishStatus()

	task, ok := a.sched.Pick(now)
	if !ok {
		logging.Warn("no_tasks_configured", nil)
		return nil
	}
	a.state.Phase = scheduler.PhaseActionSelected
	a.publishStatus()

	outcome, target, err := a.dispatch(ctx, task, now, cycleID)
	metrics.IncAction(task.Name, outcome)
	if outcome == "ok" {
		a.state.Phase = scheduler.PhaseDispatched
		if a.deps.DB != nil {
			_ = a.deps.DB.PutAction(ctx, now, task.Name, target, cycleID)
		}
	}
	a.state.Phase = scheduler.PhaseIdle
	logging.Info("cycle_done", map[string]any{
		"cycle": cycleID, "action": task.Name, "outcome": outcome,
	})
	return err
}

func (a *Agent) hasTweetTask() bool {
	for _, t := range a.cfg.Tasks {
		if t.Enabled && strings.Contains(t.Name, "tweet") {
			return true
		}
	}
	return false
}

// replenish refills the pending feed when it is empty, ranks it, and rebuilds
// the social and market context.
func (a *Agent) replenish(ctx context.Context, now time.Time) error {
	if len(a.state.Feed) > 0 || !a.hasTweetTask() || a.deps.Feed == nil {
		return nil
	}
	limit := a.cfg.Agent.TimelineLimit
	if limit <= 0 {
		limit = 50
	}
	posts, err := a.deps.Feed.ReadTimeline(ctx, limit)
	if err != nil {
		return transient("read_timeline", err)
	}
	a.state.Feed = scoring.RankFeed(posts, a.matcher, now)
	a.social = social.AnalyzeFeed(a.state.Feed)
	if a.deps.Market != nil && len(a.cfg.Market.Tokens) > 0 {
		a.quotes = a.deps.Market.Snapshot(ctx, a.cfg.Market.Tokens)
	}
	if a.deps.Dev != nil && len(a.cfg.GitHub.Repos) > 0 {
		a.dev = a.deps.Dev.Snapshot(ctx, a.cfg.GitHub.Repos)
	}
	logging.Info("feed_replenished", map[string]any{"posts": len(a.state.Feed)})
	return nil
}

// allowEngagement checks the hourly/daily engagement budget against the
// actions log.
func (a *Agent) allowEngagement(ctx context.Context, now time.Time) bool {
	if a.deps.DB == nil {
		return true
	}
	eng := []string{scheduler.TaskReplyToTweet, scheduler.TaskLikeTweet, scheduler.TaskReplyToDiscord}
	startHour := now.Truncate(time.Hour)
	startDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if a.cfg.Engagement.MaxPerHour > 0 {
		n, err := a.deps.DB.CountActionsWithin(ctx, startHour, startHour.Add(time.Hour), eng...)
		if err == nil && n >= a.cfg.Engagement.MaxPerHour {
			return false
		}
	}
	if a.cfg.Engagement.MaxPerDay > 0 {
		n, err := a.deps.DB.CountActionsWithin(ctx, startDay, startDay.Add(24*time.Hour), eng...)
		if err == nil && n >= a.cfg.Engagement.MaxPerDay {
			return false
		}
	}
	return true
}

// dispatch runs the drawn task. It returns the outcome label and, for
// actions aimed at an existing post or message, the target id.
func (a *Agent) dispatch(ctx context.Context, task scheduler.Task, now time.Time, cycleID string) (string, string, error) {
	switch task.Name {
	case scheduler.TaskPostTweet:
		return a.doPost(ctx, task.Name, now)
	case scheduler.TaskReplyToTweet:
		return a.doReply(ctx, task.Name, now, cycleID)
	case scheduler.TaskLikeTweet:
		return a.doLike(ctx, task.Name, now)
	case scheduler.TaskPostDiscord:
		return a.doDiscordPost(ctx, task.Name, now)
	case scheduler.TaskReplyToDiscord:
		return a.doDiscordReply(ctx, task.Name, now)
	default:
		return "unknown", "", notConfigured(task.Name, nil)
	}
}

func (a *Agent) doPost(ctx context.Context, name string, now time.Time) (string, string, error) {
	if a.deps.Twitter == nil {
		return "skipped", "", notConfigured(name, nil)
	}
	interval := time.Duration(a.cfg.Timing.TweetIntervalSeconds) * time.Second
	if !a.state.AllowDispatch(name, now, interval) {
		logging.Info("post_delayed_until_interval", nil)
		return "rate_limited", "", nil
	}
	prompt := compose.PostPrompt(social.ContentIdeas(a.social), a.quotes, a.dev)
	text, err := compose.GenerateBounded(ctx, a.deps.Gen, prompt, a.system, compose.MaxPostLength)
	if err != nil {
		return "generate_failed", "", transient("generate", err)
	}
	if err := a.deps.Twitter.Post(ctx, text); err != nil {
		return "post_failed", "", transient("post_tweet", err)
	}
	a.state.MarkDispatched(name, now)
	logging.Info("tweet_posted", map[string]any{"chars": len(text)})
	return "ok", "", nil
}

func (a *Agent) doReply(ctx context.Context, name string, now time.Time, cycleID string) (string, string, error) {
	if a.deps.Twitter == nil {
		return "skipped", "", notConfigured(name, nil)
	}
	if !a.allowEngagement(ctx, now) {
		logging.Info("engagement_budget_exhausted", nil)
		return "budget", "", nil
	}
	target, ok := selector.Select(a.state)
	if !ok {
		logging.Info("no_reply_candidates", nil)
		return "skipped", "", nil
	}
	if a.deps.DB != nil {
		_ = a.deps.DB.MarkResponded(ctx, target.Post.ID, now)
	}
	prompt, targetLen := compose.ReplyPrompt(target)
	text, err := compose.GenerateBounded(ctx, a.deps.Gen, prompt, a.system, targetLen)
	if err != nil {
		return "generate_failed", "", transient("generate", err)
	}
	if err := a.deps.Twitter.Reply(ctx, target.Post.ID, text); err != nil {
		return "post_failed", "", transient("reply_tweet", err)
	}
	a.state.MarkDispatched(name, now)
	logging.Info("reply_posted", map[string]any{
		"target": target.Post.ID, "score": target.Score, "cycle": cycleID,
	})
	return "ok", target.Post.ID, nil
}

func (a *Agent) doLike(ctx context.Context, name string, now time.Time) (string, string, error) {
	if a.deps.Twitter == nil {
		return "skipped", "", notConfigured(name, nil)
	}
	if !a.allowEngagement(ctx, now) {
		logging.Info("engagement_budget_exhausted", nil)
		return "budget", "", nil
	}
	target, ok := a.state.PopFeed()
	if !ok {
		logging.Info("no_like_candidates", nil)
		return "skipped", "", nil
	}
	if err := a.deps.Twitter.Like(ctx, target.Post.ID); err != nil {
		return "post_failed", "", transient("like_tweet", err)
	}
	a.state.MarkDispatched(name, now)
	logging.Info("tweet_liked", map[string]any{"target": target.Post.ID})
	return "ok", target.Post.ID, nil
}

func (a *Agent) doDiscordPost(ctx context.Context, name string, now time.Time) (string, string, error) {
	if a.deps.Discord == nil {
		return "skipped", "", notConfigured(name, nil)
	}
	prompt := compose.PostPrompt(social.ContentIdeas(a.social), a.quotes, a.dev)
	text, err := compose.GenerateBounded(ctx, a.deps.Gen, prompt, a.system, compose.MaxPostLength)
	if err != nil {
		return "generate_failed", "", transient("generate", err)
	}
	if err := a.deps.Discord.Post(ctx, text); err != nil {
		return "post_failed", "", transient("post_discord", err)
	}
	a.state.MarkDispatched(name, now)
	return "ok", "", nil
}

// doDiscordReply replies to the operator-seeded target cursor when present,
// otherwise posts into the channel.
func (a *Agent) doDiscordReply(ctx context.Context, name string, now time.Time) (string, string, error) {
	if a.deps.Discord == nil {
		return "skipped", "", notConfigured(name, nil)
	}
	if !a.allowEngagement(ctx, now) {
		return "budget", "", nil
	}
	prompt := compose.PostPrompt(social.ContentIdeas(a.social), a.quotes, a.dev)
	text, err := compose.GenerateBounded(ctx, a.deps.Gen, prompt, a.system, compose.MaxPostLength)
	if err != nil {
		return "generate_failed", "", transient("generate", err)
	}
	var targetID string
	if a.deps.DB != nil {
		targetID, _ = a.deps.DB.LoadCursor(ctx, "discord:reply_target")
	}
	if targetID != "" {
		err = a.deps.Discord.Reply(ctx, targetID, text)
	} else {
		err = a.deps.Discord.Post(ctx, text)
	}
	if err != nil {
		return "post_failed", "", transient("reply_discord", err)
	}
	a.state.MarkDispatched(name, now)
	return "ok", targetID, nil
}
