package scheduler

import (
	"math/rand"
	"testing"
	"time"

	"devitalik/internal/model"
	"devitalik/internal/scoring"
)

func postWithID(id string) model.Post { return model.Post{ID: id} }

func at(hour int) time.Time {
	return time.Date(2025, 6, 1, hour, 30, 0, 0, time.UTC)
}

func TestTimeMultiplierWindows(t *testing.T) {
	m := DefaultMultipliers()
	if got := TimeMultiplier(TaskPostTweet, 3, m); got != 0.4 {
		t.Fatalf("night post multiplier: got %v", got)
	}
	if got := TimeMultiplier(TaskPostTweet, 12, m); got != 1.0 {
		t.Fatalf("daytime post multiplier: got %v", got)
	}
	if got := TimeMultiplier(TaskReplyToTweet, 12, m); got != 1.5 {
		t.Fatalf("day reply multiplier: got %v", got)
	}
	if got := TimeMultiplier(TaskLikeTweet, 20, m); got != 1.5 {
		t.Fatalf("day like multiplier at boundary: got %v", got)
	}
	if got := TimeMultiplier(TaskLikeTweet, 22, m); got != 1.0 {
		t.Fatalf("night like multiplier: got %v", got)
	}
	if got := TimeMultiplier(TaskPostDiscord, 3, m); got != 1.0 {
		t.Fatalf("discord post should not take the night multiplier: got %v", got)
	}
}

func TestPickNoTasks(t *testing.T) {
	s := New(nil, DefaultMultipliers(), false)
	if _, ok := s.Pick(at(12)); ok {
		t.Fatalf("expected no draw with no tasks")
	}
}

func TestPickSkipsDisabledAndZeroWeight(t *testing.T) {
	tasks := []Task{
		{Name: TaskPostTweet, Weight: 0, Enabled: true},
		{Name: TaskReplyToTweet, Weight: 1, Enabled: false},
		{Name: TaskLikeTweet, Weight: 1, Enabled: true},
	}
	s := New(tasks, DefaultMultipliers(), false).WithRand(rand.New(rand.NewSource(1)))
	for i := 0; i < 200; i++ {
		task, ok := s.Pick(at(12))
		if !ok {
			t.Fatalf("expected a draw")
		}
		if task.Name != TaskLikeTweet {
			t.Fatalf("drew %s, only like-tweet is drawable", task.Name)
		}
	}
}

func TestPickZeroMultiplierExcludes(t *testing.T) {
	tasks := []Task{
		{Name: TaskPostTweet, Weight: 1, Enabled: true},
		{Name: TaskReplyToTweet, Weight: 1, Enabled: true},
	}
	mult := Multipliers{TweetNight: 0, EngagementDay: 1.5}
	s := New(tasks, mult, true).WithRand(rand.New(rand.NewSource(2)))
	// Hour 3 is a night hour: post-tweet's effective weight is 0.
	for i := 0; i < 200; i++ {
		task, ok := s.Pick(at(3))
		if !ok {
			t.Fatalf("expected a draw")
		}
		if task.Name == TaskPostTweet {
			t.Fatalf("zero-multiplier task was drawn")
		}
	}
}

func TestPickAllZeroReturnsNone(t *testing.T) {
	tasks := []Task{{Name: TaskPostTweet, Weight: 1, Enabled: true}}
	s := New(tasks, Multipliers{TweetNight: 0, EngagementDay: 1.5}, true)
	if _, ok := s.Pick(at(3)); ok {
		t.Fatalf("expected no draw when every effective weight is zero")
	}
}

func TestPickRespectsWeights(t *testing.T) {
	tasks := []Task{
		{Name: TaskPostTweet, Weight: 1, Enabled: true},
		{Name: TaskReplyToTweet, Weight: 9, Enabled: true},
	}
	s := New(tasks, DefaultMultipliers(), false).WithRand(rand.New(rand.NewSource(3)))
	counts := map[string]int{}
	n := 5000
	for i := 0; i < n; i++ {
		task, _ := s.Pick(at(23))
		counts[task.Name]++
	}
	frac := float64(counts[TaskReplyToTweet]) / float64(n)
	if frac < 0.85 || frac > 0.95 {
		t.Fatalf("expected ~0.9 draw fraction for weight 9/10, got %v", frac)
	}
}

func TestRateGuard(t *testing.T) {
	st := NewState()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	interval := time.Hour
	if !st.AllowDispatch(TaskPostTweet, now, interval) {
		t.Fatalf("first dispatch should be allowed")
	}
	st.MarkDispatched(TaskPostTweet, now)
	// Immediate re-selection within the same second aborts the dispatch
	// and leaves lastActionTime unchanged.
	if st.AllowDispatch(TaskPostTweet, now, interval) {
		t.Fatalf("dispatch within interval should be blocked")
	}
	if got := st.LastAction[TaskPostTweet]; !got.Equal(now) {
		t.Fatalf("lastActionTime changed on blocked dispatch")
	}
	if !st.AllowDispatch(TaskPostTweet, now.Add(interval), interval) {
		t.Fatalf("dispatch after interval should be allowed")
	}
	if !st.AllowDispatch(TaskPostTweet, now, 0) {
		t.Fatalf("zero interval should always allow")
	}
}

func TestStateFeedOps(t *testing.T) {
	st := NewState()
	st.Feed = []scoring.ScoredPost{
		{Post: postWithID("a")}, {Post: postWithID("b")}, {Post: postWithID("c")},
	}
	head, ok := st.PopFeed()
	if !ok || head.Post.ID != "a" {
		t.Fatalf("expected head a, got %v %v", head.Post.ID, ok)
	}
	st.RemoveFromFeed("c")
	if len(st.Feed) != 1 || st.Feed[0].Post.ID != "b" {
		t.Fatalf("expected only b left, got %v", st.Feed)
	}
	st.RemoveFromFeed("missing")
	if len(st.Feed) != 1 {
		t.Fatalf("removing a missing id should be a no-op")
	}
	if _, ok := NewState().PopFeed(); ok {
		t.Fatalf("pop on empty feed should report false")
	}
}
