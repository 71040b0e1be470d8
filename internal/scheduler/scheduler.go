package scheduler

import (
	"math/rand"
	"time"

	"devitalik/internal/scoring"
)

// Known action names.
const (
	TaskPostTweet      = "post-tweet"
	TaskReplyToTweet   = "reply-to-tweet"
	TaskLikeTweet      = "like-tweet"
	TaskPostDiscord    = "post-discord"
	TaskReplyToDiscord = "reply-to-discord"
)

// Task describes a candidate action. Immutable during a run.
type Task struct {
	Name    string
	Weight  float64
	Enabled bool
}

// Multipliers adjusts task weights by time of day.
type Multipliers struct {
	// TweetNight scales broadcast posting during hours 1-5.
	TweetNight float64
	// EngagementDay scales reply/like actions during hours 8-20.
	EngagementDay float64
}

// DefaultMultipliers returns the stock time-of-day adjustments.
func DefaultMultipliers() Multipliers {
	return Multipliers{TweetNight: 0.4, EngagementDay: 1.5}
}

// Phase tracks where a cycle is in its traversal.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseActionSelected
	PhaseDispatched
)

func (p Phase) String() string {
	switch p {
	case PhaseActionSelected:
		return "action_selected"
	case PhaseDispatched:
		return "dispatched"
	default:
		return "idle"
	}
}

// State is the mutable per-process scheduler context. It is owned by the
// single loop goroutine; there is no concurrent writer.
type State struct {
	Phase      Phase
	LastAction map[string]time.Time
	// Responded only grows; an id once present is never removed.
	Responded map[string]struct{}
	// Feed is consumed front-to-back; each consumed post is removed exactly once.
	Feed []scoring.ScoredPost
}

// NewState returns an empty scheduler state.
func NewState() *State {
	return &State{
		LastAction: make(map[string]time.Time),
		Responded:  make(map[string]struct{}),
	}
}

// HasResponded reports whether id has already been answered.
func (s *State) HasResponded(id string) bool {
	_, ok := s.Responded[id]
	return ok
}

// MarkResponded records id as answered.
func (s *State) MarkResponded(id string) { s.Responded[id] = struct{}{} }

// PopFeed removes and returns the head of the feed.
func (s *State) PopFeed() (scoring.ScoredPost, bool) {
	if len(s.Feed) == 0 {
		return scoring.ScoredPost{}, false
	}
	head := s.Feed[0]
	s.Feed = s.Feed[1:]
	return head, true
}

// RemoveFromFeed deletes the post with the given id, preserving order.
func (s *State) RemoveFromFeed(id string) {
	for i, sp := range s.Feed {
		if sp.Post.ID == id {
			s.Feed = append(s.Feed[:i], s.Feed[i+1:]...)
			return
		}
	}
}

// AllowDispatch checks the per-action rate guard: a dispatch is allowed when
// at least interval has elapsed since the action last ran. A non-positive
// interval always allows.
func (s *State) AllowDispatch(name string, now time.Time, interval time.Duration) bool {
	if interval <= 0 {
		return true
	}
	last, ok := s.LastAction[name]
	if !ok {
		return true
	}
	return now.Sub(last) >= interval
}

// MarkDispatched records a successful dispatch of name.
func (s *State) MarkDispatched(name string, now time.Time) {
	s.LastAction[name] = now
}

// Scheduler draws one action per cycle by weighted random sampling.
type Scheduler struct {
	tasks          []Task
	mult           Multipliers
	useTimeWeights bool
	rng            *rand.Rand
}

// New builds a scheduler over the given tasks.
func New(tasks []Task, mult Multipliers, useTimeWeights bool) *Scheduler {
	return &Scheduler{
		tasks:          tasks,
		mult:           mult,
		useTimeWeights: useTimeWeights,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithRand swaps the random source, for deterministic tests.
func (s *Scheduler) WithRand(r *rand.Rand) *Scheduler {
	s.rng = r
	return s
}

// TimeMultiplier returns the weight multiplier for a task at the given hour.
func TimeMultiplier(name string, hour int, m Multipliers) float64 {
	if hour >= 1 && hour <= 5 && name == TaskPostTweet {
		return m.TweetNight
	}
	if hour >= 8 && hour <= 20 && (name == TaskReplyToTweet || name == TaskLikeTweet) {
		return m.EngagementDay
	}
	return 1.0
}

// EffectiveWeight is a task's base weight scaled by its time multiplier.
func (s *Scheduler) EffectiveWeight(t Task, hour int) float64 {
	if !t.Enabled || t.Weight <= 0 {
		return 0
	}
	if !s.useTimeWeights {
		return t.Weight
	}
	return t.Weight * TimeMultiplier(t.Name, hour, s.mult)
}

// Pick draws one task with probability proportional to its effective weight.
// A task whose effective weight is zero is never drawn. Returns false when no
// task is drawable.
func (s *Scheduler) Pick(now time.Time) (Task, bool) {
	hour := now.Hour()
	total := 0.0
	weights := make([]float64, len(s.tasks))
	for i, t := range s.tasks {
		w := s.EffectiveWeight(t, hour)
		weights[i] = w
		total += w
	}
	if total <= 0 {
		return Task{}, false
	}
	r := s.rng.Float64() * total
	acc := 0.0
	for i, t := range s.tasks {
		if weights[i] == 0 {
			continue
		}
		acc += weights[i]
		if r < acc {
			return t, true
		}
	}
	// Float round-off can leave r at the upper edge; fall back to the last
	// drawable task.
	for i := len(s.tasks) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return s.tasks[i], true
		}
	}
	return Task{}, false
}
