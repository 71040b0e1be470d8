package selector

import (
	"devitalik/internal/scheduler"
	"devitalik/internal/scoring"
)

// threadScoreThreshold gates replying into an apparently finished sub-thread:
// a candidate that is itself a reply with no replies of its own must score
// above this to be picked.
const threadScoreThreshold = 5.0

// Select picks the next post worth replying to from the ranked feed, skipping
// anything already responded to. The selected post is removed from the feed
// and its id added to the responded set as part of this call, so a post is
// offered at most once for the life of the process. Returns false when no
// candidate qualifies.
func Select(st *scheduler.State) (scoring.ScoredPost, bool) {
	for _, sp := range st.Feed {
		if st.HasResponded(sp.Post.ID) {
			continue
		}
		if sp.Post.IsReply() && sp.Post.ReplyCount == 0 && sp.Score < threadScoreThreshold {
			continue
		}
		st.RemoveFromFeed(sp.Post.ID)
		st.MarkResponded(sp.Post.ID)
		return sp, true
	}
	return scoring.ScoredPost{}, false
}
