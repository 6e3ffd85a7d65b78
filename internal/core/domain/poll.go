package domain

import "time"

// VisibilityMode controls when a poll's aggregated results may be read.
type VisibilityMode string

const (
	VisibilityAlways      VisibilityMode = "ALWAYS"
	VisibilityAfterVote   VisibilityMode = "AFTER_VOTE"
	VisibilityAfterExpire VisibilityMode = "AFTER_EXPIRE"
)

// PollOption is a single choice within a poll. The option set is immutable
// after the poll is created.
type PollOption struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Poll is the aggregate root: its rule set governs voting and results reads.
type Poll struct {
	ID                string         `json:"id"`
	CreatorID         string         `json:"creator_id"`
	Title             string         `json:"title"`
	Description       string         `json:"description,omitempty"`
	Category          string         `json:"category,omitempty"`
	Options           []PollOption   `json:"options"`
	ResultsVisibility VisibilityMode `json:"results_visibility"`
	ChangeVote        bool           `json:"change_vote"`
	VoteInterval      time.Duration  `json:"vote_interval"`
	ExpireAt          *time.Time     `json:"expire_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

// Expired reports whether the poll's deadline has passed. Polls without a
// deadline never expire.
func (p *Poll) Expired(now time.Time) bool {
	return p.ExpireAt != nil && p.ExpireAt.Before(now)
}

// HasOption reports whether optionID belongs to this poll.
func (p *Poll) HasOption(optionID string) bool {
	for _, o := range p.Options {
		if o.ID == optionID {
			return true
		}
	}
	return false
}

// CanVote evaluates the poll's rules against the voter's current vote record
// (nil when the voter has not voted). It reads state and returns a decision,
// never mutates: callers perform the ledger replace only on a nil result.
//
// Check order: expiry, then change-vote, then re-vote interval. Interval and
// change-vote apply to the most recent record only.
func (p *Poll) CanVote(prior *VoteRecord, now time.Time) error {
	if p.Expired(now) {
		return ErrPollExpired
	}
	if prior == nil {
		return nil
	}
	if !p.ChangeVote {
		return ErrChangeVoteForbidden
	}
	if p.VoteInterval > 0 {
		if elapsed := now.Sub(prior.VotedAt); elapsed < p.VoteInterval {
			return &VoteIntervalError{RetryAfter: p.VoteInterval - elapsed}
		}
	}
	return nil
}

// CanViewResults gates a results read for a requester who has (or has not)
// voted on this poll.
func (p *Poll) CanViewResults(hasVoted bool, now time.Time) error {
	switch p.ResultsVisibility {
	case VisibilityAfterVote:
		if !hasVoted {
			return ErrResultsNotYetAvailable
		}
	case VisibilityAfterExpire:
		if !p.Expired(now) {
			return ErrResultsNotYetAvailable
		}
	}
	return nil
}
