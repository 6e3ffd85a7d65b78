package domain

import "time"

// VoteRecord is the current vote of one voter on one poll. The ledger keeps
// at most one record per (poll, voter) pair at any time; a permitted re-vote
// replaces the record atomically.
type VoteRecord struct {
	PollID   string    `json:"poll_id"`
	VoterID  string    `json:"voter_id"`
	OptionID string    `json:"option_id"`
	VotedAt  time.Time `json:"voted_at"`
}

// OptionCount is one row of a poll's aggregated results.
type OptionCount struct {
	OptionID string `json:"option_id"`
	Title    string `json:"title"`
	Votes    int64  `json:"votes"`
}

// VoteEvent is the audit-trail entry emitted after a successful ledger
// replace. Replaced marks re-votes, distinguishing them from first votes.
type VoteEvent struct {
	PollID   string    `json:"poll_id"`
	VoterID  string    `json:"voter_id"`
	OptionID string    `json:"option_id"`
	VotedAt  time.Time `json:"voted_at"`
	Replaced bool      `json:"replaced"`
}
