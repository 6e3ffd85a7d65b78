package ports

import (
	"context"
	"time"

	"github.com/openvote/voting-system/internal/core/domain"
)

// CreatePollInput carries the validated fields for poll creation.
type CreatePollInput struct {
	CreatorID         string
	Title             string
	Description       string
	Category          string
	Options           []string
	ResultsVisibility domain.VisibilityMode
	ChangeVote        bool
	VoteInterval      time.Duration
	ExpireAt          *time.Time
}

// PollDetail is a poll plus the requesting voter's current choice, if any.
type PollDetail struct {
	Poll     *domain.Poll
	UserVote *domain.PollOption
}

// PollResults is the aggregated per-option count view. Options with no votes
// appear with zero.
type PollResults struct {
	PollID    string               `json:"poll_id"`
	Title     string               `json:"title"`
	Options   []domain.OptionCount `json:"options"`
	Total     int64                `json:"total"`
	CreatedAt time.Time            `json:"created_at"`
}

// PollService orchestrates poll creation, vote casting, and results reads.
type PollService interface {
	Create(ctx context.Context, input CreatePollInput) (*domain.Poll, error)
	Get(ctx context.Context, pollID, userID string) (*PollDetail, error)
	ListRecent(ctx context.Context, limit int64) ([]*PollSummary, error)
	// Vote casts or replaces the voter's vote after policy evaluation.
	Vote(ctx context.Context, pollID, optionID, voterID string) error
	// Results returns counts once the poll's visibility rule permits it.
	Results(ctx context.Context, pollID, userID string) (*PollResults, error)
}
