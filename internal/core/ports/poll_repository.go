package ports

import (
	"context"
	"time"

	"github.com/openvote/voting-system/internal/core/domain"
)

// PollSummary is the read model for poll listings: rules metadata plus the
// total number of current votes.
type PollSummary struct {
	ID                string                `json:"id"`
	Title             string                `json:"title"`
	ResultsVisibility domain.VisibilityMode `json:"results_visibility"`
	CreatedAt         time.Time             `json:"created_at"`
	ExpireAt          *time.Time            `json:"expire_at,omitempty"`
	Votes             int64                 `json:"votes"`
}

// PollRepository defines the persistence contract for polls. Options are
// stored with the poll and never change after creation.
type PollRepository interface {
	Create(ctx context.Context, poll *domain.Poll) (*domain.Poll, error)
	// FindByID returns domain.ErrPollNotFound when no poll exists.
	FindByID(ctx context.Context, id string) (*domain.Poll, error)
	// ListRecent returns up to limit polls, newest first, with vote totals.
	ListRecent(ctx context.Context, limit int64) ([]*PollSummary, error)
}
