package ports

import (
	"context"

	"github.com/openvote/voting-system/internal/core/domain"
)

// VoteLedger enforces the at-most-one-vote-per-(poll, voter) invariant.
type VoteLedger interface {
	// Replace atomically installs the record as the voter's current vote,
	// removing any prior record for the same (poll, voter) pair in the same
	// storage operation. A concurrent read never observes two records for
	// the pair. Returns whether a prior record was replaced.
	Replace(ctx context.Context, record *domain.VoteRecord) (replaced bool, err error)
	// FindByPollAndVoter returns (nil, nil) when the voter has not voted.
	FindByPollAndVoter(ctx context.Context, pollID, voterID string) (*domain.VoteRecord, error)
	// CountsByOption groups the poll's current vote records by option.
	// Options with zero votes are absent from the map.
	CountsByOption(ctx context.Context, pollID string) (map[string]int64, error)
}
