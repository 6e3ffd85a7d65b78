package ports

import (
	"context"

	"github.com/openvote/voting-system/internal/core/domain"
)

// VoteAuditRepository appends vote events to the audit trail.
type VoteAuditRepository interface {
	InsertEvent(ctx context.Context, event *domain.VoteEvent) error
}

// VoteAuditService processes a single dequeued vote event.
type VoteAuditService interface {
	Process(ctx context.Context, event domain.VoteEvent) error
}
