package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/openvote/voting-system/internal/core/domain"
	"github.com/openvote/voting-system/internal/core/ports"
)

type auditService struct {
	repo ports.VoteAuditRepository
	log  zerolog.Logger
}

// NewVoteAuditService returns the audit-trail processor invoked by the
// queue dispatcher workers.
func NewVoteAuditService(repo ports.VoteAuditRepository, log zerolog.Logger) ports.VoteAuditService {
	return &auditService{repo: repo, log: log}
}

// Process appends one vote event to the audit trail. Failures surface to the
// dispatcher, which logs them; a lost audit row never fails the vote itself.
func (s *auditService) Process(ctx context.Context, event domain.VoteEvent) error {
	if err := s.repo.InsertEvent(ctx, &event); err != nil {
		return fmt.Errorf("audit vote event: %w", err)
	}

	s.log.Debug().
		Str("poll_id", event.PollID).
		Bool("replaced", event.Replaced).
		Msg("vote event audited")

	return nil
}
