package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/openvote/voting-system/internal/api/metrics"
	"github.com/openvote/voting-system/internal/core/domain"
	"github.com/openvote/voting-system/internal/core/ports"
)

// VoteEventSink receives audit events after a successful ledger replace.
// Implemented by the queue dispatcher; enqueueing never blocks the vote.
type VoteEventSink interface {
	Enqueue(event domain.VoteEvent)
}

// PollService evaluates poll policy, drives the vote ledger, and aggregates
// results.
type PollService struct {
	polls  ports.PollRepository
	ledger ports.VoteLedger
	audit  VoteEventSink
	log    zerolog.Logger
}

func NewPollService(polls ports.PollRepository, ledger ports.VoteLedger, audit VoteEventSink, log zerolog.Logger) *PollService {
	return &PollService{polls: polls, ledger: ledger, audit: audit, log: log}
}

func (s *PollService) Create(ctx context.Context, in ports.CreatePollInput) (*domain.Poll, error) {
	now := time.Now().UTC()
	poll := &domain.Poll{
		ID:                uuid.NewString(),
		CreatorID:         in.CreatorID,
		Title:             in.Title,
		Description:       in.Description,
		Category:          in.Category,
		ResultsVisibility: in.ResultsVisibility,
		ChangeVote:        in.ChangeVote,
		VoteInterval:      in.VoteInterval,
		ExpireAt:          in.ExpireAt,
		CreatedAt:         now,
	}
	for _, title := range in.Options {
		poll.Options = append(poll.Options, domain.PollOption{ID: uuid.NewString(), Title: title})
	}

	created, err := s.polls.Create(ctx, poll)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create poll")
		return nil, err
	}

	s.log.Info().Str("poll_id", created.ID).Str("creator_id", in.CreatorID).Msg("poll created")
	return created, nil
}

func (s *PollService) Get(ctx context.Context, pollID, userID string) (*ports.PollDetail, error) {
	poll, err := s.polls.FindByID(ctx, pollID)
	if err != nil {
		return nil, err
	}

	detail := &ports.PollDetail{Poll: poll}
	record, err := s.ledger.FindByPollAndVoter(ctx, pollID, userID)
	if err != nil {
		return nil, err
	}
	if record != nil {
		for i := range poll.Options {
			if poll.Options[i].ID == record.OptionID {
				detail.UserVote = &poll.Options[i]
				break
			}
		}
	}
	return detail, nil
}

func (s *PollService) ListRecent(ctx context.Context, limit int64) ([]*ports.PollSummary, error) {
	return s.polls.ListRecent(ctx, limit)
}

// Vote casts or replaces the voter's vote. Policy is evaluated against the
// voter's most recent record only; on permission the ledger performs an
// atomic replace.
func (s *PollService) Vote(ctx context.Context, pollID, optionID, voterID string) error {
	start := time.Now()

	poll, err := s.polls.FindByID(ctx, pollID)
	if err != nil {
		return err
	}
	if !poll.HasOption(optionID) {
		return domain.ErrOptionNotFound
	}

	prior, err := s.ledger.FindByPollAndVoter(ctx, pollID, voterID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if err := poll.CanVote(prior, now); err != nil {
		metrics.VotesRejectedTotal.WithLabelValues(rejectReason(err)).Inc()
		return err
	}

	record := &domain.VoteRecord{PollID: pollID, VoterID: voterID, OptionID: optionID, VotedAt: now}
	replaced, err := s.ledger.Replace(ctx, record)
	if err != nil {
		s.log.Error().Err(err).Str("poll_id", pollID).Msg("vote replace failed")
		return err
	}

	metrics.VotesCastTotal.WithLabelValues(castResult(replaced)).Inc()
	metrics.VoteProcessingDuration.Observe(time.Since(start).Seconds())

	s.audit.Enqueue(domain.VoteEvent{
		PollID:   pollID,
		VoterID:  voterID,
		OptionID: optionID,
		VotedAt:  now,
		Replaced: replaced,
	})

	s.log.Info().
		Str("poll_id", pollID).
		Str("option_id", optionID).
		Bool("replaced", replaced).
		Msg("vote recorded")

	return nil
}

// Results aggregates current counts per option once the poll's visibility
// rule permits the requester to read them. Counting sums current records,
// so the total equals distinct voters, not vote attempts.
func (s *PollService) Results(ctx context.Context, pollID, userID string) (*ports.PollResults, error) {
	poll, err := s.polls.FindByID(ctx, pollID)
	if err != nil {
		return nil, err
	}

	record, err := s.ledger.FindByPollAndVoter(ctx, pollID, userID)
	if err != nil {
		return nil, err
	}
	if err := poll.CanViewResults(record != nil, time.Now().UTC()); err != nil {
		return nil, err
	}

	counts, err := s.ledger.CountsByOption(ctx, pollID)
	if err != nil {
		return nil, err
	}

	results := &ports.PollResults{PollID: poll.ID, Title: poll.Title, CreatedAt: poll.CreatedAt}
	for _, opt := range poll.Options {
		n := counts[opt.ID]
		results.Options = append(results.Options, domain.OptionCount{
			OptionID: opt.ID,
			Title:    opt.Title,
			Votes:    n,
		})
		results.Total += n
	}
	return results, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrPollExpired):
		return "poll_expired"
	case errors.Is(err, domain.ErrChangeVoteForbidden):
		return "change_forbidden"
	case errors.Is(err, domain.ErrVoteIntervalNotElapsed):
		return "interval_not_elapsed"
	default:
		return "other"
	}
}

func castResult(replaced bool) string {
	if replaced {
		return "replaced"
	}
	return "first"
}
