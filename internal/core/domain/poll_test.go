package domain

import (
	"errors"
	"testing"
	"time"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestPoll_Expired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	open := &Poll{}
	if open.Expired(now) {
		t.Fatalf("poll without deadline must never expire")
	}

	closed := &Poll{ExpireAt: timePtr(now.Add(-time.Minute))}
	if !closed.Expired(now) {
		t.Fatalf("poll past its deadline must be expired")
	}

	future := &Poll{ExpireAt: timePtr(now.Add(time.Minute))}
	if future.Expired(now) {
		t.Fatalf("poll before its deadline must not be expired")
	}
}

func TestPoll_HasOption(t *testing.T) {
	p := &Poll{Options: []PollOption{{ID: "opt_a"}, {ID: "opt_b"}}}
	if !p.HasOption("opt_b") {
		t.Fatalf("expected opt_b to be found")
	}
	if p.HasOption("opt_z") {
		t.Fatalf("expected opt_z to be absent")
	}
}

func TestPoll_CanVote_FirstVote(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &Poll{ChangeVote: false}

	if err := p.CanVote(nil, now); err != nil {
		t.Fatalf("first vote on an open poll must be allowed: %v", err)
	}
}

func TestPoll_CanVote_Expired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &Poll{
		ChangeVote: true,
		ExpireAt:   timePtr(now.Add(-time.Hour)),
	}

	// Expiry wins even for a voter who has never voted.
	if err := p.CanVote(nil, now); !errors.Is(err, ErrPollExpired) {
		t.Fatalf("expected ErrPollExpired, got %v", err)
	}

	prior := &VoteRecord{VotedAt: now.Add(-2 * time.Hour)}
	if err := p.CanVote(prior, now); !errors.Is(err, ErrPollExpired) {
		t.Fatalf("expiry must be checked before change-vote, got %v", err)
	}
}

func TestPoll_CanVote_ChangeForbidden(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &Poll{ChangeVote: false}
	prior := &VoteRecord{VotedAt: now.Add(-time.Hour)}

	if err := p.CanVote(prior, now); !errors.Is(err, ErrChangeVoteForbidden) {
		t.Fatalf("expected ErrChangeVoteForbidden, got %v", err)
	}
}

func TestPoll_CanVote_Interval(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &Poll{ChangeVote: true, VoteInterval: 60 * time.Second}

	// 30s elapsed of a 60s interval: rejected with 30000ms remaining.
	prior := &VoteRecord{VotedAt: now.Add(-30 * time.Second)}
	err := p.CanVote(prior, now)
	if !errors.Is(err, ErrVoteIntervalNotElapsed) {
		t.Fatalf("expected interval rejection, got %v", err)
	}
	var ive *VoteIntervalError
	if !errors.As(err, &ive) {
		t.Fatalf("expected *VoteIntervalError, got %T", err)
	}
	if got := ive.RetryAfter.Milliseconds(); got != 30000 {
		t.Fatalf("expected 30000ms remaining, got %d", got)
	}

	// Exactly at the boundary the interval has elapsed.
	boundary := &VoteRecord{VotedAt: now.Add(-60 * time.Second)}
	if err := p.CanVote(boundary, now); err != nil {
		t.Fatalf("vote at interval boundary must be allowed: %v", err)
	}
}

func TestPoll_CanVote_ZeroIntervalAllowsImmediateChange(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &Poll{ChangeVote: true, VoteInterval: 0}
	prior := &VoteRecord{VotedAt: now}

	if err := p.CanVote(prior, now); err != nil {
		t.Fatalf("zero interval must not gate re-votes: %v", err)
	}
}

func TestPoll_CanViewResults(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		mode     VisibilityMode
		hasVoted bool
		expireAt *time.Time
		wantErr  error
	}{
		{"always open to non-voter", VisibilityAlways, false, nil, nil},
		{"after vote rejects non-voter", VisibilityAfterVote, false, nil, ErrResultsNotYetAvailable},
		{"after vote admits voter", VisibilityAfterVote, true, nil, nil},
		{"after expire rejects while open", VisibilityAfterExpire, true, timePtr(now.Add(time.Hour)), ErrResultsNotYetAvailable},
		{"after expire rejects when no deadline", VisibilityAfterExpire, true, nil, ErrResultsNotYetAvailable},
		{"after expire admits once expired", VisibilityAfterExpire, false, timePtr(now.Add(-time.Hour)), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &Poll{ResultsVisibility: tc.mode, ExpireAt: tc.expireAt}
			err := p.CanViewResults(tc.hasVoted, now)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestVoteIntervalError_Message(t *testing.T) {
	err := &VoteIntervalError{RetryAfter: 1500 * time.Millisecond}
	want := "vote interval has not elapsed, retry in 1500ms"
	if err.Error() != want {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
