package handler

import (
	"time"

	"github.com/openvote/voting-system/internal/core/domain"
	"github.com/openvote/voting-system/internal/core/ports"
)

type createPollRequest struct {
	Title             string     `json:"title"              validate:"required,max=100"`
	Description       string     `json:"description"        validate:"max=500"`
	Category          string     `json:"category"           validate:"max=100"`
	Options           []string   `json:"options"            validate:"required,min=2,dive,required,max=100"`
	ResultsVisibility string     `json:"results_visibility" validate:"required,oneof=ALWAYS AFTER_VOTE AFTER_EXPIRE"`
	ChangeVote        bool       `json:"change_vote"`
	VoteIntervalMs    int64      `json:"vote_interval_ms"   validate:"gte=0"`
	ExpireAt          *time.Time `json:"expire_at"`
}

type voteRequest struct {
	OptionID string `json:"option_id" validate:"required"`
}

// toCreatePollInput maps the HTTP request to the service DTO.
func toCreatePollInput(r createPollRequest, creatorID string) ports.CreatePollInput {
	return ports.CreatePollInput{
		CreatorID:         creatorID,
		Title:             r.Title,
		Description:       r.Description,
		Category:          r.Category,
		Options:           r.Options,
		ResultsVisibility: domain.VisibilityMode(r.ResultsVisibility),
		ChangeVote:        r.ChangeVote,
		VoteInterval:      time.Duration(r.VoteIntervalMs) * time.Millisecond,
		ExpireAt:          r.ExpireAt,
	}
}
