package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/openvote/voting-system/internal/core/domain"
	"github.com/openvote/voting-system/internal/core/ports"
)

const (
	defaultListLimit = 10
	maxListLimit     = 50
)

// PollHandler handles HTTP requests for poll operations.
type PollHandler struct {
	service ports.PollService
}

func NewPollHandler(service ports.PollService) *PollHandler {
	return &PollHandler{service: service}
}

type pollDetailResponse struct {
	Poll     *domain.Poll       `json:"poll"`
	UserVote *domain.PollOption `json:"user_vote,omitempty"`
}

// Create handles POST /v1/polls.
//
// @Summary      Create a new poll
// @Tags         polls
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createPollRequest  true  "Poll definition"
// @Success      201   {object}  domain.Poll
// @Failure      400   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/polls [post]
func (h *PollHandler) Create(c echo.Context) error {
	var req createPollRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if req.ExpireAt != nil && !req.ExpireAt.After(time.Now()) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "expire_at must be in the future")
	}

	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	poll, err := h.service.Create(c.Request().Context(), toCreatePollInput(req, userID))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, poll)
}

// Get handles GET /v1/polls/:id.
//
// @Summary      Get a poll with the requester's current vote
// @Tags         polls
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Poll id"
// @Success      200  {object}  pollDetailResponse
// @Failure      404  {object}  map[string]string
// @Router       /v1/polls/{id} [get]
func (h *PollHandler) Get(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	detail, err := h.service.Get(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, pollDetailResponse{Poll: detail.Poll, UserVote: detail.UserVote})
}

// List handles GET /v1/polls.
//
// @Summary      List recent polls
// @Tags         polls
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum number of polls (default 10, max 50)"
// @Success      200    {array}   ports.PollSummary
// @Router       /v1/polls [get]
func (h *PollHandler) List(c echo.Context) error {
	if _, err := ctxUserID(c); err != nil {
		return err
	}

	limit := int64(defaultListLimit)
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
		}
		if parsed > maxListLimit {
			parsed = maxListLimit
		}
		limit = parsed
	}

	summaries, err := h.service.ListRecent(c.Request().Context(), limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, summaries)
}

// Vote handles POST /v1/polls/:id/votes.
//
// @Summary      Cast or replace a vote
// @Tags         polls
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string       true  "Poll id"
// @Param        body  body      voteRequest  true  "Chosen option"
// @Success      204   "vote recorded"
// @Failure      403   {object}  map[string]string
// @Failure      410   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Router       /v1/polls/{id}/votes [post]
func (h *PollHandler) Vote(c echo.Context) error {
	var req voteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.Vote(c.Request().Context(), c.Param("id"), req.OptionID, userID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// Results handles GET /v1/polls/:id/results.
//
// @Summary      Get aggregated poll results
// @Tags         polls
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Poll id"
// @Success      200  {object}  ports.PollResults
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/polls/{id}/results [get]
func (h *PollHandler) Results(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	results, err := h.service.Results(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, results)
}
