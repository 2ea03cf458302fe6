package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/edulearn/learner-gateway/internal/core/domain"
	"github.com/edulearn/learner-gateway/internal/core/ports"
)

// StreakHandler serves the login streak widget.
type StreakHandler struct {
	streaks ports.StreakService
	sink    ports.ActivitySink
}

func NewStreakHandler(streaks ports.StreakService, sink ports.ActivitySink) *StreakHandler {
	return &StreakHandler{streaks: streaks, sink: sink}
}

// RecordLogin counts today's visit for the signed-in user.
//
// @Summary      Record a login
// @Tags         streak
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  streakLoginResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/streak/login [post]
func (h *StreakHandler) RecordLogin(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	res, err := h.streaks.RecordLogin(c.Request().Context(), user.Username)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, streakLoginResponse{
		Outcome: res.Outcome,
		Streak:  res.State,
		Notice:  res.Notice,
	})
}

// Status returns the streak, this week's visits and the history stats.
//
// @Summary      Streak status
// @Tags         streak
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  streakStatusResponse
// @Failure      500  {object}  errorResponse
// @Router       /v1/streak [get]
func (h *StreakHandler) Status(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	st, err := h.streaks.Status(c.Request().Context(), user.Username)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, streakStatusResponse{
		Streak:       st.State,
		Week:         st.Week,
		Stats:        st.Stats,
		VisitedToday: st.VisitedToday,
		Reminder:     st.Reminder,
	})
}

// Activity accepts an activity ping. Pings inside the debounce interval are
// accepted but not forwarded.
//
// @Summary      Activity ping
// @Tags         streak
// @Produce      json
// @Security     BearerAuth
// @Success      202  {object}  activityResponse
// @Router       /v1/activity [post]
func (h *StreakHandler) Activity(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	forwarded, err := h.sink.Ping(c.Request().Context(), user.Username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, activityResponse{Forwarded: forwarded})
}

// Notices lists the milestone and reminder notices of the signed-in user,
// newest first.
//
// @Summary      Notice inbox
// @Tags         streak
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum notices (1-100)"
// @Success      200    {object}  listResponse[domain.Notice]
// @Failure      422    {object}  errorResponse
// @Router       /v1/notices [get]
func (h *StreakHandler) Notices(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var q noticesQuery
	if err := bindValid(c, &q); err != nil {
		return err
	}

	notices, err := h.streaks.Notices(c.Request().Context(), user.Username, q.Limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse[domain.Notice]{Data: notices})
}
