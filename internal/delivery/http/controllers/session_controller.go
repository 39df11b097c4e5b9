package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/domain"
)

// SessionSuccessResponse is the success envelope for POST /conferences/{conferenceKey}/sessions.
type SessionSuccessResponse struct {
	Data  *domain.Session   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// SessionListSuccessResponse is the success envelope for session lists.
type SessionListSuccessResponse struct {
	Data  []*domain.Session `json:"data"`
	Error *helpers.APIError `json:"error"`
}

type SessionController struct {
	Logger    *slog.Logger
	Directory domain.SessionDirectory
	Planner   domain.SessionQueryPlanner
}

func NewSessionController(logger *slog.Logger, dir domain.SessionDirectory, planner domain.SessionQueryPlanner) *SessionController {
	return &SessionController{Logger: logger, Directory: dir, Planner: planner}
}

func (c *SessionController) writeSessions(w http.ResponseWriter, r *http.Request, sessions []*domain.Session, err error) {
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nonNil(sessions))
}

// CreateSession godoc
// @Summary Create a session in a conference
// @Description Organizer only. Speakers are given as websafe profile keys; keys that resolve to no profile are skipped, but at least one must resolve.
// @Tags sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param conferenceKey path string true "Websafe conference key"
// @Param session body domain.SessionSpec true "Session data; start_time is HH:MM"
// @Success 201 {object} controllers.SessionSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (no speaker resolved)"
// @Router /conferences/{conferenceKey}/sessions [post]
func (c *SessionController) CreateSession(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	key, ok := pathParam(w, r, "conferenceKey")
	if !ok {
		return
	}
	var spec domain.SessionSpec
	if !helpers.DecodeAndValidate(w, r, &spec) {
		return
	}
	s, err := c.Directory.CreateSession(r.Context(), key, caller.UserID, spec)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, s)
}

// ListByConference godoc
// @Summary List a conference's sessions
// @Tags sessions
// @Produce json
// @Param conferenceKey path string true "Websafe conference key"
// @Success 200 {object} controllers.SessionListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /conferences/{conferenceKey}/sessions [get]
func (c *SessionController) ListByConference(w http.ResponseWriter, r *http.Request) {
	key, ok := pathParam(w, r, "conferenceKey")
	if !ok {
		return
	}
	sessions, err := c.Directory.ListByConference(r.Context(), key)
	c.writeSessions(w, r, sessions, err)
}

// ListByConferenceAndType godoc
// @Summary List a conference's sessions of one type
// @Tags sessions
// @Produce json
// @Param conferenceKey path string true "Websafe conference key"
// @Param type query string true "WORKSHOP, LECTURE, KEYNOTE or OTHERS"
// @Success 200 {object} controllers.SessionListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /conferences/{conferenceKey}/sessions/by-type [get]
func (c *SessionController) ListByConferenceAndType(w http.ResponseWriter, r *http.Request) {
	key, ok := pathParam(w, r, "conferenceKey")
	if !ok {
		return
	}
	t, err := domain.ParseSessionType(r.URL.Query().Get("type"))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	sessions, err := c.Directory.ListByConferenceAndType(r.Context(), key, t)
	c.writeSessions(w, r, sessions, err)
}

// ListBySpeaker godoc
// @Summary List sessions a speaker presents
// @Tags sessions
// @Produce json
// @Param speakerKey query string true "Websafe profile key"
// @Success 200 {object} controllers.SessionListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /sessions/by-speaker [get]
func (c *SessionController) ListBySpeaker(w http.ResponseWriter, r *http.Request) {
	speaker := r.URL.Query().Get("speakerKey")
	if speaker == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing speakerKey")
		return
	}
	sessions, err := c.Directory.ListBySpeaker(r.Context(), speaker)
	c.writeSessions(w, r, sessions, err)
}

// AddToWishlist godoc
// @Summary Add a session to the caller's wishlist
// @Tags wishlist
// @Produce json
// @Security BearerAuth
// @Param sessionKey path string true "Websafe session key"
// @Success 200 {object} controllers.ResultResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /sessions/{sessionKey}/wishlist [put]
func (c *SessionController) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	key, ok := pathParam(w, r, "sessionKey")
	if !ok {
		return
	}
	if err := c.Directory.AddToWishlist(r.Context(), caller, key); err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ResultResponse{Result: true})
}

// ListWishlist godoc
// @Summary List the caller's wishlist
// @Tags wishlist
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.SessionListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /sessions/wishlist [get]
func (c *SessionController) ListWishlist(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	sessions, err := c.Directory.ListWishlist(r.Context(), caller)
	c.writeSessions(w, r, sessions, err)
}

// ByDateRange godoc
// @Summary Sessions starting within a date range
// @Tags session-queries
// @Produce json
// @Param from path string true "First date, YYYY-MM-DD"
// @Param to path string true "Last date, YYYY-MM-DD"
// @Success 200 {object} controllers.SessionListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /sessions/by-dates/{from}/{to} [get]
func (c *SessionController) ByDateRange(w http.ResponseWriter, r *http.Request) {
	from, err := parseDate(r.PathValue("from"))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	to, err := parseDate(r.PathValue("to"))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	sessions, err := c.Planner.ByDateRange(r.Context(), from, to)
	c.writeSessions(w, r, sessions, err)
}

// ByDateAndMaxDuration godoc
// @Summary Sessions on a date no longer than a duration
// @Tags session-queries
// @Produce json
// @Param date path string true "Date, YYYY-MM-DD"
// @Param duration path int true "Maximum duration in minutes"
// @Success 200 {object} controllers.SessionListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /sessions/by-date-duration/{date}/{duration} [get]
func (c *SessionController) ByDateAndMaxDuration(w http.ResponseWriter, r *http.Request) {
	date, err := parseDate(r.PathValue("date"))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	duration, err := strconv.Atoi(r.PathValue("duration"))
	if err != nil || duration < 0 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "duration must be a non-negative integer")
		return
	}
	sessions, err := c.Planner.ByDateAndMaxDuration(r.Context(), date, duration)
	c.writeSessions(w, r, sessions, err)
}

// ExcludingTypeBeforeTime godoc
// @Summary Sessions not of a type that start before a time
// @Tags session-queries
// @Produce json
// @Param type path string true "Session type to exclude"
// @Param beforeTime path string true "Exclusive upper bound, HH:MM"
// @Success 200 {object} controllers.SessionListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /sessions/not-type-time/{type}/{beforeTime} [get]
func (c *SessionController) ExcludingTypeBeforeTime(w http.ResponseWriter, r *http.Request) {
	t, err := domain.ParseSessionType(r.PathValue("type"))
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	sessions, err := c.Planner.ExcludingTypeBeforeTime(r.Context(), t, r.PathValue("beforeTime"))
	c.writeSessions(w, r, sessions, err)
}

func parseDate(v string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q must use YYYY-MM-DD", domain.ErrInvalidInput, v)
	}
	return d, nil
}
