package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/domain"
)

// ConferenceSuccessResponse is the success envelope for single-conference endpoints.
type ConferenceSuccessResponse struct {
	Data  *domain.Conference `json:"data"`
	Error *helpers.APIError  `json:"error"`
}

// ConferenceListSuccessResponse is the success envelope for conference lists.
type ConferenceListSuccessResponse struct {
	Data  []*domain.Conference `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// QueryFilterRequest is one predicate of a conference query. Comparisons
// read Value; IN reads Values.
type QueryFilterRequest struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value,omitempty"`
	Values   []any  `json:"values,omitempty"`
}

// ConferenceQueryRequest is the request body for POST /conferences/query.
type ConferenceQueryRequest struct {
	Filters []QueryFilterRequest `json:"filters"`
}

// Validate implements Validator.
func (q ConferenceQueryRequest) Validate() []string {
	var errs []string
	for i, f := range q.Filters {
		if f.Field == "" {
			errs = append(errs, fmt.Sprintf("filters[%d].field is required", i))
		}
		if f.Operator == "" {
			errs = append(errs, fmt.Sprintf("filters[%d].operator is required", i))
		}
	}
	return errs
}

// conferenceFieldAliases accepts the upper-case field names older clients send.
var conferenceFieldAliases = map[string]string{
	"CITY":          domain.FieldCity,
	"TOPIC":         domain.FieldTopics,
	"MONTH":         domain.FieldMonth,
	"MAX_ATTENDEES": domain.FieldMaxAttendees,
}

func (q ConferenceQueryRequest) toFilters() ([]domain.QueryFilter, error) {
	filters := make([]domain.QueryFilter, 0, len(q.Filters))
	for _, f := range q.Filters {
		op, err := domain.ParseOperator(f.Operator)
		if err != nil {
			return nil, err
		}
		field := f.Field
		if alias, ok := conferenceFieldAliases[strings.ToUpper(field)]; ok {
			field = alias
		}
		switch {
		case op == domain.OpIN:
			filters = append(filters, domain.In(field, f.Values...))
		case f.Value != nil:
			filters = append(filters, domain.Filter(field, op, f.Value))
		case len(f.Values) == 1:
			filters = append(filters, domain.Filter(field, op, f.Values[0]))
		default:
			return nil, fmt.Errorf("%w: filter on %s needs exactly one value", domain.ErrInvalidInput, field)
		}
	}
	return filters, nil
}

type ConferenceController struct {
	Logger  *slog.Logger
	Service domain.ConferenceService
	Ledger  domain.RegistrationLedger
}

func NewConferenceController(logger *slog.Logger, svc domain.ConferenceService, ledger domain.RegistrationLedger) *ConferenceController {
	return &ConferenceController{Logger: logger, Service: svc, Ledger: ledger}
}

// CreateConference godoc
// @Summary Create a conference
// @Description The caller becomes the organizer. A confirmation email is queued in the same transaction.
// @Tags conferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param conference body domain.ConferenceForm true "Conference data"
// @Success 201 {object} controllers.ConferenceSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /conferences [post]
func (c *ConferenceController) CreateConference(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	var form domain.ConferenceForm
	if !helpers.DecodeAndValidate(w, r, &form) {
		return
	}
	conf, err := c.Service.CreateConference(r.Context(), caller, form)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, conf)
}

// UpdateConference godoc
// @Summary Update a conference
// @Description Only the organizer may update. Seats are adjusted by the change in max_attendees.
// @Tags conferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param conferenceKey path string true "Websafe conference key"
// @Param conference body domain.ConferenceForm true "Conference data"
// @Success 200 {object} controllers.ConferenceSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /conferences/{conferenceKey} [put]
func (c *ConferenceController) UpdateConference(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	key, ok := pathParam(w, r, "conferenceKey")
	if !ok {
		return
	}
	var form domain.ConferenceForm
	if !helpers.DecodeAndValidate(w, r, &form) {
		return
	}
	conf, err := c.Service.UpdateConference(r.Context(), caller, key, form)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, conf)
}

// GetConference godoc
// @Summary Get a conference
// @Tags conferences
// @Produce json
// @Param conferenceKey path string true "Websafe conference key"
// @Success 200 {object} controllers.ConferenceSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /conferences/{conferenceKey} [get]
func (c *ConferenceController) GetConference(w http.ResponseWriter, r *http.Request) {
	key, ok := pathParam(w, r, "conferenceKey")
	if !ok {
		return
	}
	conf, err := c.Service.GetConference(r.Context(), key)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, conf)
}

// QueryConferences godoc
// @Summary Query conferences
// @Description Filters combine with AND. At most one field may carry inequality filters; results are ordered by it, else by name.
// @Tags conferences
// @Accept json
// @Produce json
// @Param query body ConferenceQueryRequest true "Filters"
// @Success 200 {object} controllers.ConferenceListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /conferences/query [post]
func (c *ConferenceController) QueryConferences(w http.ResponseWriter, r *http.Request) {
	var req ConferenceQueryRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	filters, err := req.toFilters()
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	confs, err := c.Service.QueryConferences(r.Context(), filters)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nonNil(confs))
}

// ListAttending godoc
// @Summary List conferences the caller is registered for
// @Tags conferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ConferenceListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /conferences/attending [get]
func (c *ConferenceController) ListAttending(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	confs, err := c.Service.ListAttending(r.Context(), caller)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nonNil(confs))
}

// ListCreated godoc
// @Summary List conferences organized by the caller
// @Tags conferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ConferenceListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /conferences/created [get]
func (c *ConferenceController) ListCreated(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	confs, err := c.Service.ListCreated(r.Context(), caller)
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, nonNil(confs))
}

// Register godoc
// @Summary Register the caller for a conference
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Param conferenceKey path string true "Websafe conference key"
// @Success 200 {object} controllers.ResultResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already registered or sold out)"
// @Router /conferences/{conferenceKey}/registration [post]
func (c *ConferenceController) Register(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	key, ok := pathParam(w, r, "conferenceKey")
	if !ok {
		return
	}
	if err := c.Ledger.Register(r.Context(), key, caller); err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ResultResponse{Result: true})
}

// Unregister godoc
// @Summary Cancel the caller's registration
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Param conferenceKey path string true "Websafe conference key"
// @Success 200 {object} controllers.ResultResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (not registered)"
// @Router /conferences/{conferenceKey}/registration [delete]
func (c *ConferenceController) Unregister(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	key, ok := pathParam(w, r, "conferenceKey")
	if !ok {
		return
	}
	if err := c.Ledger.Unregister(r.Context(), key, caller); err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ResultResponse{Result: true})
}
