package controllers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/delivery/http/middleware"
	"conferencecentral/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var alice = domain.Identity{UserID: "alice-id", Email: "alice@example.com"}

// newRequest builds a request with optional JSON body, path values and caller.
func newRequest(method, target, body string, pathValues map[string]string, caller *domain.Identity) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	if caller != nil {
		req = req.WithContext(middleware.SetIdentity(req.Context(), *caller))
	}
	return req
}

// decodeEnvelope decodes the API envelope, unmarshalling data into dest when non-nil.
func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, dest any) *helpers.APIError {
	t.Helper()
	var env struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	if dest != nil && env.Error == nil {
		require.NoError(t, json.Unmarshal(env.Data, dest))
	}
	return env.Error
}

type fakeProfileService struct {
	profile  *domain.Profile
	err      error
	lastForm domain.ProfileForm
	lastID   domain.Identity
}

func (f *fakeProfileService) GetProfile(_ context.Context, caller domain.Identity) (*domain.Profile, error) {
	f.lastID = caller
	return f.profile, f.err
}

func (f *fakeProfileService) SaveProfile(_ context.Context, caller domain.Identity, form domain.ProfileForm) (*domain.Profile, error) {
	f.lastID, f.lastForm = caller, form
	return f.profile, f.err
}

type fakeConferenceService struct {
	conference  *domain.Conference
	conferences []*domain.Conference
	err         error
	lastKey     string
	lastForm    domain.ConferenceForm
	lastFilters []domain.QueryFilter
}

func (f *fakeConferenceService) CreateConference(_ context.Context, _ domain.Identity, form domain.ConferenceForm) (*domain.Conference, error) {
	f.lastForm = form
	return f.conference, f.err
}

func (f *fakeConferenceService) UpdateConference(_ context.Context, _ domain.Identity, key string, form domain.ConferenceForm) (*domain.Conference, error) {
	f.lastKey, f.lastForm = key, form
	return f.conference, f.err
}

func (f *fakeConferenceService) GetConference(_ context.Context, key string) (*domain.Conference, error) {
	f.lastKey = key
	return f.conference, f.err
}

func (f *fakeConferenceService) ListAttending(context.Context, domain.Identity) ([]*domain.Conference, error) {
	return f.conferences, f.err
}

func (f *fakeConferenceService) ListCreated(context.Context, domain.Identity) ([]*domain.Conference, error) {
	return f.conferences, f.err
}

func (f *fakeConferenceService) QueryConferences(_ context.Context, filters []domain.QueryFilter) ([]*domain.Conference, error) {
	f.lastFilters = filters
	return f.conferences, f.err
}

type fakeLedger struct {
	err     error
	lastOp  string
	lastKey string
}

func (f *fakeLedger) Register(_ context.Context, key string, _ domain.Identity) error {
	f.lastOp, f.lastKey = "register", key
	return f.err
}

func (f *fakeLedger) Unregister(_ context.Context, key string, _ domain.Identity) error {
	f.lastOp, f.lastKey = "unregister", key
	return f.err
}

type fakeSessionDirectory struct {
	session     *domain.Session
	sessions    []*domain.Session
	err         error
	lastKey     string
	lastUserID  string
	lastSpec    domain.SessionSpec
	lastType    domain.SessionType
	lastCaller  domain.Identity
	wishlistKey string
}

func (f *fakeSessionDirectory) CreateSession(_ context.Context, key, requesterID string, spec domain.SessionSpec) (*domain.Session, error) {
	f.lastKey, f.lastUserID, f.lastSpec = key, requesterID, spec
	return f.session, f.err
}

func (f *fakeSessionDirectory) ListByConference(_ context.Context, key string) ([]*domain.Session, error) {
	f.lastKey = key
	return f.sessions, f.err
}

func (f *fakeSessionDirectory) ListByConferenceAndType(_ context.Context, key string, t domain.SessionType) ([]*domain.Session, error) {
	f.lastKey, f.lastType = key, t
	return f.sessions, f.err
}

func (f *fakeSessionDirectory) ListBySpeaker(_ context.Context, key string) ([]*domain.Session, error) {
	f.lastKey = key
	return f.sessions, f.err
}

func (f *fakeSessionDirectory) AddToWishlist(_ context.Context, caller domain.Identity, key string) error {
	f.lastCaller, f.wishlistKey = caller, key
	return f.err
}

func (f *fakeSessionDirectory) ListWishlist(_ context.Context, caller domain.Identity) ([]*domain.Session, error) {
	f.lastCaller = caller
	return f.sessions, f.err
}

type fakePlanner struct {
	sessions     []*domain.Session
	err          error
	lastFrom     time.Time
	lastTo       time.Time
	lastDuration int
	lastType     domain.SessionType
	lastBefore   string
}

func (f *fakePlanner) ByDateRange(_ context.Context, from, to time.Time) ([]*domain.Session, error) {
	f.lastFrom, f.lastTo = from, to
	return f.sessions, f.err
}

func (f *fakePlanner) ByDateAndMaxDuration(_ context.Context, date time.Time, d int) ([]*domain.Session, error) {
	f.lastFrom, f.lastDuration = date, d
	return f.sessions, f.err
}

func (f *fakePlanner) ExcludingTypeBeforeTime(_ context.Context, t domain.SessionType, before string) ([]*domain.Session, error) {
	f.lastType, f.lastBefore = t, before
	return f.sessions, f.err
}

type fakeAnnouncements struct {
	message string
	err     error
}

func (f *fakeAnnouncements) Refresh(context.Context) error { return f.err }

func (f *fakeAnnouncements) Get(context.Context) (*domain.Announcement, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Announcement{Message: f.message}, nil
}

type fakeFeatured struct {
	message string
	err     error
}

func (f *fakeFeatured) Detect(context.Context, []*domain.Session, string) (bool, error) {
	return false, f.err
}

func (f *fakeFeatured) GetFeatured(context.Context) (*domain.Announcement, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Announcement{Message: f.message}, nil
}
