package services

import (
	"context"
	"testing"
	"time"

	"conferencecentral/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConferenceService(store *memStore) domain.ConferenceService {
	return NewConferenceService(store, store.Repositories(), discardLogger())
}

func TestConferenceService_CreateConference(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	start := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	c, err := newConferenceService(store).CreateConference(ctx, organizer, domain.ConferenceForm{
		Name:         "GopherCon",
		City:         "Berlin",
		Topics:       []string{"Go"},
		StartDate:    &start,
		MaxAttendees: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, 100, c.SeatsAvailable)
	assert.Equal(t, 9, c.Month)
	assert.Equal(t, organizer.UserID, c.OrganizerUserID)
	assert.NotNil(t, store.conference(c))
	assert.NotNil(t, store.profile(organizer.UserID), "organizer profile is created lazily")

	require.Len(t, store.data.tasks, 1)
	task := store.data.tasks[0]
	assert.Equal(t, domain.TaskSendConfirmationEmail, task.Name)
	assert.Equal(t, organizer.Email, task.Params["email"])
	assert.Contains(t, task.Params["conferenceInfo"], "Name: GopherCon")
	assert.Contains(t, task.Params["conferenceInfo"], "City: Berlin")
}

func TestConferenceService_CreateConferenceRejectsInvalidForm(t *testing.T) {
	store := newMemStore()
	_, err := newConferenceService(store).CreateConference(context.Background(), organizer, domain.ConferenceForm{MaxAttendees: -1})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, store.data.tasks)

	_, err = newConferenceService(store).CreateConference(context.Background(), domain.Identity{}, domain.ConferenceForm{Name: "x"})
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestConferenceService_UpdateConference(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		caller    domain.Identity
		form      domain.ConferenceForm
		wantErr   error
		wantSeats int
	}{
		{
			name:      "grow keeps booked seats",
			caller:    organizer,
			form:      domain.ConferenceForm{Name: "Renamed", MaxAttendees: 20},
			wantSeats: 17,
		},
		{
			name:      "shrink to booked seats",
			caller:    organizer,
			form:      domain.ConferenceForm{Name: "Renamed", MaxAttendees: 3},
			wantSeats: 0,
		},
		{
			name:    "shrink below booked seats",
			caller:  organizer,
			form:    domain.ConferenceForm{Name: "Renamed", MaxAttendees: 2},
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "not the organizer",
			caller:  alice,
			form:    domain.ConferenceForm{Name: "Renamed", MaxAttendees: 20},
			wantErr: domain.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			conf := seedConference(t, store, 1, "GopherCon", 10)
			conf.SeatsAvailable = 7
			store.putConference(conf)

			got, err := newConferenceService(store).UpdateConference(ctx, tt.caller, conf.WebsafeKey, tt.form)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, "GopherCon", store.conference(conf).Name)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSeats, got.SeatsAvailable)
			assert.Equal(t, "Renamed", store.conference(conf).Name)
		})
	}
}

func TestConferenceService_Lists(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newConferenceService(store)
	b := seedConference(t, store, 1, "Beta", 10)
	a := seedConference(t, store, 2, "Alpha", 10)
	foreign := domain.NewConference(3, "someone-else", domain.ConferenceForm{Name: "Foreign", MaxAttendees: 1})
	store.putConference(foreign)

	created, err := svc.ListCreated(ctx, organizer)
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta"}, conferenceNames(created))

	ledger := NewRegistrationLedger(store, discardLogger())
	require.NoError(t, ledger.Register(ctx, b.WebsafeKey, alice))
	require.NoError(t, ledger.Register(ctx, foreign.WebsafeKey, alice))
	require.NoError(t, ledger.Register(ctx, a.WebsafeKey, alice))

	attending, err := svc.ListAttending(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beta", "Foreign", "Alpha"}, conferenceNames(attending))

	none, err := svc.ListAttending(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, none)

	got, err := svc.GetConference(ctx, a.WebsafeKey)
	require.NoError(t, err)
	assert.Equal(t, "Alpha", got.Name)
	_, err = svc.GetConference(ctx, domain.NewConferenceKey("org", 42).Encode())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConferenceService_QueryConferences(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	svc := newConferenceService(store)
	for i, f := range []domain.ConferenceForm{
		{Name: "Small Berlin", City: "Berlin", Topics: []string{"Go"}, MaxAttendees: 50},
		{Name: "Big Berlin", City: "Berlin", Topics: []string{"Rust"}, MaxAttendees: 500},
		{Name: "Paris", City: "Paris", Topics: []string{"Go"}, MaxAttendees: 200},
	} {
		store.putConference(domain.NewConference(int64(i+1), "org", f))
	}

	got, err := svc.QueryConferences(ctx, []domain.QueryFilter{
		domain.Filter(domain.FieldCity, domain.OpEQ, "Berlin"),
		domain.Filter(domain.FieldMaxAttendees, domain.OpGT, float64(10)),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Small Berlin", "Big Berlin"}, conferenceNames(got))

	got, err = svc.QueryConferences(ctx, []domain.QueryFilter{domain.Filter(domain.FieldTopics, domain.OpEQ, "Go")})
	require.NoError(t, err)
	assert.Equal(t, []string{"Paris", "Small Berlin"}, conferenceNames(got))

	_, err = svc.QueryConferences(ctx, []domain.QueryFilter{
		domain.Filter(domain.FieldMonth, domain.OpGT, float64(1)),
		domain.Filter(domain.FieldMaxAttendees, domain.OpLT, float64(100)),
	})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.QueryConferences(ctx, []domain.QueryFilter{domain.Filter(domain.FieldMonth, domain.OpEQ, 1.5)})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
}

func conferenceNames(cs []*domain.Conference) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name
	}
	return out
}
