package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Conference is an event organized by a single profile. SeatsAvailable is
// never negative.
// swagger:model Conference
type Conference struct {
	ID              int64      `json:"id"`
	WebsafeKey      string     `json:"websafe_key"`
	OrganizerUserID string     `json:"organizer_user_id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Topics          []string   `json:"topics"`
	City            string     `json:"city"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	Month           int        `json:"month"`
	MaxAttendees    int        `json:"max_attendees"`
	SeatsAvailable  int        `json:"seats_available"`
}

// NewConference builds a conference from form with all seats available.
func NewConference(id int64, organizerUserID string, form ConferenceForm) *Conference {
	c := &Conference{ID: id, OrganizerUserID: organizerUserID}
	c.apply(form)
	c.SeatsAvailable = c.MaxAttendees
	c.WebsafeKey = c.Key().Encode()
	return c
}

// Key returns the conference's entity key, a child of the organizer's profile.
func (c *Conference) Key() *Key { return NewConferenceKey(c.OrganizerUserID, c.ID) }

func (c *Conference) apply(form ConferenceForm) {
	c.Name = form.Name
	c.Description = form.Description
	c.Topics = form.Topics
	if c.Topics == nil {
		c.Topics = []string{}
	}
	c.City = form.City
	c.StartDate = form.StartDate
	c.EndDate = form.EndDate
	c.Month = 0
	if c.StartDate != nil {
		c.Month = int(c.StartDate.Month())
	}
	c.MaxAttendees = form.MaxAttendees
}

// UpdateWithForm applies form and shifts SeatsAvailable by the change in
// MaxAttendees, so already booked seats stay booked. Shrinking below the
// number of booked seats is rejected.
func (c *Conference) UpdateWithForm(form ConferenceForm) error {
	booked := c.MaxAttendees - c.SeatsAvailable
	if form.MaxAttendees < booked {
		return fmt.Errorf("%w: %d seats are already allocated, max_attendees cannot be %d",
			ErrInvalidInput, booked, form.MaxAttendees)
	}
	c.apply(form)
	c.SeatsAvailable = c.MaxAttendees - booked
	return nil
}

// BookSeats takes n seats. Callers check availability first.
func (c *Conference) BookSeats(n int) error {
	if c.SeatsAvailable < n {
		return ErrNoSeatsAvailable
	}
	c.SeatsAvailable -= n
	return nil
}

// GiveBackSeats returns n seats. The counter is not capped at MaxAttendees.
func (c *Conference) GiveBackSeats(n int) {
	c.SeatsAvailable += n
}

func (c *Conference) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Id: %d\nName: %s\n", c.ID, c.Name)
	if c.City != "" {
		fmt.Fprintf(&b, "City: %s\n", c.City)
	}
	if len(c.Topics) > 0 {
		fmt.Fprintf(&b, "Topics:\n")
		for _, t := range c.Topics {
			fmt.Fprintf(&b, "\t%s\n", t)
		}
	}
	if c.StartDate != nil {
		fmt.Fprintf(&b, "StartDate: %s\n", c.StartDate.Format(time.DateOnly))
	}
	if c.EndDate != nil {
		fmt.Fprintf(&b, "EndDate: %s\n", c.EndDate.Format(time.DateOnly))
	}
	fmt.Fprintf(&b, "Max Attendees: %d\n", c.MaxAttendees)
	return b.String()
}

// ConferenceForm carries the organizer-editable conference fields.
type ConferenceForm struct {
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	Topics       []string   `json:"topics"`
	City         string     `json:"city"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	MaxAttendees int        `json:"max_attendees"`
}

// Validate implements the transport Validator contract.
func (f *ConferenceForm) Validate() []string {
	var errs []string
	if strings.TrimSpace(f.Name) == "" {
		errs = append(errs, "name is required")
	}
	if f.MaxAttendees < 0 {
		errs = append(errs, "max_attendees must be >= 0")
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		errs = append(errs, "end_date must not be before start_date")
	}
	return errs
}

// ConferenceRepository defines storage for conferences.
type ConferenceRepository interface {
	AllocateID(ctx context.Context) (int64, error)
	Get(ctx context.Context, key *Key) (*Conference, error)
	GetMulti(ctx context.Context, keys []*Key) ([]*Conference, error)
	Put(ctx context.Context, c *Conference) error
	ListByOrganizer(ctx context.Context, organizerUserID string) ([]*Conference, error)
	Query(ctx context.Context, q ConferenceQuery) ([]*Conference, error)
}

// ConferenceService defines the conference lifecycle operations.
type ConferenceService interface {
	CreateConference(ctx context.Context, caller Identity, form ConferenceForm) (*Conference, error)
	UpdateConference(ctx context.Context, caller Identity, conferenceKey string, form ConferenceForm) (*Conference, error)
	GetConference(ctx context.Context, conferenceKey string) (*Conference, error)
	ListAttending(ctx context.Context, caller Identity) ([]*Conference, error)
	ListCreated(ctx context.Context, caller Identity) ([]*Conference, error)
	QueryConferences(ctx context.Context, filters []QueryFilter) ([]*Conference, error)
}
