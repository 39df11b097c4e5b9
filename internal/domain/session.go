package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// SessionType classifies a session.
type SessionType string

const (
	SessionTypeWorkshop SessionType = "WORKSHOP"
	SessionTypeLecture  SessionType = "LECTURE"
	SessionTypeKeynote  SessionType = "KEYNOTE"
	SessionTypeOthers   SessionType = "OTHERS"
)

// SessionTypes lists every session type in declaration order.
var SessionTypes = []SessionType{
	SessionTypeWorkshop,
	SessionTypeLecture,
	SessionTypeKeynote,
	SessionTypeOthers,
}

// ParseSessionType parses s case-insensitively.
func ParseSessionType(s string) (SessionType, error) {
	t := SessionType(strings.ToUpper(strings.TrimSpace(s)))
	if !slices.Contains(SessionTypes, t) {
		return "", fmt.Errorf("%w: unknown session type %q", ErrInvalidInput, s)
	}
	return t, nil
}

// Session is a talk scheduled inside a conference.
// swagger:model Session
type Session struct {
	ID                 int64       `json:"id"`
	ConferenceKey      *Key        `json:"-"`
	WebsafeKey         string      `json:"websafe_key"`
	Name               string      `json:"name"`
	SpeakerProfileKeys []string    `json:"speaker_profile_keys"`
	StartDate          time.Time   `json:"start_date"`
	Duration           int         `json:"duration"`
	StartTime          int         `json:"-"`
	Location           string      `json:"location"`
	SessionType        SessionType `json:"session_type"`
	Highlights         []string    `json:"highlights"`
}

// NewSession builds a session with the given id under conference from spec.
// spec.StartTime must already have passed ParseStartTime.
func NewSession(conference *Key, id int64, spec SessionSpec, startTime int) *Session {
	s := &Session{
		ID:                 id,
		ConferenceKey:      conference,
		Name:               spec.Name,
		SpeakerProfileKeys: slices.Clone(spec.SpeakerProfileKeys),
		StartDate:          spec.StartDate,
		Duration:           spec.Duration,
		StartTime:          startTime,
		Location:           spec.Location,
		SessionType:        spec.SessionType,
		Highlights:         slices.Clone(spec.Highlights),
	}
	if s.SpeakerProfileKeys == nil {
		s.SpeakerProfileKeys = []string{}
	}
	if s.Highlights == nil {
		s.Highlights = []string{}
	}
	s.WebsafeKey = s.Key().Encode()
	return s
}

// Key returns the session's entity key, a child of its conference.
func (s *Session) Key() *Key { return NewSessionKey(s.ConferenceKey, s.ID) }

// HasSpeaker reports whether speakerKey is one of the session's speakers.
func (s *Session) HasSpeaker(speakerKey string) bool {
	return slices.Contains(s.SpeakerProfileKeys, speakerKey)
}

// MarshalJSON renders StartTime in its H:M form.
func (s *Session) MarshalJSON() ([]byte, error) {
	type alias Session
	return json.Marshal(struct {
		*alias
		StartTime string `json:"start_time"`
	}{alias: (*alias)(s), StartTime: s.StartTimeString()})
}

// StartTimeString renders StartTime as H:M.
func (s *Session) StartTimeString() string { return FormatStartTime(s.StartTime) }

// ParseStartTime parses "HH:MM" into HH*100+MM. Hours must be in 0-23 and
// minutes in 0-59.
func ParseStartTime(value string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}
	hours, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(m))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, value)
	}
	return hours*100 + minutes, nil
}

// FormatStartTime renders an HH*100+MM integer as H:M.
func FormatStartTime(t int) string {
	return strconv.Itoa(t/100) + ":" + strconv.Itoa(t%100)
}

// SessionSpec is the organizer's request to create a session.
type SessionSpec struct {
	Name               string      `json:"session_name"`
	Highlights         []string    `json:"highlights"`
	SpeakerProfileKeys []string    `json:"speaker_profile_keys"`
	Duration           int         `json:"duration"`
	SessionType        SessionType `json:"session_type"`
	StartDate          time.Time   `json:"start_date"`
	Location           string      `json:"location"`
	StartTime          string      `json:"start_time"`
}

// SessionRepository defines storage for sessions.
type SessionRepository interface {
	AllocateID(ctx context.Context) (int64, error)
	Get(ctx context.Context, key *Key) (*Session, error)
	GetMulti(ctx context.Context, keys []*Key) ([]*Session, error)
	Put(ctx context.Context, s *Session) error
	Query(ctx context.Context, q SessionQuery) ([]*Session, error)
}

// SessionDirectory manages sessions, the speaker backlink index and wishlists.
type SessionDirectory interface {
	CreateSession(ctx context.Context, conferenceKey, requesterID string, spec SessionSpec) (*Session, error)
	ListByConference(ctx context.Context, conferenceKey string) ([]*Session, error)
	ListByConferenceAndType(ctx context.Context, conferenceKey string, t SessionType) ([]*Session, error)
	ListBySpeaker(ctx context.Context, speakerKey string) ([]*Session, error)
	AddToWishlist(ctx context.Context, caller Identity, sessionKey string) error
	ListWishlist(ctx context.Context, caller Identity) ([]*Session, error)
}

// SessionQueryPlanner runs the supported composite session queries.
type SessionQueryPlanner interface {
	ByDateRange(ctx context.Context, from, to time.Time) ([]*Session, error)
	ByDateAndMaxDuration(ctx context.Context, date time.Time, maxDuration int) ([]*Session, error)
	ExcludingTypeBeforeTime(ctx context.Context, excluded SessionType, beforeTime string) ([]*Session, error)
}
