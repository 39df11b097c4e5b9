package domain

import (
	"context"
	"slices"
	"strings"
)

// ShirtSize is the t-shirt size a profile asked for.
type ShirtSize string

const (
	ShirtSizeNotSpecified ShirtSize = "NOT_SPECIFIED"
	ShirtSizeXS           ShirtSize = "XS"
	ShirtSizeS            ShirtSize = "S"
	ShirtSizeM            ShirtSize = "M"
	ShirtSizeL            ShirtSize = "L"
	ShirtSizeXL           ShirtSize = "XL"
	ShirtSizeXXL          ShirtSize = "XXL"
	ShirtSizeXXXL         ShirtSize = "XXXL"
)

// Valid reports whether s is one of the known sizes.
func (s ShirtSize) Valid() bool {
	switch s {
	case ShirtSizeNotSpecified, ShirtSizeXS, ShirtSizeS, ShirtSizeM, ShirtSizeL,
		ShirtSizeXL, ShirtSizeXXL, ShirtSizeXXXL:
		return true
	}
	return false
}

// Profile is a user's conference-facing identity. Relationships to
// conferences and sessions are kept as websafe keys, never embedded entities.
// swagger:model Profile
type Profile struct {
	UserID                 string    `json:"user_id"`
	DisplayName            string    `json:"display_name"`
	MainEmail              string    `json:"main_email"`
	ShirtSize              ShirtSize `json:"shirt_size"`
	ConferenceKeysToAttend []string  `json:"conference_keys_to_attend"`
	SessionKeysWishlist    []string  `json:"session_keys_wishlist"`
	SessionKeysToSpeak     []string  `json:"session_keys_to_speak"`
}

// NewProfile returns a profile with empty relationship sets.
func NewProfile(userID, displayName, mainEmail string, size ShirtSize) *Profile {
	if size == "" {
		size = ShirtSizeNotSpecified
	}
	return &Profile{
		UserID:                 userID,
		DisplayName:            displayName,
		MainEmail:              mainEmail,
		ShirtSize:              size,
		ConferenceKeysToAttend: []string{},
		SessionKeysWishlist:    []string{},
		SessionKeysToSpeak:     []string{},
	}
}

// NewProfileForCaller builds the lazily created profile of an authenticated
// caller; the display name defaults to the local part of the e-mail address.
func NewProfileForCaller(caller Identity) *Profile {
	return NewProfile(caller.UserID, DisplayNameFromEmail(caller.Email), caller.Email, ShirtSizeNotSpecified)
}

// DisplayNameFromEmail returns the part of email before the "@".
func DisplayNameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// Key returns the profile's entity key.
func (p *Profile) Key() *Key { return NewProfileKey(p.UserID) }

// IsAttending reports whether the profile is registered for conferenceKey.
func (p *Profile) IsAttending(conferenceKey string) bool {
	return slices.Contains(p.ConferenceKeysToAttend, conferenceKey)
}

// Attend appends conferenceKey to the attend set, keeping it duplicate free.
func (p *Profile) Attend(conferenceKey string) {
	if !p.IsAttending(conferenceKey) {
		p.ConferenceKeysToAttend = append(p.ConferenceKeysToAttend, conferenceKey)
	}
}

// Unattend removes conferenceKey from the attend set and reports whether it was present.
func (p *Profile) Unattend(conferenceKey string) bool {
	i := slices.Index(p.ConferenceKeysToAttend, conferenceKey)
	if i < 0 {
		return false
	}
	p.ConferenceKeysToAttend = slices.Delete(p.ConferenceKeysToAttend, i, i+1)
	return true
}

// AddToWishlist appends sessionKey. Repeated adds produce repeated entries.
func (p *Profile) AddToWishlist(sessionKey string) {
	p.SessionKeysWishlist = append(p.SessionKeysWishlist, sessionKey)
}

// AddSessionToSpeak records that the profile speaks at sessionKey.
func (p *Profile) AddSessionToSpeak(sessionKey string) {
	if !slices.Contains(p.SessionKeysToSpeak, sessionKey) {
		p.SessionKeysToSpeak = append(p.SessionKeysToSpeak, sessionKey)
	}
}

// Update applies non-empty form values.
func (p *Profile) Update(displayName string, size ShirtSize) {
	if displayName != "" {
		p.DisplayName = displayName
	}
	if size != "" {
		p.ShirtSize = size
	}
}

// Identity is the caller identity resolved by the transport layer.
type Identity struct {
	UserID string
	Email  string
}

// ProfileForm carries the user-editable profile fields.
type ProfileForm struct {
	DisplayName string    `json:"display_name"`
	ShirtSize   ShirtSize `json:"shirt_size"`
}

// ProfileRepository defines storage for profiles.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	GetMulti(ctx context.Context, userIDs []string) (map[string]*Profile, error)
	Put(ctx context.Context, p *Profile) error
}

// ProfileService defines profile read/update operations.
type ProfileService interface {
	GetProfile(ctx context.Context, caller Identity) (*Profile, error)
	SaveProfile(ctx context.Context, caller Identity, form ProfileForm) (*Profile, error)
}
