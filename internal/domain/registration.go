package domain

import "context"

// RegistrationResult is the tagged outcome of a ledger transaction. It is
// produced inside the transaction and turned into an error only after commit.
type RegistrationResult int

const (
	RegistrationOK RegistrationResult = iota
	RegistrationAlreadyRegistered
	RegistrationNoSeatsAvailable
	RegistrationNotRegistered
	RegistrationConferenceNotFound
)

// Err maps r to the surfaced error, nil for RegistrationOK.
func (r RegistrationResult) Err() error {
	switch r {
	case RegistrationOK:
		return nil
	case RegistrationAlreadyRegistered:
		return ErrAlreadyRegistered
	case RegistrationNoSeatsAvailable:
		return ErrNoSeatsAvailable
	case RegistrationNotRegistered:
		return ErrNotRegistered
	case RegistrationConferenceNotFound:
		return ErrNotFound
	}
	return ErrConflict
}

func (r RegistrationResult) String() string {
	switch r {
	case RegistrationOK:
		return "ok"
	case RegistrationAlreadyRegistered:
		return "already_registered"
	case RegistrationNoSeatsAvailable:
		return "no_seats_available"
	case RegistrationNotRegistered:
		return "not_registered"
	case RegistrationConferenceNotFound:
		return "conference_not_found"
	}
	return "unknown"
}

// RegistrationLedger books and releases conference seats.
type RegistrationLedger interface {
	Register(ctx context.Context, conferenceKey string, caller Identity) error
	Unregister(ctx context.Context, conferenceKey string, caller Identity) error
}
