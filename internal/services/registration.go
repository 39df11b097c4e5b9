package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"conferencecentral/internal/domain"
)

type registrationLedger struct {
	tx  domain.Transactor
	log *slog.Logger
}

// NewRegistrationLedger returns a RegistrationLedger that books seats
// through tx.
func NewRegistrationLedger(tx domain.Transactor, logger *slog.Logger) domain.RegistrationLedger {
	return &registrationLedger{tx: tx, log: logger}
}

// Register books one seat of the conference for the caller. The attend set
// and the seat counter change in the same transaction or not at all.
func (l *registrationLedger) Register(ctx context.Context, conferenceKey string, caller domain.Identity) error {
	return l.run(ctx, conferenceKey, caller, func(conf *domain.Conference, p *domain.Profile) domain.RegistrationResult {
		key := conf.WebsafeKey
		if p.IsAttending(key) {
			return domain.RegistrationAlreadyRegistered
		}
		if conf.SeatsAvailable <= 0 {
			return domain.RegistrationNoSeatsAvailable
		}
		if err := conf.BookSeats(1); err != nil {
			return domain.RegistrationNoSeatsAvailable
		}
		p.Attend(key)
		return domain.RegistrationOK
	})
}

// Unregister releases the caller's seat.
func (l *registrationLedger) Unregister(ctx context.Context, conferenceKey string, caller domain.Identity) error {
	return l.run(ctx, conferenceKey, caller, func(conf *domain.Conference, p *domain.Profile) domain.RegistrationResult {
		if !p.Unattend(conf.WebsafeKey) {
			return domain.RegistrationNotRegistered
		}
		conf.GiveBackSeats(1)
		return domain.RegistrationOK
	})
}

// run loads the conference and the caller's profile inside a transaction and
// lets apply decide the outcome. Both entities are written only when apply
// returns RegistrationOK.
func (l *registrationLedger) run(
	ctx context.Context,
	conferenceKey string,
	caller domain.Identity,
	apply func(*domain.Conference, *domain.Profile) domain.RegistrationResult,
) error {
	if caller.UserID == "" {
		return domain.ErrUnauthenticated
	}
	key, err := domain.DecodeKind(conferenceKey, domain.KindConference)
	if err != nil {
		return err
	}

	var result domain.RegistrationResult
	err = l.tx.RunInTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		result = domain.RegistrationOK
		conf, err := repos.Conferences.Get(ctx, key)
		if errors.Is(err, domain.ErrNotFound) {
			result = domain.RegistrationConferenceNotFound
			return nil
		}
		if err != nil {
			return fmt.Errorf("get conference: %w", err)
		}
		p, err := loadProfile(ctx, repos.Profiles, caller)
		if err != nil {
			return err
		}
		if result = apply(conf, p); result != domain.RegistrationOK {
			return nil
		}
		if err := repos.Conferences.Put(ctx, conf); err != nil {
			return fmt.Errorf("put conference: %w", err)
		}
		if err := repos.Profiles.Put(ctx, p); err != nil {
			return fmt.Errorf("put profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	l.log.InfoContext(ctx, "registration", "conference", key.String(), "user_id", caller.UserID, "result", result.String())
	return result.Err()
}
