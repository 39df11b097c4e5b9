package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"conferencecentral/internal/domain"
)

type profileService struct {
	tx    domain.Transactor
	repos domain.Repositories
	log   *slog.Logger
}

// NewProfileService returns a ProfileService over the given store.
func NewProfileService(tx domain.Transactor, repos domain.Repositories, logger *slog.Logger) domain.ProfileService {
	return &profileService{tx: tx, repos: repos, log: logger}
}

func (s *profileService) GetProfile(ctx context.Context, caller domain.Identity) (*domain.Profile, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	p, err := s.repos.Profiles.Get(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: profile %s", domain.ErrNotFound, caller.UserID)
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (s *profileService) SaveProfile(ctx context.Context, caller domain.Identity, form domain.ProfileForm) (*domain.Profile, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if form.ShirtSize != "" && !form.ShirtSize.Valid() {
		return nil, fmt.Errorf("%w: unknown shirt size %q", domain.ErrInvalidInput, form.ShirtSize)
	}
	var saved *domain.Profile
	err := s.tx.RunInTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		saved = nil
		p, err := loadProfile(ctx, repos.Profiles, caller)
		if err != nil {
			return err
		}
		p.Update(form.DisplayName, form.ShirtSize)
		if err := repos.Profiles.Put(ctx, p); err != nil {
			return fmt.Errorf("put profile: %w", err)
		}
		saved = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "profile saved", "user_id", caller.UserID)
	return saved, nil
}

// loadProfile returns the caller's profile, building a fresh one when the
// caller has never been seen. The new profile is not persisted here.
func loadProfile(ctx context.Context, profiles domain.ProfileRepository, caller domain.Identity) (*domain.Profile, error) {
	p, err := profiles.Get(ctx, caller.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.NewProfileForCaller(caller), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}
