package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"conferencecentral/internal/domain"
)

type conferenceService struct {
	tx    domain.Transactor
	repos domain.Repositories
	log   *slog.Logger
}

// NewConferenceService returns a ConferenceService over the given store.
func NewConferenceService(tx domain.Transactor, repos domain.Repositories, logger *slog.Logger) domain.ConferenceService {
	return &conferenceService{tx: tx, repos: repos, log: logger}
}

func validateForm(form *domain.ConferenceForm) error {
	if errs := form.Validate(); len(errs) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(errs, "; "))
	}
	return nil
}

// CreateConference saves a new conference organized by the caller and
// enqueues its confirmation e-mail in the same transaction.
func (s *conferenceService) CreateConference(ctx context.Context, caller domain.Identity, form domain.ConferenceForm) (*domain.Conference, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if err := validateForm(&form); err != nil {
		return nil, err
	}
	id, err := s.repos.Conferences.AllocateID(ctx)
	if err != nil {
		return nil, err
	}

	var created *domain.Conference
	err = s.tx.RunInTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		created = nil
		p, err := loadProfile(ctx, repos.Profiles, caller)
		if err != nil {
			return err
		}
		c := domain.NewConference(id, caller.UserID, form)
		if err := repos.Conferences.Put(ctx, c); err != nil {
			return fmt.Errorf("put conference: %w", err)
		}
		if err := repos.Profiles.Put(ctx, p); err != nil {
			return fmt.Errorf("put profile: %w", err)
		}
		err = repos.Tasks.Enqueue(ctx, domain.TaskSendConfirmationEmail, map[string]string{
			"email":          p.MainEmail,
			"conferenceInfo": c.String(),
		})
		if err != nil {
			return err
		}
		created = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "conference created", "conference", created.Key().String(), "organizer", caller.UserID)
	return created, nil
}

func (s *conferenceService) UpdateConference(ctx context.Context, caller domain.Identity, conferenceKey string, form domain.ConferenceForm) (*domain.Conference, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	if err := validateForm(&form); err != nil {
		return nil, err
	}
	key, err := domain.DecodeKind(conferenceKey, domain.KindConference)
	if err != nil {
		return nil, err
	}

	var (
		updated *domain.Conference
		outcome error
	)
	err = s.tx.RunInTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		updated, outcome = nil, nil
		c, err := repos.Conferences.Get(ctx, key)
		if errors.Is(err, domain.ErrNotFound) {
			outcome = fmt.Errorf("%w: no conference found with key %s", domain.ErrNotFound, conferenceKey)
			return nil
		}
		if err != nil {
			return fmt.Errorf("get conference: %w", err)
		}
		if c.OrganizerUserID != caller.UserID {
			outcome = fmt.Errorf("%w: only the owner can update the conference", domain.ErrForbidden)
			return nil
		}
		if outcome = c.UpdateWithForm(form); outcome != nil {
			return nil
		}
		if err := repos.Conferences.Put(ctx, c); err != nil {
			return fmt.Errorf("put conference: %w", err)
		}
		updated = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	if outcome != nil {
		return nil, outcome
	}
	return updated, nil
}

func (s *conferenceService) GetConference(ctx context.Context, conferenceKey string) (*domain.Conference, error) {
	key, err := domain.DecodeKind(conferenceKey, domain.KindConference)
	if err != nil {
		return nil, err
	}
	c, err := s.repos.Conferences.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: no conference found with key %s", domain.ErrNotFound, conferenceKey)
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}
	return c, nil
}

// ListAttending returns the conferences the caller registered for, in
// registration order.
func (s *conferenceService) ListAttending(ctx context.Context, caller domain.Identity) ([]*domain.Conference, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	p, err := s.repos.Profiles.Get(ctx, caller.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return []*domain.Conference{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	keys := make([]*domain.Key, 0, len(p.ConferenceKeysToAttend))
	for _, w := range p.ConferenceKeysToAttend {
		if k, err := domain.DecodeKind(w, domain.KindConference); err == nil {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return []*domain.Conference{}, nil
	}
	return s.repos.Conferences.GetMulti(ctx, keys)
}

func (s *conferenceService) ListCreated(ctx context.Context, caller domain.Identity) ([]*domain.Conference, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.repos.Conferences.ListByOrganizer(ctx, caller.UserID)
}

// numericConferenceFields are compared as integers; JSON decoding hands
// their values over as float64.
var numericConferenceFields = map[string]bool{
	domain.FieldMonth:          true,
	domain.FieldMaxAttendees:   true,
	domain.FieldSeatsAvailable: true,
}

// QueryConferences runs the caller's filters. With an inequality filter the
// results are ordered by that field, otherwise by name.
func (s *conferenceService) QueryConferences(ctx context.Context, filters []domain.QueryFilter) ([]*domain.Conference, error) {
	q := domain.Query{Filters: make([]domain.QueryFilter, 0, len(filters))}
	for _, f := range filters {
		if numericConferenceFields[f.Field] {
			values := make([]any, len(f.Values))
			for i, v := range f.Values {
				n, err := toInt(v)
				if err != nil {
					return nil, fmt.Errorf("%w: field %s: %v", domain.ErrInvalidInput, f.Field, err)
				}
				values[i] = n
			}
			f.Values = values
		}
		q.Filters = append(q.Filters, f)
	}
	order := domain.FieldName
	if f := q.InequalityField(); f != "" {
		order = f
	}
	q.Order = &domain.Order{Field: order}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return s.repos.Conferences.Query(ctx, domain.ConferenceQuery{Query: q})
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != float64(int(n)) {
			return 0, fmt.Errorf("%v is not an integer", n)
		}
		return int(n), nil
	case string:
		var i int
		if _, err := fmt.Sscan(n, &i); err != nil {
			return 0, fmt.Errorf("%q is not an integer", n)
		}
		return i, nil
	}
	return 0, fmt.Errorf("unsupported value %v", v)
}
