package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"conferencecentral/internal/domain"

	"golang.org/x/sync/errgroup"
)

// maxDetectors bounds the post-commit featured speaker fan-out.
const maxDetectors = 4

type sessionDirectory struct {
	tx       domain.Transactor
	repos    domain.Repositories
	featured domain.FeaturedSpeakerDetector
	log      *slog.Logger
}

// NewSessionDirectory returns a SessionDirectory. repos serves reads outside
// transactions.
func NewSessionDirectory(
	tx domain.Transactor,
	repos domain.Repositories,
	featured domain.FeaturedSpeakerDetector,
	logger *slog.Logger,
) domain.SessionDirectory {
	return &sessionDirectory{tx: tx, repos: repos, featured: featured, log: logger}
}

func (d *sessionDirectory) CreateSession(ctx context.Context, conferenceKey, requesterID string, spec domain.SessionSpec) (*domain.Session, error) {
	if requesterID == "" {
		return nil, domain.ErrUnauthenticated
	}
	confKey, err := domain.DecodeKind(conferenceKey, domain.KindConference)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(spec.Name) == "" {
		return nil, fmt.Errorf("%w: session_name is required", domain.ErrInvalidInput)
	}
	startTime, err := domain.ParseStartTime(spec.StartTime)
	if err != nil {
		return nil, err
	}
	if spec.SessionType == "" {
		spec.SessionType = domain.SessionTypeOthers
	} else if spec.SessionType, err = domain.ParseSessionType(string(spec.SessionType)); err != nil {
		return nil, err
	}

	id, err := d.repos.Sessions.AllocateID(ctx)
	if err != nil {
		return nil, err
	}
	spec.SpeakerProfileKeys = canonicalSpeakerKeys(spec.SpeakerProfileKeys)
	speakerIDs := speakerUserIDs(spec.SpeakerProfileKeys)

	var (
		created *domain.Session
		outcome error
	)
	err = d.tx.RunInTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		created, outcome = nil, nil
		conf, err := repos.Conferences.Get(ctx, confKey)
		if errors.Is(err, domain.ErrNotFound) {
			outcome = fmt.Errorf("%w: no conference found with key %s", domain.ErrNotFound, conferenceKey)
			return nil
		}
		if err != nil {
			return fmt.Errorf("get conference: %w", err)
		}
		if conf.OrganizerUserID != requesterID {
			outcome = fmt.Errorf("%w: only the conference organizer can add sessions", domain.ErrForbidden)
			return nil
		}

		found, err := repos.Profiles.GetMulti(ctx, speakerIDs)
		if err != nil {
			return fmt.Errorf("get speakers: %w", err)
		}
		speakers := make([]*domain.Profile, 0, len(found))
		for _, uid := range speakerIDs {
			if p, ok := found[uid]; ok {
				speakers = append(speakers, p)
			}
		}
		if len(speakers) == 0 {
			outcome = domain.ErrInvalidSpeakers
			return nil
		}

		s := domain.NewSession(conf.Key(), id, spec, startTime)
		if err := repos.Sessions.Put(ctx, s); err != nil {
			return fmt.Errorf("put session: %w", err)
		}
		for _, p := range speakers {
			p.AddSessionToSpeak(s.WebsafeKey)
			if err := repos.Profiles.Put(ctx, p); err != nil {
				return fmt.Errorf("put speaker profile: %w", err)
			}
		}
		created = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	if outcome != nil {
		return nil, outcome
	}
	d.log.InfoContext(ctx, "session created", "session", created.Key().String(), "speakers", len(speakerIDs))

	d.detectFeatured(ctx, created.ConferenceKey, spec.SpeakerProfileKeys)
	return created, nil
}

// canonicalSpeakerKeys re-encodes every key that decodes to a profile so
// stored speaker keys compare equal to the profile's own key. Keys that do
// not decode are kept as submitted.
func canonicalSpeakerKeys(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k
		if pk, err := domain.DecodeProfileKey(k); err == nil {
			out[i] = pk.Encode()
		}
	}
	return out
}

// speakerUserIDs decodes profile keys into user ids, dropping duplicates and
// keys that do not decode to a profile.
func speakerUserIDs(keys []string) []string {
	ids := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		pk, err := domain.DecodeProfileKey(k)
		if err != nil || seen[pk.Name] {
			continue
		}
		seen[pk.Name] = true
		ids = append(ids, pk.Name)
	}
	return ids
}

// detectFeatured runs the featured speaker detection for every requested
// speaker against the conference's current sessions. Failures are logged.
func (d *sessionDirectory) detectFeatured(ctx context.Context, conf *domain.Key, speakerKeys []string) {
	if len(speakerKeys) == 0 {
		return
	}
	sessions, err := d.repos.Sessions.Query(ctx, domain.SessionQuery{Query: domain.Query{Ancestor: conf}})
	if err != nil {
		d.log.WarnContext(ctx, "featured speaker detection skipped", "conference", conf.String(), "err", err)
		return
	}
	var g errgroup.Group
	g.SetLimit(maxDetectors)
	for _, k := range speakerKeys {
		g.Go(func() error {
			_, err := d.featured.Detect(ctx, sessions, k)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		d.log.WarnContext(ctx, "featured speaker detection failed", "conference", conf.String(), "err", err)
	}
}

func (d *sessionDirectory) ListByConference(ctx context.Context, conferenceKey string) ([]*domain.Session, error) {
	key, err := domain.DecodeKind(conferenceKey, domain.KindConference)
	if err != nil {
		return nil, err
	}
	return d.repos.Sessions.Query(ctx, domain.SessionQuery{Query: domain.Query{
		Ancestor: key,
		Order:    &domain.Order{Field: domain.FieldName},
	}})
}

func (d *sessionDirectory) ListByConferenceAndType(ctx context.Context, conferenceKey string, t domain.SessionType) ([]*domain.Session, error) {
	key, err := domain.DecodeKind(conferenceKey, domain.KindConference)
	if err != nil {
		return nil, err
	}
	t, err = domain.ParseSessionType(string(t))
	if err != nil {
		return nil, err
	}
	return d.repos.Sessions.Query(ctx, domain.SessionQuery{Query: domain.Query{
		Ancestor: key,
		Filters:  []domain.QueryFilter{domain.Filter(domain.FieldSessionType, domain.OpEQ, t)},
	}})
}

func (d *sessionDirectory) ListBySpeaker(ctx context.Context, speakerKey string) ([]*domain.Session, error) {
	key, err := domain.DecodeProfileKey(speakerKey)
	if err != nil {
		return nil, err
	}
	p, err := d.repos.Profiles.Get(ctx, key.Name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: no speaker found with key %s", domain.ErrNotFound, speakerKey)
		}
		return nil, fmt.Errorf("get speaker: %w", err)
	}
	return d.resolveSessions(ctx, p.SessionKeysToSpeak)
}

func (d *sessionDirectory) AddToWishlist(ctx context.Context, caller domain.Identity, sessionKey string) error {
	if caller.UserID == "" {
		return domain.ErrUnauthenticated
	}
	key, err := domain.DecodeKind(sessionKey, domain.KindSession)
	if err != nil {
		return err
	}
	var outcome error
	err = d.tx.RunInTx(ctx, func(ctx context.Context, repos domain.Repositories) error {
		outcome = nil
		s, err := repos.Sessions.Get(ctx, key)
		if errors.Is(err, domain.ErrNotFound) {
			outcome = fmt.Errorf("%w: no session found with key %s", domain.ErrNotFound, sessionKey)
			return nil
		}
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		p, err := loadProfile(ctx, repos.Profiles, caller)
		if err != nil {
			return err
		}
		p.AddToWishlist(s.WebsafeKey)
		if err := repos.Profiles.Put(ctx, p); err != nil {
			return fmt.Errorf("put profile: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return outcome
}

func (d *sessionDirectory) ListWishlist(ctx context.Context, caller domain.Identity) ([]*domain.Session, error) {
	if caller.UserID == "" {
		return nil, domain.ErrUnauthenticated
	}
	p, err := d.repos.Profiles.Get(ctx, caller.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return []*domain.Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return d.resolveSessions(ctx, p.SessionKeysWishlist)
}

// resolveSessions batch-loads sessions by websafe key. Keys that no longer
// decode or resolve are skipped.
func (d *sessionDirectory) resolveSessions(ctx context.Context, websafe []string) ([]*domain.Session, error) {
	keys := make([]*domain.Key, 0, len(websafe))
	for _, w := range websafe {
		if k, err := domain.DecodeKind(w, domain.KindSession); err == nil {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return []*domain.Session{}, nil
	}
	sessions, err := d.repos.Sessions.GetMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("get sessions: %w", err)
	}
	return sessions, nil
}
