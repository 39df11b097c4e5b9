package services

import (
	"cmp"
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"conferencecentral/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memData is one consistent snapshot of the fake entity store.
type memData struct {
	profiles    map[string]*domain.Profile
	conferences map[string]*domain.Conference
	sessions    map[string]*domain.Session
	tasks       []*domain.Task
}

func (d *memData) clone() *memData {
	c := &memData{
		profiles:    make(map[string]*domain.Profile, len(d.profiles)),
		conferences: make(map[string]*domain.Conference, len(d.conferences)),
		sessions:    make(map[string]*domain.Session, len(d.sessions)),
		tasks:       slices.Clone(d.tasks),
	}
	for k, p := range d.profiles {
		c.profiles[k] = cloneProfile(p)
	}
	for k, v := range d.conferences {
		cp := *v
		cp.Topics = slices.Clone(v.Topics)
		c.conferences[k] = &cp
	}
	for k, v := range d.sessions {
		cp := *v
		cp.SpeakerProfileKeys = slices.Clone(v.SpeakerProfileKeys)
		cp.Highlights = slices.Clone(v.Highlights)
		c.sessions[k] = &cp
	}
	return c
}

func cloneProfile(p *domain.Profile) *domain.Profile {
	cp := *p
	cp.ConferenceKeysToAttend = slices.Clone(p.ConferenceKeysToAttend)
	cp.SessionKeysWishlist = slices.Clone(p.SessionKeysWishlist)
	cp.SessionKeysToSpeak = slices.Clone(p.SessionKeysToSpeak)
	return &cp
}

// memStore is an in-memory domain.Transactor. Transactions are serialized,
// run against a copy and committed by swapping the copy in. conflicts makes
// the next transactions discard their work and re-run, as the real store
// does on a serialization failure.
type memStore struct {
	mu        sync.Mutex
	data      *memData
	nextID    int64
	conflicts int
	runs      int
	getErr    error
}

func newMemStore() *memStore {
	return &memStore{data: &memData{
		profiles:    map[string]*domain.Profile{},
		conferences: map[string]*domain.Conference{},
		sessions:    map[string]*domain.Session{},
	}}
}

func (s *memStore) RunInTx(ctx context.Context, fn func(context.Context, domain.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		s.runs++
		staged := s.data.clone()
		if err := fn(ctx, s.reposFor(staged, nil)); err != nil {
			return err
		}
		if s.conflicts > 0 {
			s.conflicts--
			continue
		}
		*s.data = *staged
		return nil
	}
}

// Repositories returns repositories outside any transaction.
func (s *memStore) Repositories() domain.Repositories {
	return s.reposFor(s.data, &s.mu)
}

func (s *memStore) reposFor(d *memData, mu *sync.Mutex) domain.Repositories {
	base := memRepo{store: s, d: d, mu: mu}
	return domain.Repositories{
		Profiles:    &memProfiles{base},
		Conferences: &memConferences{base},
		Sessions:    &memSessions{base},
		Tasks:       &memTasks{base},
	}
}

type memRepo struct {
	store *memStore
	d     *memData
	mu    *sync.Mutex
}

func (r memRepo) lock() func() {
	if r.mu == nil {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r memRepo) allocate() int64 {
	defer r.lock()()
	r.store.nextID++
	return r.store.nextID
}

// seed helpers write straight into the committed snapshot.

func (s *memStore) putProfile(p *domain.Profile) { s.data.profiles[p.UserID] = cloneProfile(p) }

func (s *memStore) putConference(c *domain.Conference) {
	cp := *c
	s.data.conferences[c.Key().String()] = &cp
}

func (s *memStore) putSession(ss *domain.Session) {
	cp := *ss
	s.data.sessions[ss.Key().String()] = &cp
}

func (s *memStore) profile(userID string) *domain.Profile { return s.data.profiles[userID] }

func (s *memStore) conference(c *domain.Conference) *domain.Conference {
	return s.data.conferences[c.Key().String()]
}

type memProfiles struct{ memRepo }

func (r *memProfiles) Get(_ context.Context, userID string) (*domain.Profile, error) {
	defer r.lock()()
	if r.store.getErr != nil {
		return nil, r.store.getErr
	}
	p, ok := r.d.profiles[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneProfile(p), nil
}

func (r *memProfiles) GetMulti(_ context.Context, userIDs []string) (map[string]*domain.Profile, error) {
	defer r.lock()()
	out := map[string]*domain.Profile{}
	for _, id := range userIDs {
		if p, ok := r.d.profiles[id]; ok {
			out[id] = cloneProfile(p)
		}
	}
	return out, nil
}

func (r *memProfiles) Put(_ context.Context, p *domain.Profile) error {
	defer r.lock()()
	r.d.profiles[p.UserID] = cloneProfile(p)
	return nil
}

type memConferences struct{ memRepo }

func (r *memConferences) AllocateID(context.Context) (int64, error) { return r.allocate(), nil }

func (r *memConferences) Get(_ context.Context, key *domain.Key) (*domain.Conference, error) {
	defer r.lock()()
	if r.store.getErr != nil {
		return nil, r.store.getErr
	}
	c, ok := r.d.conferences[key.String()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memConferences) GetMulti(_ context.Context, keys []*domain.Key) ([]*domain.Conference, error) {
	defer r.lock()()
	out := []*domain.Conference{}
	for _, k := range keys {
		if c, ok := r.d.conferences[k.String()]; ok {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memConferences) Put(_ context.Context, c *domain.Conference) error {
	defer r.lock()()
	cp := *c
	r.d.conferences[c.Key().String()] = &cp
	return nil
}

func (r *memConferences) ListByOrganizer(ctx context.Context, organizerUserID string) ([]*domain.Conference, error) {
	return r.Query(ctx, domain.ConferenceQuery{Query: domain.Query{
		Ancestor: domain.NewProfileKey(organizerUserID),
		Order:    &domain.Order{Field: domain.FieldName},
	}})
}

func (r *memConferences) Query(_ context.Context, q domain.ConferenceQuery) ([]*domain.Conference, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	defer r.lock()()
	out := []*domain.Conference{}
	for _, c := range r.d.conferences {
		if q.Ancestor != nil && !c.Key().HasAncestor(q.Ancestor) {
			continue
		}
		if matchAll(q.Filters, func(field string) any { return conferenceField(c, field) }) {
			cp := *c
			out = append(out, &cp)
		}
	}
	sortBy(out, q.Order, func(c *domain.Conference, field string) any { return conferenceField(c, field) })
	return out, nil
}

type memSessions struct{ memRepo }

func (r *memSessions) AllocateID(context.Context) (int64, error) { return r.allocate(), nil }

func (r *memSessions) Get(_ context.Context, key *domain.Key) (*domain.Session, error) {
	defer r.lock()()
	s, ok := r.d.sessions[key.String()]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memSessions) GetMulti(_ context.Context, keys []*domain.Key) ([]*domain.Session, error) {
	defer r.lock()()
	out := []*domain.Session{}
	for _, k := range keys {
		if s, ok := r.d.sessions[k.String()]; ok {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memSessions) Put(_ context.Context, s *domain.Session) error {
	defer r.lock()()
	cp := *s
	r.d.sessions[s.Key().String()] = &cp
	return nil
}

func (r *memSessions) Query(_ context.Context, q domain.SessionQuery) ([]*domain.Session, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	defer r.lock()()
	out := []*domain.Session{}
	for _, s := range r.d.sessions {
		if q.Ancestor != nil && !s.Key().HasAncestor(q.Ancestor) {
			continue
		}
		if matchAll(q.Filters, func(field string) any { return sessionField(s, field) }) {
			cp := *s
			out = append(out, &cp)
		}
	}
	// Map iteration is random; keep unordered results deterministic by id.
	slices.SortFunc(out, func(a, b *domain.Session) int { return cmp.Compare(a.ID, b.ID) })
	sortBy(out, q.Order, func(s *domain.Session, field string) any { return sessionField(s, field) })
	return out, nil
}

type memTasks struct{ memRepo }

func (r *memTasks) Enqueue(_ context.Context, name string, params map[string]string) error {
	defer r.lock()()
	r.d.tasks = append(r.d.tasks, &domain.Task{ID: int64(len(r.d.tasks) + 1), Name: name, Params: params})
	return nil
}

func sessionField(s *domain.Session, field string) any {
	switch field {
	case domain.FieldName:
		return s.Name
	case domain.FieldStartDate:
		return s.StartDate
	case domain.FieldDuration:
		return s.Duration
	case domain.FieldStartTime:
		return s.StartTime
	case domain.FieldSessionType:
		return string(s.SessionType)
	}
	return nil
}

func conferenceField(c *domain.Conference, field string) any {
	switch field {
	case domain.FieldName:
		return c.Name
	case domain.FieldCity:
		return c.City
	case domain.FieldTopics:
		return c.Topics
	case domain.FieldMonth:
		return c.Month
	case domain.FieldMaxAttendees:
		return c.MaxAttendees
	case domain.FieldSeatsAvailable:
		return c.SeatsAvailable
	}
	return nil
}

func matchAll(filters []domain.QueryFilter, get func(string) any) bool {
	for _, f := range filters {
		v := get(f.Field)
		if list, ok := v.([]string); ok {
			if !slices.ContainsFunc(list, func(s string) bool { return matchOne(s, f) }) {
				return false
			}
			continue
		}
		if !matchOne(v, f) {
			return false
		}
	}
	return true
}

func matchOne(v any, f domain.QueryFilter) bool {
	if f.Operator == domain.OpIN {
		return slices.ContainsFunc(f.Values, func(want any) bool { return compareAny(v, want) == 0 })
	}
	c := compareAny(v, f.Values[0])
	switch f.Operator {
	case domain.OpEQ:
		return c == 0
	case domain.OpLT:
		return c < 0
	case domain.OpLE:
		return c <= 0
	case domain.OpGT:
		return c > 0
	case domain.OpGE:
		return c >= 0
	}
	return false
}

func compareAny(a, b any) int {
	switch x := a.(type) {
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case int:
		switch y := b.(type) {
		case int:
			return cmp.Compare(x, y)
		case float64:
			return cmp.Compare(float64(x), y)
		}
	case string:
		switch y := b.(type) {
		case string:
			return strings.Compare(x, y)
		case domain.SessionType:
			return strings.Compare(x, string(y))
		}
	}
	return -2
}

func sortBy[T any](items []T, order *domain.Order, get func(T, string) any) {
	if order == nil {
		return
	}
	slices.SortStableFunc(items, func(a, b T) int {
		c := compareAny(get(a, order.Field), get(b, order.Field))
		if order.Descending {
			return -c
		}
		return c
	})
}

// memCache is an in-memory domain.AnnouncementCache.
type memCache struct {
	mu     sync.Mutex
	values map[string]string
	err    error
}

func newMemCache() *memCache { return &memCache{values: map[string]string{}} }

func (c *memCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", false, c.err
	}
	v, ok := c.values[key]
	return v, ok, nil
}

func (c *memCache) Put(_ context.Context, key, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.values[key] = value
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}

var errStoreDown = errors.New("store unavailable")
