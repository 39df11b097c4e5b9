package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"conferencecentral/internal/domain"

	"github.com/lib/pq"
)

type sessionRepository struct {
	DB DBTX
}

// NewSessionRepository returns a domain.SessionRepository implemented with Postgres.
func NewSessionRepository(db DBTX) domain.SessionRepository {
	return &sessionRepository{
		DB: db,
	}
}

const sessionColumns = `id, conference_id, organizer_user_id, name, speaker_profile_keys,
	start_date, duration, start_time, location, session_type, highlights`

func scanSession(row interface{ Scan(...any) error }) (*domain.Session, error) {
	s := &domain.Session{}
	var conferenceID int64
	var organizerUserID, sessionType string
	err := row.Scan(&s.ID, &conferenceID, &organizerUserID, &s.Name, pq.Array(&s.SpeakerProfileKeys),
		&s.StartDate, &s.Duration, &s.StartTime, &s.Location, &sessionType, pq.Array(&s.Highlights))
	if err != nil {
		return nil, err
	}
	s.ConferenceKey = domain.NewConferenceKey(organizerUserID, conferenceID)
	s.SessionType = domain.SessionType(sessionType)
	if s.SpeakerProfileKeys == nil {
		s.SpeakerProfileKeys = []string{}
	}
	if s.Highlights == nil {
		s.Highlights = []string{}
	}
	s.WebsafeKey = s.Key().Encode()
	return s, nil
}

func (r *sessionRepository) AllocateID(ctx context.Context) (int64, error) {
	var id int64
	if err := r.DB.QueryRowContext(ctx, `SELECT nextval('session_ids')`).Scan(&id); err != nil {
		return 0, fmt.Errorf("allocate session id: %w", err)
	}
	return id, nil
}

func (r *sessionRepository) Get(ctx context.Context, key *domain.Key) (*domain.Session, error) {
	if key == nil || key.Kind != domain.KindSession || key.Parent == nil {
		return nil, domain.ErrNotFound
	}
	row := r.DB.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1 AND conference_id = $2`,
		key.ID, key.Parent.ID)
	s, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if !s.Key().Equal(key) {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

// GetMulti batch-loads sessions and returns the ones found, in key order.
// Repeated keys yield repeated sessions.
func (r *sessionRepository) GetMulti(ctx context.Context, keys []*domain.Key) ([]*domain.Session, error) {
	ids := make([]int64, 0, len(keys))
	for _, k := range keys {
		if k != nil && k.Kind == domain.KindSession {
			ids = append(ids, k.ID)
		}
	}
	if len(ids) == 0 {
		return []*domain.Session{}, nil
	}
	rows, err := r.DB.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	byKey := make(map[string]*domain.Session, len(ids))
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		byKey[s.Key().String()] = s
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]*domain.Session, 0, len(keys))
	for _, k := range keys {
		if s, ok := byKey[k.String()]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *sessionRepository) Put(ctx context.Context, s *domain.Session) error {
	if s.ConferenceKey == nil || s.ConferenceKey.Parent == nil {
		return fmt.Errorf("session %d has no conference key", s.ID)
	}
	query := `
		INSERT INTO sessions (id, conference_id, organizer_user_id, name, speaker_profile_keys,
			start_date, duration, start_time, location, session_type, highlights)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			speaker_profile_keys = EXCLUDED.speaker_profile_keys,
			start_date = EXCLUDED.start_date,
			duration = EXCLUDED.duration,
			start_time = EXCLUDED.start_time,
			location = EXCLUDED.location,
			session_type = EXCLUDED.session_type,
			highlights = EXCLUDED.highlights
	`
	_, err := r.DB.ExecContext(ctx, query, s.ID, s.ConferenceKey.ID, s.ConferenceKey.Parent.Name, s.Name,
		pq.Array(s.SpeakerProfileKeys), s.StartDate, s.Duration, s.StartTime, s.Location,
		string(s.SessionType), pq.Array(s.Highlights))
	return err
}

func (r *sessionRepository) Query(ctx context.Context, q domain.SessionQuery) ([]*domain.Session, error) {
	w := &whereBuilder{}
	if a := q.Ancestor; a != nil {
		switch a.Kind {
		case domain.KindConference:
			if a.Parent == nil {
				return nil, fmt.Errorf("%w: conference key without organizer", domain.ErrInvalidInput)
			}
			w.add("conference_id = " + w.arg(a.ID))
			w.add("organizer_user_id = " + w.arg(a.Parent.Name))
		case domain.KindProfile:
			w.add("organizer_user_id = " + w.arg(a.Name))
		default:
			return nil, fmt.Errorf("%w: sessions have no %s ancestor", domain.ErrInvalidInput, a.Kind)
		}
	}
	clause, err := buildQuery(q.Query, sessionFields, w)
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions`+clause, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*domain.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
