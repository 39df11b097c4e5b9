package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"conferencecentral/internal/domain"

	"github.com/lib/pq"
)

type conferenceRepository struct {
	DB DBTX
}

// NewConferenceRepository returns a domain.ConferenceRepository implemented with Postgres.
func NewConferenceRepository(db DBTX) domain.ConferenceRepository {
	return &conferenceRepository{DB: db}
}

const conferenceColumns = `id, organizer_user_id, name, description, topics, city,
	start_date, end_date, month, max_attendees, seats_available`

func scanConference(row interface{ Scan(...any) error }) (*domain.Conference, error) {
	c := &domain.Conference{}
	var start, end sql.NullTime
	err := row.Scan(&c.ID, &c.OrganizerUserID, &c.Name, &c.Description, pq.Array(&c.Topics), &c.City,
		&start, &end, &c.Month, &c.MaxAttendees, &c.SeatsAvailable)
	if err != nil {
		return nil, err
	}
	if start.Valid {
		c.StartDate = &start.Time
	}
	if end.Valid {
		c.EndDate = &end.Time
	}
	if c.Topics == nil {
		c.Topics = []string{}
	}
	c.WebsafeKey = c.Key().Encode()
	return c, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func (r *conferenceRepository) AllocateID(ctx context.Context) (int64, error) {
	var id int64
	if err := r.DB.QueryRowContext(ctx, `SELECT nextval('conference_ids')`).Scan(&id); err != nil {
		return 0, fmt.Errorf("allocate conference id: %w", err)
	}
	return id, nil
}

func (r *conferenceRepository) Get(ctx context.Context, key *domain.Key) (*domain.Conference, error) {
	if key == nil || key.Kind != domain.KindConference || key.Parent == nil {
		return nil, domain.ErrNotFound
	}
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+conferenceColumns+` FROM conferences WHERE id = $1 AND organizer_user_id = $2`,
		key.ID, key.Parent.Name)
	c, err := scanConference(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// GetMulti returns the conferences that exist for keys, in key order.
func (r *conferenceRepository) GetMulti(ctx context.Context, keys []*domain.Key) ([]*domain.Conference, error) {
	ids := make([]int64, 0, len(keys))
	for _, k := range keys {
		if k != nil && k.Kind == domain.KindConference {
			ids = append(ids, k.ID)
		}
	}
	if len(ids) == 0 {
		return []*domain.Conference{}, nil
	}
	rows, err := r.DB.QueryContext(ctx, `SELECT `+conferenceColumns+` FROM conferences WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	byKey := make(map[string]*domain.Conference, len(ids))
	for rows.Next() {
		c, err := scanConference(rows)
		if err != nil {
			return nil, err
		}
		byKey[c.Key().String()] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	out := make([]*domain.Conference, 0, len(byKey))
	for _, k := range keys {
		if c, ok := byKey[k.String()]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *conferenceRepository) Put(ctx context.Context, c *domain.Conference) error {
	query := `
		INSERT INTO conferences (id, organizer_user_id, name, description, topics, city,
			start_date, end_date, month, max_attendees, seats_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			description = EXCLUDED.description,
			topics = EXCLUDED.topics,
			city = EXCLUDED.city,
			start_date = EXCLUDED.start_date,
			end_date = EXCLUDED.end_date,
			month = EXCLUDED.month,
			max_attendees = EXCLUDED.max_attendees,
			seats_available = EXCLUDED.seats_available
	`
	_, err := r.DB.ExecContext(ctx, query, c.ID, c.OrganizerUserID, c.Name, c.Description, pq.Array(c.Topics), c.City,
		nullTime(c.StartDate), nullTime(c.EndDate), c.Month, c.MaxAttendees, c.SeatsAvailable)
	return err
}

func (r *conferenceRepository) ListByOrganizer(ctx context.Context, organizerUserID string) ([]*domain.Conference, error) {
	return r.Query(ctx, domain.ConferenceQuery{Query: domain.Query{
		Ancestor: domain.NewProfileKey(organizerUserID),
		Order:    &domain.Order{Field: domain.FieldName},
	}})
}

func (r *conferenceRepository) Query(ctx context.Context, q domain.ConferenceQuery) ([]*domain.Conference, error) {
	w := &whereBuilder{}
	if q.Ancestor != nil {
		if q.Ancestor.Kind != domain.KindProfile {
			return nil, fmt.Errorf("%w: conferences have no %s ancestor", domain.ErrInvalidInput, q.Ancestor.Kind)
		}
		w.add("organizer_user_id = " + w.arg(q.Ancestor.Name))
	}
	clause, err := buildQuery(q.Query, conferenceFields, w)
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx, `SELECT `+conferenceColumns+` FROM conferences`+clause, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*domain.Conference{}
	for rows.Next() {
		c, err := scanConference(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
