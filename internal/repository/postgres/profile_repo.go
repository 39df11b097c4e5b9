package postgres

import (
	"context"
	"database/sql"
	"errors"

	"conferencecentral/internal/domain"

	"github.com/lib/pq"
)

type profileRepository struct {
	DB DBTX
}

// NewProfileRepository returns a domain.ProfileRepository implemented with Postgres.
func NewProfileRepository(db DBTX) domain.ProfileRepository {
	return &profileRepository{DB: db}
}

const profileColumns = `user_id, display_name, main_email, shirt_size,
	conference_keys_to_attend, session_keys_wishlist, session_keys_to_speak`

func scanProfile(row interface{ Scan(...any) error }) (*domain.Profile, error) {
	p := &domain.Profile{}
	var size string
	err := row.Scan(&p.UserID, &p.DisplayName, &p.MainEmail, &size,
		pq.Array(&p.ConferenceKeysToAttend), pq.Array(&p.SessionKeysWishlist), pq.Array(&p.SessionKeysToSpeak))
	if err != nil {
		return nil, err
	}
	p.ShirtSize = domain.ShirtSize(size)
	if p.ConferenceKeysToAttend == nil {
		p.ConferenceKeysToAttend = []string{}
	}
	if p.SessionKeysWishlist == nil {
		p.SessionKeysWishlist = []string{}
	}
	if p.SessionKeysToSpeak == nil {
		p.SessionKeysToSpeak = []string{}
	}
	return p, nil
}

func (r *profileRepository) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`, userID)
	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) GetMulti(ctx context.Context, userIDs []string) (map[string]*domain.Profile, error) {
	out := make(map[string]*domain.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	rows, err := r.DB.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = ANY($1)`, pq.Array(userIDs))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out[p.UserID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *profileRepository) Put(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (user_id, display_name, main_email, shirt_size,
			conference_keys_to_attend, session_keys_wishlist, session_keys_to_speak)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE
		SET display_name = EXCLUDED.display_name,
			main_email = EXCLUDED.main_email,
			shirt_size = EXCLUDED.shirt_size,
			conference_keys_to_attend = EXCLUDED.conference_keys_to_attend,
			session_keys_wishlist = EXCLUDED.session_keys_wishlist,
			session_keys_to_speak = EXCLUDED.session_keys_to_speak
	`
	_, err := r.DB.ExecContext(ctx, query, p.UserID, p.DisplayName, p.MainEmail, string(p.ShirtSize),
		pq.Array(p.ConferenceKeysToAttend), pq.Array(p.SessionKeysWishlist), pq.Array(p.SessionKeysToSpeak))
	return err
}
