package services

import (
	"context"
	"fmt"
	"time"

	"conferencecentral/internal/domain"
)

type sessionQueryPlanner struct {
	sessions domain.SessionRepository
}

// NewSessionQueryPlanner returns a planner running its queries on sessions.
func NewSessionQueryPlanner(sessions domain.SessionRepository) domain.SessionQueryPlanner {
	return &sessionQueryPlanner{sessions: sessions}
}

// ByDateRange returns sessions starting between from and to inclusive,
// earliest first.
func (p *sessionQueryPlanner) ByDateRange(ctx context.Context, from, to time.Time) ([]*domain.Session, error) {
	return p.run(ctx, domain.Query{
		Filters: []domain.QueryFilter{
			domain.Filter(domain.FieldStartDate, domain.OpGE, dateOnly(from)),
			domain.Filter(domain.FieldStartDate, domain.OpLE, dateOnly(to)),
		},
		Order: &domain.Order{Field: domain.FieldStartDate},
	})
}

// ByDateAndMaxDuration returns sessions on date lasting at most maxDuration
// minutes, shortest first.
func (p *sessionQueryPlanner) ByDateAndMaxDuration(ctx context.Context, date time.Time, maxDuration int) ([]*domain.Session, error) {
	return p.run(ctx, domain.Query{
		Filters: []domain.QueryFilter{
			domain.Filter(domain.FieldStartDate, domain.OpEQ, dateOnly(date)),
			domain.Filter(domain.FieldDuration, domain.OpLE, maxDuration),
		},
		Order: &domain.Order{Field: domain.FieldDuration},
	})
}

// ExcludingTypeBeforeTime returns sessions of any type but excluded that
// start before beforeTime. The type exclusion is expressed as membership in
// the remaining types so startTime stays the only inequality field. Results
// are unordered.
func (p *sessionQueryPlanner) ExcludingTypeBeforeTime(ctx context.Context, excluded domain.SessionType, beforeTime string) ([]*domain.Session, error) {
	excluded, err := domain.ParseSessionType(string(excluded))
	if err != nil {
		return nil, err
	}
	t, err := domain.ParseStartTime(beforeTime)
	if err != nil {
		return nil, err
	}
	remaining := make([]any, 0, len(domain.SessionTypes)-1)
	for _, st := range domain.SessionTypes {
		if st != excluded {
			remaining = append(remaining, st)
		}
	}
	return p.run(ctx, domain.Query{
		Filters: []domain.QueryFilter{
			domain.In(domain.FieldSessionType, remaining...),
			domain.Filter(domain.FieldStartTime, domain.OpLT, t),
		},
	})
}

func (p *sessionQueryPlanner) run(ctx context.Context, q domain.Query) ([]*domain.Session, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	sessions, err := p.sessions.Query(ctx, domain.SessionQuery{Query: q})
	if err != nil {
		return nil, fmt.Errorf("query sessions (%s): %w", q, err)
	}
	return sessions, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
