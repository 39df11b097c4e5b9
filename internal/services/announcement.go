package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"conferencecentral/internal/domain"
)

// nearlySoldOut is the seat threshold for the announcement.
const nearlySoldOut = 5

type announcementService struct {
	conferences domain.ConferenceRepository
	cache       domain.AnnouncementCache
	log         *slog.Logger
}

// NewAnnouncementService returns an AnnouncementService.
func NewAnnouncementService(conferences domain.ConferenceRepository, cache domain.AnnouncementCache, logger *slog.Logger) domain.AnnouncementService {
	return &announcementService{conferences: conferences, cache: cache, log: logger}
}

// Refresh rewrites the nearly sold out announcement, or clears it when no
// conference has between 1 and 5 seats left.
func (s *announcementService) Refresh(ctx context.Context) error {
	confs, err := s.conferences.Query(ctx, domain.ConferenceQuery{Query: domain.Query{
		Filters: []domain.QueryFilter{
			domain.Filter(domain.FieldSeatsAvailable, domain.OpLE, nearlySoldOut),
			domain.Filter(domain.FieldSeatsAvailable, domain.OpGT, 0),
		},
	}})
	if err != nil {
		return fmt.Errorf("query nearly sold out conferences: %w", err)
	}
	if len(confs) == 0 {
		return s.cache.Delete(ctx, domain.RecentAnnouncementsKey)
	}
	names := make([]string, len(confs))
	for i, c := range confs {
		names[i] = c.Name
	}
	msg := "Last chance to attend! The following conferences are nearly sold out: " + strings.Join(names, ", ")
	if err := s.cache.Put(ctx, domain.RecentAnnouncementsKey, msg); err != nil {
		return fmt.Errorf("put announcement: %w", err)
	}
	s.log.DebugContext(ctx, "announcement refreshed", "conferences", len(confs))
	return nil
}

func (s *announcementService) Get(ctx context.Context) (*domain.Announcement, error) {
	msg, _, err := s.cache.Get(ctx, domain.RecentAnnouncementsKey)
	if err != nil {
		return nil, fmt.Errorf("get announcement: %w", err)
	}
	return &domain.Announcement{Message: msg}, nil
}
