package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"conferencecentral/internal/domain"
)

type featuredSpeakerDetector struct {
	profiles domain.ProfileRepository
	cache    domain.AnnouncementCache
	log      *slog.Logger
}

// NewFeaturedSpeakerDetector returns a detector that publishes to the single
// FeaturedSpeakersKey slot of cache.
func NewFeaturedSpeakerDetector(profiles domain.ProfileRepository, cache domain.AnnouncementCache, logger *slog.Logger) domain.FeaturedSpeakerDetector {
	return &featuredSpeakerDetector{profiles: profiles, cache: cache, log: logger}
}

// Detect scans sessions for speakerKey. With two or more matches it
// overwrites the featured speaker slot, whatever conference last wrote it.
func (d *featuredSpeakerDetector) Detect(ctx context.Context, sessions []*domain.Session, speakerKey string) (bool, error) {
	var names []string
	for _, s := range sessions {
		if s.HasSpeaker(speakerKey) {
			names = append(names, s.Name)
		}
	}
	if len(names) < 2 {
		return false, nil
	}

	key, err := domain.DecodeProfileKey(speakerKey)
	if err != nil {
		return false, nil
	}
	speaker, err := d.profiles.Get(ctx, key.Name)
	if errors.Is(err, domain.ErrNotFound) {
		d.log.WarnContext(ctx, "featured speaker has no profile", "speaker", key.Name)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get speaker profile: %w", err)
	}

	if err := d.cache.Put(ctx, domain.FeaturedSpeakersKey, featuredMessage(speaker.DisplayName, names)); err != nil {
		return false, fmt.Errorf("publish featured speaker: %w", err)
	}
	d.log.InfoContext(ctx, "featured speaker published", "speaker", key.Name, "sessions", len(names))
	return true, nil
}

func featuredMessage(speaker string, sessionNames []string) string {
	var b strings.Builder
	b.WriteString("Featured Speaker: ")
	b.WriteString(speaker)
	b.WriteString(" will be in sessions: ")
	for _, n := range sessionNames {
		b.WriteString(n)
		b.WriteString("\n")
	}
	return b.String()
}

// GetFeatured returns the current featured speaker message. An empty slot
// yields an empty message.
func (d *featuredSpeakerDetector) GetFeatured(ctx context.Context) (*domain.Announcement, error) {
	msg, _, err := d.cache.Get(ctx, domain.FeaturedSpeakersKey)
	if err != nil {
		return nil, fmt.Errorf("get featured speaker: %w", err)
	}
	return &domain.Announcement{Message: msg}, nil
}
