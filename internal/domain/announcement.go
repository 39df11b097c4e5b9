package domain

import "context"

// Cache slots. Each is a single global key: concurrent writers overwrite
// each other and the last write wins.
const (
	FeaturedSpeakersKey    = "FEATURED_SPEAKERS_KEY"
	RecentAnnouncementsKey = "RECENT_ANNOUNCEMENTS"
)

// Announcement is a cached message.
// swagger:model Announcement
type Announcement struct {
	Message string `json:"message"`
}

// AnnouncementCache is a single-key string cache without TTL.
type AnnouncementCache interface {
	// Get returns the value under key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// FeaturedSpeakerDetector derives the featured speaker announcement.
type FeaturedSpeakerDetector interface {
	// Detect publishes an announcement when speakerKey speaks in at least
	// two of sessions and reports whether it did.
	Detect(ctx context.Context, sessions []*Session, speakerKey string) (bool, error)
	GetFeatured(ctx context.Context) (*Announcement, error)
}

// AnnouncementService maintains the nearly-sold-out announcement.
type AnnouncementService interface {
	Refresh(ctx context.Context) error
	Get(ctx context.Context) (*Announcement, error)
}
