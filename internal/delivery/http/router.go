package http

import (
	"log/slog"
	"net/http"

	"conferencecentral/internal/delivery/http/controllers"
	"conferencecentral/internal/delivery/http/middleware"
	"conferencecentral/internal/domain"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Profile      *controllers.ProfileController
	Conference   *controllers.ConferenceController
	Session      *controllers.SessionController
	Announcement *controllers.AnnouncementController
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Profile
	mux.HandleFunc("GET /profile", auth(c.Profile.GetProfile))
	mux.HandleFunc("POST /profile", auth(c.Profile.SaveProfile))

	// Conferences
	mux.HandleFunc("POST /conferences", auth(c.Conference.CreateConference))
	mux.HandleFunc("POST /conferences/query", c.Conference.QueryConferences)
	mux.HandleFunc("GET /conferences/attending", auth(c.Conference.ListAttending))
	mux.HandleFunc("GET /conferences/created", auth(c.Conference.ListCreated))
	mux.HandleFunc("GET /conferences/{conferenceKey}", c.Conference.GetConference)
	mux.HandleFunc("PUT /conferences/{conferenceKey}", auth(c.Conference.UpdateConference))
	mux.HandleFunc("POST /conferences/{conferenceKey}/registration", auth(c.Conference.Register))
	mux.HandleFunc("DELETE /conferences/{conferenceKey}/registration", auth(c.Conference.Unregister))

	// Sessions
	mux.HandleFunc("POST /conferences/{conferenceKey}/sessions", auth(c.Session.CreateSession))
	mux.HandleFunc("GET /conferences/{conferenceKey}/sessions", c.Session.ListByConference)
	mux.HandleFunc("GET /conferences/{conferenceKey}/sessions/by-type", c.Session.ListByConferenceAndType)
	mux.HandleFunc("GET /sessions/by-speaker", c.Session.ListBySpeaker)
	mux.HandleFunc("PUT /sessions/{sessionKey}/wishlist", auth(c.Session.AddToWishlist))
	mux.HandleFunc("GET /sessions/wishlist", auth(c.Session.ListWishlist))
	mux.HandleFunc("GET /sessions/by-dates/{from}/{to}", c.Session.ByDateRange)
	mux.HandleFunc("GET /sessions/by-date-duration/{date}/{duration}", c.Session.ByDateAndMaxDuration)
	mux.HandleFunc("GET /sessions/not-type-time/{type}/{beforeTime}", c.Session.ExcludingTypeBeforeTime)

	// Announcements
	mux.HandleFunc("GET /announcement", c.Announcement.GetAnnouncement)
	mux.HandleFunc("GET /featured-speaker", c.Announcement.GetFeaturedSpeaker)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
