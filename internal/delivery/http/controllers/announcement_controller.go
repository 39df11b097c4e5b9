package controllers

import (
	"log/slog"
	"net/http"

	"conferencecentral/internal/delivery/http/helpers"
	"conferencecentral/internal/domain"
)

// AnnouncementSuccessResponse is the success envelope for announcement endpoints.
type AnnouncementSuccessResponse struct {
	Data  *domain.Announcement `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

type AnnouncementController struct {
	Logger        *slog.Logger
	Announcements domain.AnnouncementService
	Featured      domain.FeaturedSpeakerDetector
}

func NewAnnouncementController(logger *slog.Logger, announcements domain.AnnouncementService, featured domain.FeaturedSpeakerDetector) *AnnouncementController {
	return &AnnouncementController{Logger: logger, Announcements: announcements, Featured: featured}
}

// GetAnnouncement godoc
// @Summary Nearly-sold-out announcement
// @Description The message is empty when no conference is nearly sold out.
// @Tags announcements
// @Produce json
// @Success 200 {object} controllers.AnnouncementSuccessResponse
// @Router /announcement [get]
func (c *AnnouncementController) GetAnnouncement(w http.ResponseWriter, r *http.Request) {
	a, err := c.Announcements.Get(r.Context())
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, a)
}

// GetFeaturedSpeaker godoc
// @Summary Latest featured speaker announcement
// @Description The message is empty until a speaker has been featured.
// @Tags announcements
// @Produce json
// @Success 200 {object} controllers.AnnouncementSuccessResponse
// @Router /featured-speaker [get]
func (c *AnnouncementController) GetFeaturedSpeaker(w http.ResponseWriter, r *http.Request) {
	a, err := c.Featured.GetFeatured(r.Context())
	if err != nil {
		helpers.WriteDomainError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, a)
}
