package handlers

import (
	"net/http"
	"strings"

	"natours/internal/domain"
	"natours/internal/domain/models"
	"natours/internal/query"
	"natours/internal/repositories"

	"github.com/gin-gonic/gin"
)

// tourParam is the path parameter carrying the tour on nested routes
// (/tours/:id/reviews).
const tourParam = "id"

type ReviewHandler struct {
	Reviews  repositories.ReviewRepository
	Pipeline *query.Pipeline
}

type createReviewRequest struct {
	Review string `json:"review" binding:"required"`
	Rating int    `json:"rating" binding:"required,min=1,max=5"`
	Tour   string `json:"tour"`
}

// GET /api/v1/reviews and /api/v1/tours/:id/reviews
func (h ReviewHandler) List(c *gin.Context) {
	raw := c.Request.URL.Query()
	if tourID := c.Param(tourParam); tourID != "" {
		raw.Set("tour", tourID)
	}
	respondList(c, h.Pipeline, raw, h.Reviews)
}

// POST /api/v1/reviews and /api/v1/tours/:id/reviews. The author is
// always the caller; the nested path wins over a tour given in the body.
func (h ReviewHandler) Create(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req createReviewRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	tourID := strings.TrimSpace(req.Tour)
	if id := c.Param(tourParam); id != "" {
		tourID = id
	}
	if tourID == "" {
		fail(c, domain.ValidationError{Field: "tour", Msg: "review must belong to a tour"})
		return
	}

	rv, err := h.Reviews.Create(c.Request.Context(), models.Review{
		Review: req.Review,
		Rating: req.Rating,
		TourID: domain.ID(tourID),
		UserID: p.ID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusCreated, rv)
}
