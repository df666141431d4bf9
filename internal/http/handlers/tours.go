package handlers

import (
	"net/http"
	"strconv"

	"natours/internal/domain"
	"natours/internal/domain/models"
	"natours/internal/query"
	"natours/internal/repositories"

	"github.com/gin-gonic/gin"
)

type TourHandler struct {
	Tours    repositories.TourRepository
	Pipeline *query.Pipeline
}

// AliasTopTours rewrites the query string to the five best-rated, cheapest
// tours before the list handler runs.
func AliasTopTours(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Set(query.ParamLimit, "5")
	q.Set(query.ParamSort, "-ratingsAverage,price")
	q.Set(query.ParamFields, "name,price,ratingsAverage,summary,difficulty")
	c.Request.URL.RawQuery = q.Encode()
	c.Next()
}

// GET /api/v1/tours
func (h TourHandler) List(c *gin.Context) {
	respondList(c, h.Pipeline, c.Request.URL.Query(), h.Tours)
}

// GET /api/v1/tours/:id
func (h TourHandler) Get(c *gin.Context) {
	doc, err := h.Tours.Get(c.Request.Context(), domain.ID(c.Param("id")))
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, doc)
}

// POST /api/v1/tours
func (h TourHandler) Create(c *gin.Context) {
	var req models.Tour
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	if req.PriceDiscount != nil && *req.PriceDiscount >= req.Price {
		fail(c, domain.ValidationError{Field: "priceDiscount", Msg: "discount price should be below regular price"})
		return
	}
	doc, err := h.Tours.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusCreated, doc)
}

// PATCH /api/v1/tours/:id
func (h TourHandler) Update(c *gin.Context) {
	var patch map[string]any
	if err := bindJSON(c, &patch); err != nil {
		fail(c, err)
		return
	}
	doc, err := h.Tours.Update(c.Request.Context(), domain.ID(c.Param("id")), patch)
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, doc)
}

// DELETE /api/v1/tours/:id
func (h TourHandler) Delete(c *gin.Context) {
	if err := h.Tours.Delete(c.Request.Context(), domain.ID(c.Param("id"))); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/v1/tours/tour-stats
func (h TourHandler) Stats(c *gin.Context) {
	stats, err := h.Tours.Stats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, stats)
}

// GET /api/v1/tours/monthly-plan/:year
func (h TourHandler) MonthlyPlan(c *gin.Context) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 1970 || year > 9999 {
		fail(c, domain.ValidationError{Field: "year", Msg: "must be a four digit year"})
		return
	}
	plan, err := h.Tours.MonthlyPlan(c.Request.Context(), year)
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, plan)
}
