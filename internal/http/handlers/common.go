package handlers

import (
	"context"
	"net/http"
	"net/url"

	"natours/internal/domain"
	"natours/internal/http/middleware"
	"natours/internal/query"
	"natours/internal/repositories"

	"github.com/gin-gonic/gin"
)

// collection is any store that can answer a compiled query.
type collection interface {
	Count(ctx context.Context, q *query.Query) (int, error)
	List(ctx context.Context, q *query.Query) ([]repositories.Document, error)
}

// fail hands err to middleware.ErrorHandler.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// bindJSON ensures body is present and parsable.
func bindJSON(c *gin.Context, dst any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return domain.ValidationError{Msg: "request body is empty"}
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		return domain.ValidationError{Msg: "invalid request body: " + err.Error(), Err: err}
	}
	return nil
}

func principal(c *gin.Context) (domain.Principal, error) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return domain.Principal{}, domain.InternalError{Msg: "no authenticated principal"}
	}
	return p, nil
}

// respondList runs the query pipeline over raw and writes the standard list
// envelope.
func respondList(c *gin.Context, p *query.Pipeline, raw url.Values, store collection) {
	q, err := p.Build(raw)
	if err != nil {
		fail(c, err)
		return
	}
	ctx := c.Request.Context()
	total, err := store.Count(ctx, q)
	if err != nil {
		fail(c, err)
		return
	}
	if err := q.CheckPage(total); err != nil {
		fail(c, err)
		return
	}
	docs, err := store.List(ctx, q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"results": len(docs),
		"total":   total,
		"page":    q.Spec.Page,
		"data":    gin.H{"data": docs},
	})
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"status": "success",
		"data":   gin.H{"data": data},
	})
}
