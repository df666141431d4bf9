package handlers

import (
	"net/http"

	intdb "natours/internal/db"
	"natours/internal/http/middleware"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type SystemHandler struct {
	DB *sqlx.DB
}

func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "natours api is running"})
}

// DBCheck reports whether the store is reachable and the users table exists.
func (h SystemHandler) DBCheck(c *gin.Context) {
	ok, err := intdb.HasTable(c.Request.Context(), h.DB, "users")
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "database unreachable"})
		return
	}
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "message": "schema not initialized"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "database connection OK"})
}

func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, middleware.ErrorBody{
		Status:     "fail",
		StatusCode: http.StatusNotFound,
		Message:    "can't find " + c.Request.URL.Path + " on this server",
		RequestID:  middleware.GetRequestID(c),
	})
}
