package handlers

import (
	"net/http"

	"natours/internal/domain"
	"natours/internal/domain/models"
	"natours/internal/query"
	"natours/internal/repositories"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	Users    repositories.UserRepository
	Pipeline *query.Pipeline
}

type updateMeRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email" binding:"omitempty,email"`
	Password        *string `json:"password"`
	PasswordConfirm *string `json:"passwordConfirm"`
}

type updateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" binding:"omitempty,email"`
	Role  *string `json:"role"`
}

// GET /api/v1/users
func (h UserHandler) List(c *gin.Context) {
	respondList(c, h.Pipeline, c.Request.URL.Query(), h.Users)
}

// GET /api/v1/users/me
func (h UserHandler) Me(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		fail(c, err)
		return
	}
	h.respondUser(c, p.ID)
}

// GET /api/v1/users/:id
func (h UserHandler) Get(c *gin.Context) {
	h.respondUser(c, domain.ID(c.Param("id")))
}

func (h UserHandler) respondUser(c *gin.Context, id domain.ID) {
	u, err := h.Users.FindByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, u)
}

// PATCH /api/v1/users/updateMe only touches name and email.
func (h UserHandler) UpdateMe(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req updateMeRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	if req.Password != nil || req.PasswordConfirm != nil {
		fail(c, domain.ValidationError{Msg: "this route is not for password updates, please use /updateMyPassword"})
		return
	}
	u, err := h.Users.Update(c.Request.Context(), p.ID, models.UserUpdate{Name: req.Name, Email: req.Email})
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, u)
}

// DELETE /api/v1/users/deleteMe deactivates the account.
func (h UserHandler) DeleteMe(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		fail(c, err)
		return
	}
	if err := h.Users.Deactivate(c.Request.Context(), p.ID); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PATCH /api/v1/users/:id
func (h UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	upd := models.UserUpdate{Name: req.Name, Email: req.Email}
	if req.Role != nil {
		role, ok := domain.ParseRole(*req.Role)
		if !ok {
			fail(c, domain.ValidationError{Field: "role", Msg: "unknown role"})
			return
		}
		upd.Role = &role
	}
	u, err := h.Users.Update(c.Request.Context(), domain.ID(c.Param("id")), upd)
	if err != nil {
		fail(c, err)
		return
	}
	respondData(c, http.StatusOK, u)
}

// DELETE /api/v1/users/:id
func (h UserHandler) Delete(c *gin.Context) {
	if err := h.Users.Delete(c.Request.Context(), domain.ID(c.Param("id"))); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
