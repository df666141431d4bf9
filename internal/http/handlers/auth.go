package handlers

import (
	"net/http"
	"time"

	"natours/internal/domain/models"
	"natours/internal/services"

	"github.com/gin-gonic/gin"
)

// CookieConfig controls the token cookie set on login.
type CookieConfig struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

type AuthHandler struct {
	Auth   services.AuthService
	Cookie CookieConfig
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent" binding:"required"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
}

// POST /api/v1/users/signup
func (h AuthHandler) Signup(c *gin.Context) {
	var req services.SignupInput
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	u, token, err := h.Auth.Signup(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	h.sendToken(c, http.StatusCreated, u, token)
}

// POST /api/v1/users/login
func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	u, token, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, u, token)
}

// GET /api/v1/users/logout overwrites the token cookie with a short-lived
// placeholder.
func (h AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.Cookie.Name, "loggedout", 10, "/", "", h.Cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// PATCH /api/v1/users/updateMyPassword
func (h AuthHandler) UpdateMyPassword(c *gin.Context) {
	p, err := principal(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req updatePasswordRequest
	if err := bindJSON(c, &req); err != nil {
		fail(c, err)
		return
	}
	token, err := h.Auth.UpdatePassword(c.Request.Context(), p.ID, req.PasswordCurrent, req.Password, req.PasswordConfirm)
	if err != nil {
		fail(c, err)
		return
	}
	u, err := h.Auth.Users.FindByID(c.Request.Context(), p.ID)
	if err != nil {
		fail(c, err)
		return
	}
	h.sendToken(c, http.StatusOK, u, token)
}

func (h AuthHandler) sendToken(c *gin.Context, status int, u models.User, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.Cookie.Name, token, int(h.Cookie.MaxAge/time.Second), "/", "", h.Cookie.Secure, true)
	c.JSON(status, gin.H{
		"status": "success",
		"token":  token,
		"data":   gin.H{"user": u},
	})
}
