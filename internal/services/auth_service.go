package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"natours/internal/auth"
	"natours/internal/domain"
	"natours/internal/domain/models"
	"natours/internal/utils"

	"go.uber.org/zap"
)

// Client-facing 401 messages, one per failed authentication step.
const (
	MsgNotLoggedIn       = "you are not logged in, please log in to get access"
	MsgTokenExpired      = "your token has expired, please log in again"
	MsgInvalidToken      = "invalid token, please log in again"
	MsgUserGone          = "the user belonging to this token no longer exists"
	MsgPasswordChanged   = "user recently changed password, please log in again"
	MsgBadCredentials    = "incorrect email or password"
	MsgWrongCurrentPass  = "your current password is wrong"
	MsgMissingCredential = "please provide email and password"
)

const minPasswordLen = 8

// UserStore is the part of the credential store the auth flow needs.
type UserStore interface {
	FindByID(ctx context.Context, id domain.ID) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
	UpdatePassword(ctx context.Context, id domain.ID, hash string, changedAt time.Time) error
}

type AuthService struct {
	Users  UserStore
	Tokens *auth.TokenService
	Hasher auth.Hasher
	Log    *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type SignupInput struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required"`
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Signup creates a regular user and returns it with a fresh token. The role is
// always user; elevated roles are granted by an admin.
func (s AuthService) Signup(ctx context.Context, in SignupInput) (models.User, string, error) {
	if strings.TrimSpace(in.Name) == "" {
		return models.User{}, "", domain.ValidationError{Field: "name", Msg: "please tell us your name"}
	}
	if err := checkNewPassword(in.Password, in.PasswordConfirm); err != nil {
		return models.User{}, "", err
	}
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return models.User{}, "", domain.InternalError{Msg: "could not hash password", Err: err}
	}

	u, err := s.Users.Create(ctx, models.User{
		Name:         in.Name,
		Email:        in.Email,
		Role:         domain.RoleUser,
		PasswordHash: hash,
	})
	if err != nil {
		return models.User{}, "", err
	}
	token, err := s.issue(u.ID)
	if err != nil {
		return models.User{}, "", err
	}
	utils.LogEvent(s.Log, utils.RequestIDFromContext(ctx), "auth", "signup", "user signed up", zap.String("user_id", string(u.ID)))
	return u, token, nil
}

// Login checks credentials. Unknown email and wrong password produce the same
// error.
func (s AuthService) Login(ctx context.Context, email, password string) (models.User, string, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return models.User{}, "", domain.ValidationError{Msg: MsgMissingCredential}
	}
	u, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return models.User{}, "", domain.UnauthenticatedError{Msg: MsgBadCredentials}
		}
		return models.User{}, "", err
	}
	if !s.Hasher.Verify(password, u.PasswordHash) {
		return models.User{}, "", domain.UnauthenticatedError{Msg: MsgBadCredentials}
	}
	token, err := s.issue(u.ID)
	if err != nil {
		return models.User{}, "", err
	}
	utils.LogEvent(s.Log, utils.RequestIDFromContext(ctx), "auth", "login", "user logged in", zap.String("user_id", string(u.ID)))
	return u, token, nil
}

// Authenticate resolves a bearer token to the live principal. Each failure
// maps to its own UnauthenticatedError message; store failures are returned
// unchanged.
func (s AuthService) Authenticate(ctx context.Context, token string) (domain.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Principal{}, domain.UnauthenticatedError{Msg: MsgNotLoggedIn}
	}

	id, err := s.Tokens.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return domain.Principal{}, domain.UnauthenticatedError{Msg: MsgTokenExpired, Err: err}
		}
		return domain.Principal{}, domain.UnauthenticatedError{Msg: MsgInvalidToken, Err: err}
	}

	u, err := s.Users.FindByID(ctx, id.SubjectID)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.Principal{}, domain.UnauthenticatedError{Msg: MsgUserGone, Err: err}
		}
		return domain.Principal{}, err
	}

	p := u.Principal()
	if p.ChangedPasswordAfter(id.IssuedAt) {
		return domain.Principal{}, domain.UnauthenticatedError{Msg: MsgPasswordChanged}
	}
	return p, nil
}

// UpdatePassword rotates the password of the authenticated user and returns a
// token issued strictly after the recorded change. Every earlier token,
// including one issued within the same second, stops authenticating.
func (s AuthService) UpdatePassword(ctx context.Context, id domain.ID, current, next, confirm string) (string, error) {
	u, err := s.Users.FindByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !s.Hasher.Verify(current, u.PasswordHash) {
		return "", domain.UnauthenticatedError{Msg: MsgWrongCurrentPass}
	}
	if err := checkNewPassword(next, confirm); err != nil {
		return "", err
	}
	hash, err := s.Hasher.Hash(next)
	if err != nil {
		return "", domain.InternalError{Msg: "could not hash password", Err: err}
	}
	changedAt := utils.StoreTimeMillis(s.now())
	if err := s.Users.UpdatePassword(ctx, id, hash, changedAt); err != nil {
		return "", err
	}
	token, err := s.Tokens.IssueAfter(id, changedAt)
	if err != nil {
		return "", domain.InternalError{Msg: "could not issue token", Err: err}
	}
	utils.LogEvent(s.Log, utils.RequestIDFromContext(ctx), "auth", "update_password", "password changed", zap.String("user_id", string(id)))
	return token, nil
}

func (s AuthService) issue(id domain.ID) (string, error) {
	token, err := s.Tokens.IssueDefault(id)
	if err != nil {
		return "", domain.InternalError{Msg: "could not issue token", Err: err}
	}
	return token, nil
}

func checkNewPassword(password, confirm string) error {
	if len(password) < minPasswordLen {
		return domain.ValidationError{Field: "password", Msg: "must be at least 8 characters"}
	}
	if password != confirm {
		return domain.ValidationError{Field: "passwordConfirm", Msg: "passwords are not the same"}
	}
	return nil
}
