package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"natours/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuth struct {
	gotToken string
	p        domain.Principal
	err      error
}

func (s *stubAuth) Authenticate(_ context.Context, token string) (domain.Principal, error) {
	s.gotToken = token
	return s.p, s.err
}

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), ErrorHandler(zap.NewNop()))
	handlers := append(mw, func(c *gin.Context) {
		p, _ := PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{"id": p.ID})
	})
	r.GET("/x", handlers...)
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestProtectReadsBearerHeader(t *testing.T) {
	a := &stubAuth{p: domain.Principal{ID: "u1", Role: domain.RoleUser}}
	r := newEngine(Protect(a, "jwt"))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	req.AddCookie(&http.Cookie{Name: "jwt", Value: "cookie-token"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "abc.def.ghi", a.gotToken)
}

func TestProtectFallsBackToCookie(t *testing.T) {
	a := &stubAuth{p: domain.Principal{ID: "u1"}}
	r := newEngine(Protect(a, "jwt"))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: "cookie-token"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cookie-token", a.gotToken)
}

func TestProtectRejects(t *testing.T) {
	a := &stubAuth{err: domain.UnauthenticatedError{Msg: "you are not logged in, please log in to get access"}}
	r := newEngine(Protect(a, "jwt"))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "", a.gotToken)
	body := decodeError(t, w)
	assert.Equal(t, ErrorBody{
		Status:     "fail",
		StatusCode: http.StatusUnauthorized,
		Message:    "you are not logged in, please log in to get access",
		RequestID:  "req-42",
	}, body)
}

func TestProtectStoreFailureIs503(t *testing.T) {
	a := &stubAuth{err: domain.StoreUnavailableError{Op: "find user by id", Err: errors.New("dial tcp: refused")}}
	r := newEngine(Protect(a, "jwt"))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer a.b.c")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "error", body.Status)
	assert.NotContains(t, body.Message, "dial tcp")
}

func TestRestrictTo(t *testing.T) {
	cases := []struct {
		role domain.Role
		want int
	}{
		{domain.RoleAdmin, http.StatusOK},
		{domain.RoleLeadGuide, http.StatusOK},
		{domain.RoleGuide, http.StatusForbidden},
		{domain.RoleUser, http.StatusForbidden},
		{domain.Role("root"), http.StatusForbidden},
	}
	for _, tc := range cases {
		a := &stubAuth{p: domain.Principal{ID: "u1", Role: tc.role}}
		r := newEngine(Protect(a, "jwt"), RestrictTo(domain.RoleAdmin, domain.RoleLeadGuide))

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("Authorization", "Bearer a.b.c")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, tc.want, w.Code, "role %q", tc.role)
		if tc.want == http.StatusForbidden {
			assert.Equal(t, "you do not have permission to perform this action", decodeError(t, w).Message)
		}
	}
}

func TestRestrictToWithoutPrincipal(t *testing.T) {
	r := newEngine(RestrictTo(domain.RoleAdmin))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "error", decodeError(t, w).Status)
}

func TestRequestIDGenerated(t *testing.T) {
	r := newEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(domain.InvalidQueryError{Param: "sort"}))
	assert.Equal(t, http.StatusBadRequest, StatusFor(domain.InvalidPageError{Page: 9}))
	assert.Equal(t, http.StatusNotFound, StatusFor(domain.NotFoundError{Resource: "tour"}))
	assert.Equal(t, http.StatusConflict, StatusFor(domain.ConflictError{}))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(errors.New("boom")))
}
