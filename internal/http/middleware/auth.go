package middleware

import (
	"context"
	"strings"

	"natours/internal/domain"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Authenticator resolves a raw token to the principal it belongs to.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Principal, error)
}

// Protect requires a valid token from the Authorization header or, failing
// that, the named cookie. On success the principal is attached to the
// context for later handlers.
func Protect(a Authenticator, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := a.Authenticate(c.Request.Context(), tokenFrom(c, cookieName))
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		SetPrincipal(c, p)
		c.Next()
	}
}

func tokenFrom(c *gin.Context, cookieName string) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	if cookieName == "" {
		return ""
	}
	v, err := c.Cookie(cookieName)
	if err != nil || v == "loggedout" {
		return ""
	}
	return v
}

// RestrictTo allows the request through only for principals whose role is in
// roles. It must be mounted after Protect; a missing principal is a wiring
// bug and reported as an internal error.
func RestrictTo(roles ...domain.Role) gin.HandlerFunc {
	allowed := domain.NewRoleSet(roles...)
	return func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			_ = c.Error(domain.InternalError{Msg: "role check without an authenticated principal"})
			c.Abort()
			return
		}
		if !domain.IsAllowed(p.Role, allowed) {
			_ = c.Error(domain.ForbiddenError{})
			c.Abort()
			return
		}
		c.Next()
	}
}

func SetPrincipal(c *gin.Context, p domain.Principal) {
	c.Set(principalKey, p)
}

func PrincipalFrom(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}
