package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"natours/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenMalformed = errors.New("token is malformed")
	ErrTokenInvalid   = errors.New("token is invalid")
	ErrTokenExpired   = errors.New("token has expired")
)

// Identity is what a verified token asserts.
type Identity struct {
	SubjectID domain.ID
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// claims carries the issue time in milliseconds next to the second-precision
// iat, so password changes within the same second can be ordered.
type claims struct {
	jwt.RegisteredClaims
	IssuedAtMillis int64 `json:"iat_ms,omitempty"`
}

// TokenService issues and verifies HS256 identity tokens. Verification is
// self-contained: no store lookup is needed to check signature or expiry.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

type TokenOption func(*TokenService)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) TokenOption {
	return func(ts *TokenService) {
		if now != nil {
			ts.now = now
		}
	}
}

func NewTokenService(secret []byte, ttl time.Duration, opts ...TokenOption) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("token service: signing secret must not be empty")
	}
	if ttl <= 0 {
		return nil, errors.New("token service: ttl must be positive")
	}
	ts := &TokenService{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts, nil
}

// TTL is the lifetime applied by IssueDefault.
func (ts *TokenService) TTL() time.Duration { return ts.ttl }

func (ts *TokenService) IssueDefault(subjectID domain.ID) (string, error) {
	return ts.Issue(subjectID, ts.ttl)
}

// Issue signs a token for subjectID valid from now until now+ttl.
func (ts *TokenService) Issue(subjectID domain.ID, ttl time.Duration) (string, error) {
	return ts.sign(subjectID, ttl, ts.now())
}

// IssueAfter signs a default-lifetime token whose issue time is strictly
// later than after, even when the clock has not yet moved past it.
func (ts *TokenService) IssueAfter(subjectID domain.ID, after time.Time) (string, error) {
	issued := ts.now()
	if floor := after.Truncate(time.Millisecond).Add(time.Millisecond); issued.Before(floor) {
		issued = floor
	}
	return ts.sign(subjectID, ts.ttl, issued)
}

func (ts *TokenService) sign(subjectID domain.ID, ttl time.Duration, issued time.Time) (string, error) {
	if subjectID == "" {
		return "", errors.New("token service: subject must not be empty")
	}
	if ttl <= 0 {
		return "", errors.New("token service: ttl must be positive")
	}
	issued = issued.Truncate(time.Millisecond)
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(subjectID),
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
		},
		IssuedAtMillis: issued.UnixMilli(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(ts.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks structure, signature and expiry. A token is expired at the
// exact second of its exp claim.
func (ts *TokenService) Verify(token string) (Identity, error) {
	if !wellFormed(token) {
		return Identity{}, ErrTokenMalformed
	}

	c := &claims{}
	_, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (any, error) {
		return ts.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(ts.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Identity{}, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return Identity{}, ErrTokenMalformed
		default:
			return Identity{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
	}

	if c.Subject == "" || c.IssuedAt == nil || c.ExpiresAt == nil {
		return Identity{}, ErrTokenInvalid
	}

	issued := c.IssuedAt.Time
	if c.IssuedAtMillis != 0 {
		ms := time.UnixMilli(c.IssuedAtMillis).UTC()
		if ms.Unix() != issued.Unix() {
			return Identity{}, ErrTokenInvalid
		}
		issued = ms
	}

	return Identity{
		SubjectID: domain.ID(c.Subject),
		IssuedAt:  issued,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

// wellFormed rejects anything that is not three non-empty base64url segments
// before any decoding or signature work happens.
func wellFormed(token string) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if p == "" {
			return false
		}
		for _, r := range p {
			switch {
			case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			default:
				return false
			}
		}
	}
	return true
}
