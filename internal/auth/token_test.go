package auth

import (
	"strings"
	"testing"
	"time"

	"natours/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTokenService(t *testing.T, secret string) (*TokenService, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)}
	ts, err := NewTokenService([]byte(secret), time.Hour, WithClock(clock.Now))
	require.NoError(t, err)
	return ts, clock
}

func TestIssueThenVerify(t *testing.T) {
	ts, clock := newTestTokenService(t, "issue-verify-secret")

	for _, subject := range []domain.ID{"u1", "2bWx9kY2fJ3cT0qYQ2M5zv8eX1a", "user-with-dashes"} {
		tok, err := ts.Issue(subject, 30*time.Minute)
		require.NoError(t, err)

		id, err := ts.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, subject, id.SubjectID)
		assert.True(t, id.IssuedAt.Equal(clock.Now()))
		assert.True(t, id.ExpiresAt.Equal(clock.Now().Add(30*time.Minute)))
	}
}

func TestVerifyExpiryBoundaryIsExclusive(t *testing.T) {
	ts, clock := newTestTokenService(t, "expiry-secret")

	tok, err := ts.IssueDefault("u1")
	require.NoError(t, err)

	clock.Advance(time.Hour - time.Second)
	_, err = ts.Verify(tok)
	require.NoError(t, err, "one second before expiry is still valid")

	clock.Advance(time.Second)
	_, err = ts.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenExpired, "exactly at expiry is expired")

	clock.Advance(time.Hour)
	_, err = ts.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	issuer, _ := newTestTokenService(t, "right-secret")
	verifier, _ := newTestTokenService(t, "wrong-secret")

	tok, err := issuer.IssueDefault("u2")
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	ts, _ := newTestTokenService(t, "tamper-secret")
	tok, err := ts.IssueDefault("u3")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	other, err := ts.IssueDefault("admin")
	require.NoError(t, err)
	parts[1] = strings.Split(other, ".")[1]

	_, err = ts.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsMalformedBeforeSignature(t *testing.T) {
	ts, _ := newTestTokenService(t, "malformed-secret")

	for _, tok := range []string{"", "abc", "a.b", "a..c", "a.b.c.d", "not a.jwt.at all", "a+b.c/d.e=f"} {
		_, err := ts.Verify(tok)
		assert.ErrorIs(t, err, ErrTokenMalformed, "token %q", tok)
	}
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	ts, clock := newTestTokenService(t, "alg-secret")

	claims := jwt.RegisteredClaims{
		Subject:   "u4",
		IssuedAt:  jwt.NewNumericDate(clock.Now()),
		ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
	}
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ts.Verify(none + "x")
	assert.Error(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("alg-secret"))
	require.NoError(t, err)
	_, err = ts.Verify(hs512)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRequiresExpiry(t *testing.T) {
	ts, clock := newTestTokenService(t, "exp-required")

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:  "u5",
		IssuedAt: jwt.NewNumericDate(clock.Now()),
	}).SignedString([]byte("exp-required"))
	require.NoError(t, err)

	_, err = ts.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestNewTokenServiceValidation(t *testing.T) {
	_, err := NewTokenService(nil, time.Hour)
	assert.Error(t, err)
	_, err = NewTokenService([]byte("s"), 0)
	assert.Error(t, err)

	ts, _ := newTestTokenService(t, "s")
	_, err = ts.Issue("", time.Hour)
	assert.Error(t, err)
	_, err = ts.Issue("u1", -time.Second)
	assert.Error(t, err)
}

func TestIssuedAtKeepsMilliseconds(t *testing.T) {
	ts, clock := newTestTokenService(t, "millis-secret")
	clock.Advance(900*time.Millisecond + 400*time.Microsecond)

	tok, err := ts.IssueDefault("u1")
	require.NoError(t, err)

	id, err := ts.Verify(tok)
	require.NoError(t, err)
	assert.True(t, id.IssuedAt.Equal(clock.Now().Truncate(time.Millisecond)), id.IssuedAt)
}

func TestIssueAfterPostdatesGivenTime(t *testing.T) {
	ts, clock := newTestTokenService(t, "after-secret")
	clock.Advance(250 * time.Millisecond)

	tok, err := ts.IssueAfter("u1", clock.Now())
	require.NoError(t, err)
	id, err := ts.Verify(tok)
	require.NoError(t, err)
	assert.True(t, id.IssuedAt.After(clock.Now()))
	assert.True(t, id.IssuedAt.Equal(clock.Now().Add(time.Millisecond)), id.IssuedAt)

	tok, err = ts.IssueAfter("u1", clock.Now().Add(-time.Minute))
	require.NoError(t, err)
	id, err = ts.Verify(tok)
	require.NoError(t, err)
	assert.True(t, id.IssuedAt.Equal(clock.Now()), id.IssuedAt)
}

func TestVerifyRejectsInconsistentMillis(t *testing.T) {
	ts, clock := newTestTokenService(t, "mismatch-secret")

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u6",
			IssuedAt:  jwt.NewNumericDate(clock.Now()),
			ExpiresAt: jwt.NewNumericDate(clock.Now().Add(time.Hour)),
		},
		IssuedAtMillis: clock.Now().Add(-time.Hour).UnixMilli(),
	}).SignedString([]byte("mismatch-secret"))
	require.NoError(t, err)

	_, err = ts.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
