package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowed(t *testing.T) {
	set := NewRoleSet(RoleAdmin, RoleLeadGuide)

	assert.True(t, IsAllowed(RoleAdmin, set))
	assert.True(t, IsAllowed(RoleLeadGuide, set))
	assert.False(t, IsAllowed(RoleUser, set))
	assert.False(t, IsAllowed(RoleGuide, set))
	assert.False(t, IsAllowed(Role("root"), NewRoleSet(Role("root"))))
	assert.False(t, IsAllowed(RoleAdmin, NewRoleSet()))
}

func TestParseRole(t *testing.T) {
	r, ok := ParseRole("  Lead-Guide ")
	assert.True(t, ok)
	assert.Equal(t, RoleLeadGuide, r)

	_, ok = ParseRole("superuser")
	assert.False(t, ok)
}

func TestPrincipalChangedPasswordAfter(t *testing.T) {
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	p := Principal{}
	assert.False(t, p.ChangedPasswordAfter(issued))

	before := issued.Add(-time.Minute)
	p.PasswordChangedAt = &before
	assert.False(t, p.ChangedPasswordAfter(issued))

	justBefore := issued.Add(-time.Millisecond)
	p.PasswordChangedAt = &justBefore
	assert.False(t, p.ChangedPasswordAfter(issued))

	same := issued
	p.PasswordChangedAt = &same
	assert.True(t, p.ChangedPasswordAfter(issued), "a token must postdate the change")

	sameSecond := issued.Add(400 * time.Millisecond)
	p.PasswordChangedAt = &sameSecond
	assert.True(t, p.ChangedPasswordAfter(issued))

	subMilli := issued.Add(300 * time.Microsecond)
	p.PasswordChangedAt = &subMilli
	assert.True(t, p.ChangedPasswordAfter(issued))

	after := issued.Add(2 * time.Second)
	p.PasswordChangedAt = &after
	assert.True(t, p.ChangedPasswordAfter(issued))
}
