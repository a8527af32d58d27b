package identity_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/identity"
	"github.com/anonto42/recipe-hub/backend/internal/identity/identitytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIsAdminRole(t *testing.T) {
	t.Parallel()

	assert.True(t, identity.IsAdminRole("admin"))
	assert.True(t, identity.IsAdminRole("org:admin"))
	assert.True(t, identity.IsAdminRole(" Admin "))
	assert.False(t, identity.IsAdminRole("member"))
	assert.False(t, identity.IsAdminRole("org:member"))
	assert.False(t, identity.IsAdminRole(""))
}

func TestPrimaryMembership_FirstOrganization(t *testing.T) {
	t.Parallel()

	p := identitytest.New().
		AddMember("org-1", "alice", "member").
		AddMember("org-2", "alice", "admin")

	m, err := identity.PrimaryMembership(context.Background(), p, "alice")
	require.NoError(t, err)
	assert.Equal(t, "org-1", m.OrganizationID)
	assert.Equal(t, "member", m.Role)
}

func TestPrimaryMembership_NoOrganization(t *testing.T) {
	t.Parallel()

	_, err := identity.PrimaryMembership(context.Background(), identitytest.New(), "bob")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestPrimaryMembership_ProviderError(t *testing.T) {
	t.Parallel()

	p := identitytest.New()
	p.MembershipsErr = errors.New("provider down")

	_, err := identity.PrimaryMembership(context.Background(), p, "bob")
	assert.ErrorContains(t, err, "provider down")
}

func TestResolveProfiles_DeduplicatesAndSkipsFailures(t *testing.T) {
	t.Parallel()

	p := identitytest.New().
		AddUser("alice", "Alice", "alice@example.com").
		AddUser("bob", "Bob", "bob@example.com")

	profiles := identity.ResolveProfiles(context.Background(), p,
		[]string{"alice", "bob", "alice", "", "ghost"}, discardLogger())

	require.Len(t, profiles, 2)
	assert.Equal(t, "Alice", profiles["alice"].Name)
	assert.Equal(t, "Bob", profiles["bob"].Name)
	assert.Nil(t, profiles["ghost"])
	assert.Equal(t, 3, p.GetUserCallsCount)
}

func TestPrimaryMembers_OnlyUsersWhosePrimaryOrgMatches(t *testing.T) {
	t.Parallel()

	p := identitytest.New().
		AddMember("org-1", "ana", "member").
		AddMember("org-2", "ben", "member").
		AddMember("org-1", "ben", "admin").
		AddMember("org-1", "cai", "admin")

	ids, err := identity.PrimaryMembers(context.Background(), p, "org-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"ana", "cai"}, ids)

	ids, err = identity.PrimaryMembers(context.Background(), p, "org-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"ben"}, ids)
}

func TestPrimaryMembers_ProviderError(t *testing.T) {
	t.Parallel()

	p := identitytest.New().AddMember("org-1", "ana", "member")
	p.MembershipsErr = errors.New("firestore down")

	_, err := identity.PrimaryMembers(context.Background(), p, "org-1")
	assert.Error(t, err)
}
