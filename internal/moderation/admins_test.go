package moderation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/recipe-hub/backend/internal/identity/identitytest"
	"github.com/anonto42/recipe-hub/backend/internal/moderation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAdmins(t *testing.T) {
	t.Parallel()

	p := identitytest.New().
		AddMember("org-1", "author", "admin").
		AddMember("org-1", "admin-a", "admin").
		AddMember("org-1", "admin-b", "org:admin").
		AddMember("org-1", "member", "member").
		AddMember("org-2", "admin-c", "admin").
		AddMember("org-2", "author", "member")

	admins, err := moderation.ResolveAdmins(context.Background(), p, "author")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"admin-a", "admin-b"}, admins)
}

func TestResolveAdmins_NoOrganization(t *testing.T) {
	t.Parallel()

	admins, err := moderation.ResolveAdmins(context.Background(), identitytest.New(), "loner")
	require.NoError(t, err)
	assert.Empty(t, admins)
}

func TestResolveAdmins_MembersLookupFails(t *testing.T) {
	t.Parallel()

	p := identitytest.New().AddMember("org-1", "author", "member")
	p.MembersErr = errors.New("timeout")

	_, err := moderation.ResolveAdmins(context.Background(), p, "author")
	assert.ErrorContains(t, err, "timeout")
}
