package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/identity"
)

// ResolveAdmins returns the admins of the author's primary organization,
// excluding the author. An author without an organization has no admins.
func ResolveAdmins(ctx context.Context, p identity.Provider, authorID string) ([]string, error) {
	membership, err := identity.PrimaryMembership(ctx, p, authorID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	members, err := p.GetOrganizationMembers(ctx, membership.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("get members of %s: %w", membership.OrganizationID, err)
	}

	admins := make([]string, 0, len(members))
	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		if m.UserID == authorID || !identity.IsAdminRole(m.Role) {
			continue
		}
		if _, dup := seen[m.UserID]; dup {
			continue
		}
		seen[m.UserID] = struct{}{}
		admins = append(admins, m.UserID)
	}
	return admins, nil
}
