// Package identity wraps the external identity provider that owns user
// profiles and organization memberships.
package identity

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"golang.org/x/sync/errgroup"
)

// RoleAdmin is the organization role that grants moderation rights.
const RoleAdmin = "admin"

// Membership links a user to an organization with a role.
type Membership struct {
	OrganizationID string `json:"organization_id" firestore:"organization_id"`
	UserID         string `json:"user_id" firestore:"user_id"`
	Role           string `json:"role" firestore:"role"`
}

// Provider resolves user profiles and organization memberships.
type Provider interface {
	GetUser(ctx context.Context, userID string) (*models.UserProfile, error)
	GetOrganizationMemberships(ctx context.Context, userID string) ([]Membership, error)
	GetOrganizationMembers(ctx context.Context, organizationID string) ([]Membership, error)
}

// IsAdminRole reports whether role grants admin rights. Both the bare form
// and the "org:" prefixed form some providers emit are accepted.
func IsAdminRole(role string) bool {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(role)), "org:") == RoleAdmin
}

// PrimaryMembership returns the first organization membership of userID.
// Users with several organizations are resolved by provider order.
func PrimaryMembership(ctx context.Context, p Provider, userID string) (*Membership, error) {
	memberships, err := p.GetOrganizationMemberships(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get memberships of %s: %w", userID, err)
	}
	if len(memberships) == 0 {
		return nil, fmt.Errorf("user %s has no organization: %w", userID, domain.ErrNotFound)
	}
	m := memberships[0]
	return &m, nil
}

// PrimaryMembers returns the members of organizationID whose primary
// organization it is, in provider order.
func PrimaryMembers(ctx context.Context, p Provider, organizationID string) ([]string, error) {
	members, err := p.GetOrganizationMembers(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("get members of %s: %w", organizationID, err)
	}

	keep := make([]bool, len(members))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, m := range members {
		g.Go(func() error {
			primary, err := PrimaryMembership(gctx, p, m.UserID)
			if err != nil {
				return err
			}
			keep[i] = primary.OrganizationID == organizationID
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(members))
	seen := make(map[string]struct{}, len(members))
	for i, m := range members {
		if _, dup := seen[m.UserID]; !keep[i] || dup {
			continue
		}
		seen[m.UserID] = struct{}{}
		ids = append(ids, m.UserID)
	}
	return ids, nil
}

// ResolveProfiles fetches the profiles of ids concurrently. Lookups that fail
// are logged and left out of the result so callers render a null author.
func ResolveProfiles(ctx context.Context, p Provider, ids []string, log *slog.Logger) map[string]*models.UserProfile {
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	var mu sync.Mutex
	profiles := make(map[string]*models.UserProfile, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, id := range unique {
		g.Go(func() error {
			profile, err := p.GetUser(gctx, id)
			if err != nil {
				log.WarnContext(ctx, "profile lookup failed", slog.String("user_id", id), slog.Any("error", err))
				return nil
			}
			mu.Lock()
			profiles[id] = profile
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return profiles
}
