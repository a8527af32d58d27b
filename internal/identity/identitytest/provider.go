// Package identitytest provides an in-memory identity.Provider for tests.
package identitytest

import (
	"context"
	"fmt"
	"sync"

	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/identity"
	"github.com/anonto42/recipe-hub/backend/internal/models"
)

var _ identity.Provider = (*Provider)(nil)

// Provider keeps profiles and memberships in maps. The *Err fields, when set,
// are returned by the matching method instead of the stored data.
type Provider struct {
	mu          sync.Mutex
	users       map[string]*models.UserProfile
	memberships []identity.Membership

	GetUserErr        error
	MembershipsErr    error
	MembersErr        error
	GetUserCallsCount int
}

// New returns an empty Provider.
func New() *Provider {
	return &Provider{users: make(map[string]*models.UserProfile)}
}

// AddUser registers a profile.
func (p *Provider) AddUser(id, name, email string) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[id] = &models.UserProfile{ID: id, Name: name, Email: email}
	return p
}

// AddMember registers userID as a member of orgID with role.
func (p *Provider) AddMember(orgID, userID, role string) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.memberships = append(p.memberships, identity.Membership{OrganizationID: orgID, UserID: userID, Role: role})
	return p
}

func (p *Provider) GetUser(_ context.Context, userID string) (*models.UserProfile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.GetUserCallsCount++
	if p.GetUserErr != nil {
		return nil, p.GetUserErr
	}
	u, ok := p.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (p *Provider) GetOrganizationMemberships(_ context.Context, userID string) ([]identity.Membership, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.MembershipsErr != nil {
		return nil, p.MembershipsErr
	}
	var out []identity.Membership
	for _, m := range p.memberships {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (p *Provider) GetOrganizationMembers(_ context.Context, organizationID string) ([]identity.Membership, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.MembersErr != nil {
		return nil, p.MembersErr
	}
	var out []identity.Membership
	for _, m := range p.memberships {
		if m.OrganizationID == organizationID {
			out = append(out, m)
		}
	}
	return out, nil
}
