package identity

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/v4/auth"
	"github.com/anonto42/recipe-hub/backend/internal/domain"
	"github.com/anonto42/recipe-hub/backend/internal/models"
	"google.golang.org/api/iterator"
)

// FirebaseProvider reads profiles from Firebase Auth and organization
// memberships from a Firestore collection whose documents carry
// organization_id, user_id and role.
type FirebaseProvider struct {
	auth        *auth.Client
	store       *firestore.Client
	memberships string
}

// NewFirebaseProvider creates a Provider backed by Firebase.
func NewFirebaseProvider(authClient *auth.Client, store *firestore.Client, membershipsCollection string) *FirebaseProvider {
	return &FirebaseProvider{auth: authClient, store: store, memberships: membershipsCollection}
}

func (p *FirebaseProvider) GetUser(ctx context.Context, userID string) (*models.UserProfile, error) {
	record, err := p.auth.GetUser(ctx, userID)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("firebase get user %s: %w", userID, err)
	}

	profile := &models.UserProfile{ID: record.UID}
	if record.UserInfo != nil {
		profile.Name = record.DisplayName
		profile.Email = record.Email
		profile.AvatarURL = record.PhotoURL
	}
	return profile, nil
}

func (p *FirebaseProvider) GetOrganizationMemberships(ctx context.Context, userID string) ([]Membership, error) {
	return p.query(ctx, "user_id", userID)
}

func (p *FirebaseProvider) GetOrganizationMembers(ctx context.Context, organizationID string) ([]Membership, error) {
	return p.query(ctx, "organization_id", organizationID)
}

func (p *FirebaseProvider) query(ctx context.Context, field, value string) ([]Membership, error) {
	iter := p.store.Collection(p.memberships).Where(field, "==", value).Documents(ctx)
	defer iter.Stop()

	var out []Membership
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore %s where %s: %w", p.memberships, field, err)
		}
		var m Membership
		if err := doc.DataTo(&m); err != nil {
			return nil, fmt.Errorf("decode membership %s: %w", doc.Ref.ID, err)
		}
		out = append(out, m)
	}
	return out, nil
}
