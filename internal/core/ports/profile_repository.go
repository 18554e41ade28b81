package ports

import (
	"context"

	"github.com/devconnector/directory-api/internal/core/domain"
)

// ProfileFields is the partial document written by an upsert. Empty scalar
// fields are left untouched on an existing profile; Social is replaced whole.
type ProfileFields struct {
	Company        string
	Website        string
	Location       string
	Bio            string
	Status         string
	GitHubUsername string
	Skills         []string
	Social         domain.Social
}

// ProfileRepository persists profiles keyed by their owner.
type ProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	// List returns every profile, newest first.
	List(ctx context.Context) ([]*domain.Profile, error)
	// Upsert creates or updates the profile owned by userID and returns the
	// document as stored after the write.
	Upsert(ctx context.Context, userID string, fields ProfileFields) (*domain.Profile, error)
	DeleteByUserID(ctx context.Context, userID string) error
}
