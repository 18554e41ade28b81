package ports

import (
	"context"

	"github.com/devconnector/directory-api/internal/core/domain"
)

// ProfileOwner is the public slice of a user shown next to a profile.
type ProfileOwner struct {
	ID     string `json:"_id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

// ProfileView is a profile joined with its owner.
type ProfileView struct {
	domain.Profile
	User ProfileOwner `json:"user"`
}

// UpsertProfileInput carries a create-or-update request for the caller's profile.
// Skills is the raw comma-separated list as submitted.
type UpsertProfileInput struct {
	UserID         string
	Company        string
	Website        string
	Location       string
	Bio            string
	Status         string
	GitHubUsername string
	Skills         string
	Social         domain.Social
}

// ProfileService defines the profile use cases.
type ProfileService interface {
	GetMine(ctx context.Context, userID string) (*ProfileView, error)
	Upsert(ctx context.Context, input UpsertProfileInput) (*ProfileView, error)
	List(ctx context.Context) ([]ProfileView, error)
	GetByUser(ctx context.Context, userID string) (*ProfileView, error)
	DeleteAccount(ctx context.Context, userID string) error
}
