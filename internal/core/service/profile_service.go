package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/devconnector/directory-api/internal/api/metrics"
	"github.com/devconnector/directory-api/internal/core/domain"
	"github.com/devconnector/directory-api/internal/core/ports"
)

// ProfileCache abstracts the public profile cache (Redis).
//
// Every Invalidate bumps the user's generation. Get reports the generation it
// observed and Set only stores when it is still current, so a view loaded
// before a concurrent write is dropped instead of cached.
type ProfileCache interface {
	// Get returns the cached view, nil on a miss, and the current generation.
	Get(ctx context.Context, userID string) (*ports.ProfileView, int64, error)
	// Set stores view unless its owner's generation has moved past gen.
	Set(ctx context.Context, view *ports.ProfileView, gen int64) error
	Invalidate(ctx context.Context, userID string) error
}

type profileService struct {
	profiles ports.ProfileRepository
	users    ports.UserRepository
	cache    ProfileCache
	log      zerolog.Logger
}

// NewProfileService returns a ProfileService implementation. A nil cache disables caching.
func NewProfileService(
	profiles ports.ProfileRepository,
	users ports.UserRepository,
	cache ProfileCache,
	log zerolog.Logger,
) ports.ProfileService {
	if cache == nil {
		cache = nopCache{}
	}
	return &profileService{
		profiles: profiles,
		users:    users,
		cache:    cache,
		log:      log,
	}
}

func (s *profileService) GetMine(ctx context.Context, userID string) (*ports.ProfileView, error) {
	p, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, domain.ErrNoProfile
		}
		return nil, fmt.Errorf("get my profile: %w", err)
	}
	return s.withOwner(ctx, p)
}

func (s *profileService) Upsert(ctx context.Context, in ports.UpsertProfileInput) (*ports.ProfileView, error) {
	p, err := s.profiles.Upsert(ctx, in.UserID, ports.ProfileFields{
		Company:        strings.TrimSpace(in.Company),
		Website:        strings.TrimSpace(in.Website),
		Location:       strings.TrimSpace(in.Location),
		Bio:            strings.TrimSpace(in.Bio),
		Status:         strings.TrimSpace(in.Status),
		GitHubUsername: strings.TrimSpace(in.GitHubUsername),
		Skills:         splitSkills(in.Skills),
		Social:         in.Social,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}

	s.invalidate(ctx, in.UserID)
	s.log.Info().Str("user_id", in.UserID).Msg("profile saved")

	return s.withOwner(ctx, p)
}

func (s *profileService) List(ctx context.Context) ([]ports.ProfileView, error) {
	profiles, err := s.profiles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	ids := make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.UserID)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	byID := make(map[string]*domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	views := make([]ports.ProfileView, 0, len(profiles))
	for _, p := range profiles {
		views = append(views, ports.ProfileView{Profile: *p, User: ownerOf(p.UserID, byID[p.UserID])})
	}
	return views, nil
}

// GetByUser reads through the profile cache. Cache failures only cost a
// database round trip.
func (s *profileService) GetByUser(ctx context.Context, userID string) (*ports.ProfileView, error) {
	cached, gen, err := s.cache.Get(ctx, userID)
	cacheable := err == nil
	switch {
	case err != nil:
		metrics.ProfileCacheTotal.WithLabelValues("error").Inc()
		s.log.Warn().Err(err).Str("user_id", userID).Msg("profile cache read failed, loading from store")
	case cached != nil:
		metrics.ProfileCacheTotal.WithLabelValues("hit").Inc()
		return cached, nil
	default:
		metrics.ProfileCacheTotal.WithLabelValues("miss").Inc()
	}

	p, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	view, err := s.withOwner(ctx, p)
	if err != nil {
		return nil, err
	}
	if !cacheable {
		return view, nil
	}
	if err := s.cache.Set(ctx, view, gen); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("profile cache write failed")
	}
	return view, nil
}

// DeleteAccount removes the caller's profile and then the user itself.
// Tokens already issued to the user stay valid until they expire.
func (s *profileService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.profiles.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if err := s.users.Delete(ctx, userID); err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("delete account: %w", err)
	}

	s.invalidate(ctx, userID)
	s.log.Info().Str("user_id", userID).Msg("account deleted")
	return nil
}

func (s *profileService) withOwner(ctx context.Context, p *domain.Profile) (*ports.ProfileView, error) {
	user, err := s.users.FindByID(ctx, p.UserID)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("load profile owner: %w", err)
	}
	return &ports.ProfileView{Profile: *p, User: ownerOf(p.UserID, user)}, nil
}

func (s *profileService) invalidate(ctx context.Context, userID string) {
	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("profile cache invalidation failed")
	}
}

// ownerOf tolerates a missing user; the profile then shows only the owner id.
func ownerOf(userID string, u *domain.User) ports.ProfileOwner {
	if u == nil {
		return ports.ProfileOwner{ID: userID}
	}
	return ports.ProfileOwner{ID: u.ID, Name: u.Name, Avatar: u.Avatar}
}

// splitSkills turns "go, mongodb,,docker" into [go mongodb docker].
func splitSkills(raw string) []string {
	skills := make([]string, 0)
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

type nopCache struct{}

func (nopCache) Get(context.Context, string) (*ports.ProfileView, int64, error) { return nil, 0, nil }
func (nopCache) Set(context.Context, *ports.ProfileView, int64) error         { return nil }
func (nopCache) Invalidate(context.Context, string) error                     { return nil }
