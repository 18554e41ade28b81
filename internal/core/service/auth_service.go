package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/devconnector/directory-api/internal/api/metrics"
	"github.com/devconnector/directory-api/internal/core/domain"
	"github.com/devconnector/directory-api/internal/core/ports"
)

// timingDecoy is hashed at construction and verified against when a login
// names an unknown email, so both failure paths pay for one bcrypt comparison.
const timingDecoy = "directory-timing-decoy"

// AuthService implements registration, login and self-lookup.
type AuthService struct {
	users  ports.UserRepository
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	log    zerolog.Logger

	decoyHash string
}

// NewAuthService prepares the timing decoy up front, so it pays for one hash
// before the service takes traffic.
func NewAuthService(
	ctx context.Context,
	users ports.UserRepository,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	log zerolog.Logger,
) (*AuthService, error) {
	decoy, err := hasher.Hash(ctx, timingDecoy)
	if err != nil {
		return nil, fmt.Errorf("prepare login decoy: %w", err)
	}
	return &AuthService{users: users, hasher: hasher, tokens: tokens, log: log, decoyHash: decoy}, nil
}

// Register opens an account for a new email and returns an access token for it.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (string, error) {
	email := domain.NormalizeEmail(in.Email)

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		metrics.RegistrationsTotal.WithLabelValues("exists").Inc()
		return "", domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("register: %w", err)
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("register: %w", err)
	}

	// The unique index decides between concurrent registrations that both
	// passed the lookup above.
	user, err := s.users.Create(ctx, &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Avatar:       GravatarURL(email),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.RegistrationsTotal.WithLabelValues("exists").Inc()
			return "", domain.ErrUserExists
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("register: %w", err)
	}

	token, err := s.tokens.Issue(domain.Identity{UserID: user.ID, Name: user.Name})
	if err != nil {
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("register: %w", err)
	}

	metrics.RegistrationsTotal.WithLabelValues("created").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return token, nil
}

// Login exchanges an email and password for an access token. An unknown email
// and a wrong password both return domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.spendDecoy(ctx, password)
			metrics.LoginsTotal.WithLabelValues("invalid").Inc()
			return "", domain.ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("login: %w", err)
	}

	if !s.hasher.Verify(ctx, password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return "", domain.ErrInvalidCredentials
	}

	if s.hasher.NeedsRehash(user.PasswordHash) {
		s.rotateHash(ctx, user.ID, password)
	}

	token, err := s.tokens.Issue(domain.Identity{UserID: user.ID, Name: user.Name})
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("login: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return token, nil
}

// Me returns the current record for an authenticated caller. A valid token
// whose user has since been deleted yields domain.ErrUserNotFound.
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("me: %w", err)
	}
	return user, nil
}

func (s *AuthService) rotateHash(ctx context.Context, userID, password string) {
	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("password rehash failed")
		return
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to store rehashed password")
		return
	}
	s.log.Info().Str("user_id", userID).Msg("password hash rotated")
}

func (s *AuthService) spendDecoy(ctx context.Context, password string) {
	_ = s.hasher.Verify(ctx, password, s.decoyHash)
}
