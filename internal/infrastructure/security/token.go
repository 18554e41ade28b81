package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/devconnector/directory-api/internal/core/domain"
)

// DefaultTokenTTL is the lifetime used when none is configured.
const DefaultTokenTTL = 100 * time.Hour

// UserClaims identifies the subject of a token.
type UserClaims struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Claims is the JWT payload issued to authenticated users.
type Claims struct {
	User UserClaims `json:"user"`
	jwt.RegisteredClaims
}

// TokenConfig holds the signing policy. Secret is required.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// TokenManager issues and verifies HS256 access tokens. It keeps no record of
// issued tokens: any unexpired token carrying a valid signature is accepted.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	log    zerolog.Logger
}

// NewTokenManager validates cfg and returns a TokenManager.
func NewTokenManager(cfg TokenConfig, log zerolog.Logger) (*TokenManager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("token secret must not be empty")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		ttl:    ttl,
		now:    time.Now,
		log:    log,
	}, nil
}

// TTL returns the lifetime given to new tokens.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue signs a token for identity, valid for the configured TTL.
func (m *TokenManager) Issue(identity domain.Identity) (string, error) {
	if identity.UserID == "" {
		return "", errors.New("issue token: empty subject")
	}

	now := m.now()
	claims := Claims{
		User: UserClaims{ID: identity.UserID, Name: identity.Name},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses token and returns the identity it carries. Expired, tampered,
// malformed and foreign tokens all yield domain.ErrTokenInvalid; the cause is
// only logged.
func (m *TokenManager) Verify(token string) (*domain.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		m.log.Debug().Err(err).Msg("token rejected")
		return nil, domain.ErrTokenInvalid
	}
	if !parsed.Valid || claims.User.ID == "" {
		m.log.Debug().Msg("token rejected: missing subject")
		return nil, domain.ErrTokenInvalid
	}

	return &domain.Identity{UserID: claims.User.ID, Name: claims.User.Name}, nil
}
