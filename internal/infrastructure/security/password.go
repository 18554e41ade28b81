// Package security implements the password hasher and the access token
// manager used by the authentication core.
package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/devconnector/directory-api/internal/api/metrics"
	"github.com/devconnector/directory-api/internal/core/domain"
)

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// ErrEmptyPassword is returned when hashing an empty password.
var ErrEmptyPassword = errors.New("password must not be empty")

// Runner executes fn somewhere else and waits for it. queue.Pool satisfies it.
type Runner interface {
	Do(ctx context.Context, fn func()) error
}

// BcryptHasher hashes passwords with bcrypt at a fixed cost. The salt and the
// cost are embedded in every record it produces.
type BcryptHasher struct {
	cost   int
	runner Runner
}

// NewBcryptHasher returns a hasher using cost. A zero cost selects
// bcrypt.DefaultCost. When runner is nil the work runs on the caller's goroutine.
func NewBcryptHasher(cost int, runner Runner) (*BcryptHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{cost: cost, runner: runner}, nil
}

// Cost returns the work factor used for new hashes.
func (h *BcryptHasher) Cost() int { return h.cost }

// Hash returns a fresh bcrypt record for plaintext. Input over
// MaxPasswordBytes fails with domain.ErrPasswordTooLong.
func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPassword
	}
	if len(plaintext) > MaxPasswordBytes {
		return "", domain.ErrPasswordTooLong
	}

	var (
		out     []byte
		hashErr error
	)
	if err := h.run(ctx, "hash", func() {
		out, hashErr = bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	}); err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	if errors.Is(hashErr, bcrypt.ErrPasswordTooLong) {
		return "", domain.ErrPasswordTooLong
	}
	if hashErr != nil {
		return "", fmt.Errorf("hash password: %w", hashErr)
	}
	return string(out), nil
}

// Verify reports whether plaintext matches hash. Comparison is constant-time;
// a malformed hash or an aborted context never matches.
func (h *BcryptHasher) Verify(ctx context.Context, plaintext, hash string) bool {
	var cmpErr error
	if err := h.run(ctx, "verify", func() {
		cmpErr = bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	}); err != nil {
		return false
	}
	return cmpErr == nil
}

// NeedsRehash reports whether hash was produced with a cost other than the
// configured one.
func (h *BcryptHasher) NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	return err != nil || cost != h.cost
}

func (h *BcryptHasher) run(ctx context.Context, op string, fn func()) error {
	timed := func() {
		start := time.Now()
		fn()
		metrics.PasswordHashDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}
	if h.runner == nil {
		timed()
		return nil
	}
	return h.runner.Do(ctx, timed)
}
