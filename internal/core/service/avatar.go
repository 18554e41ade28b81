package service

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"

	"github.com/devconnector/directory-api/internal/core/domain"
)

// GravatarURL returns the protocol-relative gravatar for email: 200px, rated
// pg, falling back to the "mystery person" silhouette.
func GravatarURL(email string) string {
	sum := md5.Sum([]byte(domain.NormalizeEmail(email)))
	q := url.Values{}
	q.Set("s", "200")
	q.Set("r", "pg")
	q.Set("d", "mm")
	return "//www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?" + q.Encode()
}
