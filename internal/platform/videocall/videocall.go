// Package videocall allocates unique call-room URLs for video visits.
package videocall

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

const tokenBytes = 16

// Allocator builds call-room URLs of the form <base>/<tenant>-<token>.
type Allocator struct {
	baseURL string
	tenant  string
}

// NewAllocator constructs an Allocator. baseURL is the video provider root
// (e.g. https://meet.jit.si) and tenant the establishment slug.
func NewAllocator(baseURL, tenant string) *Allocator {
	return &Allocator{
		baseURL: strings.TrimRight(baseURL, "/"),
		tenant:  tenant,
	}
}

// NewRoomURL returns a fresh room URL backed by 16 bytes of entropy from
// crypto/rand. Tokens are never reused; a URL is allocated once per
// appointment and kept for its lifetime.
func (a *Allocator) NewRoomURL() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate room token: %w", err)
	}
	return fmt.Sprintf("%s/%s-%s", a.baseURL, a.tenant, hex.EncodeToString(buf)), nil
}
