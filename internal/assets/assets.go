// Package assets stores uploaded binaries in two tiers: private receipts that
// resolve to expiring signed URLs, and public banners with permanent URLs.
package assets

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/imrishuroy/topup-storefront/internal/apperr"
)

// Tier is an access policy for stored assets.
type Tier string

const (
	TierPrivate Tier = "private"
	TierPublic  Tier = "public"
)

const (
	// SignedURLTTL is how long a resolved private URL stays valid.
	SignedURLTTL = 7 * 24 * time.Hour

	// MaxUploadBytes caps accepted uploads.
	MaxUploadBytes = 5 << 20
)

var allowedTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

// Upload is one file to store.
type Upload struct {
	Data        []byte
	ContentType string
	Filename    string
	Tier        Tier
}

// Asset identifies a stored object.
type Asset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Tier        Tier   `json:"tier"`
}

// Resolved is a retrievable URL. ExpiresAt is nil for public assets.
type Resolved struct {
	URL       string     `json:"url"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Store persists uploads and resolves them to URLs. Private URLs are signed on
// every Resolve call; an expired URL needs another Resolve.
type Store interface {
	Put(ctx context.Context, up Upload) (Asset, error)
	Resolve(ctx context.Context, id string) (Resolved, error)
}

// CheckUpload enforces the size and content type limits and returns the
// sniffed MIME type.
func CheckUpload(data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperr.Validation("file", "empty upload")
	}
	if len(data) > MaxUploadBytes {
		return "", apperr.Validation("file", "exceeds %d bytes", MaxUploadBytes)
	}
	mt := mimetype.Detect(data).String()
	if !allowedTypes[mt] {
		return "", apperr.Validation("file", "unsupported content type %s", mt)
	}
	return mt, nil
}

// ID joins a tier and object name into an asset id.
func ID(tier Tier, name string) string {
	return string(tier) + ":" + name
}

// ParseID splits an asset id into tier and object name.
func ParseID(id string) (Tier, string, error) {
	tier, name, ok := strings.Cut(id, ":")
	if !ok || name == "" {
		return "", "", apperr.Validation("receiptAssetId", "malformed asset id %q", id)
	}
	switch Tier(tier) {
	case TierPrivate, TierPublic:
		return Tier(tier), name, nil
	default:
		return "", "", apperr.Validation("receiptAssetId", "unknown tier %q", tier)
	}
}

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

// Namer produces object names prefixed with a strictly increasing
// millisecond timestamp.
type Namer struct {
	last    atomic.Int64
	nowFunc func() time.Time
}

// NewNamer returns a Namer on the wall clock.
func NewNamer() *Namer {
	return &Namer{nowFunc: time.Now}
}

// Next returns "<ms>-<sanitized filename>".
func (n *Namer) Next(filename string) string {
	ts := n.tick()
	clean := unsafeChars.ReplaceAllString(filename, "_")
	if clean == "" {
		clean = "upload"
	}
	return fmt.Sprintf("%d-%s", ts, clean)
}

func (n *Namer) tick() int64 {
	now := n.nowFunc().UnixMilli()
	for {
		prev := n.last.Load()
		next := max(now, prev+1)
		if n.last.CompareAndSwap(prev, next) {
			return next
		}
	}
}

// Router picks the bucket for a tier.
type Router struct {
	PrivateBucket string
	PublicBucket  string
}

func (r Router) bucket(t Tier) (string, error) {
	switch t {
	case TierPrivate:
		return r.PrivateBucket, nil
	case TierPublic:
		return r.PublicBucket, nil
	default:
		return "", apperr.Validation("tier", "unknown tier %q", t)
	}
}
