package assets

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/imrishuroy/topup-storefront/internal/apperr"
)

// objectBackend is the part of the GCS client the store needs.
type objectBackend interface {
	Write(ctx context.Context, bucket, name, contentType string, data []byte) error
	SignedURL(bucket, name string, opts *storage.SignedURLOptions) (string, error)
}

type gcsClient struct {
	c *storage.Client
}

func (g gcsClient) Write(ctx context.Context, bucket, name, contentType string, data []byte) error {
	// DoesNotExist rejects an overwrite of an existing object
	obj := g.c.Bucket(bucket).Object(name).If(storage.Conditions{DoesNotExist: true})
	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write gs://%s/%s: %w", bucket, name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close gs://%s/%s: %w", bucket, name, err)
	}
	return nil
}

func (g gcsClient) SignedURL(bucket, name string, opts *storage.SignedURLOptions) (string, error) {
	return g.c.Bucket(bucket).SignedURL(name, opts)
}

// NewGCSClient creates a storage client. An empty credentialsFile uses
// application default credentials.
func NewGCSClient(ctx context.Context, credentialsFile string) (*storage.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	c, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return c, nil
}

// GCSStore keeps receipts and banners in two GCS buckets.
type GCSStore struct {
	backend       objectBackend
	buckets       Router
	publicBaseURL string
	namer         *Namer
	nowFunc       func() time.Time
}

// NewGCSStore creates a GCSStore on client.
func NewGCSStore(client *storage.Client, buckets Router, publicBaseURL string) *GCSStore {
	return newGCSStore(gcsClient{c: client}, buckets, publicBaseURL)
}

func newGCSStore(b objectBackend, buckets Router, publicBaseURL string) *GCSStore {
	return &GCSStore{
		backend:       b,
		buckets:       buckets,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		namer:         NewNamer(),
		nowFunc:       time.Now,
	}
}

func (s *GCSStore) Put(ctx context.Context, up Upload) (Asset, error) {
	bucket, err := s.buckets.bucket(up.Tier)
	if err != nil {
		return Asset{}, err
	}
	name := s.namer.Next(up.Filename)
	if err := s.backend.Write(ctx, bucket, name, up.ContentType, up.Data); err != nil {
		return Asset{}, apperr.Upload(name, err)
	}
	return Asset{ID: ID(up.Tier, name), Name: name, ContentType: up.ContentType, Tier: up.Tier}, nil
}

func (s *GCSStore) Resolve(ctx context.Context, id string) (Resolved, error) {
	tier, name, err := ParseID(id)
	if err != nil {
		return Resolved{}, err
	}
	bucket, _ := s.buckets.bucket(tier)

	if tier == TierPublic {
		base := s.publicBaseURL
		if base == "" {
			base = "https://storage.googleapis.com/" + bucket
		}
		return Resolved{URL: base + "/" + url.PathEscape(name)}, nil
	}

	expires := s.nowFunc().Add(SignedURLTTL)
	signed, err := s.backend.SignedURL(bucket, name, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: expires,
		Scheme:  storage.SigningSchemeV4,
	})
	if err != nil {
		return Resolved{}, apperr.Upload(name, fmt.Errorf("sign url: %w", err))
	}
	return Resolved{URL: signed, ExpiresAt: &expires}, nil
}
