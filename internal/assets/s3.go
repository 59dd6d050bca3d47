package assets

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/imrishuroy/topup-storefront/internal/apperr"
	"github.com/imrishuroy/topup-storefront/internal/aws"
)

// S3Store keeps receipts and banners in two S3 buckets.
type S3Store struct {
	client        aws.S3API
	presigner     aws.S3Presigner
	buckets       Router
	region        string
	publicBaseURL string
	namer         *Namer
	nowFunc       func() time.Time
}

// S3Config names the buckets. PublicBaseURL, when set, replaces the
// virtual-hosted bucket URL for public assets (a CDN in front of the bucket).
type S3Config struct {
	Buckets       Router
	Region        string
	PublicBaseURL string
}

// NewS3Store creates an S3Store.
func NewS3Store(client aws.S3API, presigner aws.S3Presigner, cfg S3Config) *S3Store {
	return &S3Store{
		client:        client,
		presigner:     presigner,
		buckets:       cfg.Buckets,
		region:        cfg.Region,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		namer:         NewNamer(),
		nowFunc:       time.Now,
	}
}

func (s *S3Store) Put(ctx context.Context, up Upload) (Asset, error) {
	bucket, err := s.buckets.bucket(up.Tier)
	if err != nil {
		return Asset{}, err
	}
	name := s.namer.Next(up.Filename)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(name),
		Body:        bytes.NewReader(up.Data),
		ContentType: aws.String(up.ContentType),
		// objects are never overwritten
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		return Asset{}, apperr.Upload(name, err)
	}
	return Asset{ID: ID(up.Tier, name), Name: name, ContentType: up.ContentType, Tier: up.Tier}, nil
}

func (s *S3Store) Resolve(ctx context.Context, id string) (Resolved, error) {
	tier, name, err := ParseID(id)
	if err != nil {
		return Resolved{}, err
	}
	bucket, _ := s.buckets.bucket(tier)

	if tier == TierPublic {
		return Resolved{URL: s.publicURL(bucket, name)}, nil
	}

	expires := s.nowFunc().Add(SignedURLTTL)
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(name),
	}, s3.WithPresignExpires(SignedURLTTL))
	if err != nil {
		return Resolved{}, apperr.Upload(name, fmt.Errorf("sign url: %w", err))
	}
	return Resolved{URL: req.URL, ExpiresAt: &expires}, nil
}

func (s *S3Store) publicURL(bucket, name string) string {
	escaped := url.PathEscape(name)
	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + escaped
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, s.region, escaped)
}
