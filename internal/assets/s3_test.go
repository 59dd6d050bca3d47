package assets

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

type mockS3 struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newMockS3() *mockS3 {
	return &mockS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	path := *in.Bucket + "/" + *in.Key
	if _, exists := m.objects[path]; exists && in.IfNoneMatch != nil {
		return nil, &smithy.GenericAPIError{Code: "PreconditionFailed", Message: "object exists"}
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	m.objects[path] = data
	m.types[path] = *in.ContentType
	return &s3.PutObjectOutput{}, nil
}

func newTestS3Store(m *mockS3, publicBase string) *S3Store {
	client := s3.New(s3.Options{
		Region:      "ap-southeast-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
	})
	return NewS3Store(m, s3.NewPresignClient(client), S3Config{
		Buckets:       Router{PrivateBucket: "receipts", PublicBucket: "banners"},
		Region:        "ap-southeast-1",
		PublicBaseURL: publicBase,
	})
}

func TestS3Store_PrivateRoundTrip(t *testing.T) {
	m := newMockS3()
	s := newTestS3Store(m, "")
	ctx := context.Background()

	asset, err := s.Put(ctx, Upload{Data: pngBytes, ContentType: "image/png", Filename: "gcash receipt.png", Tier: TierPrivate})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if !strings.HasPrefix(asset.ID, "private:") || !strings.HasSuffix(asset.Name, "-gcash_receipt.png") {
		t.Fatalf("unexpected asset: %+v", asset)
	}
	if got := m.types["receipts/"+asset.Name]; got != "image/png" {
		t.Fatalf("content type = %q", got)
	}

	before := time.Now()
	res, err := s.Resolve(ctx, asset.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.ExpiresAt == nil {
		t.Fatal("private asset must carry an expiry")
	}
	if d := res.ExpiresAt.Sub(before); d < SignedURLTTL-time.Minute || d > SignedURLTTL+time.Minute {
		t.Fatalf("expiry %v not about 7 days out", d)
	}
	if !strings.Contains(res.URL, "X-Amz-Expires=604800") || !strings.Contains(res.URL, "receipts") {
		t.Fatalf("unexpected signed url: %s", res.URL)
	}

	// every resolve signs again
	again, err := s.Resolve(ctx, asset.ID)
	if err != nil || again.ExpiresAt == nil {
		t.Fatalf("second resolve: %v", err)
	}
}

func TestS3Store_PublicURLNeverExpires(t *testing.T) {
	s := newTestS3Store(newMockS3(), "")
	asset, err := s.Put(context.Background(), Upload{Data: pngBytes, ContentType: "image/png", Filename: "promo.png", Tier: TierPublic})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	res, err := s.Resolve(context.Background(), asset.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.ExpiresAt != nil {
		t.Fatalf("public asset must not expire, got %v", res.ExpiresAt)
	}
	want := "https://banners.s3.ap-southeast-1.amazonaws.com/" + asset.Name
	if res.URL != want {
		t.Fatalf("url = %s, want %s", res.URL, want)
	}

	cdn := newTestS3Store(newMockS3(), "https://cdn.example.com/")
	res, _ = cdn.Resolve(context.Background(), asset.ID)
	if res.URL != "https://cdn.example.com/"+asset.Name {
		t.Fatalf("cdn url = %s", res.URL)
	}
}

func TestS3Store_UploadErrorCarriesBackendMessage(t *testing.T) {
	m := newMockS3()
	m.err = &smithy.GenericAPIError{Code: "AccessDenied", Message: "bucket policy denies write"}
	s := newTestS3Store(m, "")

	_, err := s.Put(context.Background(), Upload{Data: pngBytes, ContentType: "image/png", Filename: "r.png", Tier: TierPrivate})
	if err == nil {
		t.Fatal("expected upload error")
	}
	if !strings.Contains(err.Error(), "bucket policy denies write") {
		t.Fatalf("backend message lost: %v", err)
	}
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("expected api error in chain")
	}
}
