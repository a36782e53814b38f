package preview

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type presignAPI interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// loadDefaultAWSConfig is a seam for tests.
var loadDefaultAWSConfig = config.LoadDefaultConfig

// S3Options configures an S3-compatible backend (AWS or MinIO).
type S3Options struct {
	User         string
	Password     string
	Bucket       string
	Region       string
	BaseEndpoint string
	Prefix       string
	Expires      time.Duration
}

// S3 stores preview bytes as objects and issues presigned GET URLs as
// handles. Revoking a handle deletes its object, so the URL stops working
// even before it expires.
type S3 struct {
	objects objectAPI
	presign presignAPI
	bucket  string
	prefix  string
	expires time.Duration
	now     func() time.Time

	mu   sync.Mutex
	live map[string]string // handle -> object key
}

func NewS3(ctx context.Context, o S3Options) (*S3, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(o.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(o.User, o.Password, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(opts *s3.Options) {
		if o.BaseEndpoint != "" {
			opts.BaseEndpoint = aws.String(o.BaseEndpoint)
			opts.UsePathStyle = true
		}
	})

	return newS3(client, s3.NewPresignClient(client), o.Bucket, o.Prefix, o.Expires), nil
}

func newS3(objects objectAPI, presign presignAPI, bucket, prefix string, expires time.Duration) *S3 {
	if prefix == "" {
		prefix = "previews"
	}
	if expires <= 0 {
		expires = 15 * time.Minute
	}
	return &S3{
		objects: objects,
		presign: presign,
		bucket:  bucket,
		prefix:  prefix,
		expires: expires,
		now:     time.Now,
		live:    make(map[string]string),
	}
}

func (r *S3) storageKey(id string) string {
	d := r.now()
	return fmt.Sprintf("%s/%d/%02d/%02d/%s", r.prefix, d.Year(), d.Month(), d.Day(), id)
}

func (r *S3) Create(ctx context.Context, id, contentType string, data []byte) (string, error) {
	key := r.storageKey(id)

	_, err := r.objects.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(r.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	req, err := r.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(r.expires))
	if err != nil {
		_ = r.deleteObject(ctx, key)
		return "", fmt.Errorf("presign %s: %w", key, err)
	}

	r.mu.Lock()
	r.live[req.URL] = key
	r.mu.Unlock()

	return req.URL, nil
}

// Revoke deletes the object behind handle. Unknown handles are ignored, and
// a handle is forgotten even when the delete fails so it is never retried.
func (r *S3) Revoke(ctx context.Context, handle string) error {
	r.mu.Lock()
	key, ok := r.live[handle]
	delete(r.live, handle)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	return r.deleteObject(ctx, key)
}

// Live returns the number of unrevoked handles.
func (r *S3) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

func (r *S3) deleteObject(ctx context.Context, key string) error {
	_, err := r.objects.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}
