package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// Uploader stores evidence images and returns their public URLs.
type Uploader interface {
	UploadEvidence(ctx context.Context, personName, kind, filename string, reader io.Reader) (*UploadResult, error)
}

type S3Client struct {
	client    *s3.Client
	bucket    string
	cdnDomain string // DigitalOcean CDN domain for faster downloads
}

type UploadResult struct {
	Key      string `json:"key"`
	URL      string `json:"url"`
	Checksum string `json:"checksum,omitempty"`
}

// NewS3Client creates a new S3 client configured for DigitalOcean Spaces
func NewS3Client(endpoint, region, bucket, accessKeyID, secretAccessKey string) (*S3Client, error) {
	// Generate CDN domain from bucket and region
	cdnDomain := fmt.Sprintf("https://%s.%s.cdn.digitaloceanspaces.com", bucket, region)
	// Configure custom resolver for DigitalOcean Spaces
	customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		if service == s3.ServiceID {
			return aws.Endpoint{
				URL:           endpoint,
				SigningRegion: region,
			}, nil
		}
		return aws.Endpoint{}, fmt.Errorf("unknown endpoint requested")
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(customResolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID, secretAccessKey, "",
		)),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true // Required for DigitalOcean Spaces
	})

	return &S3Client{
		client:    client,
		bucket:    bucket,
		cdnDomain: cdnDomain,
	}, nil
}

// UploadEvidence uploads one evidence image and returns its CDN URL. kind is
// either "person" (profile image) or "crimes" (report evidence); the key
// groups uploads per person folder.
func (s *S3Client) UploadEvidence(ctx context.Context, personName, kind, filename string, reader io.Reader) (*UploadResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	key := fmt.Sprintf("persons/%s/%s/%s%s", sanitizeFolderName(personName), kind, uuid.New().String(), ext)

	putInput := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        reader,
		ContentType: aws.String(getContentType(filename)),
		ACL:         types.ObjectCannedACLPublicRead, // images are served directly
	}

	result, err := s.client.PutObject(ctx, putInput)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	return &UploadResult{
		Key:      key,
		URL:      fmt.Sprintf("%s/%s", s.cdnDomain, key),
		Checksum: aws.ToString(result.ETag),
	}, nil
}

// sanitizeFolderName makes a person name safe for use as an object-key
// segment: lowercase, spaces and punctuation collapsed to single hyphens.
func sanitizeFolderName(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
			continue
		}
		if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "unknown"
	}
	return out
}

// getContentType returns the content type based on file extension
func getContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
