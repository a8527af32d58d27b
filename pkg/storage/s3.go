package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/anonto42/recipe-hub/backend/pkg/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// AllowImage lists the content types accepted for recipe images.
var AllowImage = []string{"image/jpeg", "image/png", "image/webp", "image/gif"}

// AllowVideo lists the content types accepted for recipe videos.
var AllowVideo = []string{"video/mp4", "video/webm"}

// ErrContentType is returned when an upload's sniffed type is not allowed.
var ErrContentType = errors.New("content type not allowed")

// objectPutter is the subset of the S3 client the uploader needs.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3 stores recipe media in a bucket.
type S3 struct {
	client        objectPutter
	bucket        string
	publicBaseURL string
}

// NewS3 builds a client from cfg. Static keys are used when set, otherwise the
// default AWS credential chain applies. A custom endpoint switches to path-style
// addressing (MinIO, LocalStack).
func NewS3(ctx context.Context, cfg config.StorageConfig) (*S3, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	base := cfg.PublicBaseURL
	if base == "" {
		if cfg.Endpoint != "" {
			base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &S3{client: client, bucket: cfg.Bucket, publicBaseURL: strings.TrimRight(base, "/")}, nil
}

// UploadFile stores body under folder with a random key and returns the key
// and the sniffed content type, which must be one of allowed.
func (s *S3) UploadFile(ctx context.Context, folder, fileName string, body io.Reader, allowed ...string) (string, string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", "", fmt.Errorf("read upload: %w", err)
	}

	contentType := http.DetectContentType(data)
	if !contains(allowed, contentType) {
		return "", "", fmt.Errorf("%s: %w", contentType, ErrContentType)
	}

	key := path.Join(folder, uuid.NewString()+strings.ToLower(path.Ext(fileName)))
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", "", fmt.Errorf("put object %s: %w", key, err)
	}
	return key, contentType, nil
}

func (s *S3) DeleteFile(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// PublicURL returns the public link for key.
func (s *S3) PublicURL(key string) string {
	return s.publicBaseURL + "/" + key
}

// KeyFromURL is the inverse of PublicURL. It returns "" for foreign links.
func (s *S3) KeyFromURL(link string) string {
	prefix := s.publicBaseURL + "/"
	if !strings.HasPrefix(link, prefix) {
		return ""
	}
	return strings.TrimPrefix(link, prefix)
}

// MediaTypeOf reports whether contentType is an image or a video.
func MediaTypeOf(contentType string) string {
	if strings.HasPrefix(contentType, "video/") {
		return "video"
	}
	return "image"
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
