package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/digkill/TGCreditBot/internal/config"
)

const maxImageBytes = 20 << 20

// ObjectPutter is the part of the S3 client the archiver needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Archiver mirrors generated images into an S3 bucket.
type Archiver struct {
	bucket        string
	prefix        string
	publicBaseURL string
	client        ObjectPutter
	httpClient    *http.Client
	now           func() time.Time
}

func NewArchiver(cfg config.Config) (*Archiver, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	if cfg.S3Region == "" {
		return nil, fmt.Errorf("s3 region is required")
	}
	if cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
		return nil, fmt.Errorf("s3 credentials are required")
	}

	options := s3.Options{
		Region:       cfg.S3Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		UsePathStyle: cfg.S3UsePathStyle,
	}
	if cfg.S3Endpoint != "" {
		options.BaseEndpoint = aws.String(cfg.S3Endpoint)
	}

	return NewArchiverWithClient(s3.New(options), cfg.S3Bucket, cfg.S3Prefix, cfg.S3PublicBaseURL, &http.Client{Timeout: cfg.RequestTimeout})
}

func NewArchiverWithClient(client ObjectPutter, bucket, prefix, publicBaseURL string, httpClient *http.Client) (*Archiver, error) {
	if publicBaseURL == "" {
		return nil, fmt.Errorf("s3 public base url is required")
	}
	if prefix == "" {
		prefix = "generated"
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Archiver{
		bucket:        bucket,
		prefix:        strings.Trim(prefix, "/"),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		client:        client,
		httpClient:    httpClient,
		now:           time.Now,
	}, nil
}

// Archive downloads sourceURL and stores it under a dated random key. It
// returns the public URL of the stored copy.
func (a *Archiver) Archive(ctx context.Context, sourceURL string) (string, error) {
	data, contentType, err := a.download(ctx, sourceURL)
	if err != nil {
		return "", err
	}

	key := a.generateKey(contentType)
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("upload to s3: %w", err)
	}
	return a.publicBaseURL + "/" + key, nil
}

func (a *Archiver) download(ctx context.Context, sourceURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("new download request: %w", err)
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("download image: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("download image: empty body")
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("download image: larger than %d bytes", maxImageBytes)
	}

	contentType := strings.TrimSpace(strings.Split(resp.Header.Get("Content-Type"), ";")[0])
	if !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

func (a *Archiver) generateKey(contentType string) string {
	now := a.now().UTC()
	return path.Join(a.prefix, fmt.Sprintf("%04d/%02d/%02d", now.Year(), now.Month(), now.Day()), uuid.NewString()+extensionFromContentType(contentType))
}

func extensionFromContentType(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
