package utils

import (
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// R2Storage uploads media to a Cloudflare R2 bucket via the S3 API.
type R2Storage struct {
	s3           *s3.Client
	bucket       string
	publicDomain string
}

func NewR2Storage(ctx context.Context) (*R2Storage, error) {
	bucket := os.Getenv("R2_BUCKET")
	accessKey := os.Getenv("R2_ACCESS_KEY_ID")
	secretKey := os.Getenv("R2_SECRET_ACCESS_KEY")
	endpoint := os.Getenv("R2_ENDPOINT") // https://<account-id>.r2.cloudflarestorage.com
	domain := strings.TrimRight(os.Getenv("R2_PUBLIC_DOMAIN"), "/")

	if bucket == "" || accessKey == "" || secretKey == "" || endpoint == "" {
		return nil, fmt.Errorf("missing R2 env vars (R2_BUCKET, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_ENDPOINT)")
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("r2 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true // required for R2
	})

	return &R2Storage{s3: client, bucket: bucket, publicDomain: domain}, nil
}

func (r *R2Storage) UploadImage(ctx context.Context, folder string, fileHeader *multipart.FileHeader) (string, error) {
	objectName, ct := imageObjectName(folder, fileHeader)

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	_, err = r.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(r.bucket),
		Key:          aws.String(objectName),
		Body:         file,
		ContentType:  aws.String(ct),
		CacheControl: aws.String("no-cache"),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", fileHeader.Filename, err)
	}

	return fmt.Sprintf("%s/%s/%s", r.publicDomain, r.bucket, objectName), nil
}

func (r *R2Storage) DeleteImageByURL(ctx context.Context, rawURL string) error {
	if rawURL == "" {
		return nil
	}
	objectName, err := r.objectNameFromURL(rawURL)
	if err != nil {
		return err
	}
	_, err = r.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(objectName),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", objectName, err)
	}
	return nil
}

// objectNameFromURL parses R2 public URLs, both custom-domain and r2.dev
// subdomain styles.
func (r *R2Storage) objectNameFromURL(raw string) (string, error) {
	if r.publicDomain != "" && strings.HasPrefix(raw, r.publicDomain+"/"+r.bucket+"/") {
		return strings.TrimPrefix(raw, r.publicDomain+"/"+r.bucket+"/"), nil
	}

	for _, prefix := range []string{"https://", "http://"} {
		if strings.HasPrefix(raw, prefix) {
			withoutScheme := strings.TrimPrefix(raw, prefix)
			slash := strings.Index(withoutScheme, "/")
			if slash == -1 {
				return "", fmt.Errorf("no object path in url")
			}
			return withoutScheme[slash+1:], nil
		}
	}

	return "", fmt.Errorf("not a recognised R2 public url")
}

// imageObjectName builds a unique object name plus content type for an
// uploaded image.
func imageObjectName(folder string, fileHeader *multipart.FileHeader) (string, string) {
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext == "" {
		ext = ".bin"
	}

	ct := fileHeader.Header.Get("Content-Type")
	if ct == "" {
		ct = mime.TypeByExtension(ext)
	}
	if ct == "" {
		ct = "application/octet-stream"
	}

	objectName := fmt.Sprintf(
		"%s/%d-%s%s",
		folder, time.Now().UTC().Unix(), uuid.New().String(), ext,
	)
	return objectName, ct
}
