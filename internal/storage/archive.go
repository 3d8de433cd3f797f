package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/nurpe/seminar-quote/internal/config"
)

// Archiver stores generated booking documents and returns where they live.
type Archiver interface {
	Archive(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// S3Archive writes to any S3 compatible bucket (R2, MinIO, AWS).
type S3Archive struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3Archive(ctx context.Context, cfg config.ArchiveConfig) (*S3Archive, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			),
		),
		awsconfig.WithEndpointResolverWithOptions(
			aws.EndpointResolverWithOptionsFunc(
				func(service, region string, options ...interface{}) (aws.Endpoint, error) {
					if service == s3.ServiceID {
						return aws.Endpoint{
							URL:           cfg.Endpoint,
							SigningRegion: "auto",
						}, nil
					}
					return aws.Endpoint{}, &aws.EndpointNotFoundError{}
				},
			),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load archive config: %w", err)
	}

	return &S3Archive{
		client: s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = true
		}),
		bucket:  cfg.Bucket,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

func (a *S3Archive) Archive(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("archive %s: %w", key, err)
	}

	if a.baseURL == "" {
		return fmt.Sprintf("s3://%s/%s", a.bucket, key), nil
	}
	return fmt.Sprintf("%s/%s", a.baseURL, key), nil
}
