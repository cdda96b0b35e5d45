package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/DouglasAltwig/AWSomeBuilder3/internal/core/domain"
)

type Config struct {
	// Optional custom endpoint, e.g. a minio server for local runs.
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

// Connect builds an S3 client against AWS or an S3-compatible endpoint.
func Connect(cfg Config) *s3.Client {
	return s3.NewFromConfig(aws.Config{Region: cfg.Region}, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		if cfg.AccessKey != "" {
			o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		}
	})
}

// Store adapts the S3 API to the pipeline's object store port.
type Store struct {
	client *s3.Client
}

func New(client *s3.Client) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("s3 client can't be nil")
	}
	return &Store{client: client}, nil
}

func (s *Store) Get(ctx context.Context, loc domain.ObjectLocation) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, domain.WrapError(domain.ErrItemNotFound, "s3 get", err)
		}
		return nil, domain.WrapError(domain.ErrTransport, "s3 get", err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTransport, "s3 read body", err)
	}
	return body, nil
}

func (s *Store) Put(ctx context.Context, loc domain.ObjectLocation, body []byte) (string, error) {
	out, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
		Body:   bytes.NewReader(body),
	})
	if err != nil {
		return "", domain.WrapError(domain.ErrTransport, "s3 put", err)
	}
	return aws.ToString(out.ETag), nil
}

func (s *Store) Delete(ctx context.Context, loc domain.ObjectLocation) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		return domain.WrapError(domain.ErrTransport, "s3 delete", err)
	}
	return nil
}
