// Package storage provides an S3-compatible object storage client used for
// photo uploads and downloads. Bytes never pass through the server: clients
// upload and download directly against presigned URLs. It wraps the AWS SDK
// v2 and is configured for path-style access (required by R2/CEPH/MinIO).
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const (
	// UploadURLExpiry is how long a presigned PUT URL stays valid. Short on
	// purpose: upload URLs are requested immediately before the transfer.
	UploadURLExpiry = 2 * time.Minute

	// DownloadURLExpiry is how long a presigned GET URL stays valid.
	DownloadURLExpiry = 1 * time.Hour
)

// Client wraps an S3 client for presigned photo operations on one bucket.
type Client struct {
	s3        *s3.Client
	presigner *s3.PresignClient
	bucket    string
	publicURL string // optional CDN/direct URL for read access
}

// New creates an S3 storage client with path-style addressing. Returns
// (nil, nil) if endpoint or credentials are empty, allowing the app to
// start without storage.
func New(endpoint, region, accessKey, secretKey, bucket, publicURL string) (*Client, error) {
	if endpoint == "" || accessKey == "" || secretKey == "" {
		return nil, nil
	}

	// Strip trailing slash from endpoint for consistent URL building.
	endpoint = strings.TrimRight(endpoint, "/")

	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		UsePathStyle: true,
	})

	return &Client{
		s3:        s3Client,
		presigner: s3.NewPresignClient(s3Client),
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// UploadURL generates a presigned PUT URL for the given storage path.
// The client must send the same Content-Type it requested the URL with.
func (c *Client) UploadURL(ctx context.Context, path, contentType string) (string, error) {
	req, err := c.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(path),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(UploadURLExpiry))
	if err != nil {
		return "", fmt.Errorf("s3 presign put %s: %w", path, err)
	}
	return req.URL, nil
}

// DownloadURL returns a read URL for a stored object. Uses the configured
// public URL when set, otherwise generates a presigned GET URL.
func (c *Client) DownloadURL(ctx context.Context, path string) (string, error) {
	if c.publicURL != "" {
		return c.publicURL + "/" + path, nil
	}

	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(path),
	}, s3.WithPresignExpires(DownloadURLExpiry))
	if err != nil {
		return "", fmt.Errorf("s3 presign get %s: %w", path, err)
	}
	return req.URL, nil
}

// Delete removes an object. Deleting an already-deleted key is not an
// error, so Delete is safe to retry.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", path, err)
	}
	return nil
}

// Exists reports whether an object is present at the given path.
func (c *Client) Exists(ctx context.Context, path string) (bool, error) {
	_, err := c.s3.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("s3 head %s: %w", path, err)
	}
	return true, nil
}
