// Package storage wraps the S3-compatible object store the app keeps
// media binaries in
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/spf13/viper"
)

type S3Client struct {
	C      *s3.Client
	Bucket *string

	presign *s3.PresignClient
}

type PutInput struct {
	Key          string
	Body         io.Reader
	Size         int64
	ContentType  string
	CacheControl string
}

type Entry struct {
	Key          string
	Size         int64
	LastModified time.Time
}

func New() (*S3Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			viper.GetString("s3.access_key_id"),
			viper.GetString("s3.secret_access_key"),
			"",
		)),
	)
	if err != nil {
		return nil, err
	}

	bucket := aws.String(viper.GetString("s3.bucket"))

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.Region = viper.GetString("s3.region")
	})

	_, err = client.HeadBucket(context.TODO(), &s3.HeadBucketInput{
		Bucket: bucket,
	})
	if err != nil {
		var apiErr smithy.APIError

		if errors.As(err, &apiErr) {
			if apiErr.ErrorCode() == "NotFound" {
				return nil, fmt.Errorf("bucket '%s' does not exist", *bucket)
			}
		}

		return nil, fmt.Errorf("failed to check if bucket exists, %w", err)
	}

	return &S3Client{
		C:       client,
		Bucket:  bucket,
		presign: s3.NewPresignClient(client),
	}, nil
}

// Put writes one object. Bodies larger than upload.multipart_threshold go
// through the chunked uploader so a single bad part doesn't restart the
// whole transfer.
func (s *S3Client) Put(ctx context.Context, in PutInput) error {
	obj := &s3.PutObjectInput{
		Bucket:      s.Bucket,
		Key:         aws.String(in.Key),
		Body:        in.Body,
		ContentType: aws.String(in.ContentType),
	}

	if in.Size > 0 {
		obj.ContentLength = aws.Int64(in.Size)
	}
	if in.CacheControl != "" {
		obj.CacheControl = aws.String(in.CacheControl)
	}

	var err error
	if in.Size > viper.GetInt64("upload.multipart_threshold") {
		u := manager.NewUploader(s.C, func(u *manager.Uploader) {
			u.Concurrency = 5
			u.PartSize = 5 << 20
		})

		_, err = u.Upload(ctx, obj)
	} else {
		_, err = s.C.PutObject(ctx, obj)
	}
	if err != nil {
		return fmt.Errorf("failed to upload object, %w", err)
	}

	return nil
}

// List returns up to limit entries under the given key prefix.
func (s *S3Client) List(ctx context.Context, prefix string, limit int32) ([]Entry, error) {
	out, err := s.C.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  s.Bucket,
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list objects, %w", err)
	}

	entries := make([]Entry, 0, len(out.Contents))
	for _, o := range out.Contents {
		e := Entry{Key: aws.ToString(o.Key), Size: aws.ToInt64(o.Size)}
		if o.LastModified != nil {
			e.LastModified = *o.LastModified
		}
		entries = append(entries, e)
	}

	return entries, nil
}

// Remove deletes the given objects. S3 can delete at most 1000 keys per
// batch request so the slice is split accordingly.
func (s *S3Client) Remove(ctx context.Context, keys ...string) error {
	for start := 0; start < len(keys); start += 1000 {
		end := min(start+1000, len(keys))

		objects := make([]types.ObjectIdentifier, end-start)
		for i, key := range keys[start:end] {
			objects[i] = types.ObjectIdentifier{Key: aws.String(key)}
		}

		_, err := s.C.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: s.Bucket,
			Delete: &types.Delete{Objects: objects},
		})
		if err != nil {
			return fmt.Errorf("failed to delete objects, %w", err)
		}
	}

	return nil
}

// SignedURL returns a presigned GET link for the object.
func (s *S3Client) SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: s.Bucket,
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign object, %w", err)
	}

	return req.URL, nil
}

// PublicURL builds the public link for objects served through a CDN or
// public bucket policy. Only valid when s3.public_base_url is configured.
func (s *S3Client) PublicURL(key string) string {
	base := strings.TrimSuffix(viper.GetString("s3.public_base_url"), "/")
	if base == "" {
		return ""
	}

	return base + "/" + key
}
