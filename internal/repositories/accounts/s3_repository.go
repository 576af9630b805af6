package accounts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrijs2005/ftpaccounts/internal/common"
	"github.com/dmitrijs2005/ftpaccounts/internal/models"
)

// S3API is the subset of the S3 client used by S3Repository.
type S3API interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures the S3-compatible backend (AWS or MinIO).
type S3Options struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
}

// test seams
var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
)

// NewS3Client builds an S3 client with static credentials against
// BaseEndpoint, using path-style addressing.
func NewS3Client(ctx context.Context, o S3Options) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(o.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			o.AccessKey,
			o.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(so *s3.Options) {
		if o.BaseEndpoint != "" {
			so.BaseEndpoint = aws.String(o.BaseEndpoint)
		}
		so.UsePathStyle = true
	}), nil
}

// S3Repository keeps the document as an object; path is the object key.
type S3Repository struct {
	client S3API
	bucket string
}

func NewS3Repository(client S3API, bucket string) *S3Repository {
	return &S3Repository{client: client, bucket: bucket}
}

func (r *S3Repository) Stat(ctx context.Context, key string) (time.Time, error) {
	out, err := r.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return time.Time{}, r.wrap("stat", key, err)
	}
	return aws.ToTime(out.LastModified), nil
}

func (r *S3Repository) Load(ctx context.Context, key string) (*Snapshot, error) {
	modTime, err := r.Stat(ctx, key)
	if err != nil {
		return nil, err
	}

	data, err := r.get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read s3://%s/%s: %w: %w", r.bucket, key, common.ErrorNotFound, err)
	}

	accounts, err := models.DecodeAccounts(data)
	if err != nil {
		return nil, fmt.Errorf("load s3://%s/%s: %w", r.bucket, key, err)
	}

	return &Snapshot{Accounts: accounts, ModTime: modTime}, nil
}

func (r *S3Repository) Save(ctx context.Context, key string, account models.Account) (time.Time, error) {
	data, err := r.readExisting(ctx, key)
	if err != nil {
		return time.Time{}, err
	}

	out, err := mergeAccount(data, account)
	if err != nil {
		return time.Time{}, fmt.Errorf("save s3://%s/%s: %w", r.bucket, key, err)
	}

	return r.put(ctx, key, out)
}

func (r *S3Repository) Remove(ctx context.Context, key string, name string) (time.Time, error) {
	data, err := r.readExisting(ctx, key)
	if err != nil {
		return time.Time{}, err
	}
	if data == nil {
		return time.Time{}, fmt.Errorf("remove s3://%s/%s: %w", r.bucket, key, common.ErrorNotFound)
	}

	out, removed, err := removeAccount(data, name)
	if err != nil {
		return time.Time{}, fmt.Errorf("remove s3://%s/%s: %w", r.bucket, key, err)
	}
	if !removed {
		return r.Stat(ctx, key)
	}

	return r.put(ctx, key, out)
}

func (r *S3Repository) get(ctx context.Context, key string) ([]byte, error) {
	out, err := r.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// readExisting returns nil data for an object that does not exist yet.
func (r *S3Repository) readExisting(ctx context.Context, key string) ([]byte, error) {
	data, err := r.get(ctx, key)
	if err != nil {
		if isS3NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read s3://%s/%s: %w", r.bucket, key, err)
	}
	return data, nil
}

func (r *S3Repository) put(ctx context.Context, key string, data []byte) (time.Time, error) {
	_, err := r.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("write s3://%s/%s: %w", r.bucket, key, err)
	}
	return r.Stat(ctx, key)
}

func (r *S3Repository) wrap(op, key string, err error) error {
	if isS3NotFound(err) {
		return fmt.Errorf("%s s3://%s/%s: %w: %w", op, r.bucket, key, common.ErrorNotFound, err)
	}
	return fmt.Errorf("%s s3://%s/%s: %w", op, r.bucket, key, err)
}

func isS3NotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}
