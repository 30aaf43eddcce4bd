package vault

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"lsfd202201/internal/backup"
)

// S3Vault stores encrypted snapshots as objects under a key prefix in an S3
// bucket.
type S3Vault struct {
	name     string
	bucket   string
	prefix   string
	client   *s3.Client
	uploader *manager.Uploader
}

// NewS3Vault creates a vault backed by the given bucket and prefix.
// accessKey and secretKey are optional; when empty, the SDK's default
// credential chain (environment, shared config, instance role) is used.
func NewS3Vault(ctx context.Context, name, bucket, prefix, region, accessKey, secretKey string) (*S3Vault, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3Vault{
		name:     name,
		bucket:   bucket,
		prefix:   strings.TrimSuffix(prefix, "/"),
		client:   client,
		uploader: manager.NewUploader(client),
	}, nil
}

func (v *S3Vault) key(name string) string {
	if v.prefix == "" {
		return "snapshots/" + name
	}
	return v.prefix + "/snapshots/" + name
}

// PutSnapshot uploads a snapshot. The upload manager splits large snapshots
// into multipart uploads transparently.
func (v *S3Vault) PutSnapshot(name string, r io.Reader, size int64) error {
	_, err := v.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket:        aws.String(v.bucket),
		Key:           aws.String(v.key(name)),
		Body:          r,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("uploading snapshot %s: %w", name, err)
	}
	return nil
}

// GetSnapshot downloads a snapshot by name and writes it to w.
func (v *S3Vault) GetSnapshot(name string, w io.Writer) error {
	out, err := v.client.GetObject(context.Background(), &s3.GetObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(v.key(name)),
	})
	if err != nil {
		return fmt.Errorf("downloading snapshot %s: %w", name, err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("reading snapshot %s: %w", name, err)
	}
	return nil
}

// ListSnapshots returns the stored snapshot names in lexical order.
func (v *S3Vault) ListSnapshots() ([]string, error) {
	keyPrefix := v.key("")

	var names []string
	var continuation *string
	for {
		out, err := v.client.ListObjectsV2(context.Background(), &s3.ListObjectsV2Input{
			Bucket:            aws.String(v.bucket),
			Prefix:            aws.String(keyPrefix),
			ContinuationToken: continuation,
		})
		if err != nil {
			return nil, fmt.Errorf("listing snapshots: %w", err)
		}

		for _, obj := range out.Contents {
			names = append(names, strings.TrimPrefix(aws.ToString(obj.Key), keyPrefix))
		}

		if !aws.ToBool(out.IsTruncated) {
			break
		}
		continuation = out.NextContinuationToken
	}

	sort.Strings(names)
	return names, nil
}

// ValidateSetup verifies the bucket exists and is reachable with the
// configured credentials.
func (v *S3Vault) ValidateSetup() error {
	_, err := v.client.HeadBucket(context.Background(), &s3.HeadBucketInput{
		Bucket: aws.String(v.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", v.bucket, err)
	}
	return nil
}

// Compile-time check that S3Vault implements backup.Vault
var _ backup.Vault = (*S3Vault)(nil)
