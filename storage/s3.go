package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/ruteri/celia-media/interfaces"
)

// credentialsProvider is reported as the provider name of the static credentials.
const credentialsProvider = "celia-media"

// S3ObjectStore implements interfaces.ObjectStore using Amazon S3 or any
// S3-compatible service. It is bound to a single bucket.
type S3ObjectStore struct {
	client     *s3.S3
	bucketName string
	log        *slog.Logger
}

// NewS3ObjectStore creates a client for one bucket from resolved options.
// No requests are sent to the endpoint; the session is only configured.
func NewS3ObjectStore(opts interfaces.ObjectStoreOptions, log *slog.Logger) (*S3ObjectStore, error) {
	cfg := aws.Config{
		Region:           aws.String(opts.Region),
		S3ForcePathStyle: aws.Bool(opts.ForcePathStyle),
		Credentials: credentials.NewStaticCredentialsFromCreds(credentials.Value{
			AccessKeyID:     opts.AccessKey,
			SecretAccessKey: opts.SecretKey,
			ProviderName:    credentialsProvider,
		}),
	}
	if opts.EndpointURL != "" {
		cfg.Endpoint = aws.String(opts.EndpointURL)
	}

	sess, err := session.NewSession(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3ObjectStore{
		client:     s3.New(sess),
		bucketName: opts.Bucket,
		log:        log,
	}, nil
}

// Bucket returns the bucket name.
func (b *S3ObjectStore) Bucket() string {
	return b.bucketName
}

// HeadObject issues a metadata-only request for key.
func (b *S3ObjectStore) HeadObject(ctx context.Context, key string) error {
	start := time.Now()

	_, err := b.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if isHeadNotFound(err) {
			b.log.Debug("Object not found in S3",
				slog.String("bucket", b.bucketName),
				slog.String("key", key),
				slog.Duration("duration", time.Since(start)))
			return fmt.Errorf("%w: %s", interfaces.ErrObjectNotFound, key)
		}
		return fmt.Errorf("head object: %w", cleanError(err))
	}

	b.log.Debug("Headed object in S3",
		slog.String("bucket", b.bucketName),
		slog.String("key", key),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// PresignGetObject builds a signed GET URL for key. Signing is local; no
// request is sent.
func (b *S3ObjectStore) PresignGetObject(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, _ := b.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(b.bucketName),
		Key:    aws.String(key),
	})
	req.SetContext(ctx)

	url, err := req.Presign(expiry)
	if err != nil {
		return "", fmt.Errorf("presign get object: %w", cleanError(err))
	}
	return url, nil
}

// GetObject fetches key and returns its body unread.
func (b *S3ObjectStore) GetObject(ctx context.Context, key string) (*interfaces.Object, error) {
	start := time.Now()

	result, err := b.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			b.log.Debug("Object not found in S3",
				slog.String("bucket", b.bucketName),
				slog.String("key", key),
				slog.Duration("duration", time.Since(start)))
			return nil, fmt.Errorf("%w: %s", interfaces.ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("get object: %w", cleanError(err))
	}

	contentLength := int64(-1)
	if result.ContentLength != nil {
		contentLength = *result.ContentLength
	}

	b.log.Debug("Opened object stream from S3",
		slog.String("bucket", b.bucketName),
		slog.String("key", key),
		slog.Int64("size", contentLength),
		slog.Duration("duration", time.Since(start)))

	return &interfaces.Object{
		ContentType:   aws.StringValue(result.ContentType),
		ContentLength: contentLength,
		Body:          result.Body,
	}, nil
}

// isHeadNotFound reports a missing key on HEAD. HEAD responses carry no body,
// so the SDK only has the status code to go on.
func isHeadNotFound(err error) bool {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
		return true
	}
	switch awsErrCode(err) {
	case "NotFound", s3.ErrCodeNoSuchKey:
		return true
	}
	return false
}

// isNoSuchKey reports a missing key on GET. A missing bucket is not a missing key.
func isNoSuchKey(err error) bool {
	return awsErrCode(err) == s3.ErrCodeNoSuchKey
}

func awsErrCode(err error) string {
	var awsErr awserr.Error
	if errors.As(err, &awsErr) {
		return awsErr.Code()
	}
	return ""
}

// cleanError flattens SDK errors into one line, keeping the code, message and
// the status code when there is one.
func cleanError(err error) error {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%s: %s (status %d, request id %s)",
			reqErr.Code(), reqErr.Message(), reqErr.StatusCode(), reqErr.RequestID())
	}
	var awsErr awserr.Error
	if errors.As(err, &awsErr) {
		if orig := awsErr.OrigErr(); orig != nil {
			return fmt.Errorf("%s: %s (%v)", awsErr.Code(), awsErr.Message(), orig)
		}
		return fmt.Errorf("%s: %s", awsErr.Code(), awsErr.Message())
	}
	return err
}
