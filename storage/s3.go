package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/ruteri/bitstore/interfaces"
)

var s3URIRegex = regexp.MustCompile(`^s3://([^/]+)/(.+)$`)

// clientSetupTimeout bounds lazy client creation of the cloud stores.
const clientSetupTimeout = 30 * time.Second

// S3Credentials is one candidate way of authenticating against S3.
// The zero value uses the default AWS credential chain.
type S3Credentials struct {
	Anonymous bool   `yaml:"anonymous"`
	Profile   string `yaml:"profile"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// S3Config configures an S3Store.
type S3Config struct {
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`

	// Credentials are tried in order, the first one granting access is used.
	// Empty means the default credential chain.
	Credentials []S3Credentials `yaml:"credentials"`
}

// S3Store implements a store over s3://bucket/key URIs using Amazon S3 or
// compatible services. The client is created lazily on first use.
type S3Store struct {
	cfg S3Config
	log *slog.Logger

	once   sync.Once
	client s3iface.S3API

	// testAccess decides whether a non-anonymous client may be used.
	testAccess func(ctx context.Context, client s3iface.S3API) bool
}

// NewS3Store creates a new S3 store. No connection is made until the first Get or Put.
func NewS3Store(cfg S3Config, log *slog.Logger) *S3Store {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1" // Default region
	}
	if len(cfg.Credentials) == 0 {
		cfg.Credentials = []S3Credentials{{}}
	}
	return &S3Store{
		cfg:        cfg,
		log:        log,
		testAccess: listBuckets,
	}
}

// NewAnonymousS3Store creates an S3 store for public buckets.
func NewAnonymousS3Store(region string, log *slog.Logger) *S3Store {
	return NewS3Store(S3Config{
		Region:      region,
		Credentials: []S3Credentials{{Anonymous: true}},
	}, log)
}

// NewS3StoreWithClient creates an S3 store using an existing client.
func NewS3StoreWithClient(client s3iface.S3API, log *slog.Logger) *S3Store {
	store := NewS3Store(S3Config{}, log)
	store.once.Do(func() { store.client = client })
	return store
}

func (b *S3Store) IsValid(uri string) bool {
	return s3URIRegex.MatchString(uri)
}

func (b *S3Store) URIHint() string {
	return "s3://bucket/..."
}

// Get downloads the object named by uri.
// Returns a NotFoundError for missing keys or buckets and a NotAvailableError
// if no credentials candidate could produce a client.
func (b *S3Store) Get(ctx context.Context, uri string) ([]byte, error) {
	if err := CheckValid(b, uri); err != nil {
		return nil, err
	}
	client := b.s3Client(ctx)
	if client == nil {
		return nil, &interfaces.NotAvailableError{Store: b.Name()}
	}

	start := time.Now()
	bucket, key := parseS3URI(uri)

	result, err := client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			b.log.Debug("Content not found in S3",
				slog.String("bucket", bucket),
				slog.String("key", key),
				"err", err,
				slog.Duration("duration", time.Since(start)))
			return nil, &interfaces.NotFoundError{Store: b.Name(), URI: uri, Err: err}
		}

		b.log.Error("Failed to get object from S3",
			slog.String("bucket", bucket),
			slog.String("key", key),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}

	b.log.Debug("Fetched content from S3",
		slog.String("bucket", bucket),
		slog.String("key", key),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return data, nil
}

// Put uploads data as a private object in the standard storage class.
func (b *S3Store) Put(ctx context.Context, uri string, data []byte) error {
	if err := CheckValid(b, uri); err != nil {
		return err
	}
	client := b.s3Client(ctx)
	if client == nil {
		return &interfaces.NotAvailableError{Store: b.Name()}
	}

	bucket, key := parseS3URI(uri)
	_, err := client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ACL:          aws.String(s3.ObjectCannedACLPrivate),
		StorageClass: aws.String(s3.StorageClassStandard),
	})
	if err != nil {
		return fmt.Errorf("failed to upload object to S3: %w", err)
	}

	b.log.Debug("Stored content in S3",
		slog.String("bucket", bucket),
		slog.String("key", key),
		slog.Int("size", len(data)))

	return nil
}

func (b *S3Store) Name() string {
	return "s3"
}

// s3Client returns the shared client, creating it on first use.
// A nil result means no credentials candidate worked. Candidates are tested
// detached from ctx, since the result is shared by every later request.
func (b *S3Store) s3Client(ctx context.Context) s3iface.S3API {
	b.once.Do(func() {
		probeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), clientSetupTimeout)
		defer cancel()
		b.client = b.tryCredentials(probeCtx)
		if b.client == nil {
			b.log.Warn("No usable S3 credentials, store will not be available",
				slog.Int("candidates", len(b.cfg.Credentials)))
		}
	})
	return b.client
}

func (b *S3Store) tryCredentials(ctx context.Context) s3iface.S3API {
	for i, creds := range b.cfg.Credentials {
		client, err := b.newClient(creds)
		if err != nil {
			b.log.Debug("Failed to create S3 client",
				slog.Int("candidate", i),
				"err", err)
			continue
		}
		if creds.Anonymous {
			return client
		}
		if b.testAccess(ctx, client) {
			return client
		}
		b.log.Debug("S3 credentials candidate has no access", slog.Int("candidate", i))
	}
	return nil
}

func (b *S3Store) newClient(creds S3Credentials) (*s3.S3, error) {
	cfg := aws.Config{
		Region: aws.String(b.cfg.Region),
	}
	if b.cfg.Endpoint != "" {
		cfg.Endpoint = aws.String(b.cfg.Endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}

	switch {
	case creds.Anonymous:
		cfg.Credentials = credentials.AnonymousCredentials
	case creds.AccessKey != "" && creds.SecretKey != "":
		cfg.Credentials = credentials.NewStaticCredentials(creds.AccessKey, creds.SecretKey, "")
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            cfg,
		Profile:           creds.Profile,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return s3.New(sess), nil
}

func listBuckets(ctx context.Context, client s3iface.S3API) bool {
	_, err := client.ListBucketsWithContext(ctx, &s3.ListBucketsInput{})
	return err == nil
}

func parseS3URI(uri string) (bucket, key string) {
	m := s3URIRegex.FindStringSubmatch(uri)
	return m[1], m[2]
}

func isS3NotFound(err error) bool {
	var awsErr awserr.Error
	if !errors.As(err, &awsErr) {
		return false
	}
	switch awsErr.Code() {
	case s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket, s3.ErrCodeInvalidObjectState, "NotFound":
		return true
	}
	return false
}
