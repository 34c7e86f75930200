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

	gcsStorage "cloud.google.com/go/storage"
	"github.com/ruteri/bitstore/interfaces"
	"google.golang.org/api/option"
)

var gsURIRegex = regexp.MustCompile(`^gs://([^/]+)/(.+)$`)

// GCSConfig configures a GCSStore.
type GCSConfig struct {
	Anonymous       bool   `yaml:"anonymous"`
	CredentialsFile string `yaml:"credentials_file"`
}

// GCSStore implements a store over gs://bucket/path URIs using Google Cloud Storage.
// The client is created lazily; if that fails the store reports NotAvailable.
type GCSStore struct {
	cfg GCSConfig
	log *slog.Logger

	once   sync.Once
	client *gcsStorage.Client
}

// NewGCSStore creates a new Google Cloud Storage store.
func NewGCSStore(cfg GCSConfig, log *slog.Logger) *GCSStore {
	if log == nil {
		log = slog.Default()
	}
	return &GCSStore{cfg: cfg, log: log}
}

func (g *GCSStore) IsValid(uri string) bool {
	return gsURIRegex.MatchString(uri)
}

func (g *GCSStore) URIHint() string {
	return "gs://bucket/..."
}

func (g *GCSStore) Get(ctx context.Context, uri string) ([]byte, error) {
	if err := CheckValid(g, uri); err != nil {
		return nil, err
	}
	client := g.gcsClient(ctx)
	if client == nil {
		return nil, &interfaces.NotAvailableError{Store: g.Name()}
	}

	start := time.Now()
	bucket, path := parseGSURI(uri)

	reader, err := client.Bucket(bucket).Object(path).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcsStorage.ErrObjectNotExist) || errors.Is(err, gcsStorage.ErrBucketNotExist) {
			g.log.Debug("Content not found in GCS",
				slog.String("bucket", bucket),
				slog.String("path", path),
				slog.Duration("duration", time.Since(start)))
			return nil, &interfaces.NotFoundError{Store: g.Name(), URI: uri, Err: err}
		}
		return nil, fmt.Errorf("failed to open object in GCS: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read object from GCS: %w", err)
	}

	g.log.Debug("Fetched content from GCS",
		slog.String("bucket", bucket),
		slog.String("path", path),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return data, nil
}

func (g *GCSStore) Put(ctx context.Context, uri string, data []byte) error {
	if err := CheckValid(g, uri); err != nil {
		return err
	}
	client := g.gcsClient(ctx)
	if client == nil {
		return &interfaces.NotAvailableError{Store: g.Name()}
	}

	bucket, path := parseGSURI(uri)
	writer := client.Bucket(bucket).Object(path).NewWriter(ctx)
	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write object to GCS: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to upload object to GCS: %w", err)
	}

	g.log.Debug("Stored content in GCS",
		slog.String("bucket", bucket),
		slog.String("path", path),
		slog.Int("size", len(data)))

	return nil
}

func (g *GCSStore) Name() string {
	return "gcs"
}

func (g *GCSStore) gcsClient(ctx context.Context) *gcsStorage.Client {
	g.once.Do(func() {
		var opts []option.ClientOption
		switch {
		case g.cfg.Anonymous:
			opts = append(opts, option.WithoutAuthentication())
		case g.cfg.CredentialsFile != "":
			opts = append(opts, option.WithCredentialsFile(g.cfg.CredentialsFile))
		}

		// The client keeps ctx for token refreshes and outlives the request
		// that happens to create it.
		client, err := gcsStorage.NewClient(context.WithoutCancel(ctx), opts...)
		if err != nil {
			g.log.Debug("Failed to create GCS client, this store will not be available", "err", err)
			return
		}
		g.client = client
	})
	return g.client
}

func parseGSURI(uri string) (bucket, path string) {
	m := gsURIRegex.FindStringSubmatch(uri)
	return m[1], m[2]
}
