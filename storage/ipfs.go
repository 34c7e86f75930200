package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	shell "github.com/ipfs/go-ipfs-api"
	"github.com/ruteri/bitstore/interfaces"
)

var ipfsURIRegex = regexp.MustCompile(`^ipfs://([A-Za-z0-9]+)(/[^?#]*)?$`)

// IPFSConfig configures an IPFSStore.
type IPFSConfig struct {
	// API is the host:port of the IPFS node API.
	API string `yaml:"api"`
}

// IPFSStore implements a read-only store over ipfs://<cid>[/path] URIs.
type IPFSStore struct {
	shell *shell.Shell
	api   string
	log   *slog.Logger
}

// NewIPFSStore creates a new IPFS store connected to the node API at cfg.API.
func NewIPFSStore(cfg IPFSConfig, log *slog.Logger) *IPFSStore {
	if log == nil {
		log = slog.Default()
	}
	if cfg.API == "" {
		cfg.API = "localhost:5001" // Default IPFS API port
	}
	return &IPFSStore{
		shell: shell.NewShell(cfg.API),
		api:   cfg.API,
		log:   log,
	}
}

func (b *IPFSStore) IsValid(uri string) bool {
	return ipfsURIRegex.MatchString(uri)
}

func (b *IPFSStore) URIHint() string {
	return "ipfs://<cid>[/path]"
}

// Get reads the content at uri.
// Returns a NotAvailableError if the IPFS node is not accessible.
func (b *IPFSStore) Get(ctx context.Context, uri string) ([]byte, error) {
	if err := CheckValid(b, uri); err != nil {
		return nil, err
	}
	start := time.Now()
	path := b.ipfsPath(uri)

	// Check if the IPFS node is available
	if !b.shell.IsUp() {
		b.log.Warn("IPFS node unavailable", slog.String("api", b.api))
		return nil, &interfaces.NotAvailableError{Store: b.Name()}
	}

	reader, err := b.shell.Cat(path)
	if err != nil {
		if strings.Contains(err.Error(), "no link named") || strings.Contains(err.Error(), "not found") {
			b.log.Debug("Content not found in IPFS",
				slog.String("path", path),
				slog.Duration("duration", time.Since(start)))
			return nil, &interfaces.NotFoundError{Store: b.Name(), URI: uri, Err: err}
		}
		return nil, fmt.Errorf("failed to fetch data from IPFS: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data from IPFS: %w", err)
	}

	b.log.Debug("Fetched content from IPFS",
		slog.String("path", path),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return data, nil
}

func (b *IPFSStore) Name() string {
	return fmt.Sprintf("ipfs-%s", b.api)
}

func (b *IPFSStore) ipfsPath(uri string) string {
	m := ipfsURIRegex.FindStringSubmatch(uri)
	return "/ipfs/" + m[1] + m[2]
}
