package storage

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/hashicorp/vault/api"
	"github.com/ruteri/bitstore/interfaces"
)

var vaultURIRegex = regexp.MustCompile(`^vault://([^/]+)/(.*[^/])$`)

// VaultConfig configures a VaultStore.
type VaultConfig struct {
	// Address of the Vault server, e.g. https://vault.example.com:8200
	Address string `yaml:"address"`
	Token   string `yaml:"token"`

	// ClientCert and ClientKey are optional PEM files for TLS client authentication.
	ClientCert string `yaml:"client_cert"`
	ClientKey  string `yaml:"client_key"`
}

// VaultStore implements a store over vault://mount/path URIs using the
// HashiCorp Vault KV v2 secrets engine. Values are kept base64 encoded under
// the "content" key.
type VaultStore struct {
	client *api.Client
	log    *slog.Logger
}

// NewVaultStore creates a new Vault store.
func NewVaultStore(cfg VaultConfig, log *slog.Logger) (*VaultStore, error) {
	if log == nil {
		log = slog.Default()
	}

	config := api.DefaultConfig()
	if cfg.Address != "" {
		config.Address = cfg.Address
	}

	if cfg.ClientCert != "" {
		clientCert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("failed to load Vault client certificate: %w", err)
		}
		config.HttpClient = &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					Certificates: []tls.Certificate{clientCert},
				},
			},
			Timeout: 30 * time.Second,
		}
	}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if cfg.Token != "" {
		client.SetToken(cfg.Token)
	}

	return &VaultStore{client: client, log: log}, nil
}

func (b *VaultStore) IsValid(uri string) bool {
	return vaultURIRegex.MatchString(uri)
}

func (b *VaultStore) URIHint() string {
	return "vault://mount/path"
}

// Get reads the secret named by uri.
// Unreachable or erroring Vault servers are reported as NotAvailable.
func (b *VaultStore) Get(ctx context.Context, uri string) ([]byte, error) {
	if err := CheckValid(b, uri); err != nil {
		return nil, err
	}
	start := time.Now()
	path := b.dataPath(uri)

	secret, err := b.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		b.log.Error("Failed to read from Vault",
			slog.String("path", path),
			"err", err)
		return nil, &interfaces.NotAvailableError{Store: b.Name(), Err: err}
	}

	if secret == nil || secret.Data == nil {
		b.log.Debug("Content not found in Vault", slog.String("path", path))
		return nil, &interfaces.NotFoundError{Store: b.Name(), URI: uri}
	}

	// Soft-deleted and destroyed versions come back with null data.
	if secret.Data["data"] == nil {
		b.log.Debug("Content deleted in Vault", slog.String("path", path))
		return nil, &interfaces.NotFoundError{Store: b.Name(), URI: uri}
	}

	// Extract data from the response (KV v2 format)
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid data format in Vault response")
	}
	content, ok := data["content"].(string)
	if !ok {
		return nil, fmt.Errorf("content key not found in Vault data")
	}

	decoded, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, fmt.Errorf("invalid content encoding in Vault data: %w", err)
	}

	b.log.Debug("Fetched content from Vault",
		slog.String("path", path),
		slog.Int("size", len(decoded)),
		slog.Duration("duration", time.Since(start)))

	return decoded, nil
}

// Put writes data as a new version of the secret named by uri.
func (b *VaultStore) Put(ctx context.Context, uri string, data []byte) error {
	if err := CheckValid(b, uri); err != nil {
		return err
	}
	path := b.dataPath(uri)

	secretData := map[string]interface{}{
		"data": map[string]interface{}{
			"content": base64.StdEncoding.EncodeToString(data),
		},
	}

	if _, err := b.client.Logical().WriteWithContext(ctx, path, secretData); err != nil {
		b.log.Error("Failed to write to Vault",
			slog.String("path", path),
			"err", err)
		return &interfaces.NotAvailableError{Store: b.Name(), Err: err}
	}

	b.log.Debug("Stored content in Vault",
		slog.String("path", path),
		slog.Int("size", len(data)))

	return nil
}

func (b *VaultStore) Name() string {
	return "vault"
}

// dataPath maps vault://mount/path to the KV v2 API path mount/data/path.
func (b *VaultStore) dataPath(uri string) string {
	m := vaultURIRegex.FindStringSubmatch(uri)
	return fmt.Sprintf("%s/data/%s", m[1], m[2])
}
