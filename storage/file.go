package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"
	"github.com/ruteri/bitstore/interfaces"
	"github.com/spf13/afero"
)

var fileURIRegex = regexp.MustCompile(`^file://(/.*[^/])$`)

// FileStore implements a store over file:// URIs with absolute paths.
// Writes go to a temporary file that is renamed into place.
type FileStore struct {
	fs  afero.Fs
	log *slog.Logger
}

// NewFileStore creates a file store on top of fs.
// A nil fs means the operating system file system.
func NewFileStore(fs afero.Fs, log *slog.Logger) *FileStore {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if log == nil {
		log = slog.Default()
	}
	return &FileStore{fs: fs, log: log}
}

func (b *FileStore) IsValid(uri string) bool {
	return fileURIRegex.MatchString(uri)
}

func (b *FileStore) URIHint() string {
	return "file:///absolute/path"
}

// Get reads the file named by uri.
// Returns a NotFoundError if the file doesn't exist.
func (b *FileStore) Get(ctx context.Context, uri string) ([]byte, error) {
	if err := CheckValid(b, uri); err != nil {
		return nil, err
	}
	filePath := b.path(uri)

	info, err := b.fs.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &interfaces.NotFoundError{Store: b.Name(), URI: uri}
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return nil, &interfaces.NotFoundError{Store: b.Name(), URI: uri}
	}

	data, err := afero.ReadFile(b.fs, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	b.log.Debug("Fetched content from file",
		slog.String("path", filePath),
		slog.Int("size", len(data)))

	return data, nil
}

// Put writes data to the file named by uri, creating parent directories.
func (b *FileStore) Put(ctx context.Context, uri string, data []byte) error {
	if err := CheckValid(b, uri); err != nil {
		return err
	}
	filePath := b.path(uri)

	// Create parent directory if it doesn't exist
	if err := b.fs.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmpPath := fmt.Sprintf("%s.tmp-%s", filePath, uuid.NewString())
	if err := afero.WriteFile(b.fs, tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := b.fs.Rename(tmpPath, filePath); err != nil {
		_ = b.fs.Remove(tmpPath)
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	b.log.Debug("Stored content in file",
		slog.String("path", filePath),
		slog.Int("size", len(data)))

	return nil
}

func (b *FileStore) Name() string {
	return "file"
}

func (b *FileStore) path(uri string) string {
	return filepath.FromSlash(fileURIRegex.FindStringSubmatch(uri)[1])
}
