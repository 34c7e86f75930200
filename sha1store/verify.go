package sha1store

import (
	"crypto/sha1"
	"encoding/hex"
	"log/slog"
	"strings"

	"github.com/ruteri/bitstore/interfaces"
)

// Verifier checks payloads against their sha1 keys.
type Verifier struct {
	// Store names the store that errors are attributed to.
	Store string
	Log   *slog.Logger
}

// Sum returns the lowercase hex sha1 of data.
func Sum(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// Verify returns an *interfaces.InvalidDataError if the sha1 of data differs
// from key, compared case-insensitively.
func (v Verifier) Verify(data []byte, key string) error {
	calculated := Sum(data)
	if strings.ToLower(key) == calculated {
		return nil
	}
	if v.Log != nil {
		v.Log.Warn("Provided sha1 does not match the data",
			slog.String("store", v.Store),
			slog.String("sha1", key),
			slog.String("calculated_sha1", calculated))
	}
	return &interfaces.InvalidDataError{Store: v.Store, Key: key}
}
