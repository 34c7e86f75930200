package sha1store

import (
	"io"
	"log/slog"
	"strings"
)

const (
	// sha1 of "epic.bitstore"
	knownSha1 = "4bc39c7d87318382feb3cc5a684c767fbd913968"
	knownData = "epic.bitstore"
	// sha1 of "other"
	otherSha1 = "d0941e68da8f38151ff86a61fc59f7c5cf9fcaa2"
)

var knownSha1Upper = strings.ToUpper(knownSha1)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
