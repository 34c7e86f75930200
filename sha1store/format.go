package sha1store

import (
	"regexp"
	"strings"
)

// URIHint describes the key syntax of sha1 stores.
const URIHint = "<sha1>"

// SchemeURIHint describes the key syntax accepted by Composite.
const SchemeURIHint = "<sha1> or sha1://<sha1>"

var (
	sha1Regex    = regexp.MustCompile(`^[0-9a-fA-F]{40}$`)
	sha1URIRegex = regexp.MustCompile(`^(?i:sha1://)?([0-9a-fA-F]{40})$`)
)

// IsSha1 reports whether key is exactly 40 hex characters, in any case.
func IsSha1(key string) bool {
	return sha1Regex.MatchString(key)
}

// IsSha1URI reports whether uri is a sha1, optionally prefixed with sha1://.
func IsSha1URI(uri string) bool {
	return sha1URIRegex.MatchString(uri)
}

// Canonical returns the lowercase 40 hex form of uri.
// ok is false if uri is not a valid sha1 URI.
func Canonical(uri string) (key string, ok bool) {
	m := sha1URIRegex.FindStringSubmatch(uri)
	if m == nil {
		return "", false
	}
	return strings.ToLower(m[1]), true
}
