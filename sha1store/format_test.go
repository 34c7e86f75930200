package sha1store

import (
	"testing"

	"github.com/ruteri/bitstore/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		uri   string
		key   string
		valid bool
	}{
		{knownSha1, knownSha1, true},
		{knownSha1Upper, knownSha1, true},
		{"sha1://" + knownSha1, knownSha1, true},
		{"SHA1://" + knownSha1Upper, knownSha1, true},
		{"sha1:" + knownSha1, "", false},
		{knownSha1[:39], "", false},
		{knownSha1 + "0", "", false},
		{"g" + knownSha1[1:], "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			key, ok := Canonical(tt.uri)
			assert.Equal(t, tt.valid, ok)
			assert.Equal(t, tt.key, key)
			assert.Equal(t, tt.valid, IsSha1URI(tt.uri))
		})
	}
}

func TestIsSha1(t *testing.T) {
	assert.True(t, IsSha1(knownSha1))
	assert.True(t, IsSha1(knownSha1Upper))
	assert.False(t, IsSha1("sha1://"+knownSha1))
	assert.False(t, IsSha1("zzz"))
}

func TestVerifier(t *testing.T) {
	assert.Equal(t, knownSha1, Sum([]byte(knownData)))
	assert.Equal(t, "da39a3ee5e6b4b0d3255bfef95601890afd80709", Sum(nil))

	v := Verifier{Store: "test", Log: testLogger()}
	assert.NoError(t, v.Verify([]byte(knownData), knownSha1))
	assert.NoError(t, v.Verify([]byte(knownData), knownSha1Upper))

	err := v.Verify([]byte("something else"), knownSha1)
	require.Error(t, err)
	assert.ErrorIs(t, err, interfaces.ErrInvalidData)
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
	assert.Equal(t, "test found invalid data for '"+knownSha1+"'", err.Error())

	// A nil logger is allowed.
	assert.Error(t, Verifier{Store: "quiet"}.Verify([]byte("x"), knownSha1))
}
