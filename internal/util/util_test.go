package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileToken_RoundTrip(t *testing.T) {
	token, err := GenerateProfileToken("secret", "p4d", "profile-1", time.Hour)
	require.NoError(t, err)

	id, err := ParseProfileToken("secret", "p4d", token)
	require.NoError(t, err)
	assert.Equal(t, "profile-1", id)
}

func TestProfileToken_Rejects(t *testing.T) {
	token, err := GenerateProfileToken("secret", "p4d", "profile-1", time.Hour)
	require.NoError(t, err)

	_, err = ParseProfileToken("other-secret", "p4d", token)
	assert.Error(t, err, "wrong secret")

	_, err = ParseProfileToken("secret", "someone-else", token)
	assert.Error(t, err, "wrong issuer")

	_, err = ParseProfileToken("secret", "p4d", "not-a-token")
	assert.Error(t, err, "garbage")

	expired, err := GenerateProfileToken("secret", "p4d", "profile-1", -time.Hour)
	require.NoError(t, err)
	// non-positive ttl falls back to the default lifetime
	_, err = ParseProfileToken("secret", "p4d", expired)
	assert.NoError(t, err)

	_, err = GenerateProfileToken("", "p4d", "profile-1", time.Hour)
	assert.Error(t, err)
}

func TestCipher_RoundTrip(t *testing.T) {
	c, err := NewCipher("passphrase")
	require.NoError(t, err)
	require.NotNil(t, c)

	sealed, err := c.Seal([]byte(`{"id":"user-1"}`))
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "user-1")

	plain, err := c.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, `{"id":"user-1"}`, string(plain))

	again, err := c.Seal([]byte(`{"id":"user-1"}`))
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per seal")
}

func TestCipher_WrongKeyAndShortInput(t *testing.T) {
	a, err := NewCipher("one")
	require.NoError(t, err)
	b, err := NewCipher("two")
	require.NoError(t, err)

	sealed, err := a.Seal([]byte("hello"))
	require.NoError(t, err)

	_, err = b.Open(sealed)
	assert.Error(t, err)
	_, err = a.Open([]byte{1, 2})
	assert.Error(t, err)
}

func TestCipher_NilPassesThrough(t *testing.T) {
	c, err := NewCipher("")
	require.NoError(t, err)
	assert.Nil(t, c)

	out, err := c.Seal([]byte("plain"))
	require.NoError(t, err)
	assert.Equal(t, "plain", string(out))

	s, err := c.SealString("plain")
	require.NoError(t, err)
	assert.Equal(t, "plain", s)
	assert.Equal(t, "plain", c.OpenString("plain"))
}

func TestCipher_Strings(t *testing.T) {
	c, err := NewCipher("passphrase")
	require.NoError(t, err)

	s, err := c.SealString("POST /api/progress/polygon-basics/advance")
	require.NoError(t, err)
	assert.NotEqual(t, "POST /api/progress/polygon-basics/advance", s)
	assert.Equal(t, "POST /api/progress/polygon-basics/advance", c.OpenString(s))

	// undecryptable input comes back unchanged
	assert.Equal(t, "legacy plain", c.OpenString("legacy plain"))
}

func TestValidateSlug(t *testing.T) {
	for _, id := range []string{"polygon-basics", "web3-development", "a"} {
		assert.NoError(t, ValidateSlug(id), id)
	}
	for _, id := range []string{"", "Polygon", "a--b", "-a", "a b", "../etc"} {
		assert.Error(t, ValidateSlug(id), id)
	}
}

func TestValidatePercent(t *testing.T) {
	assert.NoError(t, ValidatePercent(0))
	assert.NoError(t, ValidatePercent(100))
	assert.Error(t, ValidatePercent(-1))
	assert.Error(t, ValidatePercent(101))
}

func TestValidateDate(t *testing.T) {
	assert.NoError(t, ValidateDate("2024-01-31"))
	for _, d := range []string{"", "2024/01/01", "2024-13-01", "not-a-date"} {
		assert.Error(t, ValidateDate(d), d)
	}
}
