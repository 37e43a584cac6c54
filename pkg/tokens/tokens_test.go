package tokens

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSecret(t *testing.T) {
	t.Parallel()

	a, err := NewSecret()
	require.NoError(t, err)
	b, err := NewSecret()
	require.NoError(t, err)

	assert.Len(t, a, 40)
	assert.Len(t, b, 40)
	assert.NotEqual(t, a, b)
}

func TestVerificationCode(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		code, err := VerificationCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestComposeSplit(t *testing.T) {
	t.Parallel()

	secret, err := NewSecret()
	require.NoError(t, err)

	plain := Compose(42, secret)
	id, gotSecret, err := Split(plain)
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, secret, gotSecret)
}

func TestSplitMalformed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		plain string
	}{
		{"empty", ""},
		{"no separator", "42abcdef"},
		{"missing id", "|secret"},
		{"missing secret", "42|"},
		{"non numeric id", "abc|secret"},
		{"negative id", "-1|secret"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := Split(tc.plain)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}

func TestSha256Hex(t *testing.T) {
	t.Parallel()

	digest := Sha256Hex("secret")
	assert.Len(t, digest, 64)
	assert.Equal(t, digest, Sha256Hex("secret"))
	assert.NotEqual(t, digest, Sha256Hex("Secret"))
}
