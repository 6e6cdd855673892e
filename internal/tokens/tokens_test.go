package tokens

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_IssueParse_Roundtrip(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("test-secret"))

	token, exp, err := codec.Issue(42, "ann@x.com", "customer")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(TTL), exp, time.Second)

	claims, err := codec.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "ann@x.com", claims.Email)
	assert.Equal(t, "customer", claims.Role)
}

func TestCodec_Parse_WrongSecret(t *testing.T) {
	t.Parallel()

	token, _, err := NewCodec([]byte("secret-a")).Issue(1, "a@x.com", "admin")
	require.NoError(t, err)

	_, err = NewCodec([]byte("secret-b")).Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_Parse_Tampered(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("test-secret"))
	token, _, err := codec.Issue(1, "a@x.com", "customer")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	// flip the payload, keep the signature
	parts[1] = parts[1][:len(parts[1])-2] + "xx"
	_, err = codec.Parse(strings.Join(parts, "."))
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = codec.Parse("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestCodec_Parse_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	issued := time.Now()
	expiry := issued.Add(TTL)

	codec := NewCodec([]byte("test-secret")).WithNow(func() time.Time { return issued })
	token, exp, err := codec.Issue(7, "b@x.com", "seller")
	require.NoError(t, err)
	require.True(t, exp.Equal(expiry))

	codec.WithNow(func() time.Time { return expiry.Add(-time.Second) })
	claims, err := codec.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)

	codec.WithNow(func() time.Time { return expiry.Add(time.Second) })
	_, err = codec.Parse(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
