package utils

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitKey(t *testing.T) {
	id, secret, ok := SplitKey(" abc.def.ghi ")
	require.True(t, ok)
	assert.Equal(t, "abc", id)
	assert.Equal(t, "def.ghi", secret)

	for _, bad := range []string{"", "abc", ".def", "abc."} {
		_, _, ok := SplitKey(bad)
		assert.False(t, ok, bad)
	}
}

func TestSecretRoundTrip(t *testing.T) {
	s, err := GenerateSecret(32)
	require.NoError(t, err)
	assert.Len(t, s, 43)
	assert.NotContains(t, s, ".")

	hash, err := HashSecret(s)
	require.NoError(t, err)
	assert.NoError(t, CheckSecret(hash, s))
	assert.Error(t, CheckSecret(hash, s+"x"))
}

func TestUpstreamClassification(t *testing.T) {
	assert.Equal(t, CodeUnavailable, CodeOf(Upstream("op", "m", errors.New("boom"))))
	assert.Equal(t, CodeTimeout, CodeOf(Upstream("op", "m", context.DeadlineExceeded)))

	inner := E(CodeInvalidArgument, "inner", "bad", nil)
	assert.Same(t, inner, Upstream("outer", "m", inner))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(E(CodeUnavailable, "", "", nil)))
	assert.Equal(t, http.StatusGatewayTimeout, HTTPStatus(E(CodeTimeout, "", "", nil)))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrNotFound))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("x")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("x")))
}
