package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashServiceRoundTrip(t *testing.T) {
	svc := NewHashService()

	encoded, err := svc.Hash("secret-value")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$"))

	ok, err := svc.Verify("secret-value", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify("wrong-value", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashServiceSaltVaries(t *testing.T) {
	svc := NewHashService()

	a, err := svc.Hash("same")
	require.NoError(t, err)
	b, err := svc.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashServiceMalformed(t *testing.T) {
	svc := NewHashService()

	_, err := svc.Verify("x", "not-a-hash")
	assert.Error(t, err)

	_, err = svc.Verify("x", "$bcrypt$v=19$m=1,t=1,p=1$a$b")
	assert.Error(t, err)
}
