package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndVerify(t *testing.T) {
	a := New()

	encoded, err := a.GenerateFromPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$"))

	ok, err := a.VerifyPasswd("correct horse battery staple", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.VerifyPasswd("wrong password", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGenerateUsesFreshSalt(t *testing.T) {
	a := New()

	one, err := a.GenerateFromPassword("same password")
	require.NoError(t, err)
	two, err := a.GenerateFromPassword("same password")
	require.NoError(t, err)

	assert.NotEqual(t, one, two)
}

func TestVerifyMalformedHash(t *testing.T) {
	a := New()

	_, err := a.VerifyPasswd("whatever", "not-a-phc-string")
	assert.Error(t, err)
}
