package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKeyIsDeterministicForSamePasswordAndSalt(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)

	a := DeriveKey([]byte("hunter2"), salt, 0)
	b := DeriveKey([]byte("hunter2"), salt, 0)
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)
}

func TestDeriveKeyDiffersAcrossSalts(t *testing.T) {
	saltA, err := GenerateSalt()
	require.NoError(t, err)
	saltB, err := GenerateSalt()
	require.NoError(t, err)

	a := DeriveKey([]byte("hunter2"), saltA, 1000)
	b := DeriveKey([]byte("hunter2"), saltB, 1000)
	assert.NotEqual(t, a, b)
}

func TestDerivedKeyWorksWithEncryptedStore(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)
	key := DeriveKey([]byte("correct horse battery staple"), salt, 1000)

	_, err = NewEncryptedStore(NewMemoryStore(), key)
	require.NoError(t, err)
}
