package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPassword      = "SecurePassword123!"
	testWrongPassword = "WrongPassword456!"
)

func TestHashPassword_Success(t *testing.T) {
	hash, err := HashPassword(testPassword)

	require.NoError(t, err, "HashPassword should not return error for valid password")
	assert.NotEmpty(t, hash, "Hash should not be empty")
	assert.NotEqual(t, testPassword, hash, "Hash should be different from password")
	assert.Contains(t, hash, "$argon2id$", "Hash should contain Argon2id identifier")
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	hash1, err := HashPassword(testPassword)
	require.NoError(t, err)
	hash2, err := HashPassword(testPassword)
	require.NoError(t, err)

	assert.NotEqual(t, hash1, hash2, "Same password should produce different hashes (random salt)")
}

func TestVerifyPassword_Correct(t *testing.T) {
	hash, err := HashPassword(testPassword)
	require.NoError(t, err, "Setup: HashPassword should not fail")

	match, err := VerifyPassword(testPassword, hash)

	require.NoError(t, err, "VerifyPassword should not return error")
	assert.True(t, match, "Password should match its hash")
}

func TestVerifyPassword_Incorrect(t *testing.T) {
	hash, err := HashPassword(testPassword)
	require.NoError(t, err, "Setup: HashPassword should not fail")

	match, err := VerifyPassword(testWrongPassword, hash)

	require.NoError(t, err, "VerifyPassword should not return error")
	assert.False(t, match, "Wrong password should not match hash")
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	_, err := VerifyPassword(testPassword, "not-a-valid-hash")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestVerifyPassword_IncompatibleVersion(t *testing.T) {
	hash, err := HashPassword(testPassword)
	require.NoError(t, err)

	// Tamper the encoded version
	tampered := strings.Replace(hash, "v=19", "v=18", 1)

	_, err = VerifyPassword(testPassword, tampered)
	assert.ErrorIs(t, err, ErrIncompatibleVersion)
}
