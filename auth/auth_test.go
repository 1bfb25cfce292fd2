// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scrypt hash of "secret123" as written by the previous Node service
const legacyHash = "0123456789abcdef0123456789abcdef:" +
	"f5615a3dbbe996eb99e8be5c9817f62b55eeffb85c8d68b0e399772a7b55cade" +
	"4fa0be5798fbeb60e3fe9d5637a076a4f956b46d61d56676b0abd65e041702fe"

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name    string
		byteLen int
		wantLen int // hex encoded length = byteLen * 2
	}{
		{"8 bytes", 8, 16},
		{"16 bytes", 16, 32},
		{"24 bytes", 24, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			require.NoError(t, err)
			assert.Len(t, id, tt.wantLen)
			assert.Regexp(t, `^[0-9a-f]+$`, id)
		})
	}

	id1, _ := GenerateID(16)
	id2, _ := GenerateID(16)
	assert.NotEqual(t, id1, id2)
}

func TestGenerateSessionToken(t *testing.T) {
	token, err := GenerateSessionToken()
	require.NoError(t, err)

	// 24 bytes base64 without padding = 32 chars
	assert.Len(t, token, 32)
	assert.False(t, strings.ContainsAny(token, "+/="), "token is not URL-safe: %s", token)

	other, _ := GenerateSessionToken()
	assert.NotEqual(t, token, other)
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2"), "expected bcrypt hash, got %q", hash)
	assert.False(t, IsLegacyHash(hash))

	tests := []struct {
		name     string
		password string
		stored   string
		want     bool
		wantErr  bool
	}{
		{"bcrypt match", "correct horse", hash, true, false},
		{"bcrypt mismatch", "wrong horse", hash, false, false},
		{"legacy match", "secret123", legacyHash, true, false},
		{"legacy mismatch", "secret124", legacyHash, false, false},
		{"no separator", "x", "deadbeef", false, true},
		{"bad hex", "x", "salt:zz", false, true},
		{"short key", "x", "salt:abcd", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := VerifyPassword(tt.password, tt.stored)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
