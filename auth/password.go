// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/scrypt"
)

var ErrMalformedHash = errors.New("malformed password hash")

// Parameters of the "salt:hex" scrypt hashes written by older versions
// of the service.
const (
	legacyScryptN      = 16384
	legacyScryptR      = 8
	legacyScryptP      = 1
	legacyScryptKeyLen = 64
)

// HashPassword returns a bcrypt hash of password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword checks password against a stored hash. Both bcrypt
// hashes and legacy scrypt "salt:hex" hashes are accepted.
func VerifyPassword(password, stored string) (bool, error) {
	if strings.HasPrefix(stored, "$2") {
		err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("%w: %w", ErrMalformedHash, err)
		}
		return true, nil
	}

	salt, hexHash, ok := strings.Cut(stored, ":")
	if !ok || salt == "" {
		return false, ErrMalformedHash
	}
	want, err := hex.DecodeString(hexHash)
	if err != nil || len(want) != legacyScryptKeyLen {
		return false, ErrMalformedHash
	}

	// The salt is used as its hex text, not decoded
	got, err := scrypt.Key([]byte(password), []byte(salt), legacyScryptN, legacyScryptR, legacyScryptP, legacyScryptKeyLen)
	if err != nil {
		return false, fmt.Errorf("failed to derive key: %w", err)
	}
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// IsLegacyHash reports whether stored should be rehashed with bcrypt
func IsLegacyHash(stored string) bool {
	return !strings.HasPrefix(stored, "$2")
}
