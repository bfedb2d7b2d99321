// Package crypto implements the passcode credential schemes.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters. Passcodes are at most four digits, so the sealed form
// only keeps them out of plain sight in the store.
const (
	argonTime    uint32 = 1
	argonMemory  uint32 = 19 * 1024
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
	saltLen             = 16

	sealedPrefix = "argon2id$"
)

// Credentials turns a passcode into its stored form and checks attempts against it.
type Credentials interface {
	// Seal returns the value to store for a new user.
	Seal(passcode string) (string, error)
	// Verify reports whether passcode matches the stored value.
	Verify(passcode, stored string) bool
}

// Plain stores passcodes verbatim and compares them by exact match.
type Plain struct{}

// Seal returns the passcode unchanged.
func (Plain) Seal(passcode string) (string, error) { return passcode, nil }

// Verify compares by exact match.
func (Plain) Verify(passcode, stored string) bool {
	return subtle.ConstantTimeCompare([]byte(passcode), []byte(stored)) == 1
}

// Sealed stores new passcodes as salted Argon2id hashes. Stored values that
// are not sealed are still accepted by exact match, so switching schemes does
// not change who can log in.
type Sealed struct{}

// Seal returns "argon2id$<salt>$<hash>" with base64 (raw std) parts.
func (Sealed) Seal(passcode string) (string, error) {
	salt, err := RandBytes(saltLen)
	if err != nil {
		return "", err
	}
	enc := base64.RawStdEncoding
	return sealedPrefix + enc.EncodeToString(salt) + "$" + enc.EncodeToString(HashPassword([]byte(passcode), salt)), nil
}

// Verify checks a sealed or legacy plain stored value.
func (Sealed) Verify(passcode, stored string) bool {
	if !IsSealed(stored) {
		return Plain{}.Verify(passcode, stored)
	}
	rest := strings.TrimPrefix(stored, sealedPrefix)
	saltPart, hashPart, ok := strings.Cut(rest, "$")
	if !ok {
		return false
	}
	enc := base64.RawStdEncoding
	salt, err := enc.DecodeString(saltPart)
	if err != nil {
		return false
	}
	hash, err := enc.DecodeString(hashPart)
	if err != nil {
		return false
	}
	return VerifyPassword([]byte(passcode), salt, hash)
}

// IsSealed reports whether a stored value was produced by Sealed.
func IsSealed(stored string) bool { return strings.HasPrefix(stored, sealedPrefix) }

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// HashPassword returns Argon2id hash of password using the provided salt.
func HashPassword(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// VerifyPassword verifies password against expected Argon2id hash and salt.
func VerifyPassword(password, salt, expected []byte) bool {
	got := HashPassword(password, salt)
	return subtle.ConstantTimeCompare(got, expected) == 1
}
