package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

type (
	hashParams struct {
		memory  uint32
		time    uint32
		threads uint8
	}
)

const (
	saltLen = 16
	keyLen  = 32
)

var (
	// 64MB in a single pass is the argon2id baseline recommendation
	defaultHashParams = hashParams{memory: 64 * 1024, time: 1, threads: 4}

	ErrMalformedHash   = errors.New("auth: malformed password hash")
	ErrUnsupportedHash = errors.New("auth: unsupported password hash algorithm or version")
)

// HashPassword derives an argon2id hash from the plaintext using a
// fresh random salt and returns it in the self-describing PHC form
// $argon2id$v=19$m=...,t=...,p=...$salt$hash.
func HashPassword(plaintext string) (string, error) {
	salt := make([]byte, saltLen)
	_, err := rand.Read(salt)
	if err != nil {
		return "", fmt.Errorf("unable to generate salt, cause %w", err)
	}
	p := defaultHashParams
	key := argon2.IDKey([]byte(plaintext), salt, p.time, p.memory, p.threads, keyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.time, p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// VerifyPassword re-derives the hash using the salt and parameters
// embedded in encoded and compares in constant time.
//
// A hash that cannot be decoded yields an error, never a silent
// mismatch, a broken hasher must not default to "no match".
func VerifyPassword(plaintext string, encoded string) (bool, error) {
	p, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}
	derived := argon2.IDKey([]byte(plaintext), salt, p.time, p.memory, p.threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(derived, key) == 1, nil
}

func decodeHash(encoded string) (hashParams, []byte, []byte, error) {
	var p hashParams
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return p, nil, nil, ErrMalformedHash
	}
	if parts[1] != "argon2id" {
		return p, nil, nil, ErrUnsupportedHash
	}
	var version int
	_, err := fmt.Sscanf(parts[2], "v=%d", &version)
	if err != nil {
		return p, nil, nil, ErrMalformedHash
	}
	if version != argon2.Version {
		return p, nil, nil, ErrUnsupportedHash
	}
	_, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads)
	if err != nil {
		return p, nil, nil, ErrMalformedHash
	}
	// zero-valued parameters would panic deep inside argon2,
	// reject them here like any other corrupted hash
	if p.memory < 1 || p.time < 1 || p.threads < 1 {
		return p, nil, nil, ErrMalformedHash
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, ErrMalformedHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, ErrMalformedHash
	}
	return p, salt, key, nil
}
