// Package cryptox implements one-way password hashing for stored credentials.
//
// New hashes are argon2id, encoded in the PHC string format:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
//
// where salt and key are unpadded standard base64. The parameters travel with
// the hash, so changing Argon2Params only affects hashes created afterwards.
// Verification additionally accepts bcrypt hashes ($2a$, $2b$, $2y$) imported
// from older deployments.
package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const argon2idPrefix = "$argon2id$"

// Upper bounds applied to parameters read back from a stored hash, so a
// corrupted or hostile record cannot make Verify allocate gigabytes.
const (
	maxMemoryKiB   = 1 << 20
	maxIterations  = 64
	maxKeyLength   = 128
	minSaltLength  = 8
	minKeyLength   = 16
	argon2idFields = 6
)

// ErrInvalidParams is returned by Argon2Params.Validate.
var ErrInvalidParams = errors.New("invalid argon2 parameters")

// Argon2Params tunes the cost of new hashes.
type Argon2Params struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Params are the production hashing costs.
var DefaultArgon2Params = Argon2Params{
	MemoryKiB:   64 * 1024,
	Iterations:  1,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// Validate reports whether p can produce a usable hash.
func (p Argon2Params) Validate() error {
	switch {
	case p.Iterations == 0 || p.Iterations > maxIterations:
		return fmt.Errorf("%w: iterations %d", ErrInvalidParams, p.Iterations)
	case p.Parallelism == 0:
		return fmt.Errorf("%w: parallelism must be positive", ErrInvalidParams)
	case p.MemoryKiB < 8*uint32(p.Parallelism) || p.MemoryKiB > maxMemoryKiB:
		return fmt.Errorf("%w: memory %d KiB", ErrInvalidParams, p.MemoryKiB)
	case p.SaltLength < minSaltLength:
		return fmt.Errorf("%w: salt length %d", ErrInvalidParams, p.SaltLength)
	case p.KeyLength < minKeyLength || p.KeyLength > maxKeyLength:
		return fmt.Errorf("%w: key length %d", ErrInvalidParams, p.KeyLength)
	}
	return nil
}

// PasswordHasher hashes and verifies passwords. The zero value is not usable;
// construct with NewPasswordHasher. Safe for concurrent use.
type PasswordHasher struct {
	params Argon2Params
}

// NewPasswordHasher returns a hasher producing argon2id hashes with p.
func NewPasswordHasher(p Argon2Params) (*PasswordHasher, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &PasswordHasher{params: p}, nil
}

// DeriveKey runs argon2id over password and salt with the given parameters.
func DeriveKey(password, salt []byte, p Argon2Params) []byte {
	return argon2.IDKey(password, salt, p.Iterations, p.MemoryKiB, p.Parallelism, p.KeyLength)
}

// Hash returns the encoded argon2id hash of plaintext under a fresh random
// salt. Two calls with the same input never return the same string.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := DeriveKey([]byte(plaintext), salt, h.params)

	enc := base64.RawStdEncoding
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2idPrefix, argon2.Version,
		h.params.MemoryKiB, h.params.Iterations, h.params.Parallelism,
		enc.EncodeToString(salt), enc.EncodeToString(key)), nil
}

// Verify reports whether plaintext matches encoded. Malformed or unsupported
// encodings yield false.
func (h *PasswordHasher) Verify(plaintext, encoded string) bool {
	switch {
	case strings.HasPrefix(encoded, argon2idPrefix):
		return verifyArgon2id(plaintext, encoded)
	case isBcrypt(encoded):
		return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(plaintext)) == nil
	default:
		return false
	}
}

func isBcrypt(encoded string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(encoded, prefix) {
			return true
		}
	}
	return false
}

func verifyArgon2id(plaintext, encoded string) bool {
	p, salt, key, err := decodeArgon2id(encoded)
	if err != nil {
		return false
	}
	candidate := DeriveKey([]byte(plaintext), salt, p)
	return subtle.ConstantTimeCompare(key, candidate) == 1
}

func decodeArgon2id(encoded string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params

	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(encoded, "$")
	if len(parts) != argon2idFields {
		return p, nil, nil, ErrInvalidParams
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, ErrInvalidParams
	}

	var parallelism uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.MemoryKiB, &p.Iterations, &parallelism); err != nil {
		return p, nil, nil, ErrInvalidParams
	}
	if parallelism == 0 || parallelism > 255 {
		return p, nil, nil, ErrInvalidParams
	}
	p.Parallelism = uint8(parallelism)

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, ErrInvalidParams
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, ErrInvalidParams
	}
	p.SaltLength = uint32(len(salt))
	p.KeyLength = uint32(len(key))

	if err := p.Validate(); err != nil {
		return p, nil, nil, err
	}
	return p, salt, key, nil
}
