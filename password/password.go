// Package password hashes and verifies passwords with PBKDF2-HMAC-SHA256.
//
// Hashes are encoded as "pbkdf2:sha256:<iterations>$<salt>$<hex digest>",
// the same layout werkzeug produces, so accounts created by a werkzeug
// application keep working.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultIterations is the work factor used when a Hasher has none set.
	DefaultIterations = 600000
	// SaltLength is the number of salt characters in new hashes.
	SaltLength = 8

	saltChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// legacyIterations applies to hashes whose method omits the count.
	legacyIterations = 260000
)

// ErrMalformed is returned by Parse for strings that are not PBKDF2 hashes.
var ErrMalformed = errors.New("password: malformed hash")

// Hasher produces salted PBKDF2 hashes.
type Hasher struct {
	Iterations int
}

// Hash returns an encoded hash of plain with a fresh random salt.
func (h Hasher) Hash(plain string) (string, error) {
	salt, err := genSalt(SaltLength)
	if err != nil {
		return "", err
	}
	return h.hashWithSalt(plain, salt), nil
}

func (h Hasher) hashWithSalt(plain, salt string) string {
	iter := h.Iterations
	if iter <= 0 {
		iter = DefaultIterations
	}
	digest := derive(plain, salt, iter)
	return fmt.Sprintf("pbkdf2:sha256:%d$%s$%s", iter, salt, hex.EncodeToString(digest))
}

// Check reports whether plain matches the encoded hash. Malformed or
// unsupported hashes never match.
func Check(encoded, plain string) bool {
	p, err := Parse(encoded)
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(p.Digest)
	if err != nil {
		return false
	}
	got := derive(plain, p.Salt, p.Iterations)
	return subtle.ConstantTimeCompare(got, want) == 1
}

// Parsed is the decoded form of an encoded hash.
type Parsed struct {
	Iterations int
	Salt       string
	Digest     string
}

// Parse splits an encoded hash into its parts.
func Parse(encoded string) (Parsed, error) {
	method, rest, ok := strings.Cut(encoded, "$")
	if !ok {
		return Parsed{}, ErrMalformed
	}
	salt, digest, ok := strings.Cut(rest, "$")
	if !ok || salt == "" || digest == "" {
		return Parsed{}, ErrMalformed
	}
	parts := strings.Split(method, ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] != "pbkdf2" {
		return Parsed{}, ErrMalformed
	}
	if parts[1] != "sha256" {
		return Parsed{}, fmt.Errorf("%w: unsupported digest %q", ErrMalformed, parts[1])
	}
	iter := legacyIterations
	if len(parts) == 3 {
		n, err := strconv.Atoi(parts[2])
		if err != nil || n <= 0 {
			return Parsed{}, fmt.Errorf("%w: bad iteration count", ErrMalformed)
		}
		iter = n
	}
	return Parsed{Iterations: iter, Salt: salt, Digest: digest}, nil
}

func derive(plain, salt string, iter int) []byte {
	return pbkdf2.Key([]byte(plain), []byte(salt), iter, sha256.Size, sha256.New)
}

func genSalt(n int) (string, error) {
	max := big.NewInt(int64(len(saltChars)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate salt: %w", err)
		}
		b[i] = saltChars[idx.Int64()]
	}
	return string(b), nil
}
