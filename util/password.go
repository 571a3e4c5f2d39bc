package util

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

var (
	jwtSecretValue = getEnv("JWTSECRET", "")
	jwtSecret      = jwtSecretValue
	jwtSecretByte  = []byte(jwtSecretValue)
	jwtMutex       sync.RWMutex
)

// Argon2id parameters used for new hashes. Stored hashes carry their own
// parameters so these can be raised without breaking existing accounts.
const (
	argon2Time    uint32 = 1
	argon2Memory  uint32 = 64 * 1024
	argon2Threads uint8  = 4
	argon2KeyLen  uint32 = 32
	saltLen              = 16

	argon2Prefix = "argon2id$"
)

func getEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}

// HashPassword is the legacy HMAC-SHA256 hash keyed by the JWT secret. It is
// only used to verify accounts created before argon2id, which are upgraded on
// their next successful login.
func HashPassword(password string) (hashedPassword string) {
	secretByte := GetJWTSecretByte()
	h := hmac.New(sha256.New, secretByte)
	h.Write([]byte(password))
	hashedPassword = hex.EncodeToString(h.Sum(nil))
	return
}

// GenerateSalt returns a random base64 encoded salt.
func GenerateSalt() (string, error) {
	b := make([]byte, saltLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return base64.RawStdEncoding.EncodeToString(b), nil
}

// HashPasswordArgon2 hashes password with argon2id and returns
// "argon2id$<time>$<memory>$<threads>$<base64 key>".
func HashPasswordArgon2(password, salt string) (string, error) {
	if salt == "" {
		return "", fmt.Errorf("salt cannot be empty")
	}
	key := argon2.IDKey([]byte(password), []byte(salt), argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	return fmt.Sprintf("%s%d$%d$%d$%s", argon2Prefix, argon2Time, argon2Memory, argon2Threads,
		base64.RawStdEncoding.EncodeToString(key)), nil
}

// IsArgon2Hash reports whether hash was produced by HashPasswordArgon2.
func IsArgon2Hash(hash string) bool {
	return strings.HasPrefix(hash, argon2Prefix)
}

// VerifyPassword compares password against a stored argon2id or legacy hash
// in constant time.
func VerifyPassword(password, stored, salt string) (bool, error) {
	if !IsArgon2Hash(stored) {
		legacy := HashPassword(password)
		return subtle.ConstantTimeCompare([]byte(legacy), []byte(stored)) == 1, nil
	}

	parts := strings.Split(strings.TrimPrefix(stored, argon2Prefix), "$")
	if len(parts) != 4 {
		return false, fmt.Errorf("malformed argon2 hash")
	}
	t, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return false, fmt.Errorf("malformed argon2 time: %w", err)
	}
	m, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return false, fmt.Errorf("malformed argon2 memory: %w", err)
	}
	p, err := strconv.ParseUint(parts[2], 10, 8)
	if err != nil {
		return false, fmt.Errorf("malformed argon2 threads: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return false, fmt.Errorf("malformed argon2 key: %w", err)
	}

	got := argon2.IDKey([]byte(password), []byte(salt), uint32(t), uint32(m), uint8(p), uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// SetJWTSecret allows tests or runtime code to update the JWT secret used
// for both token signing and legacy password hashing. This function is thread-safe
// and can be called concurrently. Tests using this should avoid parallel execution
// if they need deterministic secret values.
func SetJWTSecret(secret string) {
	jwtMutex.Lock()
	defer jwtMutex.Unlock()
	jwtSecret = secret
	jwtSecretByte = []byte(secret)
}

// GetJWTSecretByte returns a copy of the current JWT secret bytes in a thread-safe manner.
func GetJWTSecretByte() []byte {
	jwtMutex.RLock()
	defer jwtMutex.RUnlock()
	// Return a copy to prevent external modifications using idiomatic Go pattern
	return append([]byte(nil), jwtSecretByte...)
}
