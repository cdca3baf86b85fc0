// Package proof implements the credential math for challenge-response login:
// the salted password hash stored in the user directory, the per-attempt
// login proof derived from it, and the constant-time comparison used to
// check submitted proofs. No function in this package ever sees a nonce or
// hash travel back out as anything but a hex string.
package proof

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"encoding/hex"

	"golang.org/x/crypto/argon2"
)

// argon2id parameters, shared by password hashing and proof derivation so a
// forged proof costs as much to compute as a password hash.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	argonKeyLen  = 32
)

// HashPassword derives the stored password hash from a password and the
// user's public salt. The client runs the same derivation locally after
// receiving the salt in the login challenge, so the password itself is never
// transmitted. The result is hex-encoded.
func HashPassword(password, salt string) string {
	sum := argon2.IDKey([]byte(password), []byte(salt), argonTime, argonMemory, argonThreads, argonKeyLen)
	return hex.EncodeToString(sum)
}

// Compute derives the login proof for one challenge round. The two nonces
// form the transcript salt, binding the proof to this attempt; the stored
// password hash is the secret input. Both sides can compute it, but only by
// knowing the stored hash.
func Compute(serverNonce, clientNonce uint64, storedHash string) string {
	var transcript [16]byte
	binary.BigEndian.PutUint64(transcript[:8], serverNonce)
	binary.BigEndian.PutUint64(transcript[8:], clientNonce)

	sum := argon2.IDKey([]byte(storedHash), transcript[:], argonTime, argonMemory, argonThreads, argonKeyLen)
	return hex.EncodeToString(sum)
}

// Equal compares two proof strings in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Fingerprint returns the SHA-256 of a session token, hex-encoded. Events
// and logs carry fingerprints so the credential itself stays off the wire.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
