// Package password wraps bcrypt hashing for the login and secondary
// passwords. Both services share it; only the work factor differs.
package password

import "golang.org/x/crypto/bcrypt"

// Work factors. Registration hashes with a higher cost than the secondary
// password because registration is infrequent.
const (
	LoginCost     = 12
	SecondaryCost = 10
)

// Hash returns the bcrypt digest of plaintext at the given cost. The digest
// embeds its own random salt, so hashing the same plaintext twice yields
// different digests.
func Hash(plaintext string, cost int) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches the bcrypt digest. A malformed
// digest verifies false rather than erroring; bcrypt's comparison is
// constant-time over the derived keys.
func Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
