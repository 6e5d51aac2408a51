// Package session seals the authenticated identity into an encrypted
// httpOnly cookie and opens it back on subsequent requests. Tokens are
// AES-GCM over a JSON payload, so any tampering or a wrong secret makes the
// whole token unreadable rather than leaking a partial payload.
package session

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
)

// CookieName is the fixed name of the session cookie.
const CookieName = "low_session"

// MaxAge bounds the session lifetime from issuance.
const MaxAge = 7 * 24 * time.Hour

// Data is the payload carried inside the session cookie.
type Data struct {
	UserID     string `json:"userId"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	IsLoggedIn bool   `json:"isLoggedIn"`
	ExpiresAt  int64  `json:"expiresAt"`
}

// Codec seals and opens session tokens bound to a server-held secret.
type Codec struct {
	key    []byte
	secure bool // set Secure on cookies (production)
	now    func() time.Time
}

// NewCodec creates a Codec from the configured secret. The AES-256 key is
// derived from the secret with SHA-256, so any non-empty secret works.
func NewCodec(secret string, secure bool) *Codec {
	key := sha256.Sum256([]byte(secret))
	return &Codec{key: key[:], secure: secure, now: time.Now}
}

// Seal encrypts the payload into an opaque token. The expiry is stamped
// here; callers never set Data.ExpiresAt themselves.
func (c *Codec) Seal(data Data) (string, error) {
	data.ExpiresAt = c.now().Add(MaxAge).Unix()

	plaintext, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aesgcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	// nonce || ciphertext, base64url for cookie transport
	sealed := aesgcm.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open decrypts a token back into its payload. Any tampering, a wrong
// secret, a malformed token, or an expired session yields ok=false; none of
// those are errors worth distinguishing to the caller.
func (c *Codec) Open(token string) (Data, bool) {
	sealed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Data{}, false
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return Data{}, false
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return Data{}, false
	}
	if len(sealed) < aesgcm.NonceSize() {
		return Data{}, false
	}

	nonce, ciphertext := sealed[:aesgcm.NonceSize()], sealed[aesgcm.NonceSize():]
	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return Data{}, false
	}

	var data Data
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return Data{}, false
	}
	if data.ExpiresAt <= c.now().Unix() {
		return Data{}, false
	}
	return data, true
}

// Issue seals the payload and writes it as the session cookie on the
// response: httpOnly, sameSite=lax, secure in production, 7-day max age.
func (c *Codec) Issue(ctx *fiber.Ctx, data Data) error {
	token, err := c.Seal(data)
	if err != nil {
		return err
	}
	ctx.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		MaxAge:   int(MaxAge.Seconds()),
		Expires:  c.now().Add(MaxAge),
		HTTPOnly: true,
		Secure:   c.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return nil
}

// Clear destroys the session cookie immediately.
func (c *Codec) Clear(ctx *fiber.Ctx) {
	ctx.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   c.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}
