// Package crypto provides the handshake key transport, session key
// generation, verification codes and password credential hashing.
package crypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/subtle"
	"crypto/x509"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"

	"github.com/TripleSteak/Final-Aisle/pkg/wire"
)

// HandshakeKeyBits is the RSA modulus size clients use for the key
// exchange.
const HandshakeKeyBits = 2048

// GenerateSessionKey generates a fresh random 256-bit symmetric key.
// One is minted per session at connection time and never reused.
func GenerateSessionKey() ([]byte, error) {
	key := make([]byte, wire.SessionKeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("crypto: generate session key: %w", err)
	}
	return key, nil
}

// GenerateHandshakeKey generates an ephemeral RSA keypair for one
// connection's key exchange (client side).
func GenerateHandshakeKey() (*rsa.PrivateKey, error) {
	pk, err := rsa.GenerateKey(rand.Reader, HandshakeKeyBits)
	if err != nil {
		return nil, fmt.Errorf("crypto: generate handshake key: %w", err)
	}
	return pk, nil
}

// MarshalPublicKey exports an RSA public key in the transmittable
// PKIX/DER form both ends agree on.
func MarshalPublicKey(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("crypto: marshal public key: %w", err)
	}
	return der, nil
}

// ParsePublicKey parses the peer's transmitted public key parameters.
func ParsePublicKey(der []byte) (*rsa.PublicKey, error) {
	key, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("crypto: parse public key: %w", err)
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("crypto: public key is %T, want RSA", key)
	}
	return pub, nil
}

// WrapSessionKey encrypts the session key under the peer's public key
// so it never crosses the wire in the clear.
func WrapSessionKey(pub *rsa.PublicKey, sessionKey []byte) ([]byte, error) {
	ct, err := rsa.EncryptPKCS1v15(rand.Reader, pub, sessionKey)
	if err != nil {
		return nil, fmt.Errorf("crypto: wrap session key: %w", err)
	}
	return ct, nil
}

// UnwrapSessionKey recovers the session key on the client side.
func UnwrapSessionKey(priv *rsa.PrivateKey, wrapped []byte) ([]byte, error) {
	key, err := rsa.DecryptPKCS1v15(rand.Reader, priv, wrapped)
	if err != nil {
		return nil, fmt.Errorf("crypto: unwrap session key: %w", err)
	}
	if len(key) != wire.SessionKeySize {
		return nil, fmt.Errorf("crypto: unwrapped key is %d bytes, want %d", len(key), wire.SessionKeySize)
	}
	return key, nil
}

// VerificationCodeLength is the length of emailed verification codes.
const VerificationCodeLength = 6

// GenerateVerificationCode produces a random six-character alphanumeric
// code. The character at index 2 is always a pure digit; the rest are
// base-36 (digit or uppercase letter).
func GenerateVerificationCode() (string, error) {
	code := make([]byte, VerificationCodeLength)
	for i := range code {
		max := 36
		if i == 2 {
			max = 10
		}
		n, err := randInt(max)
		if err != nil {
			return "", fmt.Errorf("crypto: generate verification code: %w", err)
		}
		if n < 10 {
			code[i] = byte('0' + n)
		} else {
			code[i] = byte('A' + n - 10)
		}
	}
	return string(code), nil
}

// randInt returns a uniform random int in [0, max) for small max.
func randInt(max int) (int, error) {
	// Rejection sampling keeps the distribution uniform.
	bound := 256 - 256%max
	var b [1]byte
	for {
		if _, err := rand.Read(b[:]); err != nil {
			return 0, err
		}
		if int(b[0]) < bound {
			return int(b[0]) % max, nil
		}
	}
}

// SaltSize is the per-account password salt size.
const SaltSize = 16

// NewSalt generates a random password salt.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("crypto: generate salt: %w", err)
	}
	return salt, nil
}

// HashPassword hashes a password using Argon2id.
func HashPassword(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, 1, 64*1024, 4, 32)
}

// VerifyPassword reports whether password matches the stored hash,
// in constant time.
func VerifyPassword(password string, salt, hash []byte) bool {
	candidate := HashPassword(password, salt)
	return subtle.ConstantTimeCompare(candidate, hash) == 1
}
