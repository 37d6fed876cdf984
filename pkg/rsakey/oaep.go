package rsakey

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/saylorsolutions/rasterlock/pkg/cryptoerr"
)

// MaxMessageLen is the longest plaintext that Encrypt accepts for pub: the modulus size in bytes, less 66 bytes of OAEP SHA-256 overhead.
func MaxMessageLen(pub *rsa.PublicKey) int {
	return pub.Size() - 2*sha256.Size - 2
}

// Encrypt encrypts plaintext for pub with RSA-OAEP, using SHA-256 for both the label hash and MGF1, and an empty label.
// A nil random uses crypto/rand.Reader.
// Padding is randomized, so encrypting the same plaintext twice gives different ciphertexts.
func Encrypt(random io.Reader, pub *rsa.PublicKey, plaintext []byte) ([]byte, error) {
	if pub == nil || pub.N == nil {
		return nil, cryptoerr.InvalidParameter("nil RSA public key")
	}
	if limit := MaxMessageLen(pub); len(plaintext) > limit {
		return nil, fmt.Errorf("%w: %d bytes exceeds the %d byte limit for a %d-bit key", cryptoerr.ErrMessageTooLong, len(plaintext), limit, pub.N.BitLen())
	}
	if random == nil {
		random = rand.Reader
	}
	ct, err := rsa.EncryptOAEP(sha256.New(), random, pub, plaintext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt data: %w", err)
	}
	return ct, nil
}

// Decrypt reverses Encrypt.
// The ciphertext must be exactly the size of the modulus.
// Every failure, whether a wrong length, a wrong key, or a modified ciphertext, is reported as the bare cryptoerr.ErrDecryptionFailure.
func Decrypt(priv *rsa.PrivateKey, ciphertext []byte) ([]byte, error) {
	if priv == nil || priv.N == nil {
		return nil, cryptoerr.InvalidParameter("nil RSA private key")
	}
	if len(ciphertext) != priv.Size() {
		return nil, cryptoerr.ErrDecryptionFailure
	}
	pt, err := rsa.DecryptOAEP(sha256.New(), nil, priv, ciphertext, nil)
	if err != nil {
		return nil, cryptoerr.ErrDecryptionFailure
	}
	return pt, nil
}
