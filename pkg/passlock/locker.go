package passlock

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"io"

	"github.com/saylorsolutions/rasterlock/pkg/cryptoerr"
)

func newGCM(key Key) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// lock will encrypt the payload with the given Key, and append the given Salt to the payload.
// Exposure of the Salt doesn't weaken the Key, since the passphrase is also required to arrive at the same Key.
// Salt exposure is required to be able to derive the same Key from the same passphrase.
// However, tampering with the Salt or the payload would prevent Unlock from recovering the Plaintext payload.
func lock(random io.Reader, key Key, salt Salt, data Plaintext) (Encrypted, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(random, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	cipherText := append(gcm.Seal(nonce, nonce, data, nil), salt...)
	return cipherText, nil
}

// Unlock will decrypt the payload after stripping the Salt from the end of it.
// The Salt length is expected to match the Key length (which is enforced by KeyGenerator).
// A payload too short to be valid is reported as cryptoerr.ErrMalformedRecord, and any authentication failure as cryptoerr.ErrDecryptionFailure.
func Unlock(key Key, data Encrypted) (Plaintext, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize+gcm.Overhead()+len(key) {
		return nil, cryptoerr.MalformedRecord("encrypted payload is too short")
	}
	nonce, cipherText := data[:nonceSize], data[nonceSize:]
	cipherText = cipherText[:len(cipherText)-len(key)]
	plain, err := gcm.Open(nil, nonce, cipherText, nil)
	if err != nil {
		return nil, cryptoerr.ErrDecryptionFailure
	}
	return plain, nil
}
