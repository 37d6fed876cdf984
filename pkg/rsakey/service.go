package rsakey

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"io"

	"github.com/saylorsolutions/rasterlock/pkg/cryptoerr"
	"github.com/saylorsolutions/rasterlock/pkg/keyfile"
	"github.com/saylorsolutions/rasterlock/pkg/logging"
)

// KeyService bundles key generation, records, and OAEP with a fixed policy and a logger.
// A KeyService holds no key material and is safe for concurrent use.
type KeyService struct {
	random           io.Reader
	bits             int
	exponent         int
	recordIterations int
	log              logging.Logger
}

// ServiceOpt configures a KeyService.
type ServiceOpt func(svc *KeyService) error

// WithRandom sets the entropy source used for generation and encryption.
func WithRandom(random io.Reader) ServiceOpt {
	return func(svc *KeyService) error {
		if random == nil {
			return cryptoerr.InvalidParameter("nil random source")
		}
		svc.random = random
		return nil
	}
}

// WithBits sets the modulus size for generated keys.
func WithBits(bits int) ServiceOpt {
	return func(svc *KeyService) error {
		if err := Bits(bits)(&generateOpts{}); err != nil {
			return err
		}
		svc.bits = bits
		return nil
	}
}

// WithExponent sets the public exponent for generated keys.
func WithExponent(e int) ServiceOpt {
	return func(svc *KeyService) error {
		if err := PublicExponent(e)(&generateOpts{}); err != nil {
			return err
		}
		svc.exponent = e
		return nil
	}
}

// WithRecordIterations sets the PBKDF2 iteration count for password-protected private key records.
func WithRecordIterations(iterations int) ServiceOpt {
	return func(svc *KeyService) error {
		if err := RecordIterations(iterations)(&recordOpts{}); err != nil {
			return err
		}
		svc.recordIterations = iterations
		return nil
	}
}

// NewKeyService creates a KeyService. A nil logger discards log output.
func NewKeyService(log logging.Logger, opts ...ServiceOpt) (*KeyService, error) {
	if log == nil {
		log = logging.Discard()
	}
	svc := &KeyService{
		random:           rand.Reader,
		bits:             DefaultBits,
		exponent:         DefaultExponent,
		recordIterations: DefaultRecordIterations,
		log:              log.With("component", "rsakey"),
	}
	for _, opt := range opts {
		if err := opt(svc); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

// GenerateKeypair generates a key pair with the service's policy.
func (svc *KeyService) GenerateKeypair(ctx context.Context) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	priv, pub, err := GenerateKeypair(svc.random, Bits(svc.bits), PublicExponent(svc.exponent))
	if err != nil {
		svc.log.Error(ctx, "Failed to generate key pair", "bits", svc.bits, "error", err)
		return nil, nil, err
	}
	svc.log.Info(ctx, "Generated key pair", "bits", svc.bits, "exponent", svc.exponent, "fingerprint", svc.fingerprint(pub))
	return priv, pub, nil
}

// ExportPrivate encodes priv, protecting it with password when one is given.
func (svc *KeyService) ExportPrivate(ctx context.Context, priv *rsa.PrivateKey, password []byte) ([]byte, error) {
	if len(password) == 0 {
		svc.log.Warn(ctx, "Exporting private key without a password")
	}
	return ExportPrivate(priv, password, RecordIterations(svc.recordIterations))
}

// ExportPublic encodes pub.
func (svc *KeyService) ExportPublic(_ context.Context, pub *rsa.PublicKey) ([]byte, error) {
	return ExportPublic(pub)
}

// ImportPrivate decodes a private key record.
func (svc *KeyService) ImportPrivate(ctx context.Context, record, password []byte) (*rsa.PrivateKey, error) {
	priv, err := ImportPrivate(record, password)
	if err != nil {
		svc.logFailure(ctx, "Failed to import private key", err)
		return nil, err
	}
	svc.log.Debug(ctx, "Imported private key", "bits", priv.N.BitLen(), logging.Redacted("password"))
	return priv, nil
}

// ImportPublic decodes a public key record.
func (svc *KeyService) ImportPublic(ctx context.Context, record []byte) (*rsa.PublicKey, error) {
	pub, err := ImportPublic(record)
	if err != nil {
		svc.logFailure(ctx, "Failed to import public key", err)
		return nil, err
	}
	svc.log.Debug(ctx, "Imported public key", "bits", pub.N.BitLen(), "fingerprint", svc.fingerprint(pub))
	return pub, nil
}

// Encrypt encrypts plaintext for pub with OAEP.
func (svc *KeyService) Encrypt(ctx context.Context, pub *rsa.PublicKey, plaintext []byte) ([]byte, error) {
	ct, err := Encrypt(svc.random, pub, plaintext)
	if err != nil {
		svc.logFailure(ctx, "Failed to encrypt", err)
		return nil, err
	}
	svc.log.Debug(ctx, "Encrypted message", "length", len(plaintext))
	return ct, nil
}

// Decrypt reverses Encrypt.
func (svc *KeyService) Decrypt(ctx context.Context, priv *rsa.PrivateKey, ciphertext []byte) ([]byte, error) {
	pt, err := Decrypt(priv, ciphertext)
	if err != nil {
		svc.logFailure(ctx, "Failed to decrypt", err)
		return nil, err
	}
	svc.log.Debug(ctx, "Decrypted message", "length", len(pt))
	return pt, nil
}

// SavePrivate exports priv and writes it to path with keyfile.PrivatePerm.
func (svc *KeyService) SavePrivate(ctx context.Context, path string, priv *rsa.PrivateKey, password []byte) error {
	record, err := svc.ExportPrivate(ctx, priv, password)
	if err != nil {
		return err
	}
	if err := keyfile.Write(ctx, path, record, keyfile.PrivatePerm); err != nil {
		svc.log.Error(ctx, "Failed to save private key", "path", path, "error", err)
		return err
	}
	svc.log.Info(ctx, "Saved private key", "path", path, "encrypted", len(password) > 0)
	return nil
}

// SavePublic exports pub and writes it to path with keyfile.PublicPerm.
func (svc *KeyService) SavePublic(ctx context.Context, path string, pub *rsa.PublicKey) error {
	record, err := svc.ExportPublic(ctx, pub)
	if err != nil {
		return err
	}
	if err := keyfile.Write(ctx, path, record, keyfile.PublicPerm); err != nil {
		svc.log.Error(ctx, "Failed to save public key", "path", path, "error", err)
		return err
	}
	svc.log.Info(ctx, "Saved public key", "path", path, "fingerprint", svc.fingerprint(pub))
	return nil
}

// LoadPrivate reads and imports the private key record at path.
func (svc *KeyService) LoadPrivate(ctx context.Context, path string, password []byte) (*rsa.PrivateKey, error) {
	record, err := keyfile.Read(path)
	if err != nil {
		return nil, err
	}
	defer clear(record)
	return svc.ImportPrivate(ctx, record, password)
}

// LoadPublic reads and imports the public key record at path.
func (svc *KeyService) LoadPublic(ctx context.Context, path string) (*rsa.PublicKey, error) {
	record, err := keyfile.Read(path)
	if err != nil {
		return nil, err
	}
	return svc.ImportPublic(ctx, record)
}

func (svc *KeyService) fingerprint(pub *rsa.PublicKey) string {
	fp, err := Fingerprint(pub)
	if err != nil {
		return "unknown"
	}
	return fp[:16]
}

// logFailure logs only the error kind, so that nothing derived from key material or plaintext reaches the log.
func (svc *KeyService) logFailure(ctx context.Context, msg string, err error) {
	kind := "other"
	switch {
	case errors.Is(err, cryptoerr.ErrDecryptionFailure):
		kind = "decryption_failure"
	case errors.Is(err, cryptoerr.ErrMalformedRecord):
		kind = "malformed_record"
	case errors.Is(err, cryptoerr.ErrInvalidParameter):
		kind = "invalid_parameter"
	case errors.Is(err, cryptoerr.ErrMessageTooLong):
		kind = "message_too_long"
	}
	svc.log.Warn(ctx, msg, "kind", kind)
}
