package rsakey

import (
	"crypto"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/hex"
	"encoding/pem"
	"fmt"

	"github.com/saylorsolutions/rasterlock/pkg/cryptoerr"
	"github.com/youmark/pkcs8"
)

const (
	PEMPrivateKey          = "PRIVATE KEY"
	PEMEncryptedPrivateKey = "ENCRYPTED PRIVATE KEY"
	PEMPublicKey           = "PUBLIC KEY"
	PEMRSAPrivateKey       = "RSA PRIVATE KEY"
	PEMRSAPublicKey        = "RSA PUBLIC KEY"

	// DefaultRecordIterations is the PBKDF2-HMAC-SHA256 iteration count used for password-protected private key records.
	DefaultRecordIterations = 600_000
	// MinRecordIterations is the lowest iteration count accepted by RecordIterations.
	MinRecordIterations = 1_000

	recordSaltSize = 16
)

type recordOpts struct {
	iterations int
}

// RecordOpt configures ExportPrivate.
type RecordOpt func(opts *recordOpts) error

// RecordIterations sets the PBKDF2 iteration count used to protect a private key record.
func RecordIterations(iterations int) RecordOpt {
	return func(opts *recordOpts) error {
		if iterations < MinRecordIterations {
			return cryptoerr.InvalidParameter("record iterations must be at least %d, got %d", MinRecordIterations, iterations)
		}
		opts.iterations = iterations
		return nil
	}
}

// ExportPrivate encodes the private key as a PEM PKCS #8 record.
// When password is not empty, the record is an "ENCRYPTED PRIVATE KEY" using PBES2 with PBKDF2-HMAC-SHA256 and AES-256-CBC, readable by OpenSSL and other standard tools.
func ExportPrivate(priv *rsa.PrivateKey, password []byte, opts ...RecordOpt) ([]byte, error) {
	if priv == nil || priv.N == nil {
		return nil, cryptoerr.InvalidParameter("nil RSA private key")
	}
	o := recordOpts{iterations: DefaultRecordIterations}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}
	if len(password) == 0 {
		der, err := x509.MarshalPKCS8PrivateKey(priv)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal RSA private key to bytes: %w", err)
		}
		defer clear(der)
		return pem.EncodeToMemory(&pem.Block{Type: PEMPrivateKey, Bytes: der}), nil
	}
	der, err := pkcs8.MarshalPrivateKey(priv, password, &pkcs8.Opts{
		Cipher: pkcs8.AES256CBC,
		KDFOpts: pkcs8.PBKDF2Opts{
			SaltSize:       recordSaltSize,
			IterationCount: o.iterations,
			HMACHash:       crypto.SHA256,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal encrypted RSA private key to bytes: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: PEMEncryptedPrivateKey, Bytes: der}), nil
}

// ExportPublic encodes the public key as a PEM SubjectPublicKeyInfo "PUBLIC KEY" record.
func ExportPublic(pub *rsa.PublicKey) ([]byte, error) {
	if pub == nil || pub.N == nil {
		return nil, cryptoerr.InvalidParameter("nil RSA public key")
	}
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal RSA public key to bytes: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: PEMPublicKey, Bytes: der}), nil
}

// ImportPrivate decodes a record produced by ExportPrivate.
// Legacy PKCS #1 "RSA PRIVATE KEY" records are accepted as well.
//
// An encrypted record with a wrong or missing password returns cryptoerr.ErrDecryptionFailure.
// A password given for an unencrypted record is rejected with cryptoerr.ErrInvalidParameter.
func ImportPrivate(record, password []byte) (*rsa.PrivateKey, error) {
	block, err := decodeBlock(record)
	if err != nil {
		return nil, err
	}
	var priv *rsa.PrivateKey
	switch block.Type {
	case PEMEncryptedPrivateKey:
		if !isEncryptedPKCS8(block.Bytes) {
			return nil, cryptoerr.MalformedRecord("encrypted private key is not a PKCS #8 EncryptedPrivateKeyInfo")
		}
		if len(password) == 0 {
			return nil, cryptoerr.ErrDecryptionFailure
		}
		priv, err = pkcs8.ParsePKCS8PrivateKeyRSA(block.Bytes, password)
		if err != nil {
			return nil, cryptoerr.ErrDecryptionFailure
		}
	case PEMPrivateKey:
		if len(password) > 0 {
			return nil, cryptoerr.InvalidParameter("password given for an unencrypted private key record")
		}
		anyPriv, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, cryptoerr.MalformedRecord("failed to parse data as private key: %v", err)
		}
		var ok bool
		priv, ok = anyPriv.(*rsa.PrivateKey)
		if !ok {
			return nil, cryptoerr.MalformedRecord("private key record holds a %T, not an RSA private key", anyPriv)
		}
	case PEMRSAPrivateKey:
		if len(password) > 0 {
			return nil, cryptoerr.InvalidParameter("password given for an unencrypted private key record")
		}
		priv, err = x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, cryptoerr.MalformedRecord("failed to parse data as RSA private key: %v", err)
		}
	default:
		return nil, cryptoerr.MalformedRecord("unexpected PEM block type '%s' for a private key", block.Type)
	}
	priv.Precompute()
	if err := priv.Validate(); err != nil {
		return nil, cryptoerr.MalformedRecord("invalid RSA private key: %v", err)
	}
	return priv, nil
}

// ImportPublic decodes a record produced by ExportPublic.
// Legacy PKCS #1 "RSA PUBLIC KEY" records are accepted as well.
func ImportPublic(record []byte) (*rsa.PublicKey, error) {
	block, err := decodeBlock(record)
	if err != nil {
		return nil, err
	}
	switch block.Type {
	case PEMPublicKey:
		anyPub, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, cryptoerr.MalformedRecord("failed to parse data as a public key: %v", err)
		}
		pub, ok := anyPub.(*rsa.PublicKey)
		if !ok {
			return nil, cryptoerr.MalformedRecord("public key record holds a %T, not an RSA public key", anyPub)
		}
		return pub, nil
	case PEMRSAPublicKey:
		pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, cryptoerr.MalformedRecord("failed to parse data as RSA public key: %v", err)
		}
		return pub, nil
	default:
		return nil, cryptoerr.MalformedRecord("unexpected PEM block type '%s' for a public key", block.Type)
	}
}

// IsEncrypted reports whether record is a password-protected private key record.
func IsEncrypted(record []byte) bool {
	block, _ := pem.Decode(record)
	return block != nil && block.Type == PEMEncryptedPrivateKey
}

// Fingerprint returns the hex SHA-256 digest of the public key's SubjectPublicKeyInfo encoding.
func Fingerprint(pub *rsa.PublicKey) (string, error) {
	if pub == nil || pub.N == nil {
		return "", cryptoerr.InvalidParameter("nil RSA public key")
	}
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("failed to marshal RSA public key to bytes: %w", err)
	}
	sum := sha256.Sum256(der)
	return hex.EncodeToString(sum[:]), nil
}

func decodeBlock(record []byte) (*pem.Block, error) {
	block, _ := pem.Decode(record)
	if block == nil {
		return nil, cryptoerr.MalformedRecord("no PEM block found")
	}
	if _, ok := block.Headers["Proc-Type"]; ok {
		return nil, cryptoerr.MalformedRecord("legacy encrypted PEM blocks are not supported")
	}
	return block, nil
}

type encryptedPrivateKeyInfo struct {
	EncryptionAlgorithm pkix.AlgorithmIdentifier
	EncryptedData       []byte
}

func isEncryptedPKCS8(der []byte) bool {
	var info encryptedPrivateKeyInfo
	rest, err := asn1.Unmarshal(der, &info)
	return err == nil && len(rest) == 0 && len(info.EncryptedData) > 0
}
