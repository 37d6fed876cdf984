package rsakey

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/saylorsolutions/rasterlock/pkg/cryptoerr"
)

const (
	DefaultBits     = 2048
	MinBits         = 2048
	MaxBits         = 16384
	DefaultExponent = 65537
	MaxExponent     = 1<<31 - 1

	maxGenerateAttempts = 64
)

type generateOpts struct {
	bits     int
	exponent int
}

// GenerateOpt configures GenerateKeypair.
type GenerateOpt func(opts *generateOpts) error

// Bits sets the modulus size, which must be at least MinBits.
func Bits(bits int) GenerateOpt {
	return func(opts *generateOpts) error {
		if bits < MinBits {
			return cryptoerr.InvalidParameter("RSA modulus must be at least %d bits, got %d", MinBits, bits)
		}
		if bits > MaxBits {
			return cryptoerr.InvalidParameter("RSA modulus may not exceed %d bits, got %d", MaxBits, bits)
		}
		opts.bits = bits
		return nil
	}
}

// PublicExponent sets the public exponent, which must be odd, at least 3, and no more than MaxExponent.
func PublicExponent(e int) GenerateOpt {
	return func(opts *generateOpts) error {
		if e < 3 || e%2 == 0 || e > MaxExponent {
			return cryptoerr.InvalidParameter("public exponent must be odd and between 3 and %d, got %d", MaxExponent, e)
		}
		opts.exponent = e
		return nil
	}
}

// GenerateKeypair will generate an RSA key pair, using random as the entropy source.
// A nil random uses crypto/rand.Reader.
// By default, the modulus is DefaultBits and the public exponent is DefaultExponent.
//
// Prime generation is done by crypto/rsa and crypto/rand, which may mix additional randomness in, so a seeded random doesn't guarantee a repeatable key.
func GenerateKeypair(random io.Reader, opts ...GenerateOpt) (*rsa.PrivateKey, *rsa.PublicKey, error) {
	o := generateOpts{
		bits:     DefaultBits,
		exponent: DefaultExponent,
	}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, nil, err
		}
	}
	if random == nil {
		random = rand.Reader
	}

	var (
		priv *rsa.PrivateKey
		err  error
	)
	if o.exponent == DefaultExponent {
		priv, err = rsa.GenerateKey(random, o.bits)
	} else {
		priv, err = generateWithExponent(random, o.bits, o.exponent)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate RSA key pair: %w", err)
	}
	priv.Precompute()
	if err := ValidateKeypair(priv); err != nil {
		return nil, nil, err
	}
	pub := priv.PublicKey
	return priv, &pub, nil
}

// generateWithExponent is used for exponents other than 65537, which crypto/rsa doesn't offer.
func generateWithExponent(random io.Reader, bits, e int) (*rsa.PrivateKey, error) {
	var (
		one  = big.NewInt(1)
		bigE = big.NewInt(int64(e))
	)
	for attempt := 0; attempt < maxGenerateAttempts; attempt++ {
		p, err := rand.Prime(random, bits-bits/2)
		if err != nil {
			return nil, err
		}
		q, err := rand.Prime(random, bits/2)
		if err != nil {
			return nil, err
		}
		if p.Cmp(q) == 0 {
			continue
		}
		n := new(big.Int).Mul(p, q)
		if n.BitLen() != bits {
			continue
		}
		phi := new(big.Int).Mul(new(big.Int).Sub(p, one), new(big.Int).Sub(q, one))
		d := new(big.Int).ModInverse(bigE, phi)
		if d == nil {
			continue
		}
		priv := &rsa.PrivateKey{
			PublicKey: rsa.PublicKey{N: n, E: e},
			D:         d,
			Primes:    []*big.Int{p, q},
		}
		if err := priv.Validate(); err != nil {
			continue
		}
		return priv, nil
	}
	return nil, fmt.Errorf("no suitable primes found for exponent %d after %d attempts", e, maxGenerateAttempts)
}

// ValidateKeypair is used to verify that the private key is well-formed and that it reverses its public key.
func ValidateKeypair(priv *rsa.PrivateKey) error {
	if priv == nil || priv.N == nil {
		return cryptoerr.InvalidParameter("nil RSA private key")
	}
	if err := priv.Validate(); err != nil {
		return fmt.Errorf("invalid RSA private key: %w", err)
	}
	orig, err := randomTarget()
	if err != nil {
		return err
	}
	ct, err := Encrypt(nil, &priv.PublicKey, orig)
	if err != nil {
		return fmt.Errorf("failed to encrypt data for verification: %w", err)
	}
	pt, err := Decrypt(priv, ct)
	if err != nil {
		return fmt.Errorf("failed to verify private and public key association: %w", err)
	}
	if !bytes.Equal(orig, pt) {
		return errors.New("failed to verify private and public key association: round trip mismatch")
	}
	return nil
}

func randomTarget() ([]byte, error) {
	orig := make([]byte, 32)
	if _, err := rand.Read(orig); err != nil {
		return nil, fmt.Errorf("failed to generate random data for key verification: %w", err)
	}
	return orig, nil
}
