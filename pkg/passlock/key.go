package passlock

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/bits"

	bin "github.com/saylorsolutions/binmap"
	"github.com/saylorsolutions/rasterlock/pkg/cryptoerr"
	"golang.org/x/crypto/scrypt"
)

const (
	DefaultLargeIterations       uint64 = 1 << 20
	DefaultInteractiveIterations uint64 = 1 << 15
	MaxIterations                uint64 = 1 << 20
	DefaultRelBlockSize          uint8  = 8
	MaxRelBlockSize              uint8  = 32
	DefaultCpuCost               uint8  = 1
	MaxCpuCost                   uint8  = 16
	AES256KeySize                uint8  = 256 / 8
	AES128KeySize                uint8  = 128 / 8

	// MaxMemoryCost caps the scrypt buffer of 128 * r * N bytes.
	MaxMemoryCost uint64 = 1 << 30
	// MaxWorkCost caps N * p, the number of sequential mixing rounds.
	MaxWorkCost uint64 = 1 << 22
)

var (
	ErrEmptyPassPhrase = fmt.Errorf("%w: cannot use an empty passphrase", cryptoerr.ErrInvalidParameter)
	ErrInvalidData     = fmt.Errorf("%w: unable to use input data", cryptoerr.ErrMalformedRecord)
)

// Key is an AES key that can be used to encrypt or decrypt an encrypted payload.
type Key []byte

// Wipe overwrites the key with zeros.
func (k Key) Wipe() {
	clear(k)
}

// Salt is a slice of secure random bytes that is used with scrypt to generate a Key from a Passphrase.
type Salt []byte

// Passphrase is a human-readable string used to generate a Key.
type Passphrase []byte

// Encrypted is an encrypted payload.
type Encrypted []byte

// Plaintext is an unencrypted payload.
type Plaintext []byte

type KeyGenerator struct {
	iterations        uint64
	relativeBlockSize uint8
	cpuCost           uint8
	aesKeySize        uint8
	random            io.Reader
}

func (g *KeyGenerator) mapper() bin.Mapper {
	return bin.MapSequence(
		bin.Int(&g.iterations),
		bin.Byte(&g.relativeBlockSize),
		bin.Byte(&g.cpuCost),
		bin.Byte(&g.aesKeySize),
	)
}

// validate checks tuning values, which may have come from an untrusted header.
func (g *KeyGenerator) validate() error {
	if g.iterations <= 1 || bits.OnesCount64(g.iterations) != 1 {
		return fmt.Errorf("%w: iterations must be a power of 2 greater than 1", ErrInvalidData)
	}
	if g.iterations > MaxIterations {
		return fmt.Errorf("%w: iterations may not exceed %d", ErrInvalidData, MaxIterations)
	}
	if g.relativeBlockSize < DefaultRelBlockSize || g.relativeBlockSize > MaxRelBlockSize {
		return fmt.Errorf("%w: relative block size must be between %d and %d", ErrInvalidData, DefaultRelBlockSize, MaxRelBlockSize)
	}
	if g.cpuCost < DefaultCpuCost || g.cpuCost > MaxCpuCost {
		return fmt.Errorf("%w: cpu cost must be between %d and %d", ErrInvalidData, DefaultCpuCost, MaxCpuCost)
	}
	if g.aesKeySize != AES256KeySize && g.aesKeySize != AES128KeySize {
		return fmt.Errorf("%w: unsupported AES key size %d", ErrInvalidData, g.aesKeySize)
	}
	if mem := 128 * uint64(g.relativeBlockSize) * g.iterations; mem > MaxMemoryCost {
		return fmt.Errorf("%w: scrypt memory cost of %d bytes exceeds %d", ErrInvalidData, mem, MaxMemoryCost)
	}
	if work := g.iterations * uint64(g.cpuCost); work > MaxWorkCost {
		return fmt.Errorf("%w: scrypt work cost of %d exceeds %d", ErrInvalidData, work, MaxWorkCost)
	}
	return nil
}

type GeneratorOpt = func(*KeyGenerator) error

func SetAES256KeySize() GeneratorOpt {
	return func(gen *KeyGenerator) error {
		gen.aesKeySize = AES256KeySize
		return nil
	}
}

func SetAES128KeySize() GeneratorOpt {
	return func(gen *KeyGenerator) error {
		gen.aesKeySize = AES128KeySize
		return nil
	}
}

// SetLongDelayIterations sets a higher iteration count. This is sufficient for infrequent key derivation, or cases where the key will be cached for long periods of time.
// This option is much more resistant to password cracking, and is the default.
func SetLongDelayIterations() GeneratorOpt {
	return func(gen *KeyGenerator) error {
		gen.iterations = DefaultLargeIterations
		return nil
	}
}

// SetShortDelayIterations sets a lower iteration count. This is appropriate for situations where a shorter delay is desired because of frequent key derivations.
// This option balances speed with password cracking resistance. It's recommended to use longer passwords with this approach.
func SetShortDelayIterations() GeneratorOpt {
	return func(gen *KeyGenerator) error {
		gen.iterations = DefaultInteractiveIterations
		return nil
	}
}

// SetIterations allows the caller to customize the iteration count.
// Only use this option if you know what you're doing.
func SetIterations(iterations uint64) GeneratorOpt {
	return func(gen *KeyGenerator) error {
		if iterations <= 1 {
			return errors.New("iterations cannot be <= 1")
		}
		if bits.OnesCount64(iterations) != 1 {
			return errors.New("iterations must be a power of 2")
		}
		if iterations > MaxIterations {
			return fmt.Errorf("iterations cannot exceed %d", MaxIterations)
		}
		gen.iterations = iterations
		return nil
	}
}

// SetCPUCost sets the parallelism factor for key generation from the default of 1.
// Only use this option if you know what you're doing.
func SetCPUCost(cost uint8) GeneratorOpt {
	return func(gen *KeyGenerator) error {
		if cost < DefaultCpuCost || cost > MaxCpuCost {
			return fmt.Errorf("cpu cost must be between %d and %d", DefaultCpuCost, MaxCpuCost)
		}
		gen.cpuCost = cost
		return nil
	}
}

// SetRelativeBlockSize sets the relative block size.
// Only use this option if you know what you're doing.
func SetRelativeBlockSize(size uint8) GeneratorOpt {
	return func(gen *KeyGenerator) error {
		if size < DefaultRelBlockSize || size > MaxRelBlockSize {
			return fmt.Errorf("relative block size must be between %d and %d", DefaultRelBlockSize, MaxRelBlockSize)
		}
		gen.relativeBlockSize = size
		return nil
	}
}

// SetRandom overrides the source of salts and nonces, which is crypto/rand.Reader by default.
func SetRandom(random io.Reader) GeneratorOpt {
	return func(gen *KeyGenerator) error {
		if random == nil {
			return errors.New("random source cannot be nil")
		}
		gen.random = random
		return nil
	}
}

// NewKeyGenerator creates a new KeyGenerator using the options provided as zero or more GeneratorOpt.
// By default, the generator generates a key for AES256KeySize using DefaultLargeIterations.
func NewKeyGenerator(opts ...GeneratorOpt) (*KeyGenerator, error) {
	gen := &KeyGenerator{
		iterations:        DefaultLargeIterations,
		relativeBlockSize: DefaultRelBlockSize,
		cpuCost:           DefaultCpuCost,
		aesKeySize:        AES256KeySize,
		random:            rand.Reader,
	}

	for _, opt := range opts {
		if err := opt(gen); err != nil {
			return nil, fmt.Errorf("%w: %v", cryptoerr.ErrInvalidParameter, err)
		}
	}
	// Options are applied one at a time, so combined cost limits are checked last.
	if err := gen.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoerr.ErrInvalidParameter, err)
	}
	return gen, nil
}

func (g *KeyGenerator) derive(pass Passphrase, salt Salt) (Key, error) {
	key, err := scrypt.Key(pass, salt, int(g.iterations), int(g.relativeBlockSize), int(g.cpuCost), int(g.aesKeySize))
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	return key, nil
}

// GenerateKey will generate an AES key and salt using the configuration of the KeyGenerator.
func (g *KeyGenerator) GenerateKey(pass Passphrase) (key Key, salt Salt, err error) {
	if len(pass) == 0 {
		return nil, nil, ErrEmptyPassPhrase
	}
	salt = make(Salt, g.aesKeySize)
	if _, err = io.ReadFull(g.random, salt); err != nil {
		return nil, nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	key, err = g.derive(pass, salt)
	if err != nil {
		return nil, nil, err
	}
	return key, salt, nil
}

// DeriveKey will recover a key with the salt in the payload and the given passphrase.
// This doesn't ensure that the given passphrase is the *correct* passphrase used to encrypt the payload.
func (g *KeyGenerator) DeriveKey(pass Passphrase, data Encrypted) (key Key, err error) {
	key, _, err = g.DeriveKeySalt(pass, data)
	return key, err
}

// DeriveKeySalt will recover a key and the original salt in the payload with the given passphrase.
// This doesn't ensure that the given passphrase is the *correct* passphrase used to encrypt the payload.
func (g *KeyGenerator) DeriveKeySalt(pass Passphrase, data Encrypted) (key Key, salt Salt, err error) {
	if len(pass) == 0 {
		return nil, nil, ErrEmptyPassPhrase
	}
	salt, err = g.DeriveSalt(data)
	if err != nil {
		return nil, nil, err
	}
	key, err = g.derive(pass, salt)
	if err != nil {
		return nil, nil, err
	}
	return key, salt, nil
}

func (g *KeyGenerator) DeriveSalt(data Encrypted) (salt Salt, err error) {
	if uint64(len(data)) <= uint64(g.aesKeySize) {
		return nil, fmt.Errorf("%w: data is not long enough to contain a valid salt", ErrInvalidData)
	}
	return Salt(data[len(data)-int(g.aesKeySize):]), nil
}
