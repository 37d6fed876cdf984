package passlock

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/saylorsolutions/rasterlock/pkg/cryptoerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeyGenerator(t *testing.T) {
	gen, err := NewKeyGenerator(SetShortDelayIterations())
	assert.NoError(t, err)
	assert.NotNil(t, gen)
	assert.Equal(t, DefaultInteractiveIterations, gen.iterations)
	assert.Equal(t, DefaultCpuCost, gen.cpuCost)
	assert.Equal(t, AES256KeySize, gen.aesKeySize)
	assert.Equal(t, DefaultRelBlockSize, gen.relativeBlockSize)

	key, salt, err := gen.GenerateKey([]byte("a test password"))
	assert.NoError(t, err)
	assert.Len(t, key, int(gen.aesKeySize))
	assert.Len(t, salt, int(gen.aesKeySize))
}

func TestNewKeyGenerator_Custom(t *testing.T) {
	gen, err := NewKeyGenerator(
		SetIterations(2),
		SetLongDelayIterations(),
		SetShortDelayIterations(),
		SetCPUCost(DefaultCpuCost),
		SetRelativeBlockSize(DefaultRelBlockSize),
		SetAES256KeySize(),
	)
	assert.NoError(t, err)
	assert.NotNil(t, gen)
	assert.Equal(t, DefaultInteractiveIterations, gen.iterations)
	assert.Equal(t, DefaultCpuCost, gen.cpuCost)
	assert.Equal(t, AES256KeySize, gen.aesKeySize)
	assert.Equal(t, DefaultRelBlockSize, gen.relativeBlockSize)
	assert.NoError(t, gen.validate())
}

func TestNewKeyGenerator_Neg(t *testing.T) {
	tests := map[string]GeneratorOpt{
		"Iterations of 1":        SetIterations(1),
		"Iterations not a power": SetIterations(6),
		"Iterations too large":   SetIterations(MaxIterations << 1),
		"CPU cost zero":          SetCPUCost(0),
		"CPU cost too large":     SetCPUCost(MaxCpuCost + 1),
		"Block size too small":   SetRelativeBlockSize(4),
		"Nil random":             SetRandom(nil),
	}
	for name, opt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewKeyGenerator(opt)
			assert.ErrorIs(t, err, cryptoerr.ErrInvalidParameter)
		})
	}
}

func TestNewKeyGenerator_CostLimits(t *testing.T) {
	tests := map[string][]GeneratorOpt{
		"Memory cost too large": {SetIterations(MaxIterations), SetRelativeBlockSize(16)},
		"Work cost too large":   {SetIterations(MaxIterations), SetCPUCost(8)},
		"Every limit at its maximum": {
			SetIterations(MaxIterations),
			SetRelativeBlockSize(MaxRelBlockSize),
			SetCPUCost(MaxCpuCost),
		},
	}
	for name, opts := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewKeyGenerator(opts...)
			assert.ErrorIs(t, err, cryptoerr.ErrInvalidParameter)
		})
	}

	gen, err := NewKeyGenerator(SetIterations(MaxIterations), SetCPUCost(4))
	require.NoError(t, err, "Limits are inclusive")
	assert.Equal(t, MaxMemoryCost, 128*uint64(gen.relativeBlockSize)*gen.iterations)
	assert.Equal(t, MaxWorkCost, gen.iterations*uint64(gen.cpuCost))
}

func TestKeyGenerator_validate(t *testing.T) {
	tests := map[string]KeyGenerator{
		"Iterations above limit": {iterations: 1 << 22, relativeBlockSize: DefaultRelBlockSize, cpuCost: DefaultCpuCost, aesKeySize: AES256KeySize},
		"Memory above limit":     {iterations: 1 << 18, relativeBlockSize: MaxRelBlockSize + 1, cpuCost: DefaultCpuCost, aesKeySize: AES256KeySize},
		"Memory 4GiB":            {iterations: 1 << 20, relativeBlockSize: MaxRelBlockSize, cpuCost: DefaultCpuCost, aesKeySize: AES256KeySize},
		"Work above limit":       {iterations: 1 << 20, relativeBlockSize: DefaultRelBlockSize, cpuCost: MaxCpuCost, aesKeySize: AES256KeySize},
		"All at maximum":         {iterations: 1 << 22, relativeBlockSize: MaxRelBlockSize, cpuCost: MaxCpuCost, aesKeySize: AES256KeySize},
	}
	for name, gen := range tests {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, gen.validate(), ErrInvalidData)
		})
	}

	largest := KeyGenerator{iterations: 1 << 18, relativeBlockSize: MaxRelBlockSize, cpuCost: MaxCpuCost, aesKeySize: AES256KeySize}
	assert.NoError(t, largest.validate())
}

func TestKeyGenerator_EmptyPassphrase(t *testing.T) {
	gen, err := NewKeyGenerator(SetIterations(1 << 4))
	require.NoError(t, err)
	_, _, err = gen.GenerateKey(nil)
	assert.ErrorIs(t, err, ErrEmptyPassPhrase)
	assert.ErrorIs(t, err, cryptoerr.ErrInvalidParameter)
	_, err = gen.DeriveKey(nil, []byte("some data that is long enough to hold a salt"))
	assert.ErrorIs(t, err, ErrEmptyPassPhrase)
	_, err = gen.DeriveKey([]byte("pass"), []byte("short"))
	assert.ErrorIs(t, err, ErrInvalidData)
	assert.ErrorIs(t, err, cryptoerr.ErrMalformedRecord)
}

func TestKeyGenerator_SaltSource(t *testing.T) {
	gen, err := NewKeyGenerator(SetIterations(1<<4), SetRandom(bytes.NewReader(nil)))
	require.NoError(t, err)
	_, _, err = gen.GenerateKey([]byte("pass"))
	assert.Error(t, err)
}

func TestKeyGenerator_mapper(t *testing.T) {
	var (
		buf bytes.Buffer
	)
	gen, err := NewKeyGenerator(SetShortDelayIterations())
	assert.NoError(t, err)
	assert.NotNil(t, gen)

	assert.NoError(t, gen.mapper().Write(&buf, binary.BigEndian))
	updated, err := NewKeyGenerator(
		SetIterations(1<<4),
		SetCPUCost(4),
		SetRelativeBlockSize(16),
		SetAES128KeySize(),
	)
	assert.NoError(t, err)
	assert.NoError(t, updated.mapper().Read(&buf, binary.BigEndian))
	assert.Equal(t, DefaultInteractiveIterations, updated.iterations)
	assert.Equal(t, DefaultCpuCost, updated.cpuCost)
	assert.Equal(t, DefaultRelBlockSize, updated.relativeBlockSize)
	assert.Equal(t, AES256KeySize, updated.aesKeySize)
}
