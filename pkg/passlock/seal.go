package passlock

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/saylorsolutions/binmap"
	"github.com/saylorsolutions/rasterlock/pkg/cryptoerr"
)

const sealMagic uint32 = 0x504c4b31 // PLK1

var sealEndian = binary.BigEndian

// Seal generates a fresh salt and key from pass, encrypts data, and prefixes the result with the KeyGenerator settings.
// The output can be opened with Open without knowing which settings were used.
func (g *KeyGenerator) Seal(pass Passphrase, data Plaintext) (Encrypted, error) {
	key, salt, err := g.GenerateKey(pass)
	if err != nil {
		return nil, err
	}
	defer key.Wipe()

	locked, err := lock(g.random, key, salt, data)
	if err != nil {
		return nil, err
	}

	var (
		buf   bytes.Buffer
		magic = sealMagic
	)
	if err := bin.MapSequence(bin.Int(&magic), g.mapper()).Write(&buf, sealEndian); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	buf.Write(locked)
	return buf.Bytes(), nil
}

// Open reverses Seal.
// A wrong passphrase or modified payload is reported as cryptoerr.ErrDecryptionFailure, while a payload that isn't a sealed container is reported as cryptoerr.ErrMalformedRecord.
func Open(pass Passphrase, data Encrypted) (Plaintext, error) {
	if len(pass) == 0 {
		return nil, ErrEmptyPassPhrase
	}
	var (
		magic uint32
		gen   KeyGenerator
		rd    = bytes.NewReader(data)
	)
	if err := bin.MapSequence(bin.Int(&magic), gen.mapper()).Read(rd, sealEndian); err != nil {
		return nil, cryptoerr.MalformedRecord("failed to read sealed header: %v", err)
	}
	if magic != sealMagic {
		return nil, cryptoerr.MalformedRecord("not a sealed payload")
	}
	if err := gen.validate(); err != nil {
		return nil, cryptoerr.MalformedRecord("%v", err)
	}

	locked := Encrypted(data[len(data)-rd.Len():])
	key, err := gen.DeriveKey(pass, locked)
	if err != nil {
		return nil, cryptoerr.MalformedRecord("%v", err)
	}
	defer key.Wipe()
	return Unlock(key, locked)
}
