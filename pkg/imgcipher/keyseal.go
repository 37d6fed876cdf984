package imgcipher

import (
	"fmt"

	"github.com/saylorsolutions/rasterlock/pkg/cryptoerr"
	"github.com/saylorsolutions/rasterlock/pkg/passlock"
	"github.com/saylorsolutions/rasterlock/pkg/raster"
)

// SealKey encrypts a key buffer with a passphrase so that it can be stored by the caller.
func SealKey(gen *passlock.KeyGenerator, pass passlock.Passphrase, key raster.Raster) ([]byte, error) {
	if gen == nil {
		return nil, cryptoerr.InvalidParameter("nil key generator")
	}
	data, err := key.MarshalBinary()
	if err != nil {
		return nil, err
	}
	defer clear(data)
	sealed, err := gen.Seal(pass, data)
	if err != nil {
		return nil, fmt.Errorf("failed to seal key buffer: %w", err)
	}
	return sealed, nil
}

// OpenKey reverses SealKey.
func OpenKey(pass passlock.Passphrase, sealed []byte) (raster.Raster, error) {
	data, err := passlock.Open(pass, sealed)
	if err != nil {
		return raster.Raster{}, err
	}
	defer clear(data)
	var key raster.Raster
	if err := key.UnmarshalBinary(data); err != nil {
		return raster.Raster{}, err
	}
	return key, nil
}
