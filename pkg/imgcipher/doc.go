/*
Package imgcipher encrypts grey-scale rasters with a one-time key matrix.

# How it works:

GenerateKey produces a key buffer with the same shape as the image, filled from a secure random source.
Encrypt and Decrypt XOR every cell of the input with the matching key cell, so they're the same operation under two names.
Shapes must match exactly; there's no wrapping or truncation of the key.

Statistics and Combine operate directly on ciphertext. They exist to demonstrate computation over encrypted data, and they carry no security claim.

# Important note:

A key buffer must never encrypt more than one image. XOR-ing two ciphertexts made with the same key cancels the key out.
This package doesn't keep keys. SealKey and OpenKey are provided for callers that need to store them, protected by a passphrase.

Every function is safe for concurrent use.
*/
package imgcipher
