/*
Package xor provides the byte-level exclusive-or primitive and key generation used by the image cipher.

# How it works:

Bytes combines two byte slices position by position. Since XOR is its own inverse, applying the same key twice returns the original data.
GenKey reads key bytes from an io.Reader, which is crypto/rand.Reader unless the caller supplies something else (like a seeded source in tests).

# Important note:

XOR with a key is only confidential when the key is as long as the data, uniformly random, and never used for a second payload.
Reusing a key leaks the XOR of the two plaintexts.
Nothing in this package enforces that, it's up to the caller.
*/
package xor
