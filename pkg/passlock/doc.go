/*
Package passlock provides functions for encrypting data using a key derived from a user-provided passphrase.
This uses AES-256 encryption to encrypt the provided data.
In this module it protects image key buffers at rest, since the image cipher leaves retention of those to the caller.

# How it works:

A key and salt is generated from the given passphrase. The salt is appended to the encrypted payload so the same key can be derived later given the same passphrase.
Scrypt is memory and CPU hard, so it's impractical to brute force the salt to get the original passphrase, provided that sufficient tuning values are provided to the KeyGenerator.

The key, salt, and plaintext are passed to the Lock function to encrypt the payload and append the salt to it.
The key is recovered from the encrypted payload by passing the original passphrase and the payload to KeyGenerator.DeriveKey.
The key and encrypted payload are passed to the Unlock function to decrypt the payload and return the original plain text.

KeyGenerator.Seal and Open do all of that in one step, and also record the KeyGenerator settings in a small header ahead of the payload.
That way the reader doesn't need to know how the payload was sealed.

# General guidelines:
  - It's possible to customize the CPU cost, iteration count, and relative block size parameters directly for key generation. If you're not an expert, then don't use SetIterations, SetCPUCost, or SetRelativeBlockSize.
  - Both short and long delay iteration GeneratorOpt functions are provided, choose the correct iterations for your use-case using either SetLongDelayIterations or SetShortDelayIterations.
  - Tuning values read back from a sealed header are bounded (see MaxIterations, MaxRelBlockSize, MaxCpuCost) and by their combined MaxMemoryCost and MaxWorkCost, so a crafted header can't force a huge allocation.
  - This method of encryption (AES256GCM) supports encrypting and authenticating at most about 64GB at a time.
  - When deriving the key from an encrypted payload with DeriveKey, make sure that the same KeyGenerator settings are used. Not doing so will likely result in an incorrect key.
*/
package passlock
