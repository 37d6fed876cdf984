// Package rsakey provides RSA key pair generation, standard PEM key records, and RSA-OAEP encryption with SHA-256.
//
// Private keys are exported as PKCS #8, optionally password-protected as a PBES2 "ENCRYPTED PRIVATE KEY".
// Public keys are exported as SubjectPublicKeyInfo.
// Both formats interoperate with OpenSSL and other standard tooling.
//
// Keys shorter than 2048 bits can't be generated.
// Decryption failures of any cause are reported as the same bare error, and nothing about the failure is logged beyond its kind.
package rsakey
