package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"

	"github.com/saylorsolutions/rasterlock/cmd/internal"
	flag "github.com/spf13/pflag"
)

var version = "dev"

type command struct {
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"image-encrypt": {summary: "Encrypt an image with a fresh random key, sealing the key with a passphrase.", run: imageEncrypt},
	"image-decrypt": {summary: "Decrypt an image with its sealed key.", run: imageDecrypt},
	"image-stats":   {summary: "Print the pixel mean and variance of an image.", run: imageStats},
	"image-combine": {summary: "XOR two ciphertext images over their overlapping region.", run: imageCombine},
	"rsa-keygen":    {summary: "Generate an RSA key pair and write PEM records.", run: rsaKeygen},
	"rsa-encrypt":   {summary: "Encrypt a short message with an RSA public key.", run: rsaEncrypt},
	"rsa-decrypt":   {summary: "Decrypt a message with an RSA private key.", run: rsaDecrypt},
	"demo":          {summary: "Run both ciphers end to end in memory.", run: demo},
}

func usage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Printf(`
rasterlock demonstrates two independent ciphers: a one-time XOR key for 8-bit greyscale images, and RSA-OAEP for short messages.

USAGE:  rasterlock COMMAND [FLAGS] [ARGS]

COMMANDS:
`)
	for _, name := range names {
		fmt.Printf("    %-14s %s\n", name, commands[name].summary)
	}
	fmt.Printf(`    %-14s %s

Run "rasterlock COMMAND --help" for the flags of a command.

ENVIRONMENT:
    LOG_LEVEL                        debug, info, warn, or error (default info)
    RASTERLOCK_PASSPHRASE            Passphrase for sealed image keys and private key records. Prompted for if unset.
    RASTERLOCK_RSA_BITS              RSA modulus size for rsa-keygen (default 2048)
    RASTERLOCK_RSA_EXPONENT          RSA public exponent for rsa-keygen (default 65537)
    RASTERLOCK_RECORD_ITERATIONS     PBKDF2 iterations for encrypted private key records (default 600000)
    RASTERLOCK_SEAL_STRENGTH         interactive or long scrypt cost for sealed image keys (default long)
    RASTERLOCK_LOCK_TIMEOUT_SECONDS  How long to wait for another writer of the same file (default 10)

SECURITY:
    A key image must never be reused. Encrypting two images with the same key lets anyone recover their XOR with image-combine.
`, "version", "Print the version.")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	name := os.Args[1]
	switch name {
	case "-h", "--help", "help":
		usage()
		return
	case "version", "--version":
		fmt.Println(version)
		return
	}
	cmd, ok := commands[name]
	if !ok {
		usage()
		internal.Fatal("Unknown command '%s'", name)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	a, err := newApp()
	if err == nil {
		err = cmd.run(ctx, a, os.Args[2:])
	}
	cancel()
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
	default:
		internal.Fail(err)
	}
}
