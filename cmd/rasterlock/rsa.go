package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/saylorsolutions/rasterlock/pkg/cryptoerr"
	"github.com/saylorsolutions/rasterlock/pkg/keyfile"
	"github.com/saylorsolutions/rasterlock/pkg/rsakey"
)

const maxInput = 1 << 16

func rsaKeygen(ctx context.Context, a *app, args []string) error {
	flags := newFlags("rsa-keygen", "",
		"Generates an RSA key pair, and writes NAME_private.pem and NAME_public.pem to the output directory.\nThe private key is protected with a passphrase unless --no-password is given.")
	dir := flags.StringP("dir", "d", ".", "Directory to write the key records to.")
	name := flags.StringP("name", "n", "rsa", "Base name of the key record files.")
	bits := flags.IntP("bits", "b", a.cfg.RSABits, "Modulus size in bits, at least 2048.")
	exponent := flags.IntP("exponent", "e", a.cfg.RSAExponent, "Public exponent, odd and at least 3.")
	noPassword := flags.Bool("no-password", false, "Write the private key without password protection.")
	if err := parseFlags(flags, args, 0); err != nil {
		return err
	}

	svc, err := a.keyService(rsakey.WithBits(*bits), rsakey.WithExponent(*exponent))
	if err != nil {
		return err
	}
	var password []byte
	if !*noPassword {
		password, err = a.passphrase("Passphrase for the private key", true)
		if err != nil {
			return err
		}
		defer clear(password)
	}

	priv, pub, err := svc.GenerateKeypair(ctx)
	if err != nil {
		return err
	}
	privPath := filepath.Join(*dir, *name+"_private.pem")
	pubPath := filepath.Join(*dir, *name+"_public.pem")

	wctx, cancel := a.writeContext(ctx)
	defer cancel()
	if err := svc.SavePrivate(wctx, privPath, priv, password); err != nil {
		return err
	}
	if err := svc.SavePublic(wctx, pubPath, pub); err != nil {
		return err
	}
	fp, err := rsakey.Fingerprint(pub)
	if err != nil {
		return err
	}
	fmt.Printf("private: %s\npublic:  %s\nSHA256:%s\n", privPath, pubPath, fp)
	return nil
}

func rsaEncrypt(ctx context.Context, a *app, args []string) error {
	flags := newFlags("rsa-encrypt", "[MESSAGE]",
		"Encrypts MESSAGE, or standard input when MESSAGE is omitted, with RSA-OAEP SHA-256.\nThe ciphertext is printed as base64, or written as raw bytes to --out.")
	pubPath := flags.StringP("pub", "p", "", "Path of the public key record. Required.")
	out := flags.StringP("out", "o", "", "Write the raw ciphertext to this file instead of printing base64.")
	if err := parseFlagsRange(flags, args, 0, 1); err != nil {
		return err
	}
	if len(*pubPath) == 0 {
		flags.Usage()
		return cryptoerr.InvalidParameter("a public key is required")
	}

	svc, err := a.keyService()
	if err != nil {
		return err
	}
	pub, err := svc.LoadPublic(ctx, *pubPath)
	if err != nil {
		return err
	}
	var msg []byte
	if flags.NArg() == 1 {
		msg = []byte(flags.Arg(0))
	} else {
		msg, err = readInput(os.Stdin)
		if err != nil {
			return err
		}
	}
	defer clear(msg)

	ct, err := svc.Encrypt(ctx, pub, msg)
	if err != nil {
		return err
	}
	if len(*out) > 0 {
		wctx, cancel := a.writeContext(ctx)
		defer cancel()
		return keyfile.Write(wctx, *out, ct, keyfile.PublicPerm)
	}
	fmt.Println(base64.StdEncoding.EncodeToString(ct))
	return nil
}

func rsaDecrypt(ctx context.Context, a *app, args []string) error {
	flags := newFlags("rsa-decrypt", "",
		"Decrypts an RSA-OAEP SHA-256 ciphertext and prints the message.\nThe ciphertext is read as raw bytes from --in, or as base64 from standard input.")
	privPath := flags.StringP("priv", "k", "", "Path of the private key record. Required.")
	in := flags.StringP("in", "i", "", "Read the raw ciphertext from this file instead of base64 from standard input.")
	if err := parseFlags(flags, args, 0); err != nil {
		return err
	}
	if len(*privPath) == 0 {
		flags.Usage()
		return cryptoerr.InvalidParameter("a private key is required")
	}

	svc, err := a.keyService()
	if err != nil {
		return err
	}
	record, err := keyfile.Read(*privPath)
	if err != nil {
		return err
	}
	defer clear(record)
	var password []byte
	if rsakey.IsEncrypted(record) {
		password, err = a.passphrase("Passphrase for the private key", false)
		if err != nil {
			return err
		}
		defer clear(password)
	}
	priv, err := svc.ImportPrivate(ctx, record, password)
	if err != nil {
		return err
	}

	var ct []byte
	if len(*in) > 0 {
		ct, err = keyfile.Read(*in)
	} else {
		ct, err = readBase64(os.Stdin)
	}
	if err != nil {
		return err
	}
	pt, err := svc.Decrypt(ctx, priv, ct)
	if err != nil {
		return err
	}
	defer clear(pt)
	if _, err := os.Stdout.Write(pt); err != nil {
		return err
	}
	fmt.Println()
	return nil
}

func readInput(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxInput+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if len(data) > maxInput {
		return nil, cryptoerr.InvalidParameter("input exceeds %d bytes", maxInput)
	}
	return data, nil
}

func readBase64(r io.Reader) ([]byte, error) {
	data, err := readInput(r)
	if err != nil {
		return nil, err
	}
	ct, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, cryptoerr.MalformedRecord("ciphertext is not valid base64: %v", err)
	}
	return ct, nil
}
