package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/saylorsolutions/rasterlock/pkg/cryptoerr"
	"github.com/saylorsolutions/rasterlock/pkg/imgcipher"
	"github.com/saylorsolutions/rasterlock/pkg/passlock"
	"github.com/saylorsolutions/rasterlock/pkg/raster"
	"golang.org/x/sync/errgroup"
)

const (
	demoSize     = 64
	demoPassword = "abc123"
)

func demo(ctx context.Context, a *app, args []string) error {
	flags := newFlags("demo", "",
		"Runs the image cipher and the RSA service end to end in memory, and reports each step.\nNothing is written to disk.")
	if err := parseFlags(flags, args, 0); err != nil {
		return err
	}

	var imageOut, rsaOut bytes.Buffer
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return imageDemo(gctx, &imageOut)
	})
	g.Go(func() error {
		return rsaDemo(gctx, a, &rsaOut)
	})
	err := g.Wait()
	_, _ = io.Copy(os.Stdout, &imageOut)
	_, _ = io.Copy(os.Stdout, &rsaOut)
	return err
}

func gradient(shape raster.Shape, invert bool) (raster.Raster, error) {
	return raster.Generate(shape, func(pix []uint8) error {
		for i := range pix {
			v := uint8((i % shape.Width) * 256 / shape.Width)
			if invert {
				v = ^v
			}
			pix[i] = v
		}
		return nil
	})
}

func imageDemo(ctx context.Context, w io.Writer) error {
	shape := raster.Shape{Height: demoSize, Width: demoSize}
	plain, err := gradient(shape, false)
	if err != nil {
		return err
	}
	mean, variance := imgcipher.Statistics(plain)
	_, _ = fmt.Fprintf(w, "[image] plaintext %s: mean=%.2f variance=%.2f\n", shape, mean, variance)

	key, err := imgcipher.GenerateKey(nil, shape)
	if err != nil {
		return err
	}
	defer key.Wipe()
	cipher, err := imgcipher.Encrypt(plain, key)
	if err != nil {
		return err
	}
	mean, variance = imgcipher.Statistics(cipher)
	_, _ = fmt.Fprintf(w, "[image] ciphertext: mean=%.2f variance=%.2f\n", mean, variance)

	recovered, err := imgcipher.Decrypt(cipher, key)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "[image] decrypted matches plaintext: %t\n", recovered.Equal(plain))

	wrongShape := raster.Shape{Height: demoSize / 2, Width: demoSize}
	wrongKey, err := imgcipher.GenerateKey(nil, wrongShape)
	if err != nil {
		return err
	}
	if _, err := imgcipher.Encrypt(plain, wrongKey); errors.Is(err, cryptoerr.ErrShapeMismatch) {
		_, _ = fmt.Fprintf(w, "[image] mismatched key rejected: %v\n", err)
	}

	// Reusing the key for a second image leaks the XOR of both plaintexts.
	second, err := gradient(shape, true)
	if err != nil {
		return err
	}
	reused, err := imgcipher.Encrypt(second, key)
	if err != nil {
		return err
	}
	leak, err := imgcipher.Combine(cipher, reused)
	if err != nil {
		return err
	}
	expected, err := imgcipher.Combine(plain, second)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "[image] combined ciphertexts equal combined plaintexts under a reused key: %t\n", leak.Equal(expected))

	if err := ctx.Err(); err != nil {
		return err
	}
	gen, err := passlock.NewKeyGenerator(passlock.SetShortDelayIterations())
	if err != nil {
		return err
	}
	sealed, err := imgcipher.SealKey(gen, passlock.Passphrase(demoPassword), key)
	if err != nil {
		return err
	}
	if _, err := imgcipher.OpenKey(passlock.Passphrase("wrong"), sealed); errors.Is(err, cryptoerr.ErrDecryptionFailure) {
		_, _ = fmt.Fprintf(w, "[image] sealed key refused the wrong passphrase\n")
	}
	opened, err := imgcipher.OpenKey(passlock.Passphrase(demoPassword), sealed)
	if err != nil {
		return err
	}
	defer opened.Wipe()
	_, _ = fmt.Fprintf(w, "[image] sealed key (%d bytes) opened intact: %t\n", len(sealed), opened.Equal(key))
	return nil
}

func rsaDemo(ctx context.Context, a *app, w io.Writer) error {
	svc, err := a.keyService()
	if err != nil {
		return err
	}
	priv, pub, err := svc.GenerateKeypair(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "[rsa] generated %d-bit key pair with exponent %d\n", pub.N.BitLen(), pub.E)

	first, err := svc.Encrypt(ctx, pub, []byte("test"))
	if err != nil {
		return err
	}
	second, err := svc.Encrypt(ctx, pub, []byte("test"))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "[rsa] two encryptions of the same message differ: %t\n", !bytes.Equal(first, second))
	for _, ct := range [][]byte{first, second} {
		pt, err := svc.Decrypt(ctx, priv, ct)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(w, "[rsa] decrypted %d-byte ciphertext: %q\n", len(ct), pt)
	}

	if _, err := svc.Encrypt(ctx, pub, make([]byte, 191)); errors.Is(err, cryptoerr.ErrMessageTooLong) {
		_, _ = fmt.Fprintf(w, "[rsa] oversized message rejected: %v\n", err)
	}

	record, err := svc.ExportPrivate(ctx, priv, []byte(demoPassword))
	if err != nil {
		return err
	}
	if _, err := svc.ImportPrivate(ctx, record, []byte("wrong")); errors.Is(err, cryptoerr.ErrDecryptionFailure) {
		_, _ = fmt.Fprintf(w, "[rsa] encrypted private key refused the wrong password\n")
	}
	imported, err := svc.ImportPrivate(ctx, record, []byte(demoPassword))
	if err != nil {
		return err
	}
	pubRecord, err := svc.ExportPublic(ctx, pub)
	if err != nil {
		return err
	}
	importedPub, err := svc.ImportPublic(ctx, pubRecord)
	if err != nil {
		return err
	}
	ct, err := svc.Encrypt(ctx, importedPub, []byte("round trip"))
	if err != nil {
		return err
	}
	pt, err := svc.Decrypt(ctx, imported, ct)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "[rsa] imported records round trip: %q\n", pt)
	return nil
}
