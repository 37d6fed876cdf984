package main

import (
	"context"
	"fmt"

	"github.com/saylorsolutions/rasterlock/pkg/imgcipher"
	"github.com/saylorsolutions/rasterlock/pkg/keyfile"
	"github.com/saylorsolutions/rasterlock/pkg/passlock"
	"github.com/saylorsolutions/rasterlock/pkg/raster"
)

func defaultKeyPath(output string) string {
	return output + ".key"
}

func imageEncrypt(ctx context.Context, a *app, args []string) error {
	flags := newFlags("image-encrypt", "INPUT OUTPUT",
		"Encrypts INPUT as 8-bit greyscale with a fresh random key of the same size, and writes the ciphertext to OUTPUT as a PNG.\nThe key is sealed with a passphrase and written next to OUTPUT, unless --key is given.")
	keyPath := flags.StringP("key", "k", "", "Path of the sealed key file to write. Defaults to OUTPUT with a .key suffix.")
	if err := parseFlags(flags, args, 2); err != nil {
		return err
	}
	input, output := flags.Arg(0), flags.Arg(1)
	if len(*keyPath) == 0 {
		*keyPath = defaultKeyPath(output)
	}

	plain, err := raster.Load(input)
	if err != nil {
		return err
	}
	key, err := imgcipher.GenerateKey(nil, plain.Shape())
	if err != nil {
		return err
	}
	defer key.Wipe()
	cipher, err := imgcipher.Encrypt(plain, key)
	if err != nil {
		return err
	}

	pass, err := a.passphrase("Passphrase for the image key", true)
	if err != nil {
		return err
	}
	defer clear(pass)
	gen, err := a.sealer()
	if err != nil {
		return err
	}
	sealed, err := imgcipher.SealKey(gen, passlock.Passphrase(pass), key)
	if err != nil {
		return err
	}

	wctx, cancel := a.writeContext(ctx)
	defer cancel()
	if err := keyfile.Write(wctx, *keyPath, sealed, keyfile.PrivatePerm); err != nil {
		return err
	}
	if err := raster.Save(cipher, output); err != nil {
		return err
	}
	a.log.Info(ctx, "Encrypted image", "input", input, "output", output, "key", *keyPath, "shape", plain.Shape().String())
	return nil
}

func imageDecrypt(ctx context.Context, a *app, args []string) error {
	flags := newFlags("image-decrypt", "INPUT OUTPUT",
		"Decrypts the ciphertext image INPUT with its sealed key, and writes the recovered greyscale image to OUTPUT as a PNG.")
	keyPath := flags.StringP("key", "k", "", "Path of the sealed key file. Defaults to INPUT with a .key suffix.")
	if err := parseFlags(flags, args, 2); err != nil {
		return err
	}
	input, output := flags.Arg(0), flags.Arg(1)
	if len(*keyPath) == 0 {
		*keyPath = defaultKeyPath(input)
	}

	cipher, err := raster.Load(input)
	if err != nil {
		return err
	}
	sealed, err := keyfile.Read(*keyPath)
	if err != nil {
		return err
	}
	pass, err := a.passphrase("Passphrase for the image key", false)
	if err != nil {
		return err
	}
	defer clear(pass)
	key, err := imgcipher.OpenKey(passlock.Passphrase(pass), sealed)
	if err != nil {
		a.log.Warn(ctx, "Failed to open image key", "key", *keyPath)
		return err
	}
	defer key.Wipe()
	plain, err := imgcipher.Decrypt(cipher, key)
	if err != nil {
		return err
	}
	if err := raster.Save(plain, output); err != nil {
		return err
	}
	a.log.Info(ctx, "Decrypted image", "input", input, "output", output, "shape", plain.Shape().String())
	return nil
}

func imageStats(_ context.Context, _ *app, args []string) error {
	flags := newFlags("image-stats", "INPUT",
		"Prints the mean and population variance of the pixel values of INPUT.\nA ciphertext made with a uniform random key should be close to a mean of 127.5 and a variance of 5461.25.")
	if err := parseFlags(flags, args, 1); err != nil {
		return err
	}
	img, err := raster.Load(flags.Arg(0))
	if err != nil {
		return err
	}
	mean, variance := imgcipher.Statistics(img)
	fmt.Printf("shape=%s mean=%.4f variance=%.4f\n", img.Shape(), mean, variance)
	return nil
}

func imageCombine(ctx context.Context, a *app, args []string) error {
	flags := newFlags("image-combine", "FIRST SECOND OUTPUT",
		"XORs two images over their overlapping top-left region and writes the result to OUTPUT as a PNG.\nFor two ciphertexts made with the same key, the result is the XOR of their plaintexts.")
	if err := parseFlags(flags, args, 3); err != nil {
		return err
	}
	first, err := raster.Load(flags.Arg(0))
	if err != nil {
		return err
	}
	second, err := raster.Load(flags.Arg(1))
	if err != nil {
		return err
	}
	combined, err := imgcipher.Combine(first, second)
	if err != nil {
		return err
	}
	if err := raster.Save(combined, flags.Arg(2)); err != nil {
		return err
	}
	a.log.Info(ctx, "Combined images", "output", flags.Arg(2), "shape", combined.Shape().String())
	return nil
}
