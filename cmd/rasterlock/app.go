package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/saylorsolutions/rasterlock/internal/config"
	"github.com/saylorsolutions/rasterlock/pkg/cryptoerr"
	"github.com/saylorsolutions/rasterlock/pkg/logging"
	"github.com/saylorsolutions/rasterlock/pkg/passlock"
	"github.com/saylorsolutions/rasterlock/pkg/rsakey"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"
)

type app struct {
	cfg *config.Config
	log logging.Logger
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return &app{
		cfg: cfg,
		log: logging.NewText(os.Stderr, logging.ParseLevel(cfg.LogLevel)),
	}, nil
}

// keyService applies the configured RSA policy, then any overrides.
func (a *app) keyService(opts ...rsakey.ServiceOpt) (*rsakey.KeyService, error) {
	base := []rsakey.ServiceOpt{
		rsakey.WithBits(a.cfg.RSABits),
		rsakey.WithExponent(a.cfg.RSAExponent),
		rsakey.WithRecordIterations(a.cfg.RecordIterations),
	}
	return rsakey.NewKeyService(a.log, append(base, opts...)...)
}

func (a *app) sealer() (*passlock.KeyGenerator, error) {
	strength := passlock.SetLongDelayIterations()
	if a.cfg.SealStrength == config.SealStrengthInteractive {
		strength = passlock.SetShortDelayIterations()
	}
	return passlock.NewKeyGenerator(strength)
}

// writeContext bounds the wait for another writer of the same key file.
func (a *app) writeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.cfg.LockTimeout)
}

// passphrase reads the passphrase from the environment, or prompts for it without echo.
// When confirm is true, a prompted passphrase must be entered twice.
func (a *app) passphrase(prompt string, confirm bool) ([]byte, error) {
	if len(a.cfg.Passphrase) > 0 {
		return []byte(a.cfg.Passphrase), nil
	}
	fd := int(os.Stdin.Fd()) //nolint:gosec // File descriptors fit in an int.
	if !term.IsTerminal(fd) {
		return nil, cryptoerr.InvalidParameter("no passphrase available: set %s or run from a terminal", config.PassphraseEnv)
	}
	pass, err := readPassword(fd, prompt)
	if err != nil {
		return nil, err
	}
	if len(pass) == 0 {
		return nil, cryptoerr.InvalidParameter("empty passphrase")
	}
	if confirm {
		again, err := readPassword(fd, "Confirm "+prompt)
		if err != nil {
			clear(pass)
			return nil, err
		}
		defer clear(again)
		if !bytes.Equal(pass, again) {
			clear(pass)
			return nil, cryptoerr.InvalidParameter("passphrases don't match")
		}
	}
	return pass, nil
}

func readPassword(fd int, prompt string) ([]byte, error) {
	_, _ = fmt.Fprintf(os.Stderr, "%s: ", prompt)
	pass, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	return pass, nil
}

func newFlags(name, argsUsage, description string) *flag.FlagSet {
	flags := flag.NewFlagSet(name, flag.ContinueOnError)
	flags.Usage = func() {
		fmt.Printf(`
%s

USAGE:  rasterlock %s [FLAGS] %s

FLAGS:
%s`, description, name, argsUsage, flags.FlagUsages())
	}
	return flags
}

// parseFlags parses args and requires exactly nargs positional arguments.
func parseFlags(flags *flag.FlagSet, args []string, nargs int) error {
	return parseFlagsRange(flags, args, nargs, nargs)
}

func parseFlagsRange(flags *flag.FlagSet, args []string, minArgs, maxArgs int) error {
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		flags.Usage()
		return cryptoerr.InvalidParameter("failed to parse flags: %v", err)
	}
	if n := flags.NArg(); n < minArgs || n > maxArgs {
		flags.Usage()
		if minArgs == maxArgs {
			return cryptoerr.InvalidParameter("expected %d arguments, got %d", minArgs, n)
		}
		return cryptoerr.InvalidParameter("expected %d to %d arguments, got %d", minArgs, maxArgs, n)
	}
	return nil
}
