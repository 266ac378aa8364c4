package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/noah-isme/quotepay/internal/config"
	"github.com/noah-isme/quotepay/internal/money"
	"github.com/noah-isme/quotepay/internal/pix"
)

// pixgen prints a payment payload for the configured payee, or checks one
// with -verify. Flags override the PIX_* environment.
// Exit code 0 = ok, 1 = invalid input or payload, 2 = other error.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pixgen: %v\n", err)
		os.Exit(2)
	}
	os.Exit(run(os.Args[1:], cfg.Payee(), os.Stdout, os.Stderr))
}

func run(args []string, defaults pix.Payee, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pixgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	key := fs.String("key", defaults.Key, "pix key (PIX_KEY)")
	name := fs.String("name", defaults.Name, "merchant name (PIX_MERCHANT_NAME)")
	city := fs.String("city", defaults.City, "merchant city (PIX_MERCHANT_CITY)")
	txid := fs.String("txid", defaults.TxID, "transaction id (PIX_TXID)")
	amount := fs.String("amount", "", "amount in reais, e.g. 150.00; empty leaves it open")
	verify := fs.String("verify", "", "payload to check instead of generating one")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *verify != "" {
		decoded, err := pix.Parse(*verify)
		if err != nil {
			fmt.Fprintf(stderr, "pixgen: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "key:    %s\n", decoded.PixKey)
		fmt.Fprintf(stdout, "name:   %s\n", decoded.Name)
		fmt.Fprintf(stdout, "city:   %s\n", decoded.City)
		fmt.Fprintf(stdout, "amount: %s\n", decoded.Amount)
		fmt.Fprintf(stdout, "txid:   %s\n", decoded.TxID)
		fmt.Fprintf(stdout, "crc:    %s\n", decoded.CRC)
		return 0
	}

	var cents money.Cents
	if *amount != "" {
		parsed, err := money.Parse(*amount)
		if err != nil {
			fmt.Fprintf(stderr, "pixgen: amount: %v\n", err)
			return 1
		}
		cents = parsed
	}
	payload, err := pix.Build(pix.Payee{Key: *key, Name: *name, City: *city, TxID: *txid}, cents)
	if err != nil {
		fmt.Fprintf(stderr, "pixgen: %v\n", err)
		return 1
	}
	fmt.Fprintln(stdout, payload)
	return 0
}
