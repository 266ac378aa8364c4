// Package pix builds and verifies static Pix payment payloads ("BR Code"):
// an EMV merchant-presented TLV sequence terminated by a CRC-16 field.
package pix

import (
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/quotepay/internal/crc16"
	"github.com/noah-isme/quotepay/internal/money"
	"github.com/noah-isme/quotepay/internal/tlv"
)

// Top-level field IDs, in the order they are emitted.
const (
	IDPayloadFormat   = "00"
	IDMerchantAccount = "26"
	IDCategoryCode    = "52"
	IDCurrency        = "53"
	IDAmount          = "54"
	IDCountry         = "58"
	IDMerchantName    = "59"
	IDMerchantCity    = "60"
	IDAdditionalData  = "62"
	IDCRC             = "63"
)

// Sub-field IDs.
const (
	IDAccountGUI = "00"
	IDAccountKey = "01"
	IDTxID       = "05"
)

// Fixed values.
const (
	PayloadFormat = "01"
	GUI           = "br.gov.bcb.pix"
	CategoryCode  = "0000"
	CurrencyBRL   = "986"
	CountryBR     = "BR"
	DefaultTxID   = "***"

	MaxKeyLen    = 77
	MaxNameLen   = 25
	MaxCityLen   = 15
	MaxTxIDLen   = 25
	MaxAmountLen = 13

	crcPrefix = IDCRC + "04"
)

// PlaceholderPayload stands in for a payload when no pix key is configured.
const PlaceholderPayload = "PIX INDISPONIVEL: CHAVE PIX NAO CONFIGURADA"

// ErrInvalidPixKey is returned when the payee key is empty or longer than 77 bytes.
var ErrInvalidPixKey = errors.New("invalid pix key")

// ErrInvalidPayee reports a merchant name or city with nothing left after
// normalization. Readers reject empty 59/60 fields.
var ErrInvalidPayee = errors.New("invalid payee")

// Payee identifies who receives the payment.
type Payee struct {
	Key  string
	Name string
	City string
	// TxID is the reference label placed in field 62-05. Empty means "***".
	TxID string
}

// Build returns the checksummed payload for payee and amount. A zero amount
// leaves field 54 out so the payer types the value.
func Build(payee Payee, amount money.Cents) (string, error) {
	key := strings.TrimSpace(payee.Key)
	if key == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidPixKey)
	}
	if len(key) > MaxKeyLen {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrInvalidPixKey, len(key), MaxKeyLen)
	}
	if amount < 0 {
		return "", fmt.Errorf("%w: %s is negative", money.ErrInvalidAmount, amount)
	}
	name := Normalize(payee.Name, MaxNameLen)
	if name == "" {
		return "", fmt.Errorf("%w: merchant name %q is empty after normalization", ErrInvalidPayee, payee.Name)
	}
	city := Normalize(payee.City, MaxCityLen)
	if city == "" {
		return "", fmt.Errorf("%w: merchant city %q is empty after normalization", ErrInvalidPayee, payee.City)
	}

	fields := []tlv.Field{
		tlv.New(IDPayloadFormat, PayloadFormat),
		tlv.Composite(IDMerchantAccount,
			tlv.New(IDAccountGUI, GUI),
			tlv.New(IDAccountKey, key),
		),
		tlv.New(IDCategoryCode, CategoryCode),
		tlv.New(IDCurrency, CurrencyBRL),
	}
	if !amount.IsZero() {
		value := amount.String()
		if len(value) > MaxAmountLen {
			return "", fmt.Errorf("field %s: %w (%s)", IDAmount, tlv.ErrEncodingOverflow, value)
		}
		fields = append(fields, tlv.New(IDAmount, value))
	}
	fields = append(fields,
		tlv.New(IDCountry, CountryBR),
		tlv.New(IDMerchantName, name),
		tlv.New(IDMerchantCity, city),
		tlv.Composite(IDAdditionalData, tlv.New(IDTxID, NormalizeTxID(payee.TxID))),
	)

	body, err := tlv.Encode(fields...)
	if err != nil {
		return "", err
	}
	body += crcPrefix
	return body + crc16.String(body), nil
}

// Builder holds the configured payee so call sites only pass amounts.
type Builder struct {
	payee Payee
}

// NewBuilder returns a Builder for payee.
func NewBuilder(payee Payee) *Builder {
	return &Builder{payee: payee}
}

// Configured reports whether a pix key is available.
func (b *Builder) Configured() bool {
	return b != nil && strings.TrimSpace(b.payee.Key) != ""
}

// Build builds a payload for amount. A non-empty txid overrides the configured one.
func (b *Builder) Build(amount money.Cents, txid string) (string, error) {
	payee := b.payee
	if strings.TrimSpace(txid) != "" {
		payee.TxID = txid
	}
	return Build(payee, amount)
}

// Result is a built payload or the placeholder.
type Result struct {
	Payload     string
	Placeholder bool
}

// BuildOrPlaceholder behaves like Build but returns PlaceholderPayload instead
// of ErrInvalidPixKey when no key is configured, so documents can still render.
func (b *Builder) BuildOrPlaceholder(amount money.Cents, txid string) (Result, error) {
	if !b.Configured() {
		return Result{Payload: PlaceholderPayload, Placeholder: true}, nil
	}
	payload, err := b.Build(amount, txid)
	if err != nil {
		return Result{}, err
	}
	return Result{Payload: payload}, nil
}
