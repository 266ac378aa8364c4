package pix

import (
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/quotepay/internal/crc16"
	"github.com/noah-isme/quotepay/internal/money"
	"github.com/noah-isme/quotepay/internal/tlv"
)

var (
	// ErrChecksumMismatch is returned when the trailing CRC does not match the payload.
	ErrChecksumMismatch = errors.New("pix payload checksum mismatch")
	// ErrMalformed is returned for payloads that do not follow the field layout.
	ErrMalformed = errors.New("malformed pix payload")
)

// Decoded holds the fields recovered from a payload.
type Decoded struct {
	PixKey string      `json:"pixKey"`
	Name   string      `json:"name"`
	City   string      `json:"city"`
	Amount money.Cents `json:"amount"`
	TxID   string      `json:"txid"`
	CRC    string      `json:"crc"`
}

// Verify recomputes the CRC over everything up to and including "6304" and
// compares it to the trailing four hex digits.
func Verify(payload string) error {
	if len(payload) < len(crcPrefix)+4 {
		return fmt.Errorf("%w: too short", ErrMalformed)
	}
	body, sum := payload[:len(payload)-4], payload[len(payload)-4:]
	if !strings.HasSuffix(body, crcPrefix) {
		return fmt.Errorf("%w: missing %s trailer", ErrMalformed, crcPrefix)
	}
	if !isUpperHex(sum) {
		return fmt.Errorf("%w: checksum %q is not uppercase hex", ErrMalformed, sum)
	}
	if want := crc16.String(body); want != sum {
		return fmt.Errorf("%w: got %s want %s", ErrChecksumMismatch, sum, want)
	}
	return nil
}

// Parse verifies payload and decodes it field by field.
func Parse(payload string) (Decoded, error) {
	if err := Verify(payload); err != nil {
		return Decoded{}, err
	}
	fields, err := tlv.Decode(payload)
	if err != nil {
		return Decoded{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(fields) < 2 || fields[0].ID != IDPayloadFormat || fields[0].Value != PayloadFormat {
		return Decoded{}, fmt.Errorf("%w: payload must start with %s%02d%s", ErrMalformed, IDPayloadFormat, len(PayloadFormat), PayloadFormat)
	}
	last := fields[len(fields)-1]
	if last.ID != IDCRC || len(last.Value) != 4 {
		return Decoded{}, fmt.Errorf("%w: crc field must be last", ErrMalformed)
	}

	out := Decoded{CRC: last.Value, TxID: DefaultTxID}
	account, ok := tlv.Find(fields, IDMerchantAccount)
	if !ok {
		return Decoded{}, fmt.Errorf("%w: missing merchant account", ErrMalformed)
	}
	sub, err := account.Nested()
	if err != nil {
		return Decoded{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	gui, _ := tlv.Find(sub, IDAccountGUI)
	if !strings.EqualFold(gui.Value, GUI) {
		return Decoded{}, fmt.Errorf("%w: unexpected account gui %q", ErrMalformed, gui.Value)
	}
	key, _ := tlv.Find(sub, IDAccountKey)
	out.PixKey = key.Value

	if f, ok := tlv.Find(fields, IDAmount); ok {
		amount, err := money.Parse(f.Value)
		if err != nil {
			return Decoded{}, fmt.Errorf("%w: amount: %v", ErrMalformed, err)
		}
		out.Amount = amount
	}
	if f, ok := tlv.Find(fields, IDMerchantName); ok {
		out.Name = f.Value
	}
	if f, ok := tlv.Find(fields, IDMerchantCity); ok {
		out.City = f.Value
	}
	if f, ok := tlv.Find(fields, IDAdditionalData); ok {
		extra, err := f.Nested()
		if err != nil {
			return Decoded{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if tx, ok := tlv.Find(extra, IDTxID); ok {
			out.TxID = tx.Value
		}
	}
	return out, nil
}

func isUpperHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9') && !(c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}
