package quote

import (
	"errors"
	"net/http"

	"github.com/noah-isme/quotepay/internal/common"
	"github.com/noah-isme/quotepay/internal/money"
	"github.com/noah-isme/quotepay/internal/pix"
	"github.com/noah-isme/quotepay/internal/pricing"
	"github.com/noah-isme/quotepay/internal/tlv"
)

var errorCodes = []struct {
	target error
	code   string
}{
	{pricing.ErrInvalidFeeRate, "INVALID_FEE_RATE"},
	{money.ErrInvalidAmount, "INVALID_AMOUNT"},
	{pix.ErrInvalidPixKey, "INVALID_PIX_KEY"},
	{pix.ErrInvalidPayee, "INVALID_PAYEE"},
	{tlv.ErrEncodingOverflow, "ENCODING_OVERFLOW"},
	{pix.ErrChecksumMismatch, "CHECKSUM_MISMATCH"},
	{pix.ErrMalformed, "MALFORMED_PAYLOAD"},
}

// toAppError maps engine validation failures to 422 responses. Other errors
// pass through unchanged.
func toAppError(err error) error {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.target) {
			return common.NewAppError(ec.code, err.Error(), http.StatusUnprocessableEntity, err)
		}
	}
	return err
}
