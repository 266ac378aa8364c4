package tlv_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/quotepay/internal/tlv"
)

func TestEncodePrimitive(t *testing.T) {
	out, err := tlv.Encode(tlv.New("00", "01"), tlv.New("58", "BR"), tlv.New("54", ""))
	require.NoError(t, err)
	require.Equal(t, "000201"+"5802BR"+"5400", out)
}

func TestEncodeComposite(t *testing.T) {
	field := tlv.Composite("26",
		tlv.New("00", "br.gov.bcb.pix"),
		tlv.New("01", "pagamento@empresa.com"),
	)
	out, err := tlv.Encode(field)
	require.NoError(t, err)
	require.Equal(t, "2643"+"0014br.gov.bcb.pix"+"0121pagamento@empresa.com", out)
}

func TestEncodeOverflow(t *testing.T) {
	_, err := tlv.Encode(tlv.New("59", strings.Repeat("A", 99)))
	require.NoError(t, err)

	_, err = tlv.Encode(tlv.New("59", strings.Repeat("A", 100)))
	require.ErrorIs(t, err, tlv.ErrEncodingOverflow)

	// children that fit individually but not together
	big := strings.Repeat("x", 60)
	_, err = tlv.Encode(tlv.Composite("26", tlv.New("00", big), tlv.New("01", big)))
	require.ErrorIs(t, err, tlv.ErrEncodingOverflow)
}

func TestEncodeInvalidID(t *testing.T) {
	for _, id := range []string{"", "1", "001", "a1"} {
		_, err := tlv.Encode(tlv.New(id, "x"))
		require.ErrorIs(t, err, tlv.ErrInvalidID, id)
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	encoded, err := tlv.Encode(
		tlv.New("00", "01"),
		tlv.Composite("62", tlv.New("05", "***")),
		tlv.New("60", "SAO PAULO"),
	)
	require.NoError(t, err)

	fields, err := tlv.Decode(encoded)
	require.NoError(t, err)
	require.Len(t, fields, 3)
	require.Equal(t, []string{"00", "62", "60"}, []string{fields[0].ID, fields[1].ID, fields[2].ID})

	additional, ok := tlv.Find(fields, "62")
	require.True(t, ok)
	children, err := additional.Nested()
	require.NoError(t, err)
	require.Equal(t, []tlv.Field{{ID: "05", Value: "***"}}, children)

	_, ok = tlv.Find(fields, "99")
	require.False(t, ok)
}

func TestDecodeMalformed(t *testing.T) {
	for _, in := range []string{"00", "0002", "000201X", "AB0201", "00x101", "0005abc"} {
		_, err := tlv.Decode(in)
		require.ErrorIs(t, err, tlv.ErrMalformed, in)
	}
}
