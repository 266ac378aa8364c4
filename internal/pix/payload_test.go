package pix_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/quotepay/internal/crc16"
	"github.com/noah-isme/quotepay/internal/money"
	"github.com/noah-isme/quotepay/internal/pix"
	"github.com/noah-isme/quotepay/internal/tlv"
)

// Example payload published by the Banco Central do Brasil.
const bcbExample = "00020126580014br.gov.bcb.pix0136123e4567-e12b-12d1-a456-4266554400005204000053039865802BR5913Fulano de Tal6008BRASILIA62070503***63041D3D"

func TestBuildMatchesReferencePayload(t *testing.T) {
	payload, err := pix.Build(pix.Payee{
		Key:  "123e4567-e12b-12d1-a456-426655440000",
		Name: "Fulano de Tal",
		City: "BRASILIA",
	}, 0)
	require.NoError(t, err)
	require.Equal(t, bcbExample, payload)
	require.NoError(t, pix.Verify(bcbExample))
}

func TestBuildFieldOrder(t *testing.T) {
	payload, err := pix.Build(pix.Payee{
		Key:  "pagamento@empresa.com",
		Name: "EMPRESA LTDA",
		City: "SAO PAULO",
	}, 15000)
	require.NoError(t, err)
	require.Equal(t, "00020126430014br.gov.bcb.pix0121pagamento@empresa.com5204000053039865406150.005802BR5912EMPRESA LTDA6009SAO PAULO62070503***6304103C", payload)

	fields, err := tlv.Decode(payload)
	require.NoError(t, err)
	ids := make([]string, 0, len(fields))
	for _, f := range fields {
		ids = append(ids, f.ID)
	}
	require.Equal(t, []string{"00", "26", "52", "53", "54", "58", "59", "60", "62", "63"}, ids)

	account, err := fields[1].Nested()
	require.NoError(t, err)
	require.Equal(t, []tlv.Field{{ID: "00", Value: "br.gov.bcb.pix"}, {ID: "01", Value: "pagamento@empresa.com"}}, account)
	require.Equal(t, "150.00", fields[4].Value)
	require.Equal(t, "BR", fields[5].Value)
	require.Equal(t, "EMPRESA LTDA", fields[6].Value)
	require.Equal(t, "SAO PAULO", fields[7].Value)
	extra, err := fields[8].Nested()
	require.NoError(t, err)
	require.Equal(t, []tlv.Field{{ID: "05", Value: "***"}}, extra)
	require.Len(t, fields[9].Value, 4)
}

func TestBuildNormalizesAndTruncates(t *testing.T) {
	payload, err := pix.Build(pix.Payee{
		Key:  "+5511999998888",
		Name: "João  Conceição Açougue São Paulo",
		City: "São José dos Campos",
		TxID: "ORC-2024/001",
	}, 588235)
	require.NoError(t, err)
	require.Equal(t, "00020126360014br.gov.bcb.pix0114+551199999888852040000530398654075882.355802BR5925Joao Conceicao Acougue Sa6015Sao Jose dos Ca62140510ORC20240016304F02C", payload)
}

func TestBuildTruncatesBeforeOverflowCheck(t *testing.T) {
	payload, err := pix.Build(pix.Payee{
		Key:  "chave@example.com",
		Name: strings.Repeat("N", 300),
		City: strings.Repeat("C", 300),
		TxID: strings.Repeat("T", 300),
	}, 100)
	require.NoError(t, err)

	decoded, err := pix.Parse(payload)
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("N", pix.MaxNameLen), decoded.Name)
	require.Equal(t, strings.Repeat("C", pix.MaxCityLen), decoded.City)
	require.Equal(t, strings.Repeat("T", pix.MaxTxIDLen), decoded.TxID)
}

func TestBuildOmitsZeroAmount(t *testing.T) {
	payload, err := pix.Build(pix.Payee{Key: "chave", Name: "A", City: "B"}, 0)
	require.NoError(t, err)
	fields, err := tlv.Decode(payload)
	require.NoError(t, err)
	_, ok := tlv.Find(fields, pix.IDAmount)
	require.False(t, ok)
}

func TestBuildValidation(t *testing.T) {
	payee := pix.Payee{Key: "chave", Name: "A", City: "B"}

	for _, key := range []string{"", "   ", "\t\n"} {
		_, err := pix.Build(pix.Payee{Key: key}, 100)
		require.ErrorIs(t, err, pix.ErrInvalidPixKey)
	}
	_, err := pix.Build(pix.Payee{Key: strings.Repeat("k", pix.MaxKeyLen+1)}, 100)
	require.ErrorIs(t, err, pix.ErrInvalidPixKey)
	_, err = pix.Build(pix.Payee{Key: strings.Repeat("k", pix.MaxKeyLen), Name: "A", City: "B"}, 100)
	require.NoError(t, err)

	_, err = pix.Build(payee, -1)
	require.ErrorIs(t, err, money.ErrInvalidAmount)

	_, err = pix.Build(payee, money.Cents(999_999_999_999)) // 9999999999.99
	require.NoError(t, err)
	_, err = pix.Build(payee, money.Cents(1_000_000_000_000)) // 10000000000.00
	require.ErrorIs(t, err, tlv.ErrEncodingOverflow)
}

func TestPayloadChecksumRoundTrip(t *testing.T) {
	amounts := []money.Cents{0, 1, 99, 15000, 588235, 123456789}
	for _, amount := range amounts {
		payload, err := pix.Build(pix.Payee{Key: "pagamento@empresa.com", Name: "Empresa", City: "Recife"}, amount)
		require.NoError(t, err)

		tail := payload[len(payload)-8:]
		require.Regexp(t, `^6304[0-9A-F]{4}$`, tail)
		require.Equal(t, tail[4:], crc16.String(payload[:len(payload)-4]))
		require.NoError(t, pix.Verify(payload))

		decoded, err := pix.Parse(payload)
		require.NoError(t, err)
		require.Equal(t, amount, decoded.Amount)
		require.Equal(t, "pagamento@empresa.com", decoded.PixKey)
	}
}

func TestBuildRejectsEmptyNameOrCity(t *testing.T) {
	cases := []pix.Payee{
		{Key: "chave", City: "Recife"},
		{Key: "chave", Name: "東京", City: "Recife"},
		{Key: "chave", Name: "Empresa", City: "   "},
		{Key: "chave", Name: "Empresa", City: "東京"},
	}
	for _, payee := range cases {
		payload, err := pix.Build(payee, 100)
		require.ErrorIs(t, err, pix.ErrInvalidPayee, "%+v", payee)
		require.Empty(t, payload)
	}

	// one surviving character is enough
	payload, err := pix.Build(pix.Payee{Key: "chave", Name: "東京 A", City: "B"}, 100)
	require.NoError(t, err)
	require.Contains(t, payload, "5901A6001B")
}

func TestBuildIsSafeForConcurrentUse(t *testing.T) {
	payee := pix.Payee{Key: "chave@example.com", Name: "Lojá Açaí", City: "Belém"}
	want, err := pix.Build(payee, 4990)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = pix.Build(payee, 4990)
		}(i)
	}
	wg.Wait()
	for _, got := range results {
		require.Equal(t, want, got)
	}
}

func TestBuilderPlaceholder(t *testing.T) {
	var unset *pix.Builder
	require.False(t, unset.Configured())

	res, err := pix.NewBuilder(pix.Payee{Name: "Empresa"}).BuildOrPlaceholder(15000, "")
	require.NoError(t, err)
	require.True(t, res.Placeholder)
	require.Equal(t, pix.PlaceholderPayload, res.Payload)

	b := pix.NewBuilder(pix.Payee{Key: "pagamento@empresa.com", Name: "EMPRESA LTDA", City: "SAO PAULO", TxID: "CFG1"})
	res, err = b.BuildOrPlaceholder(15000, "")
	require.NoError(t, err)
	require.False(t, res.Placeholder)
	decoded, err := pix.Parse(res.Payload)
	require.NoError(t, err)
	require.Equal(t, "CFG1", decoded.TxID)

	res, err = b.BuildOrPlaceholder(15000, "ORC42")
	require.NoError(t, err)
	decoded, err = pix.Parse(res.Payload)
	require.NoError(t, err)
	require.Equal(t, "ORC42", decoded.TxID)

	_, err = b.BuildOrPlaceholder(-5, "")
	require.ErrorIs(t, err, money.ErrInvalidAmount)
}
