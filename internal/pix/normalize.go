package pix

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize strips diacritics, drops anything outside printable ASCII,
// collapses whitespace and truncates to max bytes. Case is preserved.
func Normalize(s string, max int) string {
	// transform chains carry state; build one per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		switch {
		case r >= 0x20 && r <= 0x7E:
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	clean := strings.Join(strings.Fields(b.String()), " ")
	if max >= 0 && len(clean) > max {
		clean = strings.TrimSpace(clean[:max])
	}
	return clean
}

// NormalizeTxID keeps only ASCII letters and digits, truncated to 25
// characters. An empty result becomes DefaultTxID.
func NormalizeTxID(s string) string {
	if strings.TrimSpace(s) == DefaultTxID {
		return DefaultTxID
	}
	var b strings.Builder
	for _, r := range Normalize(s, -1) {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == MaxTxIDLen {
				break
			}
		}
	}
	if b.Len() == 0 {
		return DefaultTxID
	}
	return b.String()
}
