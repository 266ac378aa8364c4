// Package tlv encodes and decodes the EMV-style tag-length-value fields used
// by merchant-presented payment codes: a two digit ID, a two digit decimal
// length and the value bytes. Composite fields carry their encoded children as
// their value.
package tlv

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxValueLen is the largest value length representable by the two digit length prefix.
const MaxValueLen = 99

var (
	// ErrEncodingOverflow is returned when a value does not fit the length prefix.
	ErrEncodingOverflow = errors.New("tlv value exceeds 99 bytes")
	// ErrInvalidID is returned for IDs that are not exactly two ASCII digits.
	ErrInvalidID = errors.New("tlv id must be two digits")
	// ErrMalformed is returned when decoding input that is not a valid field sequence.
	ErrMalformed = errors.New("malformed tlv data")
)

// Field is a single TLV entry. When Children is non-empty the field is
// composite and Value is ignored on encode.
type Field struct {
	ID       string
	Value    string
	Children []Field
}

// New returns a primitive field.
func New(id, value string) Field {
	return Field{ID: id, Value: value}
}

// Composite returns a field whose value is its encoded children.
func Composite(id string, children ...Field) Field {
	return Field{ID: id, Children: children}
}

// Encode serializes fields in order.
func Encode(fields ...Field) (string, error) {
	var b strings.Builder
	for _, f := range fields {
		if err := f.encodeTo(&b); err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func (f Field) encodeTo(b *strings.Builder) error {
	if !validID(f.ID) {
		return fmt.Errorf("%w: %q", ErrInvalidID, f.ID)
	}
	value := f.Value
	if len(f.Children) > 0 {
		nested, err := Encode(f.Children...)
		if err != nil {
			return fmt.Errorf("field %s: %w", f.ID, err)
		}
		value = nested
	}
	if len(value) > MaxValueLen {
		return fmt.Errorf("field %s: %w (%d bytes)", f.ID, ErrEncodingOverflow, len(value))
	}
	b.WriteString(f.ID)
	fmt.Fprintf(b, "%02d", len(value))
	b.WriteString(value)
	return nil
}

// Decode parses a flat sequence of fields. Nested values are left encoded;
// call Field.Nested to parse them.
func Decode(data string) ([]Field, error) {
	var fields []Field
	for pos := 0; pos < len(data); {
		if len(data)-pos < 4 {
			return nil, fmt.Errorf("%w: truncated header at offset %d", ErrMalformed, pos)
		}
		id := data[pos : pos+2]
		if !validID(id) {
			return nil, fmt.Errorf("%w: bad id %q at offset %d", ErrMalformed, id, pos)
		}
		n, err := strconv.Atoi(data[pos+2 : pos+4])
		if err != nil || n < 0 || !isDigits(data[pos+2:pos+4]) {
			return nil, fmt.Errorf("%w: bad length %q at offset %d", ErrMalformed, data[pos+2:pos+4], pos)
		}
		start := pos + 4
		if start+n > len(data) {
			return nil, fmt.Errorf("%w: field %s overruns input", ErrMalformed, id)
		}
		fields = append(fields, Field{ID: id, Value: data[start : start+n]})
		pos = start + n
	}
	return fields, nil
}

// Nested decodes f.Value as a sequence of child fields.
func (f Field) Nested() ([]Field, error) {
	children, err := Decode(f.Value)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", f.ID, err)
	}
	return children, nil
}

// Find returns the first field with the given id.
func Find(fields []Field, id string) (Field, bool) {
	for _, f := range fields {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

func validID(id string) bool {
	return len(id) == 2 && isDigits(id)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
