// Package encoding provides text encoding utilities for MDL material names.
package encoding

import (
	"fmt"
	"strings"

	xenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// Charset names accepted by Lookup.
const (
	UTF8        = "utf-8"
	EUCKR       = "euc-kr"
	ShiftJIS    = "shift-jis"
	Latin1      = "latin1"
	Windows1252 = "windows-1252"
)

var charsets = map[string]xenc.Encoding{
	EUCKR:       korean.EUCKR,
	ShiftJIS:    japanese.ShiftJIS,
	Latin1:      charmap.ISO8859_1,
	Windows1252: charmap.Windows1252,
}

// Lookup returns the encoding for a charset name. UTF-8 (and the empty
// name) returns nil: names are passed through unchanged.
func Lookup(name string) (xenc.Encoding, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "", UTF8, "utf8":
		return nil, nil
	case "euckr", "cp949":
		name = EUCKR
	case "sjis", "shift_jis", "cp932":
		name = ShiftJIS
	case "iso-8859-1":
		name = Latin1
	case "cp1252":
		name = Windows1252
	}
	enc, ok := charsets[name]
	if !ok {
		return nil, fmt.Errorf("unknown charset %q", name)
	}
	return enc, nil
}

// ToUTF8 converts data from enc to a UTF-8 string.
// Returns the original bytes as a string if enc is nil or conversion fails.
func ToUTF8(enc xenc.Encoding, data []byte) string {
	if enc == nil {
		return string(data)
	}
	result, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// FromUTF8 converts a UTF-8 string to enc.
// Returns the original bytes if enc is nil or conversion fails.
func FromUTF8(enc xenc.Encoding, s string) []byte {
	if enc == nil {
		return []byte(s)
	}
	result, _, err := transform.Bytes(enc.NewEncoder(), []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}
