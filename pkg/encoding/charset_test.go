package encoding

import (
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		wantNil bool
		wantErr bool
	}{
		{"", true, false},
		{"utf-8", true, false},
		{"UTF8", true, false},
		{"euc-kr", false, false},
		{"CP949", false, false},
		{"shift-jis", false, false},
		{"sjis", false, false},
		{"latin1", false, false},
		{"windows-1252", false, false},
		{"ebcdic", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := Lookup(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Lookup(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if (enc == nil) != tt.wantNil {
				t.Errorf("Lookup(%q) nil = %v, want %v", tt.name, enc == nil, tt.wantNil)
			}
		})
	}
}

func TestToUTF8(t *testing.T) {
	latin1, _ := Lookup(Latin1)
	if got := ToUTF8(latin1, []byte{'a', 0xE9}); got != "aé" {
		t.Errorf("latin1: got %q, want %q", got, "aé")
	}

	euckr, _ := Lookup(EUCKR)
	// "가" in EUC-KR
	if got := ToUTF8(euckr, []byte{0xB0, 0xA1}); got != "가" {
		t.Errorf("euc-kr: got %q, want %q", got, "가")
	}

	if got := ToUTF8(nil, []byte("steel")); got != "steel" {
		t.Errorf("passthrough: got %q", got)
	}
}

func TestRoundTrip(t *testing.T) {
	sjis, _ := Lookup(ShiftJIS)
	const name = "鉄_mat"
	if got := ToUTF8(sjis, FromUTF8(sjis, name)); got != name {
		t.Errorf("got %q, want %q", got, name)
	}
}
