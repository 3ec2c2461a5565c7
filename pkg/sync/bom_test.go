package sync

import (
	"crypto/md5"
	"encoding/hex"
	"testing"
)

func TestStripBOM(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "no bom", in: "util.out('x');", want: "util.out('x');"},
		{name: "leading bom", in: "\ufeffutil.out('x');", want: "util.out('x');"},
		{name: "empty", in: "", want: ""},
		{name: "bom only", in: "\ufeff", want: ""},
		{name: "interior bom kept", in: "a\ufeffb", want: "a\ufeffb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripBOM(tt.in); got != tt.want {
				t.Errorf("StripBOM(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStripBOMIdempotent(t *testing.T) {
	in := "\ufeffreturn 1;"
	once := StripBOM(in)
	twice := StripBOM(once)
	if once != twice {
		t.Errorf("stripping twice changed the content: %q vs %q", once, twice)
	}
}

func TestDigestIgnoresBOM(t *testing.T) {
	plain := "var x = 1;"
	if Digest(plain) != Digest("\ufeff"+plain) {
		t.Error("a leading BOM must not change the digest")
	}

	sum := md5.Sum([]byte(plain))
	if want := hex.EncodeToString(sum[:]); Digest(plain) != want {
		t.Errorf("Digest(%q) = %s, want %s", plain, Digest(plain), want)
	}
}
