package protocol

import "testing"

func TestParseBuild(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{in: "8034", want: 8034, wantOK: true},
		{in: "8050", want: 8050, wantOK: true},
		{in: "", wantOK: false},
		{in: "8.0.34", wantOK: false},
		{in: "build-8034", wantOK: false},
	}

	for _, tt := range tests {
		got, ok := ParseBuild(tt.in)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("ParseBuild(%q) = %d, %v; want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestSupportsCategories(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{in: "8041", want: true},
		{in: "9000", want: true},
		{in: "8040", want: false},
		{in: "", want: false},
		{in: "nope", want: false},
	}

	for _, tt := range tests {
		if got := SupportsCategories(tt.in); got != tt.want {
			t.Errorf("SupportsCategories(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
