package sanitizer

import (
	"reflect"
	"testing"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"Grand Plaza", "Grand Plaza"},
		{"  Grand   Plaza  ", "Grand Plaza"},
		{"Grand\t\nPlaza", "Grand Plaza"},
	}

	for _, tt := range tests {
		if got := TrimAndNormalize(tt.in); got != tt.want {
			t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Guest@Example.COM "); got != "guest@example.com" {
		t.Errorf("NormalizeEmail = %q, want %q", got, "guest@example.com")
	}
}

func TestNormalizeRoomNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"101", "101"},
		{" 12b ", "12B"},
		{"suite-3a", "SUITE-3A"},
	}

	for _, tt := range tests {
		if got := NormalizeRoomNumber(tt.in); got != tt.want {
			t.Errorf("NormalizeRoomNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeSlice(t *testing.T) {
	in := []string{" WiFi ", "wifi", "", "  ", "Minibar", "WIFI"}
	want := []string{"wifi", "minibar"}

	got := SanitizeSlice(in, NormalizeAmenity)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SanitizeSlice = %v, want %v", got, want)
	}

	if got := SanitizeSlice(nil, NormalizeAmenity); len(got) != 0 {
		t.Errorf("SanitizeSlice(nil) = %v, want empty", got)
	}
}

func TestPipeline(t *testing.T) {
	p := Pipeline{TrimAndNormalize, NormalizeEmail}
	if got := p.Apply("  User@HOST.com  "); got != "user@host.com" {
		t.Errorf("Pipeline.Apply = %q, want %q", got, "user@host.com")
	}
}
