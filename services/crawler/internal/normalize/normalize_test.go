package normalize

import (
	"strconv"
	"testing"
)

func TestParseAbbreviatedCount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"1.5K", 1500},
		{"2M", 2000000},
		{"3B", 3000000000},
		{"", 0},
		{"abc", 0},
		{"42", 42},
		{"1,234", 1234},
		{"12.7", 12},
		{"1.15K", 1150},
		{"  987 likes", 987},
		{"K", 0},
		{"1.2.3", 0},
		{"99999999999999999999999B", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseAbbreviatedCount(tt.in); got != tt.want {
				t.Errorf("ParseAbbreviatedCount(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseAbbreviatedCountIsIdempotent(t *testing.T) {
	for _, in := range []string{"0", "7", "1500", "2000000"} {
		first := ParseAbbreviatedCount(in)
		second := ParseAbbreviatedCount(strconv.FormatInt(first, 10))
		if first != second {
			t.Errorf("%q: %d != %d", in, first, second)
		}
	}
}

func TestDateText(t *testing.T) {
	if got := DateText("  \n "); got != "Unknown" {
		t.Errorf("DateText(blank) = %q", got)
	}
	if got := DateText(" 2d\n ago "); got != "2d ago" {
		t.Errorf("DateText = %q", got)
	}
}

func TestIsRelativeDate(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"2d ago", true},
		{"5h", true},
		{"3 days ago", true},
		{"1 week ago", true},
		{"Just now", true},
		{"yesterday", true},
		{"30m", true},
		{"2024-01-05", false},
		{"1-5", false},
		{"Unknown", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsRelativeDate(tt.in); got != tt.want {
			t.Errorf("IsRelativeDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
