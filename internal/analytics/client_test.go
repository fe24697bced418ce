package analytics

import "testing"

func TestNormalizePropertyID(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"123456", "properties/123456"},
		{"properties/123456", "properties/123456"},
		{"  123456  ", "properties/123456"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizePropertyID(tc.in); got != tc.want {
			t.Errorf("NormalizePropertyID(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
