package game

import "testing"

func TestParseKind(t *testing.T) {
	cases := []struct {
		in string
		ok bool
	}{
		{"sarpniti", true},
		{"climb", true},
		{"colormatch", true},
		{"targettaps", true},
		{"whackmole", true},
		{"", false},
		{"chess", false},
		{"SARPNITI", false},
	}
	for _, tc := range cases {
		k, ok := ParseKind(tc.in)
		if ok != tc.ok {
			t.Fatalf("ParseKind(%q) ok = %v, want %v", tc.in, ok, tc.ok)
		}
		if ok && string(k) != tc.in {
			t.Fatalf("ParseKind(%q) = %q", tc.in, k)
		}
	}
}
