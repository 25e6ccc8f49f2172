package util

import (
	"testing"
)

func TestParseBoolEnv(t *testing.T) {
	cases := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"1", false, true},
		{"YES", false, true},
		{"off", true, false},
		{"0", true, false},
		{"", true, true},
		{"", false, false},
		{"garbage", true, true},
	}
	for _, c := range cases {
		t.Setenv("TEST_BOOL", c.value)
		if got := ParseBoolEnv("TEST_BOOL", c.def); got != c.want {
			t.Errorf("ParseBoolEnv(%q, %v) = %v, want %v", c.value, c.def, got, c.want)
		}
	}
}

func TestParseListEnv(t *testing.T) {
	t.Setenv("TEST_LIST", "254700000001, 254700000002 ,,254700000003")
	got := ParseListEnv("TEST_LIST")
	want := []string{"254700000001", "254700000002", "254700000003"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: expected %q, got %q", i, got[i], want[i])
		}
	}

	t.Setenv("TEST_LIST", "")
	if got := ParseListEnv("TEST_LIST"); got != nil {
		t.Errorf("expected nil for empty value, got %v", got)
	}
}
