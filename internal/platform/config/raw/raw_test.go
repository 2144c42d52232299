package raw

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("LOG_LEVEL", "  info ")
	c := New().Prefix("LOG_")

	if got := c.Get("LEVEL", "debug"); got != "info" {
		t.Fatalf("Get = %q, want info", got)
	}
	if got := c.Get("FORMAT", "console"); got != "console" {
		t.Fatalf("Get default = %q, want console", got)
	}
}

func TestGetBool(t *testing.T) {
	c := New().Prefix("RAW_")
	cases := []struct {
		val  string
		def  bool
		want bool
	}{
		{"", true, true},
		{"", false, false},
		{"1", false, true},
		{"YES", false, true},
		{"on", false, true},
		{"true", false, true},
		{"0", true, false},
		{"nah", true, false},
	}
	for _, tc := range cases {
		t.Setenv("RAW_FLAG", tc.val)
		if got := c.GetBool("FLAG", tc.def); got != tc.want {
			t.Fatalf("GetBool(%q, %v) = %v, want %v", tc.val, tc.def, got, tc.want)
		}
	}
}

func TestGetInt(t *testing.T) {
	c := New().Prefix("RAW_")
	cases := []struct {
		val  string
		want int
	}{
		{"", 7},
		{"12", 12},
		{" 3 ", 3},
		{"-4", 7},
		{"x1", 7},
	}
	for _, tc := range cases {
		t.Setenv("RAW_N", tc.val)
		if got := c.GetInt("N", 7); got != tc.want {
			t.Fatalf("GetInt(%q) = %d, want %d", tc.val, got, tc.want)
		}
	}
}
