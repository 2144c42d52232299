package strings

import "testing"

func TestIfEmpty(t *testing.T) {
	t.Parallel()

	// non-empty slice should be returned as-is
	in := []int{1, 2, 3}
	def := []int{9}
	got := IfEmpty(in, def)
	if len(got) != 3 || got[0] != 1 {
		t.Fatalf("IfEmpty returned wrong slice: %#v", got)
	}

	// empty slice should fall back to default
	var empty []string
	def2 := []string{"x"}
	got2 := IfEmpty(empty, def2)
	if len(got2) != 1 || got2[0] != "x" {
		t.Fatalf("IfEmpty did not return default: %#v", got2)
	}
}

func TestFirstNonBlank(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   []string
		want string
	}{
		{[]string{"Leads", "fallback"}, "Leads"},
		{[]string{"", "  ", "fallback"}, "fallback"},
		{[]string{" ", ""}, ""},
		{nil, ""},
	}
	for _, tc := range cases {
		if got := FirstNonBlank(tc.in...); got != tc.want {
			t.Fatalf("FirstNonBlank(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCollapseSpace(t *testing.T) {
	t.Parallel()

	if got := CollapseSpace("  Head\tof \n Sales  "); got != "Head of Sales" {
		t.Fatalf("CollapseSpace = %q", got)
	}
	if got := CollapseSpace(" \n\t "); got != "" {
		t.Fatalf("blank CollapseSpace = %q", got)
	}
}
