package hal

import "testing"

func TestPinName(t *testing.T) {
	if got := pinName(17); got != "gpio17" {
		t.Fatalf("pinName(17)=%q", got)
	}
}

func TestParsePull(t *testing.T) {
	cases := map[string]Pull{"up": PullUp, "down": PullDown, "none": PullNone, "": PullNone}
	for in, want := range cases {
		got, ok := ParsePull(in)
		if !ok || got != want {
			t.Fatalf("ParsePull(%q)=%v,%v", in, got, ok)
		}
	}
	if _, ok := ParsePull("sideways"); ok {
		t.Fatal("ParsePull accepted an unknown name")
	}
}
