package idgen

import "testing"

func TestFreshIncrements(t *testing.T) {
	f := New()
	a := f.Fresh("sig")
	b := f.Fresh("sig")
	if a == b {
		t.Fatalf("expected distinct names, got %q twice", a)
	}
}

func TestFreshHonorsTaken(t *testing.T) {
	f := New()
	seen := map[string]bool{"sig_0": true, "sig_1": true}
	f.Taken = func(name string) bool { return seen[name] }

	name := f.Fresh("sig")
	if seen[name] {
		t.Fatalf("Fresh returned an already-taken name %q", name)
	}
}

func TestMSPWNaming(t *testing.T) {
	f := New()
	name := f.MSPW("clk")
	if name != "clk_mspw_0" {
		t.Fatalf("MSPW(clk) = %q, want clk_mspw_0", name)
	}
}
