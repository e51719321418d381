package report

import "testing"

func TestWarnDeduplicatesBySubject(t *testing.T) {
	r := New()
	r.Warn("fixRangesDirection", "sig_a", "direction mismatch")
	r.Warn("fixRangesDirection", "sig_a", "direction mismatch")
	r.Warn("fixRangesDirection", "sig_b", "direction mismatch")

	ws := r.Warnings()
	if len(ws) != 2 {
		t.Fatalf("len(Warnings()) = %d, want 2", len(ws))
	}
	if ws[0].Count != 2 {
		t.Fatalf("sig_a Count = %d, want 2", ws[0].Count)
	}
	if ws[1].Count != 1 {
		t.Fatalf("sig_b Count = %d, want 1", ws[1].Count)
	}
}

func TestInfoPreservesOrder(t *testing.T) {
	r := New()
	r.Info("iteration %d", 1)
	r.Info("iteration %d", 2)

	infos := r.Infos()
	if len(infos) != 2 || infos[0] != "iteration 1" || infos[1] != "iteration 2" {
		t.Fatalf("Infos() = %v", infos)
	}
}

func TestSummaryEmpty(t *testing.T) {
	r := New()
	if got := r.Summary(); got != "no warnings\n" {
		t.Fatalf("Summary() = %q, want %q", got, "no warnings\n")
	}
}

func TestSummaryGroupsByRule(t *testing.T) {
	r := New()
	r.Warn("fixRangesDirection", "sig_a", "d")
	r.Warn("fixRangesDirection", "sig_b", "d")
	r.Warn("rebaseTypeSpan", "arr_c", "d")

	summary := r.Summary()
	if summary == "no warnings\n" {
		t.Fatalf("Summary() reported no warnings")
	}
	if !contains(summary, "fixRangesDirection") || !contains(summary, "rebaseTypeSpan") {
		t.Fatalf("Summary() missing a rule: %q", summary)
	}
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
