// Package idgen hands out fresh, collision-free names for the synthetic
// declarations and processes the structural fixes in internal/structural
// introduce (mspw support signals, updater processes, per-iteration
// generate-expansion suffixes). spec.md section 9: "Name-freshness counters
// become a handle passed in."
package idgen

import (
	"fmt"

	"github.com/google/uuid"
)

// Freshener hands out names derived from a base identifier, falling back to
// a uuid-derived suffix only when the counter-based name collides with
// something the caller already knows about (Taken reports that).
type Freshener struct {
	counters map[string]int
	Taken    func(name string) bool
}

// New returns a Freshener with no collision predicate; Taken defaults to
// "never taken", i.e. every counter-based name is accepted as-is.
func New() *Freshener {
	return &Freshener{counters: make(map[string]int)}
}

// Fresh returns a name derived from base that Taken (if set) reports as
// free. The common case is "<base>_<n>" for an increasing n; if that still
// collides after a bounded number of attempts (the caller's Taken predicate
// is unusually strict, e.g. adversarial test fixtures), a uuid-derived
// suffix guarantees termination.
func (f *Freshener) Fresh(base string) string {
	for attempt := 0; attempt < 1000; attempt++ {
		n := f.counters[base]
		f.counters[base] = n + 1
		name := fmt.Sprintf("%s_%d", base, n)
		if f.Taken == nil || !f.Taken(name) {
			return name
		}
	}
	return fmt.Sprintf("%s_%s", base, uuid.NewString())
}

// MSPW returns the canonical "multiple signal/port write" support-signal
// name for decl (spec.md GLOSSARY: "mspw").
func (f *Freshener) MSPW(declName string) string {
	return f.Fresh(declName + "_mspw")
}
