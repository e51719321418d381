// Package report collects the warnings and informational messages a
// simplification or structural-fix pass produces, and renders a single
// human-readable summary at the end (spec.md section 6: "warnings
// (collected in per-pass sets with a single summary at the end);
// informational messages during fixpoint iteration; no persistent state
// outside the tree"). Adapted from the teacher's internal/reporting
// (mutex-guarded maps, structured entries), narrowed from a full
// multi-format security report down to this one concern.
package report

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
)

// Warning is one deduplicated warning raised during a pass, keyed by
// (Rule, Subject) so that, e.g., the same signal flagged twice by
// fixMultipleSignalPortAssigns's sensitivity-normalization step collapses
// into one entry with an occurrence count.
type Warning struct {
	Rule    string
	Subject string
	Detail  string
	Count   int
}

// Report accumulates warnings and info messages across one pass. The zero
// value is ready to use.
type Report struct {
	mu       sync.Mutex
	warnings map[string]*Warning
	order    []string
	infos    []string
}

// New returns an empty Report.
func New() *Report {
	return &Report{warnings: make(map[string]*Warning)}
}

// Warn records a warning, deduplicating by (rule, subject) and bumping the
// occurrence count on repeat.
func (r *Report) Warn(rule, subject, detail string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.warnings == nil {
		r.warnings = make(map[string]*Warning)
	}
	key := rule + "\x00" + subject
	if w, ok := r.warnings[key]; ok {
		w.Count++
		return
	}
	r.warnings[key] = &Warning{Rule: rule, Subject: subject, Detail: detail, Count: 1}
	r.order = append(r.order, key)
}

// Info records an informational, non-deduplicated message (e.g. fixpoint
// iteration progress).
func (r *Report) Info(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.infos = append(r.infos, fmt.Sprintf(format, args...))
}

// Warnings returns every recorded warning in the order it was first raised.
func (r *Report) Warnings() []Warning {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Warning, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, *r.warnings[key])
	}
	return out
}

// Infos returns every recorded informational message, in order.
func (r *Report) Infos() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.infos))
	copy(out, r.infos)
	return out
}

// Summary renders a single human-readable line per distinct rule, counting
// how many subjects and total occurrences it produced.
func (r *Report) Summary() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	byRule := make(map[string]struct{ subjects, occurrences int })
	var rules []string
	for _, key := range r.order {
		w := r.warnings[key]
		s, ok := byRule[w.Rule]
		if !ok {
			rules = append(rules, w.Rule)
		}
		s.subjects++
		s.occurrences += w.Count
		byRule[w.Rule] = s
	}
	sort.Strings(rules)

	var sb strings.Builder
	for _, rule := range rules {
		s := byRule[rule]
		fmt.Fprintf(&sb, "%s: %s across %s\n",
			rule,
			humanize.Comma(int64(s.occurrences))+" "+pluralize("occurrence", s.occurrences),
			humanize.Comma(int64(s.subjects))+" "+pluralize("subject", s.subjects))
	}
	if sb.Len() == 0 {
		return "no warnings\n"
	}
	return sb.String()
}

func pluralize(word string, n int) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
