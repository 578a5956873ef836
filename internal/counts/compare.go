package counts

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// VerifiedCountTool is the synthetic tool name under which a ground-truth
// count participates in the comparison.
const VerifiedCountTool = "verified_count"

// Agree reports whether every count in the map normalizes to one and the
// same value. The rule mirrors set-cardinality semantics: missing counts
// collapse to a single element, every NaN is distinct from everything
// (including other NaNs), and numbers merge by exact rational equality.
//
// A map with fewer than two entries is not a comparison; callers are
// expected to short-circuit single-tool campaigns before getting here.
func Agree(byTool map[string]string) bool {
	return distinct(byTool) == 1
}

func distinct(byTool map[string]string) int {
	n := 0
	sawMissing := false
	var nums []*big.Rat
	for _, raw := range byTool {
		v := Normalize(raw)
		switch {
		case v.Missing():
			if !sawMissing {
				sawMissing = true
				n++
			}
		case v.NaN():
			n++
		default:
			seen := false
			for _, r := range nums {
				if r.Cmp(v.rat) == 0 {
					seen = true
					break
				}
			}
			if !seen {
				nums = append(nums, v.rat)
				n++
			}
		}
	}
	return n
}

// Table renders the per-tool counts as an aligned two-column table for the
// disagreement report.
func Table(byTool map[string]string) string {
	names := make([]string, 0, len(byTool))
	nameWidth := len("counter")
	countWidth := len("count")
	for name, count := range byTool {
		names = append(names, name)
		if len(name) > nameWidth {
			nameWidth = len(name)
		}
		if len(count) > countWidth {
			countWidth = len(count)
		}
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s |%*s\n", nameWidth+1, "counter", countWidth+1, "count")
	b.WriteString(strings.Repeat("-", nameWidth+countWidth+4))
	b.WriteByte('\n')
	for _, name := range names {
		fmt.Fprintf(&b, "%-*s |%*s\n", nameWidth+1, name, countWidth+1, byTool[name])
	}
	return b.String()
}
