// Package validate evaluates parse results for structural integrity. The
// parser itself never fails on bad structure; it records findings. This
// package turns those findings plus the unit tree into a pass/fail gate
// that batch tooling and the CLI can act on.
package validate

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/coolbeans/lexunit/pkg/unit"
)

// Flags are the boolean outcomes of the structural checks.
type Flags struct {
	// Gone is true when expected source elements produced no units.
	Gone bool `json:"gone"`
	// Phantom is true when parsed counts exceed what the source announced.
	Phantom bool `json:"phantom"`
	// HierarchyOK is true when every parent_id resolves and every unit id
	// is a proper extension of its parent's id.
	HierarchyOK bool `json:"hierarchy_ok"`
	// OrderingOK is true when numbered units appear in source order and no
	// sequence gaps were reported.
	OrderingOK bool `json:"ordering_ok"`
	// NonVacuous is true when the parse produced substantive content.
	NonVacuous bool `json:"non_vacuous"`
}

// GateResult is the full outcome of gating one parse.
type GateResult struct {
	SourceFile string             `json:"source_file"`
	Passed     bool               `json:"passed"`
	Flags      Flags              `json:"flags"`
	Metrics    map[string]float64 `json:"metrics"`
	Findings   []string           `json:"findings,omitempty"`
}

// ToJSON serializes the result for machine consumption.
func (r *GateResult) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// String renders a terse human-readable summary.
func (r *GateResult) String() string {
	status := "PASS"
	if !r.Passed {
		status = "FAIL"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", status, r.SourceFile)
	for _, f := range r.Findings {
		fmt.Fprintf(&b, "  - %s\n", f)
	}
	return b.String()
}

// Evaluate runs every structural check against a parse result using the
// given profile (nil means DefaultProfile).
func Evaluate(result *unit.ParseResult, profile *Profile) *GateResult {
	if profile == nil {
		profile = DefaultProfile()
	}

	gr := &GateResult{
		SourceFile: result.SourceFile,
		Metrics:    map[string]float64{},
	}

	report := result.Validation
	expected := map[string]int{}
	if report != nil {
		expected = report.CountsExpected
		gr.SourceFile = report.SourceFile
	}

	parsed := map[string]int{}
	for _, u := range result.Units {
		parsed[string(u.Type)]++
	}

	gr.Flags.Gone = checkGone(expected, parsed, gr)
	gr.Flags.Phantom = checkPhantom(expected, parsed, gr)
	gr.Flags.HierarchyOK = checkHierarchy(result.Units, gr)
	gr.Flags.OrderingOK = report == nil ||
		(len(report.SequenceGaps) == 0 && len(report.OrderingViolations) == 0)
	if !gr.Flags.OrderingOK {
		for _, gap := range report.SequenceGaps {
			gr.Findings = append(gr.Findings,
				fmt.Sprintf("%s sequence gap: missing %v", gap.Type, gap.Missing))
		}
		for _, id := range report.OrderingViolations {
			gr.Findings = append(gr.Findings,
				fmt.Sprintf("unit %s out of source order", id))
		}
	}
	gr.Flags.NonVacuous = checkNonVacuous(result.Units, profile, gr)

	gr.Passed = !gr.Flags.Gone && !gr.Flags.Phantom &&
		gr.Flags.HierarchyOK && gr.Flags.OrderingOK && gr.Flags.NonVacuous
	return gr
}

// checkGone compares announced element counts against what parsing yielded.
func checkGone(expected, parsed map[string]int, gr *GateResult) bool {
	pairs := []struct{ expectedKey, parsedKey string }{
		{"recitals", "recital"},
		{"articles", "article"},
		{"annexes", "annex"},
	}
	gone := false
	for _, pair := range pairs {
		want := expected[pair.expectedKey]
		got := parsed[pair.parsedKey]
		gr.Metrics["expected_"+pair.expectedKey] = float64(want)
		gr.Metrics["parsed_"+pair.expectedKey] = float64(got)
		if want > 0 && got < want {
			gone = true
			gr.Findings = append(gr.Findings,
				fmt.Sprintf("%s: expected %d, parsed %d", pair.expectedKey, want, got))
		}
	}
	return gone
}

// checkPhantom flags units the source never announced.
func checkPhantom(expected, parsed map[string]int, gr *GateResult) bool {
	pairs := []struct{ expectedKey, parsedKey string }{
		{"articles", "article"},
		{"annexes", "annex"},
	}
	phantom := false
	for _, pair := range pairs {
		want := expected[pair.expectedKey]
		got := parsed[pair.parsedKey]
		if got > want {
			phantom = true
			gr.Findings = append(gr.Findings,
				fmt.Sprintf("%s: parsed %d but source has %d", pair.expectedKey, got, want))
		}
	}
	return phantom
}

// checkHierarchy verifies parent resolution and id prefix closure: a child
// id always extends its parent's id with a ".segment".
func checkHierarchy(units []*unit.Unit, gr *GateResult) bool {
	ids := map[string]bool{}
	for _, u := range units {
		ids[u.ID] = true
	}
	ok := true
	for _, u := range units {
		if u.ParentID == "" {
			continue
		}
		if !ids[u.ParentID] {
			ok = false
			gr.Findings = append(gr.Findings,
				fmt.Sprintf("orphan %s: parent %s missing", u.ID, u.ParentID))
			continue
		}
		if !strings.HasPrefix(u.ID, u.ParentID+".") {
			ok = false
			gr.Findings = append(gr.Findings,
				fmt.Sprintf("id %s does not extend parent %s", u.ID, u.ParentID))
		}
	}
	return ok
}

// checkNonVacuous requires a minimum of substantive text-bearing units.
func checkNonVacuous(units []*unit.Unit, profile *Profile, gr *GateResult) bool {
	withText := 0
	totalWords := 0
	for _, u := range units {
		if strings.TrimSpace(u.Text) != "" {
			withText++
			totalWords += len(strings.Fields(u.Text))
		}
	}
	gr.Metrics["units_with_text"] = float64(withText)
	gr.Metrics["total_words"] = float64(totalWords)

	if withText < profile.MinUnitsWithText {
		gr.Findings = append(gr.Findings,
			fmt.Sprintf("only %d units carry text (minimum %d)", withText, profile.MinUnitsWithText))
		return false
	}
	if totalWords < profile.MinTotalWords {
		gr.Findings = append(gr.Findings,
			fmt.Sprintf("only %d words parsed (minimum %d)", totalWords, profile.MinTotalWords))
		return false
	}
	return true
}
