package validate

import (
	"strings"
	"testing"

	"github.com/coolbeans/lexunit/pkg/unit"
)

func longText(words int) string {
	return strings.TrimSpace(strings.Repeat("lawful processing of personal data ", (words+4)/5))
}

func healthyResult() *unit.ParseResult {
	return &unit.ParseResult{
		SourceFile: "doc.html",
		Units: []*unit.Unit{
			{ID: "art-1", Type: unit.KindArticle, Text: longText(25)},
			{ID: "art-1.par-1", Type: unit.KindParagraph, ParentID: "art-1", Text: longText(25)},
			{ID: "art-2", Type: unit.KindArticle, Text: longText(25)},
		},
		Validation: &unit.ValidationReport{
			SourceFile:     "doc.html",
			CountsExpected: map[string]int{"recitals": 0, "articles": 2, "annexes": 0},
		},
	}
}

func TestEvaluatePasses(t *testing.T) {
	gr := Evaluate(healthyResult(), nil)
	if !gr.Passed {
		t.Fatalf("Passed = false, findings: %v", gr.Findings)
	}
	f := gr.Flags
	if f.Gone || f.Phantom || !f.HierarchyOK || !f.OrderingOK || !f.NonVacuous {
		t.Errorf("flags = %+v", f)
	}
	if gr.Metrics["expected_articles"] != 2 || gr.Metrics["parsed_articles"] != 2 {
		t.Errorf("metrics = %v", gr.Metrics)
	}
	if gr.SourceFile != "doc.html" {
		t.Errorf("SourceFile = %q", gr.SourceFile)
	}
}

func TestEvaluateGone(t *testing.T) {
	result := healthyResult()
	result.Validation.CountsExpected["articles"] = 5
	gr := Evaluate(result, nil)
	if gr.Passed || !gr.Flags.Gone {
		t.Errorf("gone check missed dropped articles: %+v", gr.Flags)
	}
	if len(gr.Findings) == 0 || !strings.Contains(gr.Findings[0], "articles") {
		t.Errorf("findings = %v", gr.Findings)
	}
}

func TestEvaluatePhantom(t *testing.T) {
	result := healthyResult()
	result.Validation.CountsExpected["articles"] = 1
	gr := Evaluate(result, nil)
	if gr.Passed || !gr.Flags.Phantom {
		t.Errorf("phantom check missed surplus articles: %+v", gr.Flags)
	}
}

func TestEvaluateHierarchy(t *testing.T) {
	cases := []struct {
		name string
		unit *unit.Unit
	}{
		{
			name: "missing parent",
			unit: &unit.Unit{ID: "art-3.par-1", Type: unit.KindParagraph, ParentID: "art-3", Text: longText(10)},
		},
		{
			name: "id does not extend parent",
			unit: &unit.Unit{ID: "art-9.par-1", Type: unit.KindParagraph, ParentID: "art-1", Text: longText(10)},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := healthyResult()
			result.Units = append(result.Units, tc.unit)
			gr := Evaluate(result, nil)
			if gr.Flags.HierarchyOK {
				t.Errorf("HierarchyOK = true for %s", tc.name)
			}
			if gr.Passed {
				t.Error("Passed = true")
			}
		})
	}
}

func TestEvaluateOrdering(t *testing.T) {
	result := healthyResult()
	result.Validation.SequenceGaps = []unit.SequenceGap{{Type: "recital", Missing: []int{2, 3}}}
	gr := Evaluate(result, nil)
	if gr.Flags.OrderingOK || gr.Passed {
		t.Errorf("ordering gap not flagged: %+v", gr.Flags)
	}
	if len(gr.Findings) == 0 || !strings.Contains(gr.Findings[0], "recital sequence gap") {
		t.Errorf("findings = %v", gr.Findings)
	}
}

func TestEvaluateOrderingViolations(t *testing.T) {
	result := healthyResult()
	result.Validation.OrderingViolations = []string{"art-2"}
	gr := Evaluate(result, nil)
	if gr.Flags.OrderingOK || gr.Passed {
		t.Errorf("out-of-order article not flagged: %+v", gr.Flags)
	}
	if len(gr.Findings) == 0 || !strings.Contains(gr.Findings[0], "art-2 out of source order") {
		t.Errorf("findings = %v", gr.Findings)
	}
}

func TestEvaluateNonVacuous(t *testing.T) {
	result := &unit.ParseResult{
		SourceFile: "thin.html",
		Units: []*unit.Unit{
			{ID: "art-1", Type: unit.KindArticle, Text: "short."},
		},
		Validation: &unit.ValidationReport{SourceFile: "thin.html"},
	}
	gr := Evaluate(result, nil)
	if gr.Flags.NonVacuous || gr.Passed {
		t.Errorf("vacuous parse passed: %+v", gr.Flags)
	}
	if gr.Metrics["units_with_text"] != 1 {
		t.Errorf("units_with_text = %v", gr.Metrics["units_with_text"])
	}
}

func TestEvaluateCustomProfile(t *testing.T) {
	result := healthyResult()
	strict := &Profile{Name: "strict", MinUnitsWithText: 100, MinTotalWords: 10000}
	gr := Evaluate(result, strict)
	if gr.Passed || gr.Flags.NonVacuous {
		t.Errorf("strict profile not applied: %+v", gr.Flags)
	}
}

func TestGateResultString(t *testing.T) {
	gr := Evaluate(healthyResult(), nil)
	s := gr.String()
	if !strings.HasPrefix(s, "PASS doc.html") {
		t.Errorf("String() = %q", s)
	}

	result := healthyResult()
	result.Validation.CountsExpected["articles"] = 5
	s = Evaluate(result, nil).String()
	if !strings.HasPrefix(s, "FAIL doc.html") || !strings.Contains(s, "articles") {
		t.Errorf("String() = %q", s)
	}
}

func TestGateResultToJSON(t *testing.T) {
	data, err := Evaluate(healthyResult(), nil).ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error: %v", err)
	}
	for _, key := range []string{`"passed"`, `"flags"`, `"hierarchy_ok"`, `"metrics"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("JSON missing %s: %s", key, data)
		}
	}
}
