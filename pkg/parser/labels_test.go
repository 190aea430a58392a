package parser

import "testing"

func TestNormalizeLabel(t *testing.T) {
	cases := []struct {
		name       string
		label      string
		want       string
		wantType   LabelType
		wantQuoted bool
	}{
		{name: "paragraph number", label: "1.", want: "1", wantType: LabelParagraph},
		{name: "paragraph with space", label: "12. ", want: "12", wantType: LabelParagraph},
		{name: "parenthesized numeric", label: "(1)", want: "1", wantType: LabelNumeric},
		{name: "bare numeric", label: "3", want: "3", wantType: LabelNumeric},
		{name: "numeric with trailing paren", label: "2)", want: "2", wantType: LabelNumeric},
		{name: "point letter", label: "(a)", want: "a", wantType: LabelPoint},
		{name: "point double letter", label: "(aa)", want: "aa", wantType: LabelPoint},
		{name: "point uppercase", label: "(B)", want: "b", wantType: LabelPoint},
		{name: "roman beats letter", label: "(i)", want: "i", wantType: LabelSubpoint},
		{name: "roman iv", label: "(iv)", want: "iv", wantType: LabelSubpoint},
		{name: "roman xiii", label: "(xiii)", want: "xiii", wantType: LabelSubpoint},
		{name: "em dash", label: "—", want: "—", wantType: LabelDash},
		{name: "hyphen", label: "-", want: "—", wantType: LabelDash},
		{name: "quoted point", label: "‘(a)", want: "a", wantType: LabelPoint, wantQuoted: true},
		{name: "quoted paragraph", label: "’1.", want: "1", wantType: LabelParagraph, wantQuoted: true},
		{name: "apostrophe quote", label: "'(b)", want: "b", wantType: LabelPoint, wantQuoted: true},
		{name: "unknown text", label: "Whereas", want: "Whereas", wantType: LabelUnknown},
		{name: "empty", label: "", want: "", wantType: LabelUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, gotType, gotQuoted := NormalizeLabel(tc.label)
			if got != tc.want || gotType != tc.wantType || gotQuoted != tc.wantQuoted {
				t.Errorf("NormalizeLabel(%q) = (%q, %s, %v), want (%q, %s, %v)",
					tc.label, got, gotType, gotQuoted, tc.want, tc.wantType, tc.wantQuoted)
			}
		})
	}
}
