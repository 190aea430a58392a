package parser

import (
	"regexp"
	"strings"
)

// LabelType classifies a normalized list label.
type LabelType string

const (
	LabelParagraph LabelType = "paragraph"
	LabelPoint     LabelType = "point"
	LabelSubpoint  LabelType = "subpoint"
	LabelNumeric   LabelType = "numeric"
	LabelDash      LabelType = "dash"
	LabelUnknown   LabelType = "unknown"
)

var (
	paragraphNumRe = regexp.MustCompile(`^(\d+)\.\s*`)
	pointLabelRe   = regexp.MustCompile(`(?i)^\(?([a-z]{1,2})\)?$`)
	subpointRe     = regexp.MustCompile(`(?i)^\(?(` +
		`i{1,3}|iv|v|vi{0,3}|ix|` +
		`x{1,3}|xi{0,3}|xiv|xv|xvi{0,3}|xix|` +
		`xxi{0,3}|xxiv|xxv|xxvi{0,3}|xxix|` +
		`xxxi{0,3}|xxxiv|xxxv|xxxvi{0,3}|xxxix` +
		`)\)?$`)
	numericLabelRe = regexp.MustCompile(`^\(?(\d+)\)?[.)]?$`)
	dashLabelRe    = regexp.MustCompile(`^[—–-]$`)
)

const quoteChars = "'‘’"

// NormalizeLabel strips decoration from a list label and classifies it.
// A leading quote marks quoted (amendment) material; roman numerals win
// over letter labels so "(i)" is a subpoint, not point i.
func NormalizeLabel(label string) (normalized string, labelType LabelType, quoted bool) {
	label = strings.TrimSpace(label)
	if label != "" {
		if r := []rune(label)[0]; strings.ContainsRune(quoteChars, r) {
			quoted = true
			label = strings.TrimSpace(label[len(string(r)):])
		}
	}

	if m := paragraphNumRe.FindStringSubmatch(label); m != nil && !strings.Contains(label, "(") {
		return m[1], LabelParagraph, quoted
	}
	if m := numericLabelRe.FindStringSubmatch(label); m != nil {
		return m[1], LabelNumeric, quoted
	}
	if m := subpointRe.FindStringSubmatch(label); m != nil {
		return strings.ToLower(m[1]), LabelSubpoint, quoted
	}
	if m := pointLabelRe.FindStringSubmatch(label); m != nil {
		return strings.ToLower(m[1]), LabelPoint, quoted
	}
	if dashLabelRe.MatchString(label) {
		return "—", LabelDash, quoted
	}
	return label, LabelUnknown, quoted
}
