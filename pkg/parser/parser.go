// Package parser turns EUR-Lex HTML into a flat, ordered list of structural
// units with stable hierarchical ids. Two source formats are handled: the
// Official Journal layout (table-encoded lists, oj-* classes) and the
// consolidated layout (grid-container lists, norm classes). Format detection
// is automatic; everything downstream of it is shared.
//
// Parsing degrades gracefully: malformed regions produce validation findings
// on the report, never errors. The only error Parse returns is unreadable
// HTML input.
package parser

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/coolbeans/lexunit/pkg/unit"
)

// Parser holds the per-document parse state. A Parser is reusable: Parse
// resets all state on entry, so no residue leaks between documents. It is
// not safe for concurrent use.
type Parser struct {
	sourceFile   string
	doc          *goquery.Document
	arena        *unit.Arena
	report       *unit.ValidationReport
	consolidated bool
}

// New returns a parser for one source file. The name is carried into every
// unit for provenance; no file I/O happens here or in Parse.
func New(sourceFile string) *Parser {
	return &Parser{sourceFile: sourceFile}
}

// Parse runs the full pipeline over one HTML document and returns the
// enriched unit list, document metadata, and the validation report.
func (p *Parser) Parse(htmlContent string) (*unit.ParseResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	p.doc = doc
	p.arena = unit.NewArena()
	p.report = &unit.ValidationReport{SourceFile: p.sourceFile}
	p.consolidated = false

	p.detectFormat()
	p.countExpected()
	p.parseDocumentTitle()
	p.parseRecitals()

	if p.consolidated {
		p.parseArticlesConsolidated()
	} else {
		p.parseArticlesOJ()
	}

	p.parseAnnexes()
	p.countParsed()
	p.validate()
	metadata := p.enrich()

	return &unit.ParseResult{
		Units:      p.arena.Units(),
		Metadata:   metadata,
		Validation: p.report,
		SourceFile: p.sourceFile,
	}, nil
}

// detectFormat sniffs the consolidated layout by its distinctive classes.
func (p *Parser) detectFormat() {
	if p.doc.Find("p.title-article-norm").Length() > 0 {
		p.consolidated = true
		return
	}
	p.consolidated = p.doc.Find("div.grid-container").Length() > 0
}

// countExpected records how many recitals, articles and annexes the source
// markup announces, for comparison against what parsing actually produced.
func (p *Parser) countExpected() {
	p.report.CountsExpected = map[string]int{
		"recitals": p.doc.Find(`div.eli-subdivision[id^="rct_"]`).Length(),
		"articles": p.doc.Find(`div.eli-subdivision[id^="art_"]`).Length(),
		"annexes":  p.doc.Find(`div.eli-container[id^="anx_"]`).Length(),
	}
}

func (p *Parser) countParsed() {
	counts := map[string]int{}
	for _, u := range p.arena.Units() {
		counts[string(u.Type)]++
	}
	p.report.CountsParsed = counts
}

// addUnit stores a unit, letting the arena resolve id collisions.
func (p *Parser) addUnit(u *unit.Unit) string {
	return p.arena.Add(u)
}

// validate runs the post-parse integrity checks. Findings are recorded on
// the report; nothing here fails the parse.
func (p *Parser) validate() {
	for _, u := range p.arena.Units() {
		if u.ParentID != "" && !p.arena.Has(u.ParentID) {
			p.report.Orphans = append(p.report.Orphans, unit.Orphan{
				ID:       u.ID,
				ParentID: u.ParentID,
			})
		}
	}

	var recitalNums []int
	for _, u := range p.arena.Units() {
		if u.Type != unit.KindRecital || u.RecitalNumber == "" {
			continue
		}
		if n, err := strconv.Atoi(u.RecitalNumber); err == nil {
			recitalNums = append(recitalNums, n)
		}
	}
	// Numbered units must appear in increasing document order. Comparing
	// against the immediately preceding number keeps one misplaced unit
	// from flagging every in-order unit that follows it.
	prevNum := map[unit.Kind]int{}
	for _, u := range p.arena.Units() {
		var numText string
		switch u.Type {
		case unit.KindRecital:
			numText = u.RecitalNumber
		case unit.KindArticle:
			numText = u.ArticleNumber
		default:
			continue
		}
		n, err := strconv.Atoi(numText)
		if err != nil {
			continue
		}
		if n < prevNum[u.Type] {
			p.report.OrderingViolations = append(p.report.OrderingViolations, u.ID)
		}
		prevNum[u.Type] = n
	}

	if len(recitalNums) > 0 {
		sort.Ints(recitalNums)
		present := map[int]bool{}
		for _, n := range recitalNums {
			present[n] = true
		}
		var missing []int
		for n := 1; n <= recitalNums[len(recitalNums)-1]; n++ {
			if !present[n] {
				missing = append(missing, n)
			}
		}
		if len(missing) > 0 {
			p.report.SequenceGaps = append(p.report.SequenceGaps, unit.SequenceGap{
				Type:    "recital",
				Missing: missing,
			})
		}
	}
}

var paragraphDivIDRe = regexp.MustCompile(`^\d{3}\.\d{3}$`)
