package citation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/coolbeans/lexunit/pkg/eurlex"
	"github.com/coolbeans/lexunit/pkg/unit"
)

// Pattern fragments shared by several matchers. EU acts are cited either in
// full ("Regulation (EU) 2016/679") or as bare continuations inside an act
// list ("(EU) No 1094/2010"); article references carry up to two trailing
// parentheticals (paragraph, then point).
const (
	ordWords = `first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth`

	artToken     = `\d+[a-z]?(?:\s?\([a-z0-9]{1,3}\)){0,2}`
	pointClause  = `,\s*points?\s+\(?[a-z0-9]{1,3}\)?(?:(?:,\s*|\s+(?:and|or|to)\s+)\(?[a-z0-9]{1,3}\)?)*\s*,?`
	ordParClause = `,\s*(?:` + ordWords + `)\s+paragraph\s*,?`
	artItem      = artToken + `(?:` + pointClause + `|` + ordParClause + `)?`
	artCont      = `(?:,\s*|,?\s+(?:and|or|to)\s+)(?:Articles?\s+)?(?:` + artItem + `|\([a-z0-9]{1,3}\))`
	artSection   = `Articles?\s+` + artItem + `(?:` + artCont + `)*`

	actHead = `(?:Council\s+)?(?:Commission\s+)?(?:European\s+Parliament\s+and\s+(?:of\s+the\s+)?Council\s+)?` +
		`(?:Delegated\s+|Implementing\s+|Framework\s+)?` +
		`(?:Regulation|Directive|Decision)s?\s+` +
		`(?:\((?:EU|EC|EEC|EU,\s*Euratom)\)\s+)?(?:No\s+)?` +
		`\d{2,4}/\d+(?:/(?:EU|EC|EEC|JHA|CFSP|Euratom))?`
	actCont = `(?:,\s*|,?\s+(?:and|or)\s+)\((?:EU|EC|EEC)\)\s+(?:No\s+)?\d{2,4}/\d+(?:/(?:EU|EC|EEC|JHA))?`
	actList = actHead + `(?:` + actCont + `)*`
)

var (
	extArticleListRe = regexp.MustCompile(`(?i)\b(` + artSection + `)\s*,?\s*of\s+(` + actList + `)\b`)
	extPointFirstRe  = regexp.MustCompile(`(?i)\bpoints?\s+\(([a-z0-9]{1,3})\)\s+of\s+` +
		`(?:the\s+(` + ordWords + `)\s+subparagraph\s+of\s+)?` +
		`Articles?\s+(\d+[a-z]?)(?:\s?\((\d+)\))?(?:\s?\(([a-z0-9]{1,3})\))?\s+of\s+(` + actList + `)\b`)
	extContextualRe = regexp.MustCompile(`(?i)\barticles?\s+(\d+[a-z]?)(?:\s?\((\d+)\))?(?:\s?\(([a-z0-9]{1,3})\))?` +
		`\s+of\s+that\s+(regulation|directive|decision)\b`)
	extStandaloneRe = regexp.MustCompile(`(?i)\b` + actList + `\b`)

	treatyArtRe = regexp.MustCompile(`\bArticles?\s+(\d+[a-z]?)(?:\s?\((\d+)\))?\s+(TFEU|TEU)\b`)
	charterRe   = regexp.MustCompile(`(?i)\barticles?\s+(\d+[a-z]?)(?:\s?\((\d+)\))?\s+of\s+the\s+Charter` +
		`(?:\s+of\s+Fundamental\s+Rights)?(?:\s+of\s+the\s+European\s+Union)?`)
	protocolRe   = regexp.MustCompile(`(?i)\bprotocols?\s+No\s+(\d+)\b`)
	treatyNameRe = regexp.MustCompile(`\bTreaty\s+on\s+the\s+Functioning\s+of\s+the\s+European\s+Union\b` +
		`|\bTreaty\s+on\s+European\s+Union\b|\bTFEU\b|\bTEU\b` +
		`|\bTreaty\s+of\s+(?:Lisbon|Rome|Amsterdam|Nice)\b`)

	intPointFirstRe = regexp.MustCompile(`(?i)\bpoints?\s+\(([a-z0-9]{1,3})\)\s+of\s+` +
		`(?:the\s+(` + ordWords + `)\s+subparagraph\s+of\s+)?` +
		`(?:articles?\s+(\d+[a-z]?)(?:\s?\((\d+)\))?|paragraphs?\s+(\d+))`)
	intAnchoredPointsRe = regexp.MustCompile(`(?i)\b(?:articles?\s+(\d+[a-z]?)(?:\s?\((\d+)\))?|paragraphs?\s+(\d+))` +
		`,\s*(points?\s+\(?[a-z0-9]{1,3}\)?(?:(?:,\s*|\s+(?:and|or|to)\s+)\(?[a-z0-9]{1,3}\)?)*)`)
	intSubparRe = regexp.MustCompile(`(?i)\b(?:the\s+)?(` + ordWords + `)((?:(?:,\s*|\s+(?:and|or)\s+)(?:` + ordWords + `))*)` +
		`\s+subparagraphs?\b(?:\s+of\s+(?:this\s+paragraph|paragraphs?\s+(\d+)))?(?:,\s*points?\s+\(([a-z0-9]{1,3})\))?`)
	intArticleListRe = regexp.MustCompile(`(?i)\b(articles?\s+` + artToken +
		`(?:\s+to\s+\d+[a-z]?|(?:(?:,\s*|,?\s+(?:and|or)\s+)(?:` + artToken + `|\([a-z0-9]{1,3}\)))*))`)
	intParagraphRe = regexp.MustCompile(`(?i)\bparagraphs?\s+(\d+)((?:(?:,\s*|,?\s+(?:and|or)\s+)\d+)*)` +
		`(?:\s+to\s+(\d+))?(\s+of\s+this\s+Article)?`)
	intPointsRe = regexp.MustCompile(`(?i)\bpoints?\s+\(([a-z0-9]{1,3})\)` +
		`((?:(?:,\s*|\s+(?:and|or)\s+)\(([a-z0-9]{1,3})\))*)(?:\s+to\s+\(([a-z0-9]{1,3})\))?`)

	sectionOfAnnexRe = regexp.MustCompile(`\bSections?\s+([A-Z0-9]{1,4}|[IVXLC]+)\s+of\s+Annex\s+([IVXLC]+|\d+)\b`)
	annexRe          = regexp.MustCompile(`\bAnnex(?:es)?\s+([IVXLC]+|\d+)((?:(?:,\s*|\s+(?:and|or)\s+)(?:[IVXLC]+|\d+)\b)*)(?:,\s*Part\s+([A-Z])\b)?`)
	chapterRe        = regexp.MustCompile(`\b(?:Chapters?\s+([IVXLC]+|\d+)|this\s+Chapter)\b`)
	sectionRe        = regexp.MustCompile(`\bSections?\s+([IVXLC]+|\d+|[A-Z])\b`)
	titleRe          = regexp.MustCompile(`\bTitles?\s+([IVXLC]+|\d+)\b`)

	relativeRe = regexp.MustCompile(`(?i)\bthis\s+(regulation|directive|decision|article|paragraph)\b`)
	thatActRe  = regexp.MustCompile(`(?i)\bthat\s+(regulation|directive|decision)\b`)

	actEntryRe  = regexp.MustCompile(`(\d{2,4})/(\d+)(?:/(EU|EC|EEC|JHA|CFSP|Euratom))?`)
	parenTokRe  = regexp.MustCompile(`\(([a-z0-9]{1,3})\)`)
	rangeOnlyRe = regexp.MustCompile(`(?i)^articles?\s+(\d+)[a-z]?\s+to\s+(\d+)[a-z]?$`)
	artGroupRe  = regexp.MustCompile(`(?i)(?:articles?\s+)?(?:(\d+[a-z]?)|\(([a-z0-9]{1,3})\))((?:\s?\([a-z0-9]{1,3}\))*)` +
		`((?:,\s*points?\s+\(?[a-z0-9]{1,3}\)?(?:(?:,\s*|\s+(?:and|or|to)\s+)\(?[a-z0-9]{1,3}\)?)*)|(?:,\s*(?:` + ordWords + `)\s+paragraph))?`)
	pointTokRe = regexp.MustCompile(`(?i)\(?\b([a-z0-9]{1,3})\b\)?`)
	ordWordRe  = regexp.MustCompile(`(?i)\b(` + ordWords + `)\b`)
	digitsRe   = regexp.MustCompile(`^\d+`)
	numericRe  = regexp.MustCompile(`^\d+$`)
)

var ordinalIndex = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
	"sixth": 6, "seventh": 7, "eighth": 8, "ninth": 9, "tenth": 10,
}

var ordinalWords = []string{"", "first", "second", "third", "fourth", "fifth",
	"sixth", "seventh", "eighth", "ninth", "tenth"}

// OrdinalWord returns the ordinal word for a 1-based subparagraph index, or
// the decimal form past tenth.
func OrdinalWord(n int) string {
	if n >= 1 && n < len(ordinalWords) {
		return ordinalWords[n]
	}
	return strconv.Itoa(n)
}

func articleNumber(label string) *int {
	digits := digitsRe.FindString(label)
	if digits == "" {
		return nil
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return nil
	}
	return unit.IntPtr(n)
}

// actEntry is one act mention decomposed from an act list.
type actEntry struct {
	actType   unit.ActType
	actNumber string
	year      *int
	celex     string
}

// parseActList decomposes "Regulations (EU) No A, (EU) No B and (EU) No C"
// into one entry per act. The kind word of the list head applies to every
// continuation. Framework decisions carry no CELEX in sector 3.
func parseActList(text string) []actEntry {
	lower := strings.ToLower(text)
	var actType unit.ActType
	switch {
	case strings.Contains(lower, "regulation"):
		actType = unit.ActRegulation
	case strings.Contains(lower, "directive"):
		actType = unit.ActDirective
	case strings.Contains(lower, "decision"):
		actType = unit.ActDecision
	default:
		return nil
	}
	framework := strings.Contains(lower, "framework")

	var entries []actEntry
	for _, m := range actEntryRe.FindAllStringSubmatch(text, -1) {
		p1, _ := strconv.Atoi(m[1])
		p2, _ := strconv.Atoi(m[2])
		e := actEntry{actType: actType, actNumber: m[1] + "/" + m[2]}
		if year, number, ok := eurlex.ParseActYearNumber(p1, p2); ok {
			e.year = unit.IntPtr(year)
			if !framework {
				if cx, err := eurlex.GenerateCELEX(actType, year, number); err == nil {
					e.celex = cx.String()
				}
			}
		}
		entries = append(entries, e)
	}
	return entries
}

// artGroup is one article mention decomposed from an enumeration such as
// "Articles 10 and 14(1)" or "Article 2, point (10), and Article 22".
type artGroup struct {
	label      string
	paragraph  *int
	points     []string
	pointRange *unit.LabelRange
}

// parsePointList reads the labels out of a "points (a), (b) and (d)" clause.
// A two-label "to" clause becomes a range.
func parsePointList(clause string) (points []string, rng *unit.LabelRange) {
	idx := strings.Index(strings.ToLower(clause), "point")
	if idx < 0 {
		return nil, nil
	}
	rest := clause[idx:]
	rest = rest[strings.IndexAny(rest, " \t")+1:]
	var labels []string
	hasTo := false
	for _, m := range pointTokRe.FindAllStringSubmatch(rest, -1) {
		tok := strings.ToLower(m[1])
		switch tok {
		case "and", "or":
			continue
		case "to":
			hasTo = true
			continue
		}
		labels = append(labels, tok)
	}
	if hasTo && len(labels) == 2 {
		return nil, &unit.LabelRange{labels[0], labels[1]}
	}
	return labels, nil
}

// parseArticleSection decomposes the article half of a reference. It returns
// either an article range or an ordered list of article groups.
func parseArticleSection(section string) (groups []artGroup, rng *unit.IntRange) {
	if m := rangeOnlyRe.FindStringSubmatch(section); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		return nil, &unit.IntRange{lo, hi}
	}
	for _, m := range artGroupRe.FindAllStringSubmatch(section, -1) {
		g := artGroup{}
		switch {
		case m[1] != "":
			g.label = strings.ToLower(m[1])
		case numericRe.MatchString(m[2]) && len(groups) > 0:
			// Bare "(5)" continues the previous article with a new paragraph.
			g.label = groups[len(groups)-1].label
			n, _ := strconv.Atoi(m[2])
			g.paragraph = unit.IntPtr(n)
		case len(groups) > 0:
			prev := groups[len(groups)-1]
			g.label = prev.label
			g.paragraph = prev.paragraph
			g.points = []string{strings.ToLower(m[2])}
		default:
			continue
		}
		for _, pm := range parenTokRe.FindAllStringSubmatch(m[3], -1) {
			tok := strings.ToLower(pm[1])
			if numericRe.MatchString(tok) && g.paragraph == nil {
				n, _ := strconv.Atoi(tok)
				g.paragraph = unit.IntPtr(n)
			} else if len(g.points) == 0 {
				g.points = append(g.points, tok)
			}
		}
		if m[4] != "" {
			if ord := ordWordRe.FindString(m[4]); ord != "" && !strings.Contains(strings.ToLower(m[4]), "point") {
				g.paragraph = unit.IntPtr(ordinalIndex[strings.ToLower(ord)])
			} else {
				pts, prng := parsePointList(m[4])
				g.points = append(g.points, pts...)
				g.pointRange = prng
			}
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// citationsForGroup expands one article group into citations, one per point
// when the group enumerates several.
func citationsForGroup(g artGroup, base unit.Citation) []unit.Citation {
	out := []unit.Citation{}
	mk := func() unit.Citation {
		c := base
		c.ArticleLabel = g.label
		c.Article = articleNumber(g.label)
		c.Paragraph = g.paragraph
		return c
	}
	switch {
	case g.pointRange != nil:
		c := mk()
		c.PointRange = g.pointRange
		out = append(out, c)
	case len(g.points) > 0:
		for _, p := range g.points {
			c := mk()
			c.Point = p
			out = append(out, c)
		}
	default:
		out = append(out, mk())
	}
	return out
}
