// Package citation extracts legal cross-references from the text of a single
// unit and resolves them against the surrounding document structure.
//
// Extraction runs an ordered chain of pattern matchers over the raw text.
// More specific families run first (point-first external forms, article
// lists naming an act) and claim their character spans; later, more general
// families skip any candidate overlapping a claimed span, so "Article 6(1)
// of Regulation (EU) 2016/679" never also yields a bare internal
// "Article 6(1)" citation.
package citation

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/coolbeans/lexunit/pkg/unit"
)

// connectivePhrases are checked longest-first against the text immediately
// preceding a citation span.
var connectivePhrases = []string{
	"by way of derogation from",
	"for the purposes of",
	"within the meaning of",
	"without prejudice to",
	"in accordance with",
	"as referred to in",
	"referred to in",
	"provided for in",
	"as defined in",
	"laid down in",
	"specified in",
	"set out in",
	"defined in",
	"listed in",
	"mentioned in",
	"pursuant to",
	"subject to",
	"under",
}

type matchSpan struct {
	start, end int
	raw        string
	groups     []string
}

type matcher struct {
	name  string
	re    *regexp.Regexp
	build func(m matchSpan) []unit.Citation
}

// matchers is the extraction chain in priority order.
var matchers = []matcher{
	{"external-point-first", extPointFirstRe, buildExtPointFirst},
	{"external-article-list", extArticleListRe, buildExtArticleList},
	{"external-contextual", extContextualRe, buildExtContextual},
	{"treaty-article", treatyArtRe, buildTreatyArticle},
	{"charter-article", charterRe, buildCharterArticle},
	{"protocol", protocolRe, buildProtocol},
	{"treaty-name", treatyNameRe, buildTreatyName},
	{"external-standalone", extStandaloneRe, buildExtStandalone},
	{"internal-point-first", intPointFirstRe, buildIntPointFirst},
	{"internal-anchored-points", intAnchoredPointsRe, buildIntAnchoredPoints},
	{"internal-subparagraph", intSubparRe, buildIntSubparagraph},
	{"internal-article-list", intArticleListRe, buildIntArticleList},
	{"internal-paragraph", intParagraphRe, buildIntParagraph},
	{"internal-points", intPointsRe, buildIntPoints},
	{"section-of-annex", sectionOfAnnexRe, buildSectionOfAnnex},
	{"annex", annexRe, buildAnnex},
	{"chapter", chapterRe, buildChapter},
	{"section", sectionRe, buildSection},
	{"title", titleRe, buildTitle},
	{"relative", relativeRe, buildRelative},
	{"that-act", thatActRe, buildThatAct},
}

// Extract finds every citation in text. Citations are returned in span
// order; enumerations yield one citation per member, all sharing the span
// of the phrase that introduced them.
func Extract(text string) []unit.Citation {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var out []unit.Citation
	var claimed [][2]int

	overlaps := func(start, end int) bool {
		for _, c := range claimed {
			if start < c[1] && end > c[0] {
				return true
			}
		}
		return false
	}

	for _, m := range matchers {
		idxs := m.re.FindAllStringSubmatchIndex(text, -1)
		if len(idxs) == 0 {
			continue
		}
		// Longest match first so a wide candidate is not pre-empted by a
		// narrower one from the same family.
		sort.SliceStable(idxs, func(a, b int) bool {
			la, lb := idxs[a][1]-idxs[a][0], idxs[b][1]-idxs[b][0]
			if la != lb {
				return la > lb
			}
			return idxs[a][0] < idxs[b][0]
		})
		for _, idx := range idxs {
			start, end := idx[0], idx[1]
			if overlaps(start, end) {
				continue
			}
			groups := make([]string, len(idx)/2)
			for g := 1; g < len(idx)/2; g++ {
				if idx[2*g] >= 0 {
					groups[g] = text[idx[2*g]:idx[2*g+1]]
				}
			}
			raw := text[start:end]
			cits := m.build(matchSpan{start: start, end: end, raw: raw, groups: groups})
			if len(cits) == 0 {
				continue
			}
			conn := connectiveBefore(text, start)
			for i := range cits {
				cits[i].RawText = raw
				cits[i].SpanStart = start
				cits[i].SpanEnd = end
				cits[i].ConnectivePhrase = conn
			}
			out = append(out, cits...)
			claimed = append(claimed, [2]int{start, end})
		}
	}

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].SpanStart != out[b].SpanStart {
			return out[a].SpanStart < out[b].SpanStart
		}
		return out[a].SpanEnd < out[b].SpanEnd
	})
	return out
}

// connectiveBefore reports the connective phrase ending right before pos,
// if any.
func connectiveBefore(text string, pos int) string {
	prefix := strings.ToLower(strings.TrimRight(text[:pos], " \t\n,"))
	for _, phrase := range connectivePhrases {
		if strings.HasSuffix(prefix, phrase) {
			return phrase
		}
	}
	return ""
}

// --- builders -------------------------------------------------------------

func buildExtPointFirst(m matchSpan) []unit.Citation {
	acts := parseActList(m.groups[6])
	if len(acts) == 0 {
		return nil
	}
	var out []unit.Citation
	for _, act := range acts {
		c := unit.Citation{
			CitationType: unit.CitationEULegislation,
			ArticleLabel: strings.ToLower(m.groups[3]),
			Article:      articleNumber(m.groups[3]),
			Point:        strings.ToLower(m.groups[1]),
			ActType:      act.actType,
			ActNumber:    act.actNumber,
			ActYear:      act.year,
			CELEX:        act.celex,
		}
		if m.groups[4] != "" {
			n, _ := strconv.Atoi(m.groups[4])
			c.Paragraph = unit.IntPtr(n)
		}
		if m.groups[2] != "" {
			ord := strings.ToLower(m.groups[2])
			c.SubparagraphOrdinal = ord
			c.SubparagraphIndex = unit.IntPtr(ordinalIndex[ord])
		}
		out = append(out, c)
	}
	return out
}

func buildExtArticleList(m matchSpan) []unit.Citation {
	acts := parseActList(m.groups[2])
	if len(acts) == 0 {
		return nil
	}
	groups, rng := parseArticleSection(m.groups[1])
	var out []unit.Citation
	for _, act := range acts {
		base := unit.Citation{
			CitationType: unit.CitationEULegislation,
			ActType:      act.actType,
			ActNumber:    act.actNumber,
			ActYear:      act.year,
			CELEX:        act.celex,
		}
		if rng != nil {
			c := base
			c.ArticleRange = rng
			out = append(out, c)
			continue
		}
		for _, g := range groups {
			out = append(out, citationsForGroup(g, base)...)
		}
	}
	return out
}

// buildExtContextual handles "Article N of that Directive". The citation
// starts life internal; the resolver upgrades it when the unit has exactly
// one antecedent act of the matching type.
func buildExtContextual(m matchSpan) []unit.Citation {
	c := unit.Citation{
		CitationType: unit.CitationInternal,
		ArticleLabel: strings.ToLower(m.groups[1]),
		Article:      articleNumber(m.groups[1]),
	}
	if m.groups[2] != "" {
		n, _ := strconv.Atoi(m.groups[2])
		c.Paragraph = unit.IntPtr(n)
	}
	if m.groups[3] != "" {
		c.Point = strings.ToLower(m.groups[3])
	}
	return []unit.Citation{c}
}

// buildExtStandalone handles act mentions with no article part, including
// plural lists: "Regulations (EU) No 1093/2010 and (EU) No 1094/2010" gives
// one citation per act, sharing the list's span.
func buildExtStandalone(m matchSpan) []unit.Citation {
	var out []unit.Citation
	for _, act := range parseActList(m.raw) {
		out = append(out, unit.Citation{
			CitationType: unit.CitationEULegislation,
			ActType:      act.actType,
			ActNumber:    act.actNumber,
			ActYear:      act.year,
			CELEX:        act.celex,
		})
	}
	return out
}

func buildTreatyArticle(m matchSpan) []unit.Citation {
	c := unit.Citation{
		CitationType: unit.CitationEULegislation,
		ArticleLabel: strings.ToLower(m.groups[1]),
		Article:      articleNumber(m.groups[1]),
		TreatyCode:   unit.TreatyCode(m.groups[3]),
	}
	if m.groups[2] != "" {
		n, _ := strconv.Atoi(m.groups[2])
		c.Paragraph = unit.IntPtr(n)
	}
	return []unit.Citation{c}
}

func buildCharterArticle(m matchSpan) []unit.Citation {
	c := unit.Citation{
		CitationType: unit.CitationEULegislation,
		ArticleLabel: strings.ToLower(m.groups[1]),
		Article:      articleNumber(m.groups[1]),
		TreatyCode:   unit.TreatyCharter,
	}
	if m.groups[2] != "" {
		n, _ := strconv.Atoi(m.groups[2])
		c.Paragraph = unit.IntPtr(n)
	}
	return []unit.Citation{c}
}

func buildProtocol(m matchSpan) []unit.Citation {
	return []unit.Citation{{
		CitationType:   unit.CitationEULegislation,
		TreatyCode:     unit.TreatyProtocol,
		ProtocolNumber: m.groups[1],
	}}
}

func buildTreatyName(m matchSpan) []unit.Citation {
	code := unit.TreatyGeneric
	switch {
	case strings.Contains(m.raw, "Functioning") || m.raw == "TFEU":
		code = unit.TreatyTFEU
	case strings.Contains(m.raw, "European Union") || m.raw == "TEU":
		code = unit.TreatyTEU
	}
	return []unit.Citation{{CitationType: unit.CitationEULegislation, TreatyCode: code}}
}

func buildIntPointFirst(m matchSpan) []unit.Citation {
	c := unit.Citation{
		CitationType: unit.CitationInternal,
		Point:        strings.ToLower(m.groups[1]),
	}
	if m.groups[2] != "" {
		ord := strings.ToLower(m.groups[2])
		c.SubparagraphOrdinal = ord
		c.SubparagraphIndex = unit.IntPtr(ordinalIndex[ord])
	}
	if m.groups[3] != "" {
		c.ArticleLabel = strings.ToLower(m.groups[3])
		c.Article = articleNumber(m.groups[3])
		if m.groups[4] != "" {
			n, _ := strconv.Atoi(m.groups[4])
			c.Paragraph = unit.IntPtr(n)
		}
	}
	if m.groups[5] != "" {
		n, _ := strconv.Atoi(m.groups[5])
		c.Paragraph = unit.IntPtr(n)
	}
	return []unit.Citation{c}
}

func buildIntAnchoredPoints(m matchSpan) []unit.Citation {
	base := unit.Citation{CitationType: unit.CitationInternal}
	if m.groups[1] != "" {
		base.ArticleLabel = strings.ToLower(m.groups[1])
		base.Article = articleNumber(m.groups[1])
		if m.groups[2] != "" {
			n, _ := strconv.Atoi(m.groups[2])
			base.Paragraph = unit.IntPtr(n)
		}
	}
	if m.groups[3] != "" {
		n, _ := strconv.Atoi(m.groups[3])
		base.Paragraph = unit.IntPtr(n)
	}
	points, rng := parsePointList(m.groups[4])
	if rng != nil {
		c := base
		c.PointRange = rng
		return []unit.Citation{c}
	}
	var out []unit.Citation
	for _, p := range points {
		c := base
		c.Point = p
		out = append(out, c)
	}
	return out
}

func buildIntSubparagraph(m matchSpan) []unit.Citation {
	ords := []string{strings.ToLower(m.groups[1])}
	for _, w := range ordWordRe.FindAllString(m.groups[2], -1) {
		ords = append(ords, strings.ToLower(w))
	}
	var par *int
	if m.groups[3] != "" {
		n, _ := strconv.Atoi(m.groups[3])
		par = unit.IntPtr(n)
	}
	var out []unit.Citation
	for _, ord := range ords {
		c := unit.Citation{
			CitationType:        unit.CitationInternal,
			SubparagraphOrdinal: ord,
			SubparagraphIndex:   unit.IntPtr(ordinalIndex[ord]),
			Paragraph:           par,
		}
		if m.groups[4] != "" {
			c.Point = strings.ToLower(m.groups[4])
		}
		out = append(out, c)
	}
	return out
}

func buildIntArticleList(m matchSpan) []unit.Citation {
	groups, rng := parseArticleSection(m.groups[1])
	if rng != nil {
		return []unit.Citation{{CitationType: unit.CitationInternal, ArticleRange: rng}}
	}
	var out []unit.Citation
	for _, g := range groups {
		out = append(out, citationsForGroup(g, unit.Citation{CitationType: unit.CitationInternal})...)
	}
	return out
}

func buildIntParagraph(m matchSpan) []unit.Citation {
	first, _ := strconv.Atoi(m.groups[1])
	if m.groups[3] != "" {
		hi, _ := strconv.Atoi(m.groups[3])
		return []unit.Citation{{
			CitationType:   unit.CitationInternal,
			ParagraphRange: &unit.IntRange{first, hi},
		}}
	}
	nums := []int{first}
	for _, d := range digitsAllRe.FindAllString(m.groups[2], -1) {
		n, _ := strconv.Atoi(d)
		nums = append(nums, n)
	}
	var out []unit.Citation
	for _, n := range nums {
		out = append(out, unit.Citation{
			CitationType: unit.CitationInternal,
			Paragraph:    unit.IntPtr(n),
		})
	}
	return out
}

func buildIntPoints(m matchSpan) []unit.Citation {
	if m.groups[4] != "" {
		return []unit.Citation{{
			CitationType: unit.CitationInternal,
			PointRange:   &unit.LabelRange{strings.ToLower(m.groups[1]), strings.ToLower(m.groups[4])},
		}}
	}
	points := []string{strings.ToLower(m.groups[1])}
	for _, pm := range parenTokRe.FindAllStringSubmatch(m.groups[2], -1) {
		points = append(points, strings.ToLower(pm[1]))
	}
	var out []unit.Citation
	for _, p := range points {
		out = append(out, unit.Citation{CitationType: unit.CitationInternal, Point: p})
	}
	return out
}

func buildSectionOfAnnex(m matchSpan) []unit.Citation {
	return []unit.Citation{{
		CitationType: unit.CitationInternal,
		Section:      strings.ToUpper(m.groups[1]),
		Annex:        strings.ToUpper(m.groups[2]),
	}}
}

func buildAnnex(m matchSpan) []unit.Citation {
	labels := []string{strings.ToUpper(m.groups[1])}
	for _, l := range annexContTokRe.FindAllString(m.groups[2], -1) {
		labels = append(labels, strings.ToUpper(l))
	}
	part := strings.ToUpper(m.groups[3])
	var out []unit.Citation
	for _, l := range labels {
		c := unit.Citation{CitationType: unit.CitationInternal, Annex: l}
		if part != "" {
			c.AnnexPart = part
		}
		out = append(out, c)
	}
	return out
}

func buildChapter(m matchSpan) []unit.Citation {
	label := strings.ToUpper(m.groups[1])
	if label == "" {
		label = "THIS"
	}
	return []unit.Citation{{CitationType: unit.CitationInternal, Chapter: label}}
}

func buildSection(m matchSpan) []unit.Citation {
	return []unit.Citation{{CitationType: unit.CitationInternal, Section: strings.ToUpper(m.groups[1])}}
}

func buildTitle(m matchSpan) []unit.Citation {
	return []unit.Citation{{CitationType: unit.CitationInternal, TitleRef: strings.ToUpper(m.groups[1])}}
}

func buildRelative(m matchSpan) []unit.Citation {
	return []unit.Citation{{CitationType: unit.CitationInternal}}
}

func buildThatAct(m matchSpan) []unit.Citation {
	return []unit.Citation{{CitationType: unit.CitationInternal}}
}

var (
	digitsAllRe    = regexp.MustCompile(`\d+`)
	annexContTokRe = regexp.MustCompile(`(?i)\b[ivxlc]+\b|\b\d+\b`)
)
