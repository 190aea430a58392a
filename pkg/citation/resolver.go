package citation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/coolbeans/lexunit/pkg/unit"
)

var (
	ctxOfThatRe   = regexp.MustCompile(`(?i)^articles?\s+.*\bof\s+that\s+(regulation|directive|decision)$`)
	bareThatRe    = regexp.MustCompile(`(?i)^that\s+(regulation|directive|decision)$`)
	thisArticleRe = regexp.MustCompile(`(?i)^this\s+article$`)
	thisParaRe    = regexp.MustCompile(`(?i)^this\s+paragraph$`)
)

// Resolver turns extracted citations into tree-local targets. A target id is
// recorded only when the candidate exists in the document's arena; external
// citations never receive one. Resolution is idempotent: every decision is
// recomputed from the same inputs on a second run.
type Resolver struct {
	arena *unit.Arena
}

func NewResolver(arena *unit.Arena) *Resolver {
	return &Resolver{arena: arena}
}

// Resolve processes every unit's citation list in place.
func (r *Resolver) Resolve(units []*unit.Unit) {
	for _, u := range units {
		r.resolveUnit(u)
	}
}

func (r *Resolver) resolveUnit(u *unit.Unit) {
	for i := range u.Citations {
		c := &u.Citations[i]

		if kind := thatActKind(c.RawText); kind != "" {
			r.resolveThatAct(u, i, kind)
			continue
		}
		if c.CitationType != unit.CitationInternal {
			continue
		}

		r.fillFromContext(u, c)
		r.assignTarget(c)
	}
}

// thatActKind classifies "that <Act>" phrasings, both the bare form and the
// article-bearing contextual form ("Article N of that Directive").
func thatActKind(raw string) unit.ActType {
	if m := ctxOfThatRe.FindStringSubmatch(raw); m != nil {
		return unit.ActType(strings.ToLower(m[1]))
	}
	if m := bareThatRe.FindStringSubmatch(raw); m != nil {
		return unit.ActType(strings.ToLower(m[1]))
	}
	return ""
}

// resolveThatAct upgrades citation i to an external reference when the unit
// has exactly one earlier distinct act mention of the matching type.
// Ambiguous or absent antecedents leave the citation internal.
func (r *Resolver) resolveThatAct(u *unit.Unit, i int, kind unit.ActType) {
	c := &u.Citations[i]
	seen := map[string]actEntry{}
	var order []string
	for j := 0; j < i; j++ {
		prev := &u.Citations[j]
		if prev.CitationType != unit.CitationEULegislation || prev.ActType != kind || prev.ActNumber == "" {
			continue
		}
		if prev.SpanEnd > c.SpanStart {
			continue
		}
		if _, ok := seen[prev.ActNumber]; !ok {
			seen[prev.ActNumber] = actEntry{
				actType:   prev.ActType,
				actNumber: prev.ActNumber,
				year:      prev.ActYear,
				celex:     prev.CELEX,
			}
			order = append(order, prev.ActNumber)
		}
	}
	if len(order) != 1 {
		return
	}
	ante := seen[order[0]]
	c.CitationType = unit.CitationEULegislation
	c.ActType = ante.actType
	c.ActNumber = ante.actNumber
	c.ActYear = ante.year
	c.CELEX = ante.celex
}

// fillFromContext completes an internal citation with the owning unit's
// coordinates. Missing article numbers come from the unit; standalone point
// citations first look for an anchor citation earlier in the same
// semicolon-delimited clause, then fall back to the unit's own position.
// A structurally derived subparagraph coordinate is recorded as a bare
// index with no ordinal word, so re-resolving a citation never reinterprets
// it under the drafting-convention shift.
func (r *Resolver) fillFromContext(u *unit.Unit, c *unit.Citation) {
	switch {
	case thisArticleRe.MatchString(c.RawText):
		fillArticle(u, c)
		return
	case thisParaRe.MatchString(c.RawText):
		fillArticle(u, c)
		fillParagraph(u, c)
		return
	}

	standalonePoint := (c.Point != "" || c.PointRange != nil) &&
		c.ArticleLabel == "" && c.Paragraph == nil && c.SubparagraphOrdinal == ""
	if standalonePoint {
		if anchor := r.clauseAnchor(u, c); anchor != nil {
			c.ArticleLabel = anchor.ArticleLabel
			c.Article = anchor.Article
			c.Paragraph = anchor.Paragraph
			if anchor.SubparagraphOrdinal != "" || anchor.SubparagraphIndex != nil {
				c.SubparagraphOrdinal = anchor.SubparagraphOrdinal
				c.SubparagraphIndex = anchor.SubparagraphIndex
			}
			return
		}
		fillArticle(u, c)
		fillParagraph(u, c)
		if idx := r.enclosingSubparagraph(u); idx > 0 {
			c.SubparagraphIndex = unit.IntPtr(idx)
		}
		return
	}

	if c.SubparagraphOrdinal != "" && c.ArticleLabel == "" {
		fillArticle(u, c)
		if c.Paragraph == nil {
			fillParagraph(u, c)
		}
		return
	}
	if c.Paragraph != nil && c.ArticleLabel == "" {
		fillArticle(u, c)
	}
	if c.AnnexPart != "" && c.Annex == "" && u.AnnexNumber != "" {
		c.Annex = u.AnnexNumber
	}
}

func fillArticle(u *unit.Unit, c *unit.Citation) {
	if u.ArticleNumber == "" {
		return
	}
	c.ArticleLabel = strings.ToLower(u.ArticleNumber)
	c.Article = articleNumber(c.ArticleLabel)
}

func fillParagraph(u *unit.Unit, c *unit.Citation) {
	if u.ParagraphNumber != "" {
		if n, err := strconv.Atoi(u.ParagraphNumber); err == nil {
			c.Paragraph = unit.IntPtr(n)
			return
		}
	}
	if u.ParagraphIndex != nil {
		c.Paragraph = unit.IntPtr(*u.ParagraphIndex)
	}
}

// clauseAnchor finds the nearest earlier internal citation carrying an
// article or paragraph coordinate, provided no ';' separates it from c.
func (r *Resolver) clauseAnchor(u *unit.Unit, c *unit.Citation) *unit.Citation {
	for j := len(u.Citations) - 1; j >= 0; j-- {
		prev := &u.Citations[j]
		if prev == c || prev.SpanEnd > c.SpanStart {
			continue
		}
		if prev.CitationType != unit.CitationInternal {
			continue
		}
		if prev.ArticleLabel == "" && prev.Paragraph == nil {
			continue
		}
		if prev.Point != "" || prev.PointRange != nil {
			continue
		}
		between := u.Text
		if c.SpanStart <= len(between) && prev.SpanEnd <= c.SpanStart {
			if strings.Contains(between[prev.SpanEnd:c.SpanStart], ";") {
				return nil
			}
		}
		return prev
	}
	return nil
}

// enclosingSubparagraph walks the unit and its ancestors for a subparagraph
// position, giving standalone point references their structural context.
func (r *Resolver) enclosingSubparagraph(u *unit.Unit) int {
	cur := u
	for cur != nil {
		if cur.SubparagraphIndex != nil {
			return *cur.SubparagraphIndex
		}
		if cur.ParentID == "" {
			return 0
		}
		cur = r.arena.Get(cur.ParentID)
	}
	return 0
}

// assignTarget builds the candidate node id and records it when present in
// the tree. Ranges and purely structural references (chapters, sections,
// titles) are left untargeted.
func (r *Resolver) assignTarget(c *unit.Citation) {
	if c.ArticleRange != nil || c.ParagraphRange != nil || c.PointRange != nil {
		return
	}
	if c.Chapter != "" || c.TitleRef != "" || (c.Section != "" && c.Annex == "") {
		return
	}
	if c.TreatyCode != "" {
		return
	}

	var id string
	switch {
	case c.Annex != "":
		id = "annex-" + c.Annex
		if c.AnnexPart != "" {
			id += ".part-" + c.AnnexPart
		}
	case c.ArticleLabel != "" || c.Paragraph != nil || c.Point != "":
		var parts []string
		if c.ArticleLabel != "" {
			parts = append(parts, "art-"+c.ArticleLabel)
		}
		if c.Paragraph != nil {
			parts = append(parts, "par-"+strconv.Itoa(*c.Paragraph))
		}
		if c.Paragraph != nil {
			switch {
			case c.SubparagraphOrdinal == "" && c.SubparagraphIndex != nil:
				// Index without ordinal word means the coordinate came from
				// the tree, where subpar-k is already the k-th child node.
				parts = append(parts, "subpar-"+strconv.Itoa(*c.SubparagraphIndex))
			case c.SubparagraphOrdinal != "":
				// EU drafting convention: the "first subparagraph" is the
				// paragraph node itself; later ordinals map to subpar-(k-1).
				if k := ordinalIndex[c.SubparagraphOrdinal]; k > 1 {
					parts = append(parts, "subpar-"+strconv.Itoa(k-1))
				}
			}
		}
		if c.Point != "" {
			parts = append(parts, "pt-"+c.Point)
		}
		id = strings.Join(parts, ".")
	default:
		return
	}

	if r.arena.Has(id) {
		c.TargetNodeID = id
	}
}
