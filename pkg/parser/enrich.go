package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/coolbeans/lexunit/pkg/citation"
	"github.com/coolbeans/lexunit/pkg/unit"
)

var definitionsHeadingRe = regexp.MustCompile(`(?i)\bdefinitions?\b`)

// enrich computes the derived fields that need the complete tree: child
// counts, stem detection, heading propagation, human-readable target paths,
// text statistics, then the citation passes, and finally the document-level
// aggregates.
func (p *Parser) enrich() *unit.DocumentMetadata {
	units := p.arena.Units()

	children := map[string]int{}
	for _, u := range units {
		if u.ParentID != "" {
			children[u.ParentID]++
		}
	}
	for _, u := range units {
		u.ChildrenCount = children[u.ID]
		u.IsLeaf = u.ChildrenCount == 0
		u.IsStem = u.ChildrenCount > 0 && strings.HasSuffix(strings.TrimRight(u.Text, " "), ":")
	}

	p.propagateArticleHeadings(units)

	for _, u := range units {
		u.TargetPath = targetPath(u)
		if u.Text == "" {
			u.WordCount = 0
			u.CharCount = 0
			continue
		}
		u.WordCount = len(strings.Fields(u.Text))
		u.CharCount = len(u.Text)
	}

	p.runCitationPasses(units)

	return p.documentMetadata(units)
}

// propagateArticleHeadings stamps every unit with the heading of the
// article it sits under; preamble and annex units reset the carry.
func (p *Parser) propagateArticleHeadings(units []*unit.Unit) {
	current := ""
	for _, u := range units {
		switch u.Type {
		case unit.KindDocumentTitle, unit.KindRecital, unit.KindAnnex,
			unit.KindAnnexPart, unit.KindAnnexItem:
			current = ""
		case unit.KindArticle:
			current = u.Heading
		}
		u.ArticleHeading = current
	}
}

// targetPath renders the unit's legal address, e.g. "Art. 5(1)(a)".
func targetPath(u *unit.Unit) string {
	if u.RecitalNumber != "" {
		return "Recital " + u.RecitalNumber
	}
	if u.AnnexNumber != "" {
		path := "Annex " + u.AnnexNumber
		if u.AnnexPart != "" {
			path += ", Part " + u.AnnexPart
		}
		return path
	}
	if u.ArticleNumber == "" {
		return ""
	}

	var b strings.Builder
	b.WriteString("Art. ")
	b.WriteString(u.ArticleNumber)
	switch {
	case u.ParagraphNumber != "":
		b.WriteString("(" + u.ParagraphNumber + ")")
	case u.ParagraphIndex != nil:
		b.WriteString("(" + strconv.Itoa(*u.ParagraphIndex) + ")")
	}
	if u.PointLabel != "" {
		b.WriteString("(" + u.PointLabel + ")")
	}
	if u.SubpointLabel != "" {
		b.WriteString("(" + u.SubpointLabel + ")")
	}
	if u.SubsubpointLabel != "" {
		b.WriteString("(" + u.SubsubpointLabel + ")")
	}
	return b.String()
}

// runCitationPasses extracts citations from every non-amendment unit, then
// resolves them against the finished tree. Quoted amendment text cites the
// amended act's structure, not this document's, so it is skipped.
func (p *Parser) runCitationPasses(units []*unit.Unit) {
	for _, u := range units {
		if u.IsAmendmentText || u.Text == "" {
			continue
		}
		u.Citations = citation.Extract(u.Text)
	}
	citation.NewResolver(p.arena).Resolve(units)
}

// documentMetadata aggregates the document-level counters.
func (p *Parser) documentMetadata(units []*unit.Unit) *unit.DocumentMetadata {
	meta := &unit.DocumentMetadata{AmendmentArticles: []string{}}

	definitionArticles := map[string]bool{}
	for _, u := range units {
		if u.Type == unit.KindArticle && u.ArticleNumber != "" && u.Heading != "" &&
			definitionsHeadingRe.MatchString(u.Heading) {
			definitionArticles[u.ArticleNumber] = true
		}
	}

	seenAmendment := map[string]bool{}
	for _, u := range units {
		meta.TotalUnits++
		switch u.Type {
		case unit.KindDocumentTitle:
			if meta.Title == "" {
				meta.Title = u.Text
			}
		case unit.KindArticle:
			meta.TotalArticles++
		case unit.KindParagraph:
			meta.TotalParagraphs++
		case unit.KindPoint:
			meta.TotalPoints++
			if definitionArticles[u.ArticleNumber] {
				meta.TotalDefinitions++
			}
		case unit.KindAnnex:
			meta.HasAnnexes = true
		}
		if u.IsAmendmentText && u.ArticleNumber != "" && !seenAmendment[u.ArticleNumber] {
			seenAmendment[u.ArticleNumber] = true
			meta.AmendmentArticles = append(meta.AmendmentArticles, u.ArticleNumber)
		}
	}
	return meta
}
