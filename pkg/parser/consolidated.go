package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/coolbeans/lexunit/pkg/unit"
)

var nonDigitRe = regexp.MustCompile(`[^\d]`)

// parseArticlesConsolidated handles the consolidated CELEX layout, where
// paragraphs are div.norm blocks with a no-parag number span and lists are
// grid-container rows instead of tables.
func (p *Parser) parseArticlesConsolidated() {
	p.doc.Find(`div.eli-subdivision[id^="art_"]`).Each(func(_ int, div *goquery.Selection) {
		sourceID := div.AttrOr("id", "")
		articleNum := strings.TrimPrefix(sourceID, "art_")

		var heading string
		if sub := div.Find("p.stitle-article-norm").First(); sub.Length() > 0 {
			heading = strings.TrimSpace(sub.Text())
		}

		articleID := p.addUnit(&unit.Unit{
			ID:            "art-" + articleNum,
			Type:          unit.KindArticle,
			Ref:           "Article " + articleNum,
			SourceID:      sourceID,
			SourceFile:    p.sourceFile,
			ArticleNumber: articleNum,
			Heading:       heading,
		})

		p.parseConsolidatedContent(div, articleID, articleNum)
	})
}

func (p *Parser) parseConsolidatedContent(parentDiv *goquery.Selection, parentID, articleNum string) {
	introIdx := 0
	parentDiv.Contents().Each(func(_ int, child *goquery.Selection) {
		node := child.Get(0)
		if node.Type != html.ElementNode {
			return
		}
		if child.HasClass("eli-title") {
			return
		}

		name := goquery.NodeName(child)
		switch {
		case name == "p" && (child.HasClass("title-article-norm") || child.HasClass("stitle-article-norm")):
			return

		case name == "div" && child.HasClass("norm"):
			noParag := child.ChildrenFiltered("span.no-parag").First()
			if noParag.Length() == 0 {
				return
			}
			parNumText := strings.TrimSuffix(strings.TrimSpace(noParag.Text()), ".")
			parNum := nonDigitRe.ReplaceAllString(parNumText, "")

			parID := parentID
			if parNum != "" {
				parID = parentID + ".par-" + parNum
			}

			var parText string
			if inline := child.ChildrenFiltered("div.inline-element").First(); inline.Length() > 0 {
				parText = p.consolidatedText(inline)
			} else {
				clone := child.Clone()
				removeNoteTags(clone)
				text := textOf(clone)
				parText = strings.TrimSpace(strings.Replace(text, strings.TrimSpace(noParag.Text()), "", 1))
			}

			var ref string
			if parNum != "" {
				ref = parNum + "."
			}
			parID = p.addUnit(&unit.Unit{
				ID:              parID,
				Type:            unit.KindParagraph,
				Ref:             ref,
				Text:            normalizeText(parText),
				ParentID:        parentID,
				SourceFile:      p.sourceFile,
				ArticleNumber:   articleNum,
				ParagraphNumber: parNum,
			})

			p.parseConsolidatedPoints(child, parID, articleNum, parNum, 0)

		case name == "div" && child.HasClass("grid-container"):
			p.parseGridPoint(child, parentID, articleNum, "", 0)

		case name == "p" && child.HasClass("norm"):
			introText := cleanText(child)
			if introText == "" {
				return
			}
			introIdx++
			p.addUnit(&unit.Unit{
				ID:            parentID + ".intro-" + strconv.Itoa(introIdx),
				Type:          unit.KindIntro,
				Text:          normalizeText(introText),
				ParentID:      parentID,
				SourceID:      child.AttrOr("id", ""),
				SourceFile:    p.sourceFile,
				ArticleNumber: articleNum,
			})
		}
	})
}

// parseConsolidatedPoints finds the grid lists directly under a paragraph
// block, including those wrapped in an inline-element div.
func (p *Parser) parseConsolidatedPoints(parent *goquery.Selection, parentID, articleNum, paragraphNum string, depth int) {
	var grids []*goquery.Selection
	parent.ChildrenFiltered("div.grid-container").Each(func(_ int, g *goquery.Selection) {
		grids = append(grids, g)
	})
	if inline := parent.ChildrenFiltered("div.inline-element").First(); inline.Length() > 0 {
		inline.ChildrenFiltered("div.grid-container").Each(func(_ int, g *goquery.Selection) {
			grids = append(grids, g)
		})
	}
	for _, grid := range grids {
		p.parseGridPoint(grid, parentID, articleNum, paragraphNum, depth)
	}
}

// parseGridPoint emits one grid row as a point unit and recurses into
// nested grids in its content column.
func (p *Parser) parseGridPoint(grid *goquery.Selection, parentID, articleNum, paragraphNum string, depth int) {
	if depth > maxPointDepth {
		return
	}

	labelDiv := grid.Find("div.grid-list-column-1").First()
	if labelDiv.Length() == 0 {
		labelDiv = grid.Find("div.list").First()
	}
	labelText := ""
	if labelDiv.Length() > 0 {
		if span := labelDiv.Find("span").First(); span.Length() > 0 {
			labelText = strings.TrimSpace(span.Text())
		} else {
			labelText = strings.TrimSpace(labelDiv.Text())
		}
	}

	contentDiv := grid.Find("div.grid-list-column-2").First()
	contentText := ""
	if contentDiv.Length() > 0 {
		contentText = p.consolidatedText(contentDiv)
	}

	labelNorm, _, quoted := NormalizeLabel(labelText)
	kind, prefix := kindForDepth(depth)

	u := &unit.Unit{
		ID:              parentID + "." + prefix + "-" + labelNorm,
		Type:            kind,
		Ref:             labelText,
		Text:            normalizeText(contentText),
		ParentID:        parentID,
		SourceFile:      p.sourceFile,
		ArticleNumber:   articleNum,
		ParagraphNumber: paragraphNum,
		IsAmendmentText: quoted,
	}
	switch depth {
	case 0:
		u.PointLabel = labelNorm
	case 1:
		u.SubpointLabel = labelNorm
	case 2:
		u.SubsubpointLabel = labelNorm
	}
	unitID := p.addUnit(u)

	if contentDiv.Length() > 0 {
		contentDiv.ChildrenFiltered("div.grid-container").Each(func(_ int, nested *goquery.Selection) {
			p.parseGridPoint(nested, unitID, articleNum, paragraphNum, depth+1)
		})
	}
}

// consolidatedText reads the prose of a consolidated block: its p.norm
// paragraphs with nested grid lists removed, falling back to the block's
// whole text.
func (p *Parser) consolidatedText(element *goquery.Selection) string {
	clone := element.Clone()
	removeNoteTags(clone)
	clone.Find("div.grid-container").Remove()

	var texts []string
	clone.Find("p.norm").Each(func(_ int, para *goquery.Selection) {
		if t := textOf(para); t != "" {
			texts = append(texts, t)
		}
	})
	if len(texts) > 0 {
		return strings.Join(texts, " ")
	}
	return textOf(clone)
}
