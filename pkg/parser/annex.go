package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/coolbeans/lexunit/pkg/unit"
)

var annexPartRe = regexp.MustCompile(`(?i)^Part\s+([A-Z])`)

// parseAnnexes walks the anx_ containers. Annex bodies mix part headings,
// labelled item tables, data tables, and loose prose paragraphs; everything
// lands under the annex (or its current part) as annex_item units.
func (p *Parser) parseAnnexes() {
	p.doc.Find(`div.eli-container[id^="anx_"]`).Each(func(_ int, div *goquery.Selection) {
		sourceID := strings.TrimSpace(div.AttrOr("id", ""))
		annexNum := strings.TrimSpace(strings.TrimPrefix(sourceID, "anx_"))

		annexTitle := "ANNEX " + annexNum
		if titleP := div.Find("p.oj-doc-ti").First(); titleP.Length() > 0 {
			annexTitle = cleanText(titleP)
		}
		var heading string
		if headingP := div.Find("p.oj-ti-grseq-1").First(); headingP.Length() > 0 {
			heading = cleanText(headingP)
		}
		if heading == "" {
			heading = annexTitle
		}

		annexID := p.addUnit(&unit.Unit{
			ID:          "annex-" + annexNum,
			Type:        unit.KindAnnex,
			Ref:         "ANNEX " + annexNum,
			SourceID:    sourceID,
			SourceFile:  p.sourceFile,
			AnnexNumber: annexNum,
			Heading:     heading,
		})

		p.parseAnnexContent(div, annexID, annexNum)
	})
}

func (p *Parser) parseAnnexContent(annexDiv *goquery.Selection, annexID, annexNum string) {
	currentPart := ""
	currentParentID := annexID
	itemIdx := 0

	emitItem := func(text, ref string) {
		itemIdx++
		p.addUnit(&unit.Unit{
			ID:          currentParentID + ".item-" + strconv.Itoa(itemIdx),
			Type:        unit.KindAnnexItem,
			Ref:         ref,
			Text:        normalizeText(text),
			ParentID:    currentParentID,
			SourceFile:  p.sourceFile,
			AnnexNumber: annexNum,
			AnnexPart:   currentPart,
		})
	}

	annexDiv.Contents().Each(func(_ int, child *goquery.Selection) {
		node := child.Get(0)
		if node.Type != html.ElementNode {
			return
		}

		switch goquery.NodeName(child) {
		case "p":
			if child.HasClass("oj-ti-grseq-1") {
				text := cleanText(child)
				if m := annexPartRe.FindStringSubmatch(text); m != nil {
					currentPart = strings.ToUpper(m[1])
					partID := p.addUnit(&unit.Unit{
						ID:          annexID + ".part-" + currentPart,
						Type:        unit.KindAnnexPart,
						Ref:         "Part " + currentPart,
						Text:        text,
						ParentID:    annexID,
						SourceFile:  p.sourceFile,
						AnnexNumber: annexNum,
						AnnexPart:   currentPart,
					})
					currentParentID = partID
				}
				return
			}
			if child.HasClass("oj-doc-ti") {
				return
			}
			if text := cleanText(child); len(strings.TrimSpace(text)) >= 5 {
				emitItem(text, "")
			}

		case "table":
			if isListTable(child) {
				child.Find("tr").Each(func(_ int, row *goquery.Selection) {
					cells := row.Find("td")
					if cells.Length() < 2 {
						return
					}
					labelText := strings.TrimSpace(cellText(cells.Eq(0), false))
					contentText := cellText(cells.Eq(1), true)
					labelNorm, _, quoted := NormalizeLabel(labelText)

					itemID := p.addUnit(&unit.Unit{
						ID:              currentParentID + ".item-" + labelNorm,
						Type:            unit.KindAnnexItem,
						Ref:             labelText,
						Text:            normalizeText(contentText),
						ParentID:        currentParentID,
						SourceFile:      p.sourceFile,
						AnnexNumber:     annexNum,
						AnnexPart:       currentPart,
						IsAmendmentText: quoted,
					})

					var nested []*goquery.Selection
					cells.Eq(1).ChildrenFiltered("table").Each(func(_ int, t *goquery.Selection) {
						nested = append(nested, t)
					})
					if len(nested) > 0 {
						p.parsePointTables(nested, itemID, "", "", 1, false)
					}
				})
				return
			}
			// Data table: flatten cell prose into numbered items.
			child.Find("tr").Each(func(_ int, row *goquery.Selection) {
				row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
					clone := cell.Clone()
					removeNoteTags(clone)
					clone.ChildrenFiltered("p").Each(func(_ int, para *goquery.Selection) {
						if t := textOf(para); len(strings.TrimSpace(t)) >= 5 {
							emitItem(t, "")
						}
					})
					clone.Find("p").Remove()
					clone.Find("figure").Remove()
					clone.Find("table").Remove()
					if bare := textOf(clone); len(strings.TrimSpace(bare)) >= 5 {
						emitItem(bare, "")
					}
				})
			})

		case "div":
			if child.HasClass("oj-enumeration-spacing") {
				if text := cleanText(child); len(strings.TrimSpace(text)) >= 5 {
					emitItem(text, "")
				}
			}
		}
	})
}
