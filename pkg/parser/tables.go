package parser

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/coolbeans/lexunit/pkg/unit"
)

const maxPointDepth = 10

// kindForDepth maps list nesting depth to unit kind and id prefix:
// 0 = point, 1 = subpoint, 2 = subsubpoint, deeper levels are generic.
func kindForDepth(depth int) (unit.Kind, string) {
	switch depth {
	case 0:
		return unit.KindPoint, "pt"
	case 1:
		return unit.KindSubpoint, "sub"
	case 2:
		return unit.KindSubsubpoint, "subsub"
	default:
		return unit.NestedKind(depth), "n" + strconv.Itoa(depth)
	}
}

// extractNonListTable flattens a data table into child units of parent:
// every cell paragraph (and leftover bare text) long enough to be prose
// becomes one unit of the kind one level below the parent.
func (p *Parser) extractNonListTable(table *goquery.Selection, parentID, articleNum, paragraphNum string, amendment bool) {
	childKind := unit.KindSubparagraph
	if parent := p.arena.Get(parentID); parent != nil {
		switch parent.Type {
		case unit.KindParagraph:
			childKind = unit.KindSubparagraph
		case unit.KindSubparagraph, unit.KindArticle:
			childKind = unit.KindPoint
		case unit.KindPoint, unit.KindAnnexItem:
			childKind = unit.KindSubpoint
		case unit.KindSubsubpoint:
			childKind = unit.NestedKind(3)
		case unit.KindSubpoint:
			childKind = unit.KindSubsubpoint
		default:
			if depth, ok := nestedDepth(parent.Type); ok {
				childKind = unit.NestedKind(depth + 1)
			}
		}
	}

	subIdx := 0
	emit := func(text string) {
		subIdx++
		u := &unit.Unit{
			ID:              parentID + ".tbl-" + strconv.Itoa(subIdx),
			Type:            childKind,
			Text:            text,
			ParentID:        parentID,
			SourceFile:      p.sourceFile,
			ArticleNumber:   articleNum,
			ParagraphNumber: paragraphNum,
			IsAmendmentText: amendment,
		}
		if childKind == unit.KindSubparagraph {
			u.SubparagraphIndex = unit.IntPtr(subIdx)
		}
		p.addUnit(u)
	}

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		row.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			clone := cell.Clone()
			removeNoteTags(clone)
			clone.Find("p").Each(func(_ int, para *goquery.Selection) {
				if t := textOf(para); len(strings.TrimSpace(t)) >= 10 {
					emit(normalizeText(t))
				}
			})
			clone.Find("p").Remove()
			clone.Find("figure").Remove()
			clone.Find("table").Remove()
			if bare := textOf(clone); len(strings.TrimSpace(bare)) >= 10 {
				emit(normalizeText(bare))
			}
		})
	})
}

func nestedDepth(kind unit.Kind) (int, bool) {
	s := string(kind)
	if !strings.HasPrefix(s, "nested_") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(s, "nested_"))
	if err != nil {
		return 0, false
	}
	return n, true
}

// parsePointTables turns list-tables into point hierarchies. Each row is a
// (label, content) pair; nested tables in the content cell recurse one
// level deeper. Non-list tables falling through are flattened instead.
func (p *Parser) parsePointTables(tables []*goquery.Selection, parentID, articleNum, paragraphNum string, depth int, amendment bool) {
	if depth >= maxPointDepth {
		return
	}

	for _, table := range tables {
		if !isListTable(table) {
			p.extractNonListTable(table, parentID, articleNum, paragraphNum, amendment)
			continue
		}

		rows := table.ChildrenFiltered("tbody").First().ChildrenFiltered("tr")
		if rows.Length() == 0 {
			rows = table.ChildrenFiltered("tr")
		}

		rows.Each(func(_ int, row *goquery.Selection) {
			cells := row.ChildrenFiltered("td")
			if cells.Length() < 2 {
				return
			}
			labelCell := cells.Eq(0)
			contentCell := cells.Eq(1)

			labelText := ""
			if labelP := labelCell.ChildrenFiltered("p").First(); labelP.Length() > 0 {
				labelText = strings.TrimSpace(labelP.Text())
			} else {
				labelText = strings.TrimSpace(labelCell.Text())
			}
			labelNorm, _, quoted := NormalizeLabel(labelText)

			contentText := normalizeText(cellText(contentCell, true))

			kind, prefix := kindForDepth(depth)
			u := &unit.Unit{
				ID:              parentID + "." + prefix + "-" + labelNorm,
				Type:            kind,
				Ref:             labelText,
				Text:            contentText,
				ParentID:        parentID,
				SourceFile:      p.sourceFile,
				ArticleNumber:   articleNum,
				ParagraphNumber: paragraphNum,
				IsAmendmentText: amendment || quoted,
			}
			switch depth {
			case 0:
				u.PointLabel = labelNorm
			case 1:
				u.SubpointLabel = labelNorm
			case 2:
				u.SubsubpointLabel = labelNorm
			default:
				u.ExtraLabels = []string{labelNorm}
			}
			unitID := p.addUnit(u)

			var nested []*goquery.Selection
			contentCell.ChildrenFiltered("table").Each(func(_ int, t *goquery.Selection) {
				nested = append(nested, t)
			})
			if len(nested) > 0 {
				p.parsePointTables(nested, unitID, articleNum, paragraphNum, depth+1, amendment)
				p.emitContinuations(contentCell, unitID, articleNum, paragraphNum, depth, amendment)
			}

			p.emitBareTail(contentCell, unitID, articleNum, paragraphNum, depth, amendment)
			p.emitDivContinuations(contentCell, unitID, articleNum, paragraphNum, depth, amendment)
		})
	}
}

// emitContinuations captures prose paragraphs that follow a nested table in
// the same content cell: text after the sub-list, still belonging to the
// point.
func (p *Parser) emitContinuations(contentCell *goquery.Selection, unitID, articleNum, paragraphNum string, depth int, amendment bool) {
	contIdx := 0
	firstPSeen := false
	kind, _ := kindForDepth(depth + 1)
	contentCell.ChildrenFiltered("p").Each(func(_ int, para *goquery.Selection) {
		if para.HasClass("oj-note") {
			return
		}
		if !firstPSeen {
			firstPSeen = true
			return
		}
		t := cleanText(para)
		if len(strings.TrimSpace(t)) < 3 {
			return
		}
		contIdx++
		p.addUnit(&unit.Unit{
			ID:              unitID + ".cont-" + strconv.Itoa(contIdx),
			Type:            kind,
			Text:            normalizeText(t),
			ParentID:        unitID,
			SourceFile:      p.sourceFile,
			ArticleNumber:   articleNum,
			ParagraphNumber: paragraphNum,
			IsAmendmentText: amendment,
		})
	})
}

// emitBareTail captures text nodes left in the content cell once every
// element is removed.
func (p *Parser) emitBareTail(contentCell *goquery.Selection, unitID, articleNum, paragraphNum string, depth int, amendment bool) {
	clone := contentCell.Clone()
	removeNoteTags(clone)
	clone.Find("p, figure, table, div").Remove()
	bare := textOf(clone)
	if len(strings.TrimSpace(bare)) < 10 {
		return
	}
	kind, _ := kindForDepth(depth + 1)
	p.addUnit(&unit.Unit{
		ID:              unitID + ".bare-1",
		Type:            kind,
		Text:            normalizeText(bare),
		ParentID:        unitID,
		SourceFile:      p.sourceFile,
		ArticleNumber:   articleNum,
		ParagraphNumber: paragraphNum,
		IsAmendmentText: amendment,
	})
}

// emitDivContinuations captures prose wrapped in plain divs inside the
// content cell (quoted article bodies inside amendments, mostly).
func (p *Parser) emitDivContinuations(contentCell *goquery.Selection, unitID, articleNum, paragraphNum string, depth int, amendment bool) {
	divIdx := 0
	kind, _ := kindForDepth(depth + 1)
	contentCell.ChildrenFiltered("div").Each(func(_ int, div *goquery.Selection) {
		div.ChildrenFiltered("p").Each(func(_ int, para *goquery.Selection) {
			if para.HasClass("oj-ti-art") || para.HasClass("oj-sti-art") || para.HasClass("oj-doc-ti") {
				return
			}
			t := cleanText(para)
			if len(strings.TrimSpace(t)) < 10 {
				return
			}
			divIdx++
			p.addUnit(&unit.Unit{
				ID:              unitID + ".div-" + strconv.Itoa(divIdx),
				Type:            kind,
				Text:            normalizeText(t),
				ParentID:        unitID,
				SourceFile:      p.sourceFile,
				ArticleNumber:   articleNum,
				ParagraphNumber: paragraphNum,
				IsAmendmentText: amendment,
			})
		})
	})
}
