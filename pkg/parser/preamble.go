package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/coolbeans/lexunit/pkg/unit"
)

var (
	teaRelevanceRe = regexp.MustCompile(`(?i)^\(\s*Text with .* relevance\s*\)$`)
	recitalLabelRe = regexp.MustCompile(`\((\d+)\)`)
)

// parseDocumentTitle emits the single document-title unit from the masthead
// block, skipping the "(Text with EEA relevance)" marker.
func (p *Parser) parseDocumentTitle() {
	titleDiv := p.doc.Find("div.eli-main-title").First()
	if titleDiv.Length() == 0 {
		titleDiv = p.doc.Find(`div[id^="tit_"]`).First()
	}
	if titleDiv.Length() == 0 {
		return
	}

	paragraphs := titleDiv.Find("p.oj-doc-ti")
	if paragraphs.Length() == 0 {
		paragraphs = titleDiv.Find("p")
	}

	var parts []string
	paragraphs.Each(func(_ int, sel *goquery.Selection) {
		text := cleanText(sel)
		if text == "" || teaRelevanceRe.MatchString(text) {
			return
		}
		parts = append(parts, text)
	})
	if len(parts) == 0 {
		return
	}

	p.addUnit(&unit.Unit{
		ID:         "document-title",
		Type:       unit.KindDocumentTitle,
		Text:       strings.Join(parts, " "),
		SourceID:   titleDiv.AttrOr("id", ""),
		SourceFile: p.sourceFile,
	})
}

// parseRecitals walks the rct_ divs. Recitals arrive either as list-tables
// (label cell "(3)" next to the content cell) or as bare oj-normal
// paragraphs whose number is taken from the div id.
func (p *Parser) parseRecitals() {
	p.doc.Find(`div.eli-subdivision[id^="rct_"]`).Each(func(_ int, div *goquery.Selection) {
		sourceID := div.AttrOr("id", "")
		recitalNum := strings.TrimPrefix(sourceID, "rct_")

		table := div.Find("table").First()
		if table.Length() > 0 && isListTable(table) {
			table.Find("tr").Each(func(_ int, row *goquery.Selection) {
				cells := row.Find("td")
				if cells.Length() < 2 {
					return
				}
				labelText := cellText(cells.Eq(0), false)
				contentText := cellText(cells.Eq(1), false)

				if m := recitalLabelRe.FindStringSubmatch(labelText); m != nil {
					recitalNum = m[1]
				}
				p.addUnit(&unit.Unit{
					ID:            "recital-" + recitalNum,
					Type:          unit.KindRecital,
					Ref:           labelText,
					Text:          normalizeText(contentText),
					SourceID:      sourceID,
					SourceFile:    p.sourceFile,
					RecitalNumber: recitalNum,
				})
			})
			return
		}

		var parts []string
		div.Find("p.oj-normal").Each(func(_ int, sel *goquery.Selection) {
			text := cleanText(sel)
			text, _ = stripLeadingLabel(text)
			if text != "" {
				parts = append(parts, text)
			}
		})
		if len(parts) == 0 {
			return
		}
		p.addUnit(&unit.Unit{
			ID:            "recital-" + recitalNum,
			Type:          unit.KindRecital,
			Ref:           "(" + recitalNum + ")",
			Text:          normalizeText(strings.Join(parts, " ")),
			SourceID:      sourceID,
			SourceFile:    p.sourceFile,
			RecitalNumber: recitalNum,
		})
	})
}
