package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/coolbeans/lexunit/pkg/unit"
)

var (
	amendingHeadingRe = regexp.MustCompile(`(?i)Amendments?\s+to\b|Amendment\s+of\b`)
	parSourceNumRe    = regexp.MustCompile(`\.(\d+)`)
)

// parseArticlesOJ walks every art_ subdivision of an Official Journal page.
// Amending articles get the reduced flat walk; normal articles split into
// numbered paragraph divs or, failing that, direct article content.
func (p *Parser) parseArticlesOJ() {
	p.doc.Find(`div.eli-subdivision[id^="art_"]`).Each(func(_ int, div *goquery.Selection) {
		sourceID := div.AttrOr("id", "")
		articleNum := strings.TrimPrefix(sourceID, "art_")

		var heading string
		if sub := div.Find("div.eli-title p.oj-sti-art").First(); sub.Length() > 0 {
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

		amending := amendingHeadingRe.MatchString(heading)
		if !amending {
			if first := div.Find("p.oj-normal").First(); first.Length() > 0 {
				ft := strings.TrimSpace(first.Text())
				if len(ft) > 200 {
					ft = ft[:200]
				}
				if strings.Contains(ft, "is amended as follows") ||
					strings.Contains(ft, "are amended as follows") {
					amending = true
				}
			}
		}
		if amending {
			p.parseAmendingArticle(div, articleID, articleNum)
			return
		}

		var paragraphDivs []*goquery.Selection
		div.ChildrenFiltered("div").Each(func(_ int, child *goquery.Selection) {
			if paragraphDivIDRe.MatchString(child.AttrOr("id", "")) {
				paragraphDivs = append(paragraphDivs, child)
			}
		})

		if len(paragraphDivs) > 0 {
			p.parseParagraphs(paragraphDivs, articleID, articleNum)
		} else {
			p.parseArticleDirect(div, articleID, articleNum)
		}
	})
}

// bodyParagraph reports whether a <p> belongs to the running legal text.
func bodyParagraph(sel *goquery.Selection) bool {
	return sel.HasClass("oj-normal") || sel.HasClass("oj-ti-tbl") || sel.HasClass("oj-note")
}

// parFlow accumulates the paragraph/subparagraph chain of one region:
// the first body <p> founds the paragraph unit, later ones become its
// subparagraphs, and tables waiting for a parent are flushed as points.
type parFlow struct {
	p           *Parser
	articleID   string
	articleNum  string
	parSourceID string
	// index is the 1-based position of this paragraph region; 0 disables
	// the positional fallback (direct content always uses par-1).
	index  int
	direct bool

	parID         string
	parNum        string
	currentParent string
	subparIdx     int
	pending       []*goquery.Selection
}

func (f *parFlow) flushTables() {
	if len(f.pending) > 0 && f.currentParent != "" {
		f.p.parsePointTables(f.pending, f.currentParent, f.articleNum, f.parNum, 0, false)
		f.pending = nil
	}
}

// addBody consumes one body paragraph's text, founding the paragraph unit
// on first use. sourceID is the element's own id, if any.
func (f *parFlow) addBody(text, sourceID string) {
	if f.parID == "" {
		var ref string
		var parNum string
		var parIndex *int
		if f.direct {
			f.parID = f.articleID + ".par-1"
			parIndex = unit.IntPtr(1)
		} else {
			body, num := stripLeadingLabel(text)
			text = body
			parNum = num
			if parNum != "" {
				f.parID = f.articleID + ".par-" + parNum
				ref = parNum + "."
			} else {
				f.parID = f.articleID + ".par-" + strconv.Itoa(f.index)
				parIndex = unit.IntPtr(f.index)
			}
			sourceID = f.parSourceID
		}
		f.parNum = parNum
		f.parID = f.p.addUnit(&unit.Unit{
			ID:              f.parID,
			Type:            unit.KindParagraph,
			Ref:             ref,
			Text:            normalizeText(text),
			ParentID:        f.articleID,
			SourceID:        sourceID,
			SourceFile:      f.p.sourceFile,
			ArticleNumber:   f.articleNum,
			ParagraphNumber: parNum,
			ParagraphIndex:  parIndex,
		})
		f.currentParent = f.parID
		return
	}

	f.subparIdx++
	id := f.p.addUnit(&unit.Unit{
		ID:              f.parID + ".subpar-" + strconv.Itoa(f.subparIdx),
		Type:            unit.KindSubparagraph,
		Text:            normalizeText(text),
		ParentID:        f.parID,
		SourceID:        sourceID,
		SourceFile:      f.p.sourceFile,
		ArticleNumber:   f.articleNum,
		ParagraphNumber: f.parNum,
	})
	f.currentParent = id
}

// consume handles one child node of the paragraph region.
func (f *parFlow) consume(child *goquery.Selection) {
	node := child.Get(0)
	if node.Type == html.TextNode {
		// Bare text between elements still counts once a paragraph exists.
		if f.parID == "" || f.direct {
			return
		}
		bare := strings.TrimSpace(node.Data)
		if len(bare) < 10 {
			return
		}
		f.subparIdx++
		id := f.p.addUnit(&unit.Unit{
			ID:              f.parID + ".subpar-" + strconv.Itoa(f.subparIdx),
			Type:            unit.KindSubparagraph,
			Text:            normalizeText(bare),
			ParentID:        f.parID,
			SourceFile:      f.p.sourceFile,
			ArticleNumber:   f.articleNum,
			ParagraphNumber: f.parNum,
		})
		f.currentParent = id
		return
	}
	if node.Type != html.ElementNode {
		return
	}

	switch goquery.NodeName(child) {
	case "p":
		if child.HasClass("oj-ti-art") || child.HasClass("oj-sti-art") {
			return
		}
		if !bodyParagraph(child) {
			return
		}
		f.flushTables()
		f.addBody(cleanText(child), child.AttrOr("id", ""))

	case "table":
		f.pending = append(f.pending, child)

	case "div":
		if child.AttrOr("id", "") != "" ||
			child.HasClass("eli-subdivision") || child.HasClass("eli-title") {
			return
		}
		child.ChildrenFiltered("p.oj-normal").Each(func(_ int, inner *goquery.Selection) {
			f.flushTables()
			f.addBody(cleanText(inner), inner.AttrOr("id", ""))
		})
	}
}

// parseParagraphs handles an article whose body is split into numbered
// NNN.NNN paragraph divs.
func (p *Parser) parseParagraphs(paragraphDivs []*goquery.Selection, articleID, articleNum string) {
	for idx, parDiv := range paragraphDivs {
		flow := &parFlow{
			p:           p,
			articleID:   articleID,
			articleNum:  articleNum,
			parSourceID: parDiv.AttrOr("id", ""),
			index:       idx + 1,
		}
		parDiv.Contents().Each(func(_ int, child *goquery.Selection) {
			flow.consume(child)
		})

		if len(flow.pending) > 0 {
			if flow.currentParent == "" {
				// Table-only paragraph: derive the number from the div id.
				parNum := strconv.Itoa(idx + 1)
				if m := parSourceNumRe.FindStringSubmatch(flow.parSourceID); m != nil {
					if n, err := strconv.Atoi(m[1]); err == nil {
						parNum = strconv.Itoa(n)
					}
				}
				flow.parNum = parNum
				flow.parID = p.addUnit(&unit.Unit{
					ID:              articleID + ".par-" + parNum,
					Type:            unit.KindParagraph,
					Ref:             parNum + ".",
					ParentID:        articleID,
					SourceID:        flow.parSourceID,
					SourceFile:      p.sourceFile,
					ArticleNumber:   articleNum,
					ParagraphNumber: parNum,
				})
				flow.currentParent = flow.parID
			}
			p.parsePointTables(flow.pending, flow.currentParent, articleNum, flow.parNum, 0, false)
		}
	}
}

// parseArticleDirect handles an article without paragraph divs: its body
// paragraphs hang straight off the article element.
func (p *Parser) parseArticleDirect(articleDiv *goquery.Selection, articleID, articleNum string) {
	flow := &parFlow{
		p:          p,
		articleID:  articleID,
		articleNum: articleNum,
		direct:     true,
	}
	articleDiv.Contents().Each(func(_ int, child *goquery.Selection) {
		flow.consume(child)
	})
	flow.flushTables()
}

// parseAmendingArticle applies the reduced walk for articles that quote
// amendments to another act: all prose collapses into one synthetic
// paragraph with flat subparagraph children, dedup-ed by normalized text so
// repeated quoted fragments appear once.
func (p *Parser) parseAmendingArticle(articleDiv *goquery.Selection, articleID, articleNum string) {
	parID := articleID + ".par-1"
	parCreated := false
	subparIdx := 0
	firstP := true
	seen := map[string]bool{}

	ensureParagraph := func() {
		if parCreated {
			return
		}
		parID = p.addUnit(&unit.Unit{
			ID:              parID,
			Type:            unit.KindParagraph,
			ParentID:        articleID,
			SourceFile:      p.sourceFile,
			ArticleNumber:   articleNum,
			IsAmendmentText: true,
		})
		parCreated = true
	}

	var walk func(container *goquery.Selection)
	walk = func(container *goquery.Selection) {
		container.Contents().Each(func(_ int, child *goquery.Selection) {
			node := child.Get(0)
			if node.Type == html.TextNode {
				text := strings.TrimSpace(node.Data)
				if len(text) < 10 {
					return
				}
				text = normalizeText(text)
				if seen[text] {
					return
				}
				seen[text] = true
				ensureParagraph()
				subparIdx++
				p.addUnit(&unit.Unit{
					ID:              parID + ".subpar-" + strconv.Itoa(subparIdx),
					Type:            unit.KindSubparagraph,
					Text:            text,
					ParentID:        parID,
					SourceFile:      p.sourceFile,
					ArticleNumber:   articleNum,
					IsAmendmentText: true,
				})
				return
			}
			if node.Type != html.ElementNode {
				return
			}

			switch goquery.NodeName(child) {
			case "p":
				if child.HasClass("oj-note") || child.HasClass("oj-ti-art") ||
					child.HasClass("oj-sti-art") || child.HasClass("oj-doc-ti") {
					return
				}
				text := cleanText(child)
				if len(strings.TrimSpace(text)) < 3 {
					return
				}
				text, label := stripLeadingLabel(text)
				text = normalizeText(text)
				if seen[text] {
					return
				}
				seen[text] = true

				if firstP && !parCreated {
					var ref string
					if label != "" {
						ref = label + "."
					}
					parID = p.addUnit(&unit.Unit{
						ID:              parID,
						Type:            unit.KindParagraph,
						Ref:             ref,
						Text:            text,
						ParentID:        articleID,
						SourceFile:      p.sourceFile,
						ArticleNumber:   articleNum,
						IsAmendmentText: true,
					})
					parCreated = true
					firstP = false
					return
				}
				ensureParagraph()
				subparIdx++
				p.addUnit(&unit.Unit{
					ID:              parID + ".subpar-" + strconv.Itoa(subparIdx),
					Type:            unit.KindSubparagraph,
					Text:            text,
					ParentID:        parID,
					SourceFile:      p.sourceFile,
					ArticleNumber:   articleNum,
					IsAmendmentText: true,
				})
				firstP = false

			case "table":
				ensureParagraph()
				if isListTable(child) {
					p.parsePointTables([]*goquery.Selection{child}, parID, articleNum, "", 0, true)
				} else {
					p.extractNonListTable(child, parID, articleNum, "", true)
				}

			case "div":
				walk(child)

			case "figure":
				// Images carry no unit text.

			default:
				text := normalizeText(textOf(child))
				if len(text) < 10 || seen[text] {
					return
				}
				seen[text] = true
				ensureParagraph()
				subparIdx++
				p.addUnit(&unit.Unit{
					ID:              parID + ".unk-" + strconv.Itoa(subparIdx),
					Type:            unit.KindUnknown,
					Text:            text,
					ParentID:        parID,
					SourceFile:      p.sourceFile,
					ArticleNumber:   articleNum,
					IsAmendmentText: true,
				})
			}
		})
	}
	walk(articleDiv)
}
