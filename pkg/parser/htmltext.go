package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	wsRe          = regexp.MustCompile(`\s+`)
	leadingNumRe  = regexp.MustCompile(`(?s)^(\d+)\.\s+(.*)$`)
	superNoteRe   = regexp.MustCompile(`^\*?\d+$`)
	colWidthPctRe = regexp.MustCompile(`(\d+)\s*%`)
)

// normalizeText collapses runs of whitespace and trims.
func normalizeText(s string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}

// stripLeadingLabel splits "3. The controller shall..." into the body text
// and the paragraph number.
func stripLeadingLabel(text string) (string, string) {
	if m := leadingNumRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[2]), m[1]
	}
	return text, ""
}

// textOf extracts text content with single-space separators, the way legal
// text is read: every text node trimmed and joined.
func textOf(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteByte(' ')
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return normalizeText(b.String())
}

// removeNoteTags strips footnote anchors and superscript note markers in
// place. Callers pass a clone so the source document stays untouched.
func removeNoteTags(sel *goquery.Selection) {
	sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := a.AttrOr("href", "")
		if strings.Contains(href, "#ntr") || strings.Contains(href, "#ntc") {
			a.Remove()
			return
		}
		if strings.Contains(a.AttrOr("class", ""), "note") {
			a.Remove()
		}
	})
	sel.Find("span.oj-note-tag").Remove()
	sel.Find("span.oj-super").Each(func(_ int, span *goquery.Selection) {
		if superNoteRe.MatchString(strings.TrimSpace(span.Text())) {
			span.Remove()
		}
	})
}

// cleanText clones the selection, drops footnote markup, and extracts text.
func cleanText(sel *goquery.Selection) string {
	clone := sel.Clone()
	removeNoteTags(clone)
	return textOf(clone)
}

// cellText extracts the readable text of a table cell. With excludeNested
// set, only content before the first nested table counts, so a point's own
// text is not polluted by its sub-list.
func cellText(cell *goquery.Selection, excludeNested bool) string {
	clone := cell.Clone()
	removeNoteTags(clone)

	if excludeNested {
		hasNested := clone.ChildrenFiltered("table").Length() > 0 ||
			clone.ChildrenFiltered("div").Length() > 0
		var texts []string
		clone.Contents().EachWithBreak(func(_ int, child *goquery.Selection) bool {
			node := child.Get(0)
			if node.Type == html.TextNode {
				if t := strings.TrimSpace(node.Data); t != "" {
					texts = append(texts, t)
				}
				return true
			}
			if node.Type != html.ElementNode {
				return true
			}
			switch goquery.NodeName(child) {
			case "table":
				return false
			case "p":
				if child.HasClass("oj-note") {
					return true
				}
				if t := textOf(child); t != "" {
					texts = append(texts, t)
					if hasNested {
						return false
					}
				}
			}
			return true
		})
		if len(texts) > 0 {
			return normalizeText(strings.Join(texts, " "))
		}
		clone.Find("table").Remove()
		return textOf(clone)
	}

	paragraphs := clone.ChildrenFiltered("p")
	if paragraphs.Length() > 0 {
		var texts []string
		paragraphs.Each(func(_ int, p *goquery.Selection) {
			if t := textOf(p); t != "" {
				texts = append(texts, t)
			}
		})
		return normalizeText(strings.Join(texts, " "))
	}
	return textOf(clone)
}

// isListTable reports whether a table encodes a labelled list rather than
// tabular data: two columns, a narrow first column, and a short
// classifiable label in the first cell.
func isListTable(table *goquery.Selection) bool {
	cols := table.ChildrenFiltered("col")
	if cols.Length() == 0 {
		if colgroup := table.ChildrenFiltered("colgroup").First(); colgroup.Length() > 0 {
			cols = colgroup.ChildrenFiltered("col")
		}
	}
	hasCols := cols.Length() == 2

	if hasCols {
		width := cols.First().AttrOr("width", "")
		if m := colWidthPctRe.FindStringSubmatch(width); m != nil {
			if pct, err := strconv.Atoi(m[1]); err == nil && pct > 15 {
				return false
			}
		}
	}

	firstRow := table.ChildrenFiltered("tbody").First().ChildrenFiltered("tr").First()
	if firstRow.Length() == 0 {
		firstRow = table.ChildrenFiltered("tr").First()
	}
	if firstRow.Length() == 0 {
		return false
	}

	tds := firstRow.ChildrenFiltered("td")
	if !hasCols && tds.Length() != 2 {
		return false
	}
	firstTd := tds.First()
	if firstTd.Length() == 0 {
		return false
	}
	text := ""
	if p := firstTd.ChildrenFiltered("p").First(); p.Length() > 0 {
		text = strings.TrimSpace(p.Text())
	} else {
		text = strings.TrimSpace(firstTd.Text())
	}
	if len(text) <= 15 {
		if _, labelType, _ := NormalizeLabel(text); labelType != LabelUnknown {
			return true
		}
	}
	return false
}
