package citation

import (
	"reflect"
	"testing"

	"github.com/coolbeans/lexunit/pkg/unit"
)

// resolverArena builds a small document tree shared by the resolver tests.
func resolverArena() *unit.Arena {
	arena := unit.NewArena()
	add := func(u *unit.Unit) { arena.Add(u) }

	add(&unit.Unit{ID: "art-4", Type: unit.KindArticle, ArticleNumber: "4"})
	add(&unit.Unit{ID: "art-4.par-3", Type: unit.KindParagraph, ParentID: "art-4", ArticleNumber: "4", ParagraphNumber: "3"})
	add(&unit.Unit{ID: "art-4.par-3.subpar-1", Type: unit.KindSubparagraph, ParentID: "art-4.par-3",
		ArticleNumber: "4", ParagraphNumber: "3", SubparagraphIndex: unit.IntPtr(1)})
	add(&unit.Unit{ID: "art-6", Type: unit.KindArticle, ArticleNumber: "6"})
	add(&unit.Unit{ID: "art-6.par-1", Type: unit.KindParagraph, ParentID: "art-6", ArticleNumber: "6", ParagraphNumber: "1"})
	add(&unit.Unit{ID: "art-6.par-1.pt-c", Type: unit.KindPoint, ParentID: "art-6.par-1",
		ArticleNumber: "6", ParagraphNumber: "1", PointLabel: "c"})
	add(&unit.Unit{ID: "art-7", Type: unit.KindArticle, ArticleNumber: "7"})
	add(&unit.Unit{ID: "art-7.par-1", Type: unit.KindParagraph, ParentID: "art-7", ArticleNumber: "7", ParagraphNumber: "1"})
	add(&unit.Unit{ID: "art-7.par-1.subpar-1", Type: unit.KindSubparagraph, ParentID: "art-7.par-1",
		ArticleNumber: "7", ParagraphNumber: "1", SubparagraphIndex: unit.IntPtr(1)})
	add(&unit.Unit{ID: "art-7.par-1.subpar-1.pt-a", Type: unit.KindPoint, ParentID: "art-7.par-1.subpar-1",
		ArticleNumber: "7", ParagraphNumber: "1", PointLabel: "a"})
	add(&unit.Unit{ID: "art-7.par-1.subpar-2", Type: unit.KindSubparagraph, ParentID: "art-7.par-1",
		ArticleNumber: "7", ParagraphNumber: "1", SubparagraphIndex: unit.IntPtr(2)})
	add(&unit.Unit{ID: "art-7.par-1.subpar-2.pt-a", Type: unit.KindPoint, ParentID: "art-7.par-1.subpar-2",
		ArticleNumber: "7", ParagraphNumber: "1", PointLabel: "a"})
	add(&unit.Unit{ID: "art-12", Type: unit.KindArticle, ArticleNumber: "12"})
	add(&unit.Unit{ID: "art-16", Type: unit.KindArticle, ArticleNumber: "16"})
	add(&unit.Unit{ID: "art-16.par-1", Type: unit.KindParagraph, ParentID: "art-16", ArticleNumber: "16", ParagraphNumber: "1"})
	add(&unit.Unit{ID: "art-16.par-1.subpar-1", Type: unit.KindSubparagraph, ParentID: "art-16.par-1",
		ArticleNumber: "16", ParagraphNumber: "1", SubparagraphIndex: unit.IntPtr(1)})
	add(&unit.Unit{ID: "art-16.par-1.subpar-1.pt-a", Type: unit.KindPoint, ParentID: "art-16.par-1.subpar-1",
		ArticleNumber: "16", ParagraphNumber: "1", PointLabel: "a"})
	add(&unit.Unit{ID: "art-83", Type: unit.KindArticle, ArticleNumber: "83"})
	add(&unit.Unit{ID: "art-83.par-2", Type: unit.KindParagraph, ParentID: "art-83", ArticleNumber: "83", ParagraphNumber: "2"})
	add(&unit.Unit{ID: "annex-III", Type: unit.KindAnnex, AnnexNumber: "III"})
	return arena
}

// resolveText runs extraction plus resolution for a single unit.
func resolveText(arena *unit.Arena, u *unit.Unit) []unit.Citation {
	u.Citations = Extract(u.Text)
	NewResolver(arena).Resolve([]*unit.Unit{u})
	return u.Citations
}

func TestResolveThisArticle(t *testing.T) {
	arena := resolverArena()
	u := &unit.Unit{ID: "art-12.par-1", ArticleNumber: "12", ParagraphNumber: "1",
		Text: "the information referred to in this Article shall be provided free of charge."}
	cits := resolveText(arena, u)
	if len(cits) != 1 {
		t.Fatalf("got %d citations: %+v", len(cits), cits)
	}
	if cits[0].TargetNodeID != "art-12" {
		t.Errorf("TargetNodeID = %q, want art-12", cits[0].TargetNodeID)
	}
}

func TestResolveThisParagraph(t *testing.T) {
	arena := resolverArena()
	u := &unit.Unit{ID: "art-6.par-1.subpar-2", ArticleNumber: "6", ParagraphNumber: "1",
		Text: "point (f) of this paragraph shall not apply to processing by public authorities."}
	cits := resolveText(arena, u)
	// "point (f) of ... paragraph" binds through the point-first matcher; the
	// resolver anchors it to the owning paragraph.
	if len(cits) == 0 {
		t.Fatal("no citations extracted")
	}
	found := false
	for _, c := range cits {
		if c.Point == "f" && c.Paragraph != nil && *c.Paragraph == 1 && c.ArticleLabel == "6" {
			found = true
		}
	}
	if !found {
		t.Errorf("no anchored point citation in %+v", cits)
	}
}

func TestResolveThisRegulationHasNoTarget(t *testing.T) {
	arena := resolverArena()
	u := &unit.Unit{ID: "art-6", ArticleNumber: "6", Text: "processing under this Regulation shall be lawful."}
	cits := resolveText(arena, u)
	if len(cits) != 1 {
		t.Fatalf("got %d citations: %+v", len(cits), cits)
	}
	if cits[0].TargetNodeID != "" {
		t.Errorf("whole-document reference received target %q", cits[0].TargetNodeID)
	}
}

func TestResolveParagraphFromOwningArticle(t *testing.T) {
	arena := resolverArena()
	u := &unit.Unit{ID: "art-83.par-4", ArticleNumber: "83", ParagraphNumber: "4",
		Text: "in accordance with paragraph 2, fines shall be effective."}
	cits := resolveText(arena, u)
	if len(cits) != 1 {
		t.Fatalf("got %d citations: %+v", len(cits), cits)
	}
	c := cits[0]
	if c.ArticleLabel != "83" {
		t.Errorf("ArticleLabel = %q, want 83 (from owning unit)", c.ArticleLabel)
	}
	if c.TargetNodeID != "art-83.par-2" {
		t.Errorf("TargetNodeID = %q, want art-83.par-2", c.TargetNodeID)
	}
}

func TestResolveStandalonePointWithClauseAnchor(t *testing.T) {
	arena := resolverArena()
	u := &unit.Unit{ID: "art-9.par-2", ArticleNumber: "9", ParagraphNumber: "2",
		Text: "where paragraph 1 applies, the safeguards in point (c) shall be recorded."}
	cits := resolveText(arena, u)
	if len(cits) != 2 {
		t.Fatalf("got %d citations: %+v", len(cits), cits)
	}
	pt := cits[1]
	if pt.Point != "c" {
		t.Fatalf("cits[1] = %+v, want bare point (c)", pt)
	}
	if pt.ArticleLabel != "9" || pt.Paragraph == nil || *pt.Paragraph != 1 {
		t.Errorf("point not anchored to the clause's paragraph citation: %+v", pt)
	}
}

func TestResolveStandalonePointSemicolonBlocksAnchor(t *testing.T) {
	arena := resolverArena()
	u := &unit.Unit{ID: "art-6.par-1", ArticleNumber: "6", ParagraphNumber: "1",
		Text: "paragraph 3 applies; the conditions in point (c) must still be met."}
	cits := resolveText(arena, u)
	if len(cits) != 2 {
		t.Fatalf("got %d citations: %+v", len(cits), cits)
	}
	pt := cits[1]
	if pt.Point != "c" {
		t.Fatalf("cits[1] = %+v", pt)
	}
	// The semicolon severs the clause, so the point anchors to the owning
	// unit's own position instead of paragraph 3.
	if pt.Paragraph == nil || *pt.Paragraph != 1 || pt.ArticleLabel != "6" {
		t.Errorf("point = %+v, want unit position art 6(1)", pt)
	}
	if pt.TargetNodeID != "art-6.par-1.pt-c" {
		t.Errorf("TargetNodeID = %q", pt.TargetNodeID)
	}
}

func TestResolveStructuralSubparagraphPoint(t *testing.T) {
	arena := resolverArena()
	u := arena.Get("art-16.par-1.subpar-1")
	u.Text = "taking into account the purposes, point (a) shall apply."
	cits := resolveText(arena, u)
	if len(cits) != 1 {
		t.Fatalf("got %d citations: %+v", len(cits), cits)
	}
	c := cits[0]
	if c.SubparagraphIndex == nil || *c.SubparagraphIndex != 1 {
		t.Errorf("SubparagraphIndex = %v, want 1 (from enclosing structure)", c.SubparagraphIndex)
	}
	if c.TargetNodeID != "art-16.par-1.subpar-1.pt-a" {
		t.Errorf("TargetNodeID = %q, want art-16.par-1.subpar-1.pt-a", c.TargetNodeID)
	}
}

func TestResolveStructuralPointTargetStable(t *testing.T) {
	arena := resolverArena()
	u := arena.Get("art-7.par-1.subpar-2")
	u.Text = "the conditions in point (a) shall be documented."
	u.Citations = Extract(u.Text)
	resolver := NewResolver(arena)

	resolver.Resolve([]*unit.Unit{u})
	if got := u.Citations[0].TargetNodeID; got != "art-7.par-1.subpar-2.pt-a" {
		t.Fatalf("TargetNodeID = %q, want art-7.par-1.subpar-2.pt-a", got)
	}
	if ord := u.Citations[0].SubparagraphOrdinal; ord != "" {
		t.Errorf("SubparagraphOrdinal = %q, want empty for a tree-derived coordinate", ord)
	}

	// Re-resolving must not drift the target to a sibling subparagraph.
	resolver.Resolve([]*unit.Unit{u})
	if got := u.Citations[0].TargetNodeID; got != "art-7.par-1.subpar-2.pt-a" {
		t.Errorf("TargetNodeID after second pass = %q, want art-7.par-1.subpar-2.pt-a", got)
	}
}

func TestResolveSubparagraphOrdinalShift(t *testing.T) {
	arena := resolverArena()
	cases := []struct {
		name       string
		text       string
		wantTarget string
	}{
		{
			// The first subparagraph is the paragraph node itself.
			name:       "first subparagraph",
			text:       "the first subparagraph of paragraph 3 shall not apply.",
			wantTarget: "art-4.par-3",
		},
		{
			// Later ordinals shift down one: the second textual subparagraph
			// is the first subpar child node.
			name:       "second subparagraph",
			text:       "the second subparagraph of paragraph 3 shall not apply.",
			wantTarget: "art-4.par-3.subpar-1",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			u := &unit.Unit{ID: "art-4.par-5", ArticleNumber: "4", ParagraphNumber: "5", Text: tc.text}
			cits := resolveText(arena, u)
			if len(cits) != 1 {
				t.Fatalf("got %d citations: %+v", len(cits), cits)
			}
			if cits[0].TargetNodeID != tc.wantTarget {
				t.Errorf("TargetNodeID = %q, want %q", cits[0].TargetNodeID, tc.wantTarget)
			}
		})
	}
}

func TestResolveThatActUpgrade(t *testing.T) {
	arena := resolverArena()
	u := &unit.Unit{ID: "recital-10",
		Text: "Regulation (EU) No 1093/2010 established the Authority; the procedure in Article 40 of that Regulation shall apply."}
	cits := resolveText(arena, u)
	if len(cits) != 2 {
		t.Fatalf("got %d citations: %+v", len(cits), cits)
	}
	upgraded := cits[1]
	if upgraded.CitationType != unit.CitationEULegislation {
		t.Fatalf("contextual citation not upgraded: %+v", upgraded)
	}
	if upgraded.ActType != unit.ActRegulation || upgraded.ActNumber != "1093/2010" {
		t.Errorf("act = %q %q", upgraded.ActType, upgraded.ActNumber)
	}
	if upgraded.CELEX != "32010R1093" {
		t.Errorf("CELEX = %q", upgraded.CELEX)
	}
	if upgraded.ArticleLabel != "40" {
		t.Errorf("ArticleLabel = %q", upgraded.ArticleLabel)
	}
	if upgraded.TargetNodeID != "" {
		t.Errorf("external citation received target %q", upgraded.TargetNodeID)
	}
}

func TestResolveThatActAmbiguousStaysInternal(t *testing.T) {
	arena := resolverArena()
	u := &unit.Unit{ID: "recital-11",
		Text: "Regulations (EU) No 1093/2010 and (EU) No 1094/2010 apply; that Regulation remains in force."}
	cits := resolveText(arena, u)
	if len(cits) != 3 {
		t.Fatalf("got %d citations: %+v", len(cits), cits)
	}
	last := cits[2]
	if last.CitationType != unit.CitationInternal {
		t.Errorf("ambiguous antecedent was upgraded: %+v", last)
	}
	if last.ActNumber != "" {
		t.Errorf("ActNumber = %q, want empty", last.ActNumber)
	}
}

func TestResolveThatActNoAntecedent(t *testing.T) {
	arena := resolverArena()
	u := &unit.Unit{ID: "recital-12", Text: "that Regulation shall continue to apply."}
	cits := resolveText(arena, u)
	if len(cits) != 1 {
		t.Fatalf("got %d citations: %+v", len(cits), cits)
	}
	if cits[0].CitationType != unit.CitationInternal || cits[0].ActNumber != "" {
		t.Errorf("citation = %+v", cits[0])
	}
}

func TestResolveAnnexTarget(t *testing.T) {
	arena := resolverArena()
	u := &unit.Unit{ID: "art-6", ArticleNumber: "6", Text: "the list in Annex III shall be kept up to date."}
	cits := resolveText(arena, u)
	if len(cits) != 1 {
		t.Fatalf("got %d citations: %+v", len(cits), cits)
	}
	if cits[0].TargetNodeID != "annex-III" {
		t.Errorf("TargetNodeID = %q, want annex-III", cits[0].TargetNodeID)
	}
}

func TestResolveMissingNodeGetsNoTarget(t *testing.T) {
	arena := resolverArena()
	u := &unit.Unit{ID: "art-6", ArticleNumber: "6", Text: "subject to Article 99, this enters into force."}
	cits := resolveText(arena, u)
	if len(cits) == 0 {
		t.Fatal("no citations extracted")
	}
	if cits[0].ArticleLabel != "99" {
		t.Fatalf("cits[0] = %+v", cits[0])
	}
	if cits[0].TargetNodeID != "" {
		t.Errorf("nonexistent article received target %q", cits[0].TargetNodeID)
	}
}

func TestResolveIdempotent(t *testing.T) {
	arena := resolverArena()
	u := &unit.Unit{ID: "art-9.par-2", ArticleNumber: "9", ParagraphNumber: "2",
		Text: "where paragraph 1 applies, the safeguards in point (c) shall be recorded by the first subparagraph of paragraph 3."}
	u.Citations = Extract(u.Text)
	resolver := NewResolver(arena)
	resolver.Resolve([]*unit.Unit{u})

	first := make([]unit.Citation, len(u.Citations))
	copy(first, u.Citations)

	resolver.Resolve([]*unit.Unit{u})
	if !reflect.DeepEqual(first, u.Citations) {
		t.Errorf("resolution not idempotent:\nfirst:  %+v\nsecond: %+v", first, u.Citations)
	}
}
