// Package unit defines the data model shared by the parser, citation engine,
// and validation tooling: structural units, citations, validation reports,
// and the document-level output envelope.
package unit

// Kind is the structural kind of a parsed unit.
type Kind string

const (
	KindDocumentTitle Kind = "document_title"
	KindRecital       Kind = "recital"
	KindArticle       Kind = "article"
	KindParagraph     Kind = "paragraph"
	KindSubparagraph  Kind = "subparagraph"
	KindIntro         Kind = "intro"
	KindPoint         Kind = "point"
	KindSubpoint      Kind = "subpoint"
	KindSubsubpoint   Kind = "subsubpoint"
	KindAnnex         Kind = "annex"
	KindAnnexPart     Kind = "annex_part"
	KindAnnexItem     Kind = "annex_item"
	KindUnknown       Kind = "unknown_unit"
	// Deeper point nesting uses NestedKind(depth), e.g. "nested_3".
)

// NestedKind returns the generic kind for point nesting below subsubpoint.
func NestedKind(depth int) Kind {
	return Kind("nested_" + itoa(depth))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// CitationType distinguishes references inside the current document from
// references to other EU acts.
type CitationType string

const (
	CitationInternal      CitationType = "internal"
	CitationEULegislation CitationType = "eu_legislation"
)

// ActType is the normalized external act type for eu_legislation citations.
type ActType string

const (
	ActRegulation ActType = "regulation"
	ActDirective  ActType = "directive"
	ActDecision   ActType = "decision"
)

// TreatyCode identifies a primary-law reference.
type TreatyCode string

const (
	TreatyTFEU     TreatyCode = "TFEU"
	TreatyTEU      TreatyCode = "TEU"
	TreatyCharter  TreatyCode = "CHARTER"
	TreatyGeneric  TreatyCode = "TREATY_GENERIC"
	TreatyProtocol TreatyCode = "PROTOCOL"
)

// IntRange is an inclusive (start, end) interval over numeric labels.
type IntRange [2]int

// LabelRange is an inclusive (start, end) interval over point letters.
type LabelRange [2]string

// Citation is one reference mention extracted from a unit's text.
// SpanStart/SpanEnd are character offsets into the owning unit's Text
// (start inclusive, end exclusive); Text[SpanStart:SpanEnd] == RawText.
type Citation struct {
	RawText      string       `json:"raw_text"`
	CitationType CitationType `json:"citation_type"`
	SpanStart    int          `json:"span_start"`
	SpanEnd      int          `json:"span_end"`

	Article      *int    `json:"article,omitempty"`
	ArticleLabel string  `json:"article_label,omitempty"`
	Paragraph    *int    `json:"paragraph,omitempty"`
	Point        string  `json:"point,omitempty"`

	ArticleRange   *IntRange   `json:"article_range,omitempty"`
	ParagraphRange *IntRange   `json:"paragraph_range,omitempty"`
	PointRange     *LabelRange `json:"point_range,omitempty"`

	SubparagraphOrdinal string `json:"subparagraph_ordinal,omitempty"`
	SubparagraphIndex   *int   `json:"subparagraph_index,omitempty"`

	Chapter  string `json:"chapter,omitempty"`
	Section  string `json:"section,omitempty"`
	TitleRef string `json:"title_ref,omitempty"`

	Annex     string `json:"annex,omitempty"`
	AnnexPart string `json:"annex_part,omitempty"`

	TreatyCode TreatyCode `json:"treaty_code,omitempty"`
	// ProtocolNumber is the label of a treaty protocol ("21" for Protocol
	// No 21). It is not an article number.
	ProtocolNumber string `json:"protocol_number,omitempty"`

	// ConnectivePhrase is the lexical marker immediately preceding the span
	// (e.g. "referred to in"), kept for downstream disambiguation.
	ConnectivePhrase string `json:"connective_phrase,omitempty"`

	// TargetNodeID is set by the resolver only when the candidate id exists
	// in the current document's tree.
	TargetNodeID string `json:"target_node_id,omitempty"`

	ActType   ActType `json:"act_type,omitempty"`
	ActNumber string  `json:"act_number,omitempty"`
	ActYear   *int    `json:"act_year,omitempty"`
	CELEX     string  `json:"celex,omitempty"`
}

// Unit is one node of the parsed legal-document hierarchy.
type Unit struct {
	ID       string `json:"id"`
	Type     Kind   `json:"type"`
	Ref      string `json:"ref,omitempty"`
	Text     string `json:"text"`
	ParentID string `json:"parent_id,omitempty"`

	SourceID   string `json:"source_id"`
	SourceFile string `json:"source_file"`

	ArticleNumber   string `json:"article_number,omitempty"`
	ParagraphNumber string `json:"paragraph_number,omitempty"`
	// ParagraphIndex is the 1-based positional fallback when no explicit
	// paragraph number exists in the legal text.
	ParagraphIndex    *int     `json:"paragraph_index,omitempty"`
	SubparagraphIndex *int     `json:"subparagraph_index,omitempty"`
	PointLabel        string   `json:"point_label,omitempty"`
	SubpointLabel     string   `json:"subpoint_label,omitempty"`
	SubsubpointLabel  string   `json:"subsubpoint_label,omitempty"`
	ExtraLabels       []string `json:"extra_labels,omitempty"`

	Heading       string `json:"heading,omitempty"`
	AnnexNumber   string `json:"annex_number,omitempty"`
	AnnexPart     string `json:"annex_part,omitempty"`
	RecitalNumber string `json:"recital_number,omitempty"`

	// IsAmendmentText marks amendatory language; such units are excluded
	// from citation scanning.
	IsAmendmentText bool `json:"is_amendment_text,omitempty"`

	// Enrichment fields, computed only after the full tree exists.
	TargetPath     string `json:"target_path,omitempty"`
	ArticleHeading string `json:"article_heading,omitempty"`
	ChildrenCount  int    `json:"children_count"`
	IsLeaf         bool   `json:"is_leaf"`
	IsStem         bool   `json:"is_stem"`
	WordCount      int    `json:"word_count"`
	CharCount      int    `json:"char_count"`

	Citations []Citation `json:"citations,omitempty"`
}

// DocumentMetadata holds document-level aggregates computed from the final
// unit list.
type DocumentMetadata struct {
	Title             string   `json:"title,omitempty"`
	TotalUnits        int      `json:"total_units"`
	TotalArticles     int      `json:"total_articles"`
	TotalParagraphs   int      `json:"total_paragraphs"`
	TotalPoints       int      `json:"total_points"`
	TotalDefinitions  int      `json:"total_definitions"`
	HasAnnexes        bool     `json:"has_annexes"`
	AmendmentArticles []string `json:"amendment_articles"`
}

// SequenceGap records a hole in a numbered sequence (e.g. missing recitals).
type SequenceGap struct {
	Type    string `json:"type"`
	Missing []int  `json:"missing"`
}

// Orphan records a unit whose parent id does not resolve.
type Orphan struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id"`
}

// ValidationReport carries post-parse integrity findings. Findings are data,
// never fatal errors; callers decide pass/fail.
type ValidationReport struct {
	SourceFile     string         `json:"source_file"`
	CountsExpected map[string]int `json:"counts_expected"`
	CountsParsed   map[string]int `json:"counts_parsed"`
	SequenceGaps   []SequenceGap  `json:"sequence_gaps"`
	Orphans        []Orphan       `json:"orphans"`
	// OrderingViolations lists unit ids emitted out of source order.
	OrderingViolations []string `json:"ordering_violations,omitempty"`
}

// IsValid reports whether the parse passed every structural check.
func (r *ValidationReport) IsValid() bool {
	return len(r.SequenceGaps) == 0 && len(r.Orphans) == 0 && len(r.OrderingViolations) == 0
}

// ParseResult is the full outcome of parsing one source document.
type ParseResult struct {
	Units      []*Unit           `json:"units"`
	Metadata   *DocumentMetadata `json:"document_metadata"`
	Validation *ValidationReport `json:"-"`
	SourceFile string            `json:"-"`
}

// IntPtr returns a pointer to n. Convenience for optional numeric fields.
func IntPtr(n int) *int { return &n }
