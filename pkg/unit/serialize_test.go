package unit

import (
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	result := &ParseResult{
		Units: []*Unit{
			{ID: "art-1", Type: KindArticle, ArticleNumber: "1", Text: "Subject matter"},
			{ID: "art-1.par-1", Type: KindParagraph, ParentID: "art-1", Text: "This Regulation lays down rules."},
		},
		Metadata: &DocumentMetadata{
			Title:         "Regulation (EU) 2016/679",
			TotalUnits:    2,
			TotalArticles: 1,
		},
	}

	data, err := EncodeDocument(result)
	if err != nil {
		t.Fatalf("EncodeDocument() error: %v", err)
	}
	if !strings.Contains(string(data), `"document_metadata"`) || !strings.Contains(string(data), `"units"`) {
		t.Fatalf("envelope missing top-level keys: %s", data)
	}

	doc, err := DecodeDocument(data)
	if err != nil {
		t.Fatalf("DecodeDocument() error: %v", err)
	}
	if len(doc.Units) != 2 {
		t.Fatalf("decoded %d units, want 2", len(doc.Units))
	}
	if doc.Units[1].ParentID != "art-1" {
		t.Errorf("decoded parent_id = %q, want art-1", doc.Units[1].ParentID)
	}
	if doc.DocumentMetadata == nil || doc.DocumentMetadata.Title != "Regulation (EU) 2016/679" {
		t.Errorf("decoded metadata = %+v", doc.DocumentMetadata)
	}
}

func TestEncodeDocumentNilResult(t *testing.T) {
	if _, err := EncodeDocument(nil); err == nil {
		t.Error("EncodeDocument(nil) error = nil, want error")
	}
}

func TestDecodeDocumentRejectsBadInput(t *testing.T) {
	cases := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name:    "empty input",
			data:    "",
			wantErr: "empty document",
		},
		{
			name:    "legacy flat array",
			data:    `[{"id": "art-1", "type": "article"}]`,
			wantErr: "legacy flat-array",
		},
		{
			name:    "legacy flat array with leading whitespace",
			data:    "\n  [{\"id\": \"art-1\"}]",
			wantErr: "legacy flat-array",
		},
		{
			name:    "unknown top-level key",
			data:    `{"document_metadata": null, "units": [], "extra": 1}`,
			wantErr: "failed to decode",
		},
		{
			name:    "missing units",
			data:    `{"document_metadata": {"total_units": 0}}`,
			wantErr: "missing units",
		},
		{
			name:    "malformed json",
			data:    `{"units": [`,
			wantErr: "failed to decode",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeDocument([]byte(tc.data))
			if err == nil {
				t.Fatal("DecodeDocument() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tc.wantErr)
			}
		})
	}
}

func TestDecodeDocumentAcceptsEmptyUnits(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"document_metadata": null, "units": []}`))
	if err != nil {
		t.Fatalf("DecodeDocument() error: %v", err)
	}
	if len(doc.Units) != 0 {
		t.Errorf("decoded %d units, want 0", len(doc.Units))
	}
}
