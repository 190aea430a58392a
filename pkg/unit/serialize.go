package unit

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is the output envelope: exactly two top-level keys.
type Document struct {
	DocumentMetadata *DocumentMetadata `json:"document_metadata"`
	Units            []*Unit           `json:"units"`
}

// EncodeDocument serializes a parse result into the two-key envelope.
func EncodeDocument(result *ParseResult) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("parse result is nil")
	}
	doc := Document{
		DocumentMetadata: result.Metadata,
		Units:            result.Units,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// DecodeDocument parses a previously emitted document envelope. Legacy
// flat-array payloads (a bare units list without document_metadata) are
// rejected rather than silently accepted.
func DecodeDocument(data []byte) (*Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		return nil, fmt.Errorf("legacy flat-array document shape is not supported; expected {document_metadata, units}")
	}

	var doc Document
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if doc.Units == nil {
		return nil, fmt.Errorf("document is missing units")
	}
	return &doc, nil
}
