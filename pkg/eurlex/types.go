// Package eurlex derives CELEX identifiers for EU legal acts referenced in
// citations.
package eurlex

// DocumentSector represents the CELEX sector code.
// See: https://eur-lex.europa.eu/content/tools/TableOfSectors/types_of_documents_in_eurlex.html
type DocumentSector string

const (
	SectorTreaties                 DocumentSector = "1"
	SectorInternationalAgreements  DocumentSector = "2"
	SectorLegislation              DocumentSector = "3"
	SectorComplementaryLegislation DocumentSector = "4"
	SectorPreparatoryActs          DocumentSector = "5"
	SectorCaseLaw                  DocumentSector = "6"
)

// DocumentTypeCode represents the CELEX document type indicator within a sector.
type DocumentTypeCode string

const (
	TypeRegulation DocumentTypeCode = "R"
	TypeDirective  DocumentTypeCode = "L"
	TypeDecision   DocumentTypeCode = "D"
)

// CELEXNumber is a structured representation of a CELEX identifier.
// Format: {Sector}{Year}{TypeCode}{PaddedNumber}
// Example: "32016R0679" = Sector 3, Year 2016, Regulation, Number 0679
type CELEXNumber struct {
	Sector   DocumentSector   `json:"sector"`
	Year     string           `json:"year"`
	TypeCode DocumentTypeCode `json:"type_code"`
	Number   string           `json:"number"`
}

// String returns the canonical CELEX string representation.
func (celexNumber CELEXNumber) String() string {
	return string(celexNumber.Sector) + celexNumber.Year + string(celexNumber.TypeCode) + celexNumber.Number
}
