package eurlex

import (
	"fmt"

	"github.com/coolbeans/lexunit/pkg/unit"
)

// GenerateCELEX builds a legislation-sector CELEX number for the given act.
// Returns an error for an unsupported act type or an out-of-range year.
func GenerateCELEX(actType unit.ActType, year, number int) (CELEXNumber, error) {
	typeCode, err := actTypeToDocumentTypeCode(actType)
	if err != nil {
		return CELEXNumber{}, err
	}
	if year <= 1900 || year > 2100 {
		return CELEXNumber{}, fmt.Errorf("year %d outside supported CELEX range", year)
	}

	return CELEXNumber{
		Sector:   SectorLegislation,
		Year:     fmt.Sprintf("%04d", year),
		TypeCode: typeCode,
		Number:   fmt.Sprintf("%04d", number),
	}, nil
}

// actTypeToDocumentTypeCode maps an act type to the CELEX DocumentTypeCode.
func actTypeToDocumentTypeCode(actType unit.ActType) (DocumentTypeCode, error) {
	switch actType {
	case unit.ActRegulation:
		return TypeRegulation, nil
	case unit.ActDirective:
		return TypeDirective, nil
	case unit.ActDecision:
		return TypeDecision, nil
	default:
		return "", fmt.Errorf("unsupported act type for CELEX generation: %s", actType)
	}
}

// ParseActYearNumber decides which side of a NNNN/NNN act number is the year.
// EU acts write the year first in modern notation (2016/679) and second in
// the older "No 45/2001" notation; two-digit years resolve against 1900.
func ParseActYearNumber(part1, part2 int) (year, number int, ok bool) {
	switch {
	case 1900 < part1 && part1 <= 2100:
		return part1, part2, true
	case 1900 < part2 && part2 <= 2100:
		return part2, part1, true
	case part1 < 100 && part2 < 1000:
		return 1900 + part1, part2, true
	case part2 < 100 && part1 >= 100:
		return 1900 + part2, part1, true
	case part1 >= 1000 && part2 < 1000:
		return part1, part2, true
	}
	return 0, 0, false
}
