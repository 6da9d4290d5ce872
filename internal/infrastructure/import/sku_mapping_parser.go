package csvimport

import (
	"fmt"
	"strings"
)

const (
	columnInternalSku = "internal_sku"
	columnExternalSku = "external_sku"

	// externalSuffixSeparator starts an ignored suffix in the external SKU column
	externalSuffixSeparator = ";"
)

// SkuMappingLine is a successfully parsed import line
type SkuMappingLine struct {
	LineNumber  int
	InternalSku string
	ExternalSku string
}

// SkuMappingImport is the outcome of parsing a bulk SKU-mapping paste
type SkuMappingImport struct {
	Lines    []SkuMappingLine
	Failures *ErrorCollection
}

// ParseSkuMappings parses lines of the form internalSku<TAB>externalSku[;suffix].
// Malformed lines are collected as failures rather than dropped. A later line
// that maps an already-seen external SKU to a different internal SKU fails.
func ParseSkuMappings(text string) (*SkuMappingImport, error) {
	parser, err := NewLineParser(strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	rows, err := parser.ReadAllRows()
	if err != nil {
		return nil, err
	}

	result := &SkuMappingImport{
		Lines:    make([]SkuMappingLine, 0, len(rows)),
		Failures: NewErrorCollection(len(rows)),
	}
	owners := make(map[string]string, len(rows))

	for _, row := range rows {
		if len(row.Fields) != 2 {
			result.Failures.Add(NewRowErrorWithValue(row.LineNumber, "", ErrCodeImportMalformedRow,
				fmt.Sprintf("expected 2 tab-separated fields, got %d", len(row.Fields)), row.Raw))
			continue
		}

		internalSku := row.Fields[0]
		externalSku := row.Fields[1]
		if idx := strings.Index(externalSku, externalSuffixSeparator); idx >= 0 {
			externalSku = strings.TrimSpace(externalSku[:idx])
		}

		if internalSku == "" {
			result.Failures.AddRequiredError(row.LineNumber, columnInternalSku, row.Raw)
			continue
		}
		if externalSku == "" {
			result.Failures.AddRequiredError(row.LineNumber, columnExternalSku, row.Raw)
			continue
		}
		if owner, seen := owners[externalSku]; seen && owner != internalSku {
			result.Failures.AddDuplicateError(row.LineNumber, columnExternalSku, externalSku, false)
			continue
		}

		owners[externalSku] = internalSku
		result.Lines = append(result.Lines, SkuMappingLine{
			LineNumber:  row.LineNumber,
			InternalSku: internalSku,
			ExternalSku: externalSku,
		})
	}

	return result, nil
}
