// Package importer parses CSV files for bulk data loads and maps their
// columns onto target object fields. Parsing happens fully client-side;
// the backend receives already-mapped records plus a content checksum
// so re-uploads of the same file are detectable.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/orgforge/orgforge/internal/api"
	"github.com/orgforge/orgforge/internal/errors"
)

// Operations supported by the bulk loader.
const (
	OperationInsert = "INSERT"
	OperationUpdate = "UPDATE"
	OperationUpsert = "UPSERT"
)

// CSVFile is one parsed upload: a header row, the data rows, and the
// blake3 checksum of the raw bytes.
type CSVFile struct {
	Headers  []string
	Rows     [][]string
	Checksum string
}

// RowCount returns the number of data rows.
func (f *CSVFile) RowCount() int { return len(f.Rows) }

// Parse reads a CSV stream. The first row is the header; every data
// row must carry the same column count, which the csv reader enforces.
func Parse(r io.Reader) (*CSVFile, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.NewImportParseError("reading file", err)
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.NewImportParseError("parsing csv", err)
	}
	if len(records) == 0 {
		return nil, errors.NewImportParseError("empty file", nil)
	}

	headers := records[0]
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}
	if hasBlankHeader(headers) {
		return nil, errors.NewImportParseError("header row contains a blank column name", nil)
	}

	hasher := blake3.New()
	hasher.Write(raw)

	return &CSVFile{
		Headers:  headers,
		Rows:     records[1:],
		Checksum: fmt.Sprintf("%x", hasher.Sum(nil)),
	}, nil
}

func hasBlankHeader(headers []string) bool {
	for _, h := range headers {
		if h == "" {
			return true
		}
	}
	return false
}

// AutoMap proposes a column-to-field mapping by matching header names
// against field names and labels, case-insensitively. Unmatched
// columns are left out of the mapping.
func AutoMap(headers []string, fields []api.ObjectField) map[string]string {
	byKey := make(map[string]string, len(fields)*2)
	for _, f := range fields {
		byKey[strings.ToLower(f.Name)] = f.Name
		if f.Label != "" {
			byKey[strings.ToLower(f.Label)] = f.Name
		}
	}

	mapping := map[string]string{}
	for _, h := range headers {
		if field, ok := byKey[strings.ToLower(h)]; ok {
			mapping[h] = field
		}
	}
	return mapping
}

// ApplyMapping converts rows into field-keyed records using a
// column-to-field mapping. Unmapped columns are dropped; empty cells
// are omitted so the backend treats them as absent, not blank.
func ApplyMapping(file *CSVFile, mapping map[string]string) []map[string]string {
	records := make([]map[string]string, 0, len(file.Rows))
	for _, row := range file.Rows {
		record := map[string]string{}
		for i, cell := range row {
			if i >= len(file.Headers) {
				break
			}
			field, ok := mapping[file.Headers[i]]
			if !ok || cell == "" {
				continue
			}
			record[field] = cell
		}
		records = append(records, record)
	}
	return records
}

// ValidateMapping checks a mapping against the target object: every
// mapped field must exist, and for upserts the external id field must
// be mapped.
func ValidateMapping(mapping map[string]string, fields []api.ObjectField, operation, externalIDField string) error {
	known := make(map[string]bool, len(fields))
	for _, f := range fields {
		known[f.Name] = true
	}

	for column, field := range mapping {
		if !known[field] {
			return errors.New(errors.ErrCodeImportBadMapping,
				fmt.Sprintf("column %q maps to unknown field %q", column, field))
		}
	}

	if operation == OperationUpsert {
		if externalIDField == "" {
			return errors.New(errors.ErrCodeImportBadMapping, "upsert requires an external id field")
		}
		mapped := false
		for _, field := range mapping {
			if field == externalIDField {
				mapped = true
				break
			}
		}
		if !mapped {
			return errors.New(errors.ErrCodeImportBadMapping,
				fmt.Sprintf("external id field %q is not mapped by any column", externalIDField))
		}
	}
	return nil
}
