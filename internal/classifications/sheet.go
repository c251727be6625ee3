package classifications

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ReadSheet reads hierarchy rows from the named sheet of an xlsx workbook.
// The first row is a header; columns A, B and C hold the major, middle and
// minor names. When aliasSheet is not empty, its rows map a source name in
// column A to the name in column B.
func ReadSheet(r io.Reader, sheet, aliasSheet string) ([]TreeRow, map[string]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	rows := make([]TreeRow, 0, len(records))
	for _, rec := range skipHeader(records) {
		rows = append(rows, TreeRow{
			Major:  cell(rec, 0),
			Middle: cell(rec, 1),
			Minor:  cell(rec, 2),
		})
	}

	if aliasSheet == "" {
		return rows, nil, nil
	}

	records, err = f.GetRows(aliasSheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", aliasSheet, err)
	}

	aliases := make(map[string]string)
	for _, rec := range skipHeader(records) {
		from, to := normalizeName(cell(rec, 0), nil), normalizeName(cell(rec, 1), nil)
		if from != "" && to != "" {
			aliases[from] = to
		}
	}

	return rows, aliases, nil
}

func skipHeader(records [][]string) [][]string {
	if len(records) == 0 {
		return nil
	}
	return records[1:]
}

// GetRows trims trailing empty cells, so short records are common.
func cell(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}
