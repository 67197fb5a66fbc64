package tabular

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/facetlabs/facet/internal/textnorm"
)

const sheetName = "Sheet1"

// Encode renders the table as an xlsx workbook. Cell values pass through
// the formula-injection guard.
func Encode(t *Table) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	header := make([]interface{}, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, err
	}

	for r, row := range t.Rows {
		cells := make([]interface{}, len(t.Header))
		for i, h := range t.Header {
			cells[i] = textnorm.SafeCell(row[h])
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses the first sheet of an xlsx workbook. The first row is the
// header; every cell is text-normalized on the way in.
func Decode(data []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return &Table{}, nil
	}

	t := &Table{}
	for _, h := range rows[0] {
		t.Header = append(t.Header, textnorm.Clean(h))
	}
	for _, raw := range rows[1:] {
		row := make(map[string]string, len(t.Header))
		for i, h := range t.Header {
			if i < len(raw) {
				row[h] = textnorm.Clean(raw[i])
			} else {
				row[h] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
