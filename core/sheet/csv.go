package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// Decode reads a CSV document whose first record is the header row.
// An empty document yields an uninitialized sheet. Trailing empty header
// cells, as left behind by spreadsheet exports, are dropped.
func Decode(r io.Reader) (*Sheet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	for len(header) > 0 && header[len(header)-1] == "" {
		header = header[:len(header)-1]
	}

	var rows [][]string
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read data row %d: %w", len(rows)+1, err)
		}
		rows = append(rows, record)
	}

	return FromTable(header, rows), nil
}

// Encode writes the sheet as CSV, header first, every row padded to the header width.
// An uninitialized sheet writes nothing.
func (s *Sheet) Encode(w io.Writer) error {
	header, rows := s.Table()
	if len(header) == 0 && len(rows) == 0 {
		return nil
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write data row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
