package panel

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// ParseRecords reads price records from delimited tabular data. The first
// row is a header naming at least the symbol, date and close fields (any
// order, case-insensitive); extra columns are ignored. Dates use the
// 2006-01-02 layout. An empty close field is recorded as a missing
// observation (NaN).
func ParseRecords(r io.Reader) ([]PriceRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty input: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	symCol, dateCol, closeCol := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "symbol":
			symCol = i
		case "date":
			dateCol = i
		case "close":
			closeCol = i
		}
	}
	if symCol < 0 || dateCol < 0 || closeCol < 0 {
		return nil, fmt.Errorf("header must name symbol, date and close fields, got %v", header)
	}

	var records []PriceRecord
	for row := 2; ; row++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}

		date, err := time.Parse(DateLayout, strings.TrimSpace(fields[dateCol]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parse date %q: %w", row, fields[dateCol], err)
		}

		closeField := strings.TrimSpace(fields[closeCol])
		closePrice := math.NaN()
		if closeField != "" {
			closePrice, err = strconv.ParseFloat(closeField, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: parse close %q: %w", row, closeField, err)
			}
		}

		records = append(records, PriceRecord{
			Symbol: strings.TrimSpace(fields[symCol]),
			Date:   date,
			Close:  closePrice,
		})
	}
	return records, nil
}

// LoadCSV reads a CSV price file and pivots it into a Panel.
func LoadCSV(path string) (*Panel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open price file: %w", err)
	}
	defer f.Close()

	records, err := ParseRecords(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return FromRecords(records)
}
