// Package loader reads the customer table from a delimited file.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"customer-segmentation/internal/customer"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
}

var missingValues = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"NULL": true,
}

// Load reads the file at path. Rows keep their file order.
func Load(path string) (*customer.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", customer.ErrIO, path, err)
	}
	defer file.Close()

	table, err := Read(file)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return table, nil
}

// Read parses a comma-delimited customer table with a header row.
func Read(r io.Reader) (*customer.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file, header row expected", customer.ErrParse)
	}
	if err != nil {
		return nil, readError(err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
		header[i] = strings.TrimSpace(h)
	}
	for _, col := range customer.RequiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: missing required column %s", customer.ErrParse, col)
		}
	}

	table := &customer.Table{Header: header}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, readError(err)
		}
		line, _ := reader.FieldPos(0)

		rec, err := parseRow(header, row, line)
		if err != nil {
			return nil, err
		}
		table.Records = append(table.Records, rec)
	}

	return table, nil
}

func parseRow(header []string, row []string, line int) (customer.Record, error) {
	raw := make(map[string]string, len(header))
	for i, h := range header {
		if i < len(row) {
			raw[h] = row[i]
		} else {
			raw[h] = ""
		}
	}

	rec := customer.Record{
		CustomerID: strings.TrimSpace(raw[customer.ColCustomerID]),
		Raw:        raw,
	}

	var err error
	if rec.TotalSpend, err = parseFloat(raw, customer.ColTotalSpend, line); err != nil {
		return rec, err
	}
	if rec.AvgOrderValue, err = parseFloat(raw, customer.ColAvgOrderValue, line); err != nil {
		return rec, err
	}
	if rec.TotalOrders, err = parseCount(raw, customer.ColTotalOrders, line); err != nil {
		return rec, err
	}
	if rec.LastPurchaseDate, err = parseDate(raw, customer.ColLastPurchaseDate, line); err != nil {
		return rec, err
	}
	return rec, nil
}

func parseFloat(raw map[string]string, col string, line int) (*float64, error) {
	s := strings.TrimSpace(raw[col])
	if missingValues[s] {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, &customer.ParseError{Line: line, Column: col, Value: s, Err: err}
	}
	if math.IsNaN(v) {
		return nil, nil
	}
	if math.IsInf(v, 0) {
		return nil, &customer.ParseError{Line: line, Column: col, Value: s, Err: errors.New("value is not finite")}
	}
	return &v, nil
}

func parseCount(raw map[string]string, col string, line int) (*int64, error) {
	f, err := parseFloat(raw, col, line)
	if err != nil || f == nil {
		return nil, err
	}
	if *f != math.Trunc(*f) {
		return nil, &customer.ParseError{Line: line, Column: col, Value: raw[col], Err: errors.New("not an integer count")}
	}
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit.
	if *f < math.MinInt64 || *f >= math.MaxInt64 {
		return nil, &customer.ParseError{Line: line, Column: col, Value: raw[col], Err: errors.New("count out of range")}
	}
	v := int64(*f)
	return &v, nil
}

func parseDate(raw map[string]string, col string, line int) (*time.Time, error) {
	s := strings.TrimSpace(raw[col])
	if missingValues[s] {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, &customer.ParseError{Line: line, Column: col, Value: s, Err: errors.New("unrecognised date format")}
}

func readError(err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return fmt.Errorf("%w: %v", customer.ErrParse, err)
	}
	return fmt.Errorf("%w: %v", customer.ErrIO, err)
}
