package api

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadRecords decodes records from r. JSON input must be a single array;
// CSV input needs a header row and may carry extra columns.
func ReadRecords(r io.Reader, format Format) ([]Record, error) {
	switch format {
	case FormatJSON, "":
		return readJSON(r)
	case FormatCSV:
		return readCSV(r)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func readJSON(r io.Reader) ([]Record, error) {
	var records []Record
	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	if err := dec.Decode(new(struct{})); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing JSON content")
	}
	return records, nil
}

var csvColumns = []string{
	"order_id", "order_date", "product_name", "product_quantity",
	"product_price", "product_url", "product_image_url",
}

func readCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	known := 0
	for _, col := range csvColumns {
		if _, ok := index[col]; ok {
			known++
		}
	}
	if known == 0 {
		return nil, fmt.Errorf("csv header has none of the columns %s", strings.Join(csvColumns, ", "))
	}

	var records []Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv line %d: %w", line, err)
		}

		cell := func(col string) *string {
			i, ok := index[col]
			if !ok || i >= len(row) {
				return nil
			}
			v := strings.TrimSpace(row[i])
			if v == "" {
				return nil
			}
			return &v
		}
		records = append(records, Record{
			OrderID:         cell("order_id"),
			OrderDate:       cell("order_date"),
			ProductName:     cell("product_name"),
			ProductQuantity: parseNumber(cell("product_quantity")),
			ProductPrice:    parseNumber(cell("product_price")),
			ProductURL:      cell("product_url"),
			ImageURL:        cell("product_image_url"),
		})
	}
	return records, nil
}

// parseNumber accepts "12.5" and the decimal-comma form "12,5". Anything
// else is treated as missing.
func parseNumber(s *string) *float64 {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil && strings.Count(v, ",") == 1 && !strings.Contains(v, ".") {
		f, err = strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64)
	}
	if err != nil {
		return nil
	}
	return &f
}
