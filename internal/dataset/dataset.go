// Package dataset reads the tabular training file the scaler is fitted on.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const TargetColumn = "Outcome"

var ErrNoColumn = errors.New("column not found")

type Dataset struct {
	Columns []string
	Rows    [][]float64
}

func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	ds, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	return ds, nil
}

// Read parses a CSV stream with a header row and numeric cells.
func Read(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	ds := &Dataset{Columns: columns}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		line, _ := cr.FieldPos(0)
		row := make([]float64, len(record))
		for i, cell := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, columns[i], err)
			}
			row[i] = v
		}
		ds.Rows = append(ds.Rows, row)
	}

	if len(ds.Rows) == 0 {
		return nil, errors.New("no data rows")
	}
	return ds, nil
}

// Features drops the target column and returns the remaining columns in
// file order along with their values.
func (d *Dataset) Features(target string) ([]string, [][]float64, error) {
	idx := -1
	for i, c := range d.Columns {
		if c == target {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoColumn, target)
	}

	columns := make([]string, 0, len(d.Columns)-1)
	columns = append(columns, d.Columns[:idx]...)
	columns = append(columns, d.Columns[idx+1:]...)

	matrix := make([][]float64, len(d.Rows))
	for i, row := range d.Rows {
		out := make([]float64, 0, len(row)-1)
		out = append(out, row[:idx]...)
		out = append(out, row[idx+1:]...)
		matrix[i] = out
	}
	return columns, matrix, nil
}
