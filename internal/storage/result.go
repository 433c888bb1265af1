package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Result is one simulator telemetry artifact held column-wise.
type Result struct {
	Path    string
	Headers []string
	Columns [][]float64
}

func (r *Result) Len() int {
	if len(r.Columns) == 0 {
		return 0
	}
	return len(r.Columns[0])
}

// Column returns the column whose header matches name exactly, or failing
// that the first header containing it case-insensitively.
func (r *Result) Column(name string) ([]float64, bool) {
	for i, h := range r.Headers {
		if h == name {
			return r.Columns[i], true
		}
	}
	lower := strings.ToLower(name)
	for i, h := range r.Headers {
		if strings.Contains(strings.ToLower(h), lower) {
			return r.Columns[i], true
		}
	}
	return nil, false
}

func LoadResult(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	res, err := ReadResult(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	res.Path = path
	return res, nil
}

// ReadResult parses CSV telemetry with a header row. Rows with unparsable
// cells are skipped.
func ReadResult(r io.Reader) (*Result, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty result")
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}
	res := &Result{Headers: headers, Columns: make([][]float64, len(headers))}

rows:
	for _, record := range records[1:] {
		if len(record) != len(headers) {
			continue
		}
		row := make([]float64, len(record))
		for j, cell := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				continue rows
			}
			row[j] = v
		}
		for j, v := range row {
			res.Columns[j] = append(res.Columns[j], v)
		}
	}
	return res, nil
}

// ResultFiles lists the CSV artifacts in dir in index order.
func ResultFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}
