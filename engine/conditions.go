package engine

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// Table is a condition file: a header row and header-keyed records.
type Table struct {
	Path   string
	Fields []string
	Trials []Trial
}

func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t.Path = path
	return t, nil
}

func ReadTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty table")
	}

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		// Spreadsheet exports often carry a UTF-8 BOM on the first cell.
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if header[i] == "" {
			return nil, fmt.Errorf("column %d: empty header", i+1)
		}
	}

	t := &Table{Fields: header}
	for i, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		if len(rec) > len(header) {
			return nil, fmt.Errorf("line %d: %d fields, header has %d", i+2, len(rec), len(header))
		}
		values := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(rec) {
				values[h] = strings.TrimSpace(rec[j])
			} else {
				values[h] = ""
			}
		}
		t.Trials = append(t.Trials, Trial{Index: len(t.Trials), Fields: header, Values: values})
	}
	return t, nil
}

// Require checks that every named column is present.
func (t *Table) Require(cols ...string) error {
	for _, c := range cols {
		if !t.HasField(c) {
			return fmt.Errorf("%s: missing column %q", t.Path, c)
		}
	}
	return nil
}

func (t *Table) HasField(name string) bool {
	for _, f := range t.Fields {
		if f == name {
			return true
		}
	}
	return false
}

func (t *Table) Len() int { return len(t.Trials) }

func isBlank(rec []string) bool {
	for _, s := range rec {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}
