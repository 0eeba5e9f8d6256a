package tally

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVSource reads records from comma-separated text whose first line names
// the fields. Rows shorter than the header omit the trailing fields, and a
// bare quote inside an unquoted field is kept as text.
type CSVSource struct {
	r      *csv.Reader
	header []string
}

// NewCSVSource consumes the header row of r. Input with no header at all is
// an empty source.
func NewCSVSource(r io.Reader) (*CSVSource, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	header, err := cr.Read()
	if err == io.EOF {
		return &CSVSource{r: cr}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	return &CSVSource{r: cr, header: header}, nil
}

// Header returns the field names in file order.
func (s *CSVSource) Header() []string { return s.header }

// Next returns the next row, or io.EOF.
func (s *CSVSource) Next() (Record, error) {
	if s.header == nil {
		return nil, io.EOF
	}
	row, err := s.r.Read()
	if err != nil {
		return nil, err
	}
	rec := make(Record, len(s.header))
	for i, name := range s.header {
		if i >= len(row) {
			break
		}
		rec[name] = row[i]
	}
	return rec, nil
}

// SliceSource yields records from memory.
type SliceSource struct {
	records []Record
	pos     int
}

func NewSliceSource(records []Record) *SliceSource {
	return &SliceSource{records: records}
}

func (s *SliceSource) Next() (Record, error) {
	if s.pos >= len(s.records) {
		return nil, io.EOF
	}
	rec := s.records[s.pos]
	s.pos++
	return rec, nil
}
