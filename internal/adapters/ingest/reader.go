// Package ingest turns uploaded trial spreadsheets into a model.Table.
package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/okian/fieldtrials/internal/domain/model"
	"github.com/xuri/excelize/v2"
)

// Format identifies the container of an upload.
type Format string

// Supported formats.
const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// DetectFormat picks the format from the file extension.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filename)
	}
}

// Result is a validated table plus ingestion counts.
type Result struct {
	Table   *model.Table
	Kept    int
	Dropped int
}

// Reader validates spreadsheets against a column mapping.
type Reader struct {
	mapping  Mapping
	required []string
}

// Option configures a Reader.
type Option func(*Reader)

// WithMapping replaces the header mapping. Entries are merged over the
// defaults so a partial mapping only renames what it names.
func WithMapping(m Mapping) Option {
	return func(r *Reader) {
		for header, key := range m {
			if header != "" && key != "" {
				r.mapping[header] = key
			}
		}
	}
}

// WithRequired replaces the required canonical columns.
func WithRequired(cols ...string) Option {
	return func(r *Reader) {
		if len(cols) > 0 {
			r.required = append([]string(nil), cols...)
		}
	}
}

// NewReader returns a Reader with the default mapping and required set.
func NewReader(opts ...Option) *Reader {
	r := &Reader{mapping: DefaultMapping(), required: DefaultRequired()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Read parses src according to the extension of filename.
func (r *Reader) Read(ctx context.Context, filename string, src io.Reader) (Result, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return Result{}, err
	}
	var records [][]string
	switch format {
	case FormatXLSX:
		records, err = readXLSX(src)
	case FormatCSV:
		records, err = readCSV(src)
	}
	if err != nil {
		return Result{}, err
	}
	return r.FromRecords(ctx, records)
}

func readXLSX(src io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("open workbook: %w", ErrNoRows)
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(src io.Reader) ([][]string, error) {
	br := bufio.NewReader(src)
	head, _ := br.Peek(4096)
	cr := csv.NewReader(br)
	cr.Comma = sniffDelimiter(head)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}

// sniffDelimiter prefers ';' when the header line uses it more than ','.
func sniffDelimiter(head []byte) rune {
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	if bytes.Count(head, []byte{';'}) > bytes.Count(head, []byte{','}) {
		return ';'
	}
	return ','
}

// FromRecords validates a header row plus data rows. Rows with an empty or
// unparsable required value are dropped and counted.
func (r *Reader) FromRecords(ctx context.Context, records [][]string) (Result, error) {
	if len(records) == 0 {
		return Result{}, fmt.Errorf("%w: file has no header row", ErrNoRows)
	}

	lookup := r.mapping.resolve()
	index := make(map[string]int)
	for i, h := range records[0] {
		key, ok := lookup[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	if err := r.checkRequired(index); err != nil {
		return Result{}, err
	}

	required := make(map[string]struct{}, len(r.required))
	for _, c := range r.required {
		required[c] = struct{}{}
	}

	var (
		rows    []model.Observation
		dropped int
	)
	for n, rec := range records[1:] {
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
		}
		if blank(rec) {
			continue
		}
		obs, ok := buildObservation(rec, index, required)
		if !ok {
			dropped++
			continue
		}
		rows = append(rows, obs)
	}
	if len(rows) == 0 {
		return Result{Dropped: dropped}, fmt.Errorf("%w: %d rows dropped", ErrNoRows, dropped)
	}
	return Result{Table: model.NewTable(rows), Kept: len(rows), Dropped: dropped}, nil
}

func (r *Reader) checkRequired(index map[string]int) error {
	var missing MissingColumnsError
	for _, c := range r.required {
		if _, ok := index[c]; !ok {
			missing.Columns = append(missing.Columns, c)
			missing.Headers = append(missing.Headers, r.mapping.headersFor(c))
		}
	}
	if len(missing.Columns) > 0 {
		return &missing
	}
	return nil
}

func buildObservation(rec []string, index map[string]int, required map[string]struct{}) (model.Observation, bool) {
	var o model.Observation
	for key, col := range index {
		raw := ""
		if col < len(rec) {
			raw = strings.TrimSpace(rec[col])
		}
		_, must := required[key]
		if raw == "" {
			if must {
				return o, false
			}
			continue
		}
		if isNumeric(key) {
			v, err := ParseNumber(raw)
			if err != nil {
				if must {
					return o, false
				}
				continue
			}
			setMeasure(&o, key, v)
			continue
		}
		setCategory(&o, key, raw)
	}
	return o, true
}

func setCategory(o *model.Observation, key, v string) {
	switch key {
	case model.ColGroup:
		o.GroupID = v
	case model.ColLocation:
		o.LocationID = v
	case model.ColState:
		o.State = v
	default:
		if o.Attributes == nil {
			o.Attributes = make(map[string]string)
		}
		o.Attributes[key] = v
	}
}

func setMeasure(o *model.Observation, key string, v float64) {
	switch key {
	case model.ColProductivity:
		o.Productivity = v
	default:
		if o.Measures == nil {
			o.Measures = make(map[string]float64)
		}
		o.Measures[key] = v
	}
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ParseNumber accepts both "1234.5" and the decimal-comma form "1.234,5".
// A lone dot is always a decimal point: "1.234" is 1.234, never 1234.
// Spreadsheet cells are read raw, so thousands separators only reach this
// function from hand-written CSV, where a comma is then required.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ".", "")
		}
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a finite number: %q", s)
	}
	return v, nil
}
