package catalog

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"movierag/internal/domain"
)

// Column names of the movie dataset. The title column is the only one
// the loader requires; everything else passes through as opaque payload.
const (
	TitleColumn   = "Movie Name"
	GenreColumn   = "genre"
	YearColumn    = "Release Year"
	ProfitColumn  = "Profit"
	BudgetColumn  = "Budget"
	RevenueColumn = "Revenue"
)

// Catalog holds the loaded item records in source row order together
// with the exact bytes they were parsed from. Row order is the
// identifier space used by the cache and the index.
type Catalog struct {
	Records []domain.ItemRecord
	Columns []string
	Raw     []byte
}

// Load reads the CSV catalog at path. It fails with ErrDatasetNotFound
// when the path does not resolve and ErrDatasetMalformed when the
// title column is missing or a row cannot be parsed.
func Load(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDatasetNotFound, path)
		}
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDatasetMalformed, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no header row", domain.ErrDatasetMalformed)
	}

	columns := rows[0]
	titleIdx := -1
	for i, c := range columns {
		if c == TitleColumn {
			titleIdx = i
			break
		}
	}
	if titleIdx < 0 {
		return nil, fmt.Errorf("%w: missing column %q", domain.ErrDatasetMalformed, TitleColumn)
	}

	records := make([]domain.ItemRecord, 0, len(rows)-1)
	for n, row := range rows[1:] {
		rec := make(domain.ItemRecord, len(columns))
		for i, col := range columns {
			rec[col] = parseCell(row[i])
		}
		if rec.StringField(TitleColumn) == "" {
			return nil, fmt.Errorf("%w: row %d has no title", domain.ErrDatasetMalformed, n+1)
		}
		records = append(records, rec)
	}

	return &Catalog{Records: records, Columns: columns, Raw: raw}, nil
}

// Texts returns the derived text representation of every record, in
// row order. This is what gets embedded.
func (c *Catalog) Texts() []string {
	texts := make([]string, len(c.Records))
	for i, rec := range c.Records {
		texts[i] = RecordText(rec)
	}
	return texts
}

// Len returns the number of catalog rows.
func (c *Catalog) Len() int { return len(c.Records) }

// RecordText renders one record as the text fed to the encoder: the
// title plus each nonempty auxiliary field as "label: value", joined
// by period-space. Absent or non-numeric year/profit are omitted.
func RecordText(rec domain.ItemRecord) string {
	parts := []string{rec.StringField(TitleColumn)}
	if genre := rec.StringField(GenreColumn); genre != "" {
		parts = append(parts, "genre: "+genre)
	}
	if year, ok := rec.NumberField(YearColumn); ok {
		parts = append(parts, fmt.Sprintf("released: %d", int(year)))
	}
	if profit, ok := rec.NumberField(ProfitColumn); ok {
		parts = append(parts, "profit: "+strconv.FormatFloat(profit, 'f', -1, 64))
	}
	return strings.Join(parts, ". ")
}

// parseCell maps an empty cell to nil, a numeric cell to float64 and
// anything else to its string form.
func parseCell(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return f
	}
	return s
}
