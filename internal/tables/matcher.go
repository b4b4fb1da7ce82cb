// Package tables turns loosely structured tabular text into canonical
// records by matching header cells against known indicator substrings.
package tables

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/pdf-extractor/constants"
	"github.com/joseph-ayodele/pdf-extractor/internal/record"
)

// Header indicator substrings, matched case-insensitively. A header cell maps
// onto the first canonical field whose indicator it contains; anything else
// goes to the overflow bucket.
var headerIndicators = []struct {
	field      string
	substrings []string
}{
	{constants.FieldFIO, []string{"фио", "имя", "name"}},
	{constants.FieldBirthDate, []string{"рожд", "birth"}},
	{constants.FieldPosition, []string{"должн", "профес", "position"}},
	{constants.FieldHarmfulFactors, []string{"вредн", "фактор", "harmful"}},
}

var (
	// three capitalized words, Cyrillic or Latin, opens a record as fio
	reFIO = regexp.MustCompile(`([А-ЯЁA-Z][а-яёa-z]+\s+[А-ЯЁA-Z][а-яёa-z]+\s+[А-ЯЁA-Z][а-яёa-z]+)`)
	reDate = regexp.MustCompile(`(\d{2}\.\d{2}\.\d{4})`)
	// column boundary in pdftotext -layout output
	reColumnGap = regexp.MustCompile(`\s{2,}`)
)

var positionKeywords = []string{"рабочий", "инженер", "врач", "медсестра"}

// matchHeader maps a header cell to a canonical field, or "" when nothing
// matches and the column belongs in the overflow bucket.
func matchHeader(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	if h == "" {
		return ""
	}
	for _, ind := range headerIndicators {
		for _, sub := range ind.substrings {
			if strings.Contains(h, sub) {
				return ind.field
			}
		}
	}
	// special case: bare "дата" without "рожд" stays unmapped
	return ""
}

// MatchTable converts one detected table (header row + data rows) into
// records. Tables with fewer than two rows produce nothing. A row becomes a
// record only if at least one field was populated.
func MatchTable(table [][]string) []record.Record {
	if len(table) < 2 {
		return nil
	}
	headers := table[0]

	var out []record.Record
	for _, row := range table[1:] {
		if len(row) < len(headers) {
			continue
		}
		rec := record.New()
		for i, header := range headers {
			if strings.TrimSpace(header) == "" || i >= len(row) {
				continue
			}
			value := strings.TrimSpace(row[i])
			if value == "" {
				continue
			}
			if field := matchHeader(header); field != "" {
				rec.Set(field, value)
			} else {
				rec.Set(strings.TrimSpace(header), value) // routes to overflow
			}
		}
		if !rec.IsEmpty() {
			out = append(out, rec)
		}
	}
	return out
}

// DetectTables finds column-aligned regions in layout-preserving text. A run
// of consecutive lines that each split into two or more cells on wide gaps is
// treated as one table, first line as header.
func DetectTables(text string) [][][]string {
	var tables [][][]string
	var current [][]string

	flush := func() {
		if len(current) >= 2 {
			tables = append(tables, current)
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		cells := splitColumns(line)
		if len(cells) >= 2 {
			current = append(current, cells)
			continue
		}
		flush()
	}
	flush()
	return tables
}

func splitColumns(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	parts := reColumnGap.Split(line, -1)
	cells := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			cells = append(cells, p)
		}
	}
	return cells
}

// ExtractFromText is the last-resort scanner for documents where no table
// was detected. A small accumulator with exactly one open-record slot: an
// fio pattern opens a new record (flushing any pending one), a dd.mm.yyyy
// date fills birth_date while a record is open, job-title keyword lines
// overwrite position. The open record is flushed at end of input.
func ExtractFromText(text string) []record.Record {
	var out []record.Record
	var open *record.Record

	flush := func() {
		if open != nil && !open.IsEmpty() {
			out = append(out, *open)
		}
		open = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if fio := reFIO.FindString(line); fio != "" {
			flush()
			rec := record.New()
			rec.Set(constants.FieldFIO, fio)
			open = &rec
		}

		if open == nil {
			continue
		}
		if date := reDate.FindString(line); date != "" {
			open.Set(constants.FieldBirthDate, date)
		}
		lower := strings.ToLower(line)
		for _, kw := range positionKeywords {
			if strings.Contains(lower, kw) {
				open.Set(constants.FieldPosition, line)
				break
			}
		}
	}
	flush()
	return out
}

// FromText runs table detection over extracted text and falls back to the
// line scanner when no table produced records.
func FromText(text string) []record.Record {
	var out []record.Record
	for _, table := range DetectTables(text) {
		out = append(out, MatchTable(table)...)
	}
	if len(out) == 0 {
		out = ExtractFromText(text)
	}
	return out
}
