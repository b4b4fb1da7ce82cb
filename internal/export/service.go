// Package export renders a normalized record batch into a formatted XLSX
// workbook.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/pdf-extractor/constants"
	"github.com/joseph-ayodele/pdf-extractor/internal/common"
	"github.com/joseph-ayodele/pdf-extractor/internal/record"
)

// maxColWidth caps auto-sized columns so one long overflow cell does not
// stretch the sheet.
const maxColWidth = 50

type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// ExportRecords writes the record batch as an XLSX file at outputPath.
// Calling it with no records is a contract violation: it returns ErrNoRecords
// and writes nothing.
func (s *Service) ExportRecords(recs []record.Record, outputPath string) error {
	buf, err := s.Build(recs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outputPath, buf, 0o644); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// Build renders the workbook and returns its bytes.
func (s *Service) Build(recs []record.Record) ([]byte, error) {
	start := time.Now()
	if len(recs) == 0 {
		return nil, common.NewAppError("EXPORT_ERROR", "record list is empty", common.ErrNoRecords)
	}

	kind := record.Classify(recs)
	sheet := record.SheetTitle(kind)
	keys := orderKeys(recs, kind)

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"366092"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
		},
	})
	if err != nil {
		return nil, err
	}

	widths := make([]int, len(keys))
	for col, key := range keys {
		label := constants.DisplayLabel(key)
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, label); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return nil, err
		}
		widths[col] = len([]rune(label))
	}

	for row, rec := range recs {
		for col, key := range keys {
			value := rec.Get(key) // missing fields write "", never null
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
			if n := len([]rune(value)); n > widths[col] {
				widths[col] = n
			}
		}
	}

	for col, w := range widths {
		w += 2
		if w > maxColWidth {
			w = maxColWidth
		}
		name, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(sheet, name, name, float64(w)); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"sheet", sheet,
		"rows", len(recs),
		"columns", len(keys),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// orderKeys builds the column order: canonical priority fields that are
// actually present first, then the remaining present keys.
func orderKeys(recs []record.Record, kind record.Kind) []string {
	union := record.UnionKeys(recs, kind)
	present := make(map[string]bool, len(union))
	for _, k := range union {
		present[k] = true
	}

	keys := make([]string, 0, len(union))
	for _, k := range record.PriorityFields(kind) {
		if present[k] {
			keys = append(keys, k)
			present[k] = false
		}
	}
	for _, k := range union {
		if present[k] {
			keys = append(keys, k)
		}
	}
	return keys
}
