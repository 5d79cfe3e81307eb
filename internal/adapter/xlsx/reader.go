package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/couchcryptid/fire-risk-dashboard/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Reader reads spreadsheet resources. The first row of the sheet is the
// header. It implements pipeline.TableReader.
type Reader struct {
	// Sheet names the worksheet to read; empty means the first sheet.
	Sheet string
}

// NewReader creates a reader for the first worksheet.
func NewReader() *Reader {
	return &Reader{}
}

func (r *Reader) ReadTable(ctx context.Context, path string) (domain.RawTable, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.RawTable{}, fmt.Errorf("%w: %s", domain.ErrResourceNotFound, path)
		}
		return domain.RawTable{}, fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return domain.RawTable{}, &domain.ParseError{Source: path, Err: fmt.Errorf("open workbook: %w", err)}
	}
	defer f.Close()

	sheet := r.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return domain.RawTable{}, &domain.ParseError{Source: path, Err: errors.New("workbook has no sheets")}
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return domain.RawTable{}, &domain.ParseError{Source: path, Err: fmt.Errorf("read sheet %q: %w", sheet, err)}
	}
	return toTable(ctx, path, rows)
}

// toTable pads short rows, which excelize returns without trailing empty
// cells, and skips blank rows.
func toTable(ctx context.Context, source string, rows [][]string) (domain.RawTable, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return domain.RawTable{}, &domain.ParseError{Source: source, Err: errors.New("missing header row")}
	}

	header := rows[0]
	table := domain.RawTable{Source: source, Header: header}
	for i, row := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return domain.RawTable{}, err
		}
		if len(row) == 0 {
			continue
		}
		if len(row) > len(header) {
			return domain.RawTable{}, &domain.ParseError{
				Source: source,
				Line:   i + 2,
				Err:    fmt.Errorf("expected at most %d cells, got %d", len(header), len(row)),
			}
		}
		rec := make([]string, len(header))
		copy(rec, row)
		table.Records = append(table.Records, rec)
	}
	return table, nil
}
