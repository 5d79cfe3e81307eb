package csvfile

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/couchcryptid/fire-risk-dashboard/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader reads delimited text resources with a header row.
// It implements pipeline.TableReader.
type Reader struct {
	// Comma is the field delimiter; zero means ','.
	Comma rune
}

// NewReader creates a comma-delimited reader.
func NewReader() *Reader {
	return &Reader{Comma: ','}
}

// ReadTable loads path into a RawTable. Every record must carry as many
// fields as the header.
func (r *Reader) ReadTable(ctx context.Context, path string) (domain.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.RawTable{}, fmt.Errorf("%w: %s", domain.ErrResourceNotFound, path)
		}
		return domain.RawTable{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return r.read(ctx, path, f)
}

func (r *Reader) read(ctx context.Context, source string, src io.Reader) (domain.RawTable, error) {
	// Spreadsheet exports often prefix the file with a byte order mark.
	br := bufio.NewReader(src)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		br.Discard(len(utf8BOM)) //nolint:errcheck // bytes already buffered
	}

	cr := csv.NewReader(br)
	if r.Comma != 0 {
		cr.Comma = r.Comma
	}
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return domain.RawTable{}, &domain.ParseError{Source: source, Err: errors.New("missing header row")}
		}
		return domain.RawTable{}, toParseError(source, err)
	}

	table := domain.RawTable{Source: source, Header: header}
	for {
		if err := ctx.Err(); err != nil {
			return domain.RawTable{}, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.RawTable{}, toParseError(source, err)
		}
		table.Records = append(table.Records, rec)
	}
	return table, nil
}

// toParseError keeps the line number encoding/csv reports.
func toParseError(source string, err error) error {
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		return &domain.ParseError{Source: source, Line: csvErr.Line, Err: csvErr.Err}
	}
	return &domain.ParseError{Source: source, Err: err}
}
